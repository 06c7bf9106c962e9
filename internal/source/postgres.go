package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"raciones-dashboard/internal/models"

	"github.com/google/uuid"
)

// Postgres reads rows from the sheet_rows staging table.
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(conn *sql.DB) *Postgres {
	return &Postgres{DB: conn}
}

func (s *Postgres) Name() string {
	return "postgres"
}

func (s *Postgres) Fetch(ctx context.Context, sheetIndex int) ([]models.RawRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT cells
		FROM sheet_rows
		WHERE sheet_index = $1
		ORDER BY row_number
	`, sheetIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to query sheet %d: %w", sheetIndex, classifyPgError(err, sheetIndex, 0))
	}
	defer rows.Close()

	result := make([]models.RawRow, 0)
	for rows.Next() {
		var cells []byte
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("failed to scan sheet %d: %w", sheetIndex, err)
		}
		row, err := DecodeCells(cells)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", sheetIndex, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %d: %w", sheetIndex, err)
	}
	return result, nil
}

// Replace swaps the stored rows of one sheet for rows, in a single
// transaction. It returns the number of rows written.
func (s *Postgres) Replace(ctx context.Context, sheetIndex int, rows []models.RawRow) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet_index = $1`, sheetIndex); err != nil {
		return 0, fmt.Errorf("failed to clear sheet %d: %w", sheetIndex, classifyPgError(err, sheetIndex, 0))
	}

	for i, row := range rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sheet_rows (id, sheet_index, row_number, cells)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), sheetIndex, i+1, string(cells))
		if err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, classifyPgError(err, sheetIndex, i+1))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// DecodeCells decodes a stored JSON object into a RawRow. Numbers come back
// as float64, the same as a spreadsheet API would return them.
func DecodeCells(data []byte) (models.RawRow, error) {
	var row models.RawRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("invalid cells: %w", err)
	}
	if row == nil {
		row = models.RawRow{}
	}
	return row, nil
}
