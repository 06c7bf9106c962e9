package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotMigrated means the sheet_rows table does not exist yet.
var ErrNotMigrated = errors.New("sheet_rows table missing, run migrations")

// ErrStoreUnavailable means the database connection failed mid-query.
var ErrStoreUnavailable = errors.New("database unavailable")

// DuplicateRowError is a unique violation on (sheet_index, row_number).
type DuplicateRowError struct {
	SheetIndex int
	RowNumber  int
	Constraint string
}

func (e *DuplicateRowError) Error() string {
	return fmt.Sprintf("sheet %d row %d already stored (%s)", e.SheetIndex, e.RowNumber, e.Constraint)
}

// classifyPgError maps the PostgreSQL errors the staging table can raise to
// the source package's errors. Other errors are returned unchanged.
func classifyPgError(err error, sheetIndex, rowNumber int) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	// SQLSTATE 42P01 = undefined_table
	case pgErr.Code == "42P01":
		return fmt.Errorf("%w: %s", ErrNotMigrated, pgErr.Message)
	// SQLSTATE 23505 = unique_violation
	case pgErr.Code == "23505":
		return &DuplicateRowError{SheetIndex: sheetIndex, RowNumber: rowNumber, Constraint: pgErr.ConstraintName}
	// Class 08 = connection exception, 57P01 = admin_shutdown
	case strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P01":
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, pgErr.Message)
	}
	return err
}
