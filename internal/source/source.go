// Package source reads raw spreadsheet rows by sheet index. Every backend
// fetches fresh on each call and keeps nothing between calls.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"raciones-dashboard/internal/models"
)

// ErrSheetNotFound means the backend has no sheet at the requested index.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNotCSV means a remote export answered with something other than CSV,
// usually a login page for a spreadsheet that is not published.
var ErrNotCSV = errors.New("response is not CSV")

type Source interface {
	Name() string
	Fetch(ctx context.Context, sheetIndex int) ([]models.RawRow, error)
}

// ReadCSV turns a CSV export into rows keyed by header. Empty cells become
// nil, columns without a header are ignored and blank rows are skipped. When
// a header repeats, the first non-empty cell under it wins.
func ReadCSV(r io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]models.RawRow, 0)
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("unable to read CSV: %w", err)
		}

		row := make(models.RawRow, len(headers))
		blank := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				// A repeated header keeps its first non-empty value.
				if _, ok := row[h]; !ok {
					row[h] = nil
				}
				continue
			}
			if v, ok := row[h]; ok && v != nil {
				continue
			}
			row[h] = record[i]
			blank = false
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
