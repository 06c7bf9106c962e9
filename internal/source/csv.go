package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"raciones-dashboard/internal/models"
)

// CSVDir reads sheet_<index>.csv files from a directory, one file per sheet.
type CSVDir struct {
	Dir string
}

func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{Dir: dir}
}

func (s *CSVDir) Name() string {
	return "csv:" + s.Dir
}

// SheetPath is the file that holds sheet index.
func (s *CSVDir) SheetPath(index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("sheet_%d.csv", index))
}

func (s *CSVDir) Fetch(ctx context.Context, sheetIndex int) ([]models.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.SheetPath(sheetIndex)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}
