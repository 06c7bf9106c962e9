package source

import (
	"context"
	"fmt"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/db"
)

// Open builds the source selected by DATA_SOURCE. The returned close
// function releases whatever the source holds and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.DataSource {
	case config.SourceCSV:
		return NewCSVDir(cfg.CSVDir), noop, nil
	case config.SourceSheets:
		return NewSheets(cfg.SpreadsheetID, cfg.SheetGIDs), noop, nil
	case config.SourcePostgres:
		conn, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := db.RunMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return NewPostgres(conn), conn.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
