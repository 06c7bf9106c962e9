// Seeder command for loading attendance rows into the sheet_rows table.
//
// SAFETY: writes only happen when --confirm is provided.
//
// Usage:
//
//	go run ./cmd/seed --csv-dir data --confirm     # import data/sheet_<n>.csv
//	go run ./cmd/seed --demo --days 20 --confirm   # generate demo rows
//	go run ./cmd/seed --hash-password secret       # print a DASHBOARD_PASSWORD_HASH
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/db"
	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/source"
	"raciones-dashboard/internal/util"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	csvDir := flag.String("csv-dir", "", "Directory with sheet_<n>.csv files to import")
	demo := flag.Bool("demo", false, "Generate demo rows for every configured program")
	days := flag.Int("days", 20, "Number of school days per demo school")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of a dashboard password and exit")
	confirm := flag.Bool("confirm", false, "Confirm writing to the database (required)")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("ERROR: Failed to hash password: %v", err)
		}
		fmt.Printf("DASHBOARD_PASSWORD_HASH=%s\n", hash)
		return
	}

	if *csvDir == "" && !*demo {
		log.Fatalf("ERROR: nothing to do. Pass --csv-dir <dir> or --demo.")
	}
	if !*confirm {
		log.Fatalf("ERROR: --confirm flag is required to run seeder.")
	}

	cfg := config.Load()
	ctx := context.Background()

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	store := source.NewPostgres(conn)

	var sheets map[int][]models.RawRow
	if *csvDir != "" {
		sheets, err = loadCSVSheets(ctx, *csvDir)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	} else {
		sheets = demoSheets(cfg, *days, time.Date(cfg.DefaultYear, time.March, 3, 0, 0, 0, 0, time.UTC))
	}

	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("SEEDER: Writing %d sheets", len(sheets))
	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for _, idx := range sortedIndexes(sheets) {
		n, err := store.Replace(ctx, idx, sheets[idx])
		if err != nil {
			log.Printf("ERROR: Failed to write sheet %d: %v", idx, err)
			continue
		}
		log.Printf("  sheet %d: %d rows", idx, n)
	}

	log.Printf("✓ Seeding complete. Run the server with DATA_SOURCE=postgres.")
}

var sheetFilePattern = regexp.MustCompile(`^sheet_(\d+)\.csv$`)

// loadCSVSheets reads every sheet_<n>.csv file in dir, keyed by n.
func loadCSVSheets(ctx context.Context, dir string) (map[int][]models.RawRow, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "sheet_*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	csvSource := source.NewCSVDir(dir)
	sheets := make(map[int][]models.RawRow)
	for _, path := range paths {
		m := sheetFilePattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rows, err := csvSource.Fetch(ctx, idx)
		if err != nil {
			return nil, err
		}
		sheets[idx] = rows
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheet_<n>.csv files found in %s", dir)
	}
	return sheets, nil
}

var demoSchools = []string{"Escuela N° 12 Belgrano", "Escuela N° 4 Sarmiento", "Jardín Los Aromos"}

// demoSheets builds weekday rows for every enabled program. The last school
// of each program runs with low attendance, and one day per school has no
// one present with a note explaining why.
func demoSheets(cfg *config.Config, days int, start time.Time) map[int][]models.RawRow {
	sheets := make(map[int][]models.RawRow)
	for _, p := range models.AllPrograms {
		idx := cfg.ProgramSheets()[p]
		if idx < 0 {
			continue
		}
		sheets[idx] = append(sheets[idx], demoRows(p, days, start)...)
	}
	return sheets
}

func demoRows(program models.ProgramType, days int, start time.Time) []models.RawRow {
	var rows []models.RawRow
	for s, school := range demoSchools {
		enrolled := 45 - 8*s - int(program)
		date := start
		for d := 0; d < days; d++ {
			for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				date = date.AddDate(0, 0, 1)
			}

			present := enrolled * (85 - (d%5)*3) / 100
			if s == len(demoSchools)-1 {
				present = enrolled * (35 + d%4) / 100
			}
			note := ""
			if d == days/2 {
				present = 0
				note = "Suspensión de clases por lluvia"
			}

			rows = append(rows, models.RawRow{
				"Escuela":       school,
				"Fecha":         util.FormatDMY(date),
				"Inscriptos":    strconv.Itoa(enrolled),
				"Presentes":     strconv.Itoa(present),
				"Raciones":      strconv.Itoa(present),
				"Observaciones": note,
			})
			date = date.AddDate(0, 0, 1)
		}
	}
	return rows
}

func sortedIndexes(sheets map[int][]models.RawRow) []int {
	idx := make([]int, 0, len(sheets))
	for i := range sheets {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
