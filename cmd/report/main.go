// Command report prints the dashboard's summary, alerts and (optionally) one
// school's history in the terminal, and can export the alerts as CSV.
//
// Usage:
//
//	go run ./cmd/report -source csv -csv-dir data
//	go run ./cmd/report -program cch -school "Escuela N° 12 Belgrano"
//	go run ./cmd/report -json report.json -alerts alerts.csv
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/pipeline"
	"raciones-dashboard/internal/present"
	"raciones-dashboard/internal/source"
	"raciones-dashboard/internal/util"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	sourceKind := flag.String("source", "", "Data source: postgres, csv or sheets (default DATA_SOURCE)")
	csvDir := flag.String("csv-dir", "", "Directory with sheet_<n>.csv files (default CSV_DIR)")
	jsonOut := flag.String("json", "", "Optional JSON output path")
	alertsOut := flag.String("alerts", "", "Optional CSV output for alerts")
	programSlug := flag.String("program", "", "Only report one program (ci, cch, cj, cai)")
	school := flag.String("school", "", "Print the history of one school (requires -program)")
	flag.Parse()

	cfg := config.Load()
	if *sourceKind != "" {
		cfg.DataSource = strings.ToLower(*sourceKind)
	}
	if *csvDir != "" {
		cfg.CSVDir = *csvDir
	}
	if err := cfg.Validate(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}

	program := models.ProgramUnknown
	if *programSlug != "" {
		p, ok := models.ParseProgram(*programSlug)
		if !ok {
			color.Red("Error: unknown program %q", *programSlug)
			os.Exit(2)
		}
		program = p
	}
	if *school != "" && program == models.ProgramUnknown {
		color.Red("Error: -school requires -program")
		os.Exit(2)
	}

	opts := reportOptions{program: program, school: *school, jsonOut: *jsonOut, alertsOut: *alertsOut}
	if err := run(context.Background(), cfg, opts, os.Stdout); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

type reportOptions struct {
	program   models.ProgramType
	school    string
	jsonOut   string
	alertsOut string
}

// run opens the source, prints the report and writes the optional exports.
// The source is closed before run returns, on every path.
func run(ctx context.Context, cfg *config.Config, opts reportOptions, w io.Writer) error {
	src, closeSource, err := source.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s source: %w", cfg.DataSource, err)
	}
	defer func() {
		if err := closeSource(); err != nil {
			log.Printf("WARNING: failed to close source: %v", err)
		}
	}()

	p, err := pipeline.FromConfig(src, cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	dash := p.Refresh(ctx)
	printReport(w, dash, opts.program, src.Name())

	if opts.school != "" {
		printHistory(w, p.Trend(ctx, opts.program, opts.school))
	}

	if opts.jsonOut != "" {
		if err := writeJSON(dash, opts.jsonOut); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		color.Green("JSON written to %s", opts.jsonOut)
	}
	if opts.alertsOut != "" {
		if err := writeAlertsCSV(dash.Alerts, opts.alertsOut); err != nil {
			return fmt.Errorf("failed to write alerts CSV: %w", err)
		}
		color.Green("Alerts written to %s", opts.alertsOut)
	}
	return nil
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	section = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
)

// printReport writes the refresh result. When program is set only its rows
// and totals are shown; alerts always cover every program.
func printReport(w io.Writer, dash pipeline.Dashboard, program models.ProgramType, sourceName string) {
	heading.Fprintln(w, "Seguimiento de Raciones")
	fmt.Fprintf(w, "Fuente: %s | refresh %s | %s\n", sourceName, dash.RefreshID, dash.GeneratedAt.Format("02/01/2006 15:04"))

	section.Fprintln(w, "\nFuentes")
	groups := tablewriter.NewWriter(w)
	groups.SetHeader([]string{"Programa", "Hoja", "Estado", "Filas", "Descartadas"})
	for _, g := range dash.Groups {
		if program != models.ProgramUnknown && g.Program != program {
			continue
		}
		status, _ := g.Status.MarshalText()
		state := string(status)
		if g.Error != "" {
			state += ": " + g.Error
		}
		groups.Append([]string{g.Program.Label(), fmt.Sprintf("%d", g.SheetIndex), state, fmt.Sprintf("%d", g.Rows), fmt.Sprintf("%d", g.Dropped)})
	}
	groups.Render()

	rows := dash.Aggregate.Rows
	if program != models.ProgramUnknown {
		rows = dash.Aggregate.RowsFor(program)
	}

	if len(rows) == 0 {
		section.Fprintln(w, "\n"+present.NoDataMessage)
	} else {
		section.Fprintln(w, "\nTotales por programa")
		renderTable(w, present.TotalsTable(filterTotals(dash.Aggregate, program)))

		section.Fprintln(w, "\nÚltimo relevamiento por escuela")
		renderTable(w, present.SummaryTable(rows))
	}

	section.Fprintln(w, "\nAlertas")
	lines := present.AlertLines(dash.Alerts)
	for _, line := range lines {
		if dash.Alerts.Status == pipeline.AlertsRaised {
			failure.Fprintln(w, "  "+line)
		} else {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// printHistory writes one school's records in date order.
func printHistory(w io.Writer, view pipeline.TrendView) {
	section.Fprintf(w, "\nHistorial: %s (%s)\n", view.School, view.Program.Label())
	if view.Trend.Status != pipeline.TrendOK || len(view.Trend.Series) == 0 {
		if view.Error != "" {
			failure.Fprintf(w, "  Fuente no disponible: %s\n", view.Error)
			return
		}
		fmt.Fprintln(w, "  "+present.NoDataMessage)
		return
	}
	renderTable(w, present.RecordTable(view.Trend.Series[0].Records))
}

func filterTotals(agg pipeline.Aggregate, program models.ProgramType) pipeline.Aggregate {
	if program == models.ProgramUnknown {
		return agg
	}
	out := pipeline.Aggregate{Rows: agg.RowsFor(program)}
	for _, t := range agg.Totals {
		if t.Program == program {
			out.Totals = append(out.Totals, t)
			out.Overall = t
		}
	}
	return out
}

func renderTable(w io.Writer, t present.Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Columns)
	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			record[i] = row[col]
		}
		table.Append(record)
	}
	table.Render()
}

func writeJSON(dash pipeline.Dashboard, path string) error {
	data, err := json.MarshalIndent(dash, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeAlertsCSV(report pipeline.AlertReport, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"kind", "program", "school", "date", "value", "message"}); err != nil {
		return err
	}
	for _, a := range report.Alerts {
		kind, _ := a.Kind.MarshalText()
		record := []string{
			string(kind),
			a.Program.Slug(),
			a.School,
			util.FormatDMY(a.Date),
			fmt.Sprintf("%.1f", a.Value),
			present.AlertText(a),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
