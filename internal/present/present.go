// Package present turns pipeline output into the shapes the dashboard
// views and the JSON API consume.
package present

import (
	"fmt"
	"strconv"
	"time"

	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/pipeline"
	"raciones-dashboard/internal/util"
)

const (
	AllClearMessage = "Sin alertas: todos los indicadores dentro de los umbrales"
	NoDataMessage   = "Sin datos disponibles"
)

// Series is one named line or bar set. Nil entries are gaps.
type Series struct {
	Name   string     `json:"name"`
	Kind   string     `json:"kind"`
	Values []*float64 `json:"values"`
}

type Annotation struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

type Chart struct {
	Title       string       `json:"title"`
	X           []string     `json:"x"`
	Series      []Series     `json:"series"`
	Annotations []Annotation `json:"annotations"`
}

// Empty reports whether the chart has no points to draw.
func (c Chart) Empty() bool {
	return len(c.X) == 0
}

type Table struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// AttendanceChart charts one school's history: enrolled and present as
// lines, with an annotation wherever present is 0 and a note was written.
func AttendanceChart(title string, records []models.AttendanceRecord) Chart {
	c := Chart{
		Title:       title,
		X:           make([]string, 0, len(records)),
		Annotations: make([]Annotation, 0),
	}
	enrolled := Series{Name: "Inscriptos", Kind: "line", Values: make([]*float64, 0, len(records))}
	present := Series{Name: "Presentes", Kind: "line", Values: make([]*float64, 0, len(records))}

	for _, r := range records {
		x := isoDate(r.Date)
		c.X = append(c.X, x)
		enrolled.Values = append(enrolled.Values, countValue(r.Enrolled))
		present.Values = append(present.Values, countValue(r.Present))
		if r.Present.Valid && r.Present.N == 0 && r.Note != "" {
			c.Annotations = append(c.Annotations, Annotation{Date: x, Note: r.Note})
		}
	}
	c.Series = []Series{enrolled, present}
	return c
}

// RationsChart charts rations delivered per date as bars.
func RationsChart(title string, records []models.AttendanceRecord) Chart {
	c := Chart{
		Title:       title,
		X:           make([]string, 0, len(records)),
		Annotations: make([]Annotation, 0),
	}
	rations := Series{Name: "Raciones", Kind: "bar", Values: make([]*float64, 0, len(records))}
	for _, r := range records {
		c.X = append(c.X, isoDate(r.Date))
		rations.Values = append(rations.Values, countValue(r.Rations))
	}
	c.Series = []Series{rations}
	return c
}

// SummaryTable lays out summary rows in display order.
func SummaryTable(rows []models.SummaryRow) Table {
	t := Table{
		Columns: []string{"Escuela", "Programa", "Fecha", "Inscriptos", "Presentes", "Asistencia"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, map[string]string{
			"Escuela":    row.School,
			"Programa":   row.Program.Label(),
			"Fecha":      util.FormatDMY(row.Date),
			"Inscriptos": strconv.Itoa(row.Enrolled),
			"Presentes":  row.Present.String(),
			"Asistencia": FormatRate(row.AttendanceRate),
		})
	}
	return t
}

// TotalsTable lays out per-program totals followed by the overall total.
func TotalsTable(agg pipeline.Aggregate) Table {
	t := Table{
		Columns: []string{"Programa", "Escuelas", "Inscriptos", "Presentes", "Asistencia"},
		Rows:    make([]map[string]string, 0, len(agg.Totals)+1),
	}
	add := func(label string, tot models.ProgramTotals) {
		t.Rows = append(t.Rows, map[string]string{
			"Programa":   label,
			"Escuelas":   strconv.Itoa(tot.Schools),
			"Inscriptos": strconv.Itoa(tot.Enrolled),
			"Presentes":  strconv.Itoa(tot.Present),
			"Asistencia": FormatRate(tot.Rate),
		})
	}
	for _, tot := range agg.Totals {
		add(tot.Program.Label(), tot)
	}
	add("Total", agg.Overall)
	return t
}

// RecordTable lays out one school's history, oldest first.
func RecordTable(records []models.AttendanceRecord) Table {
	t := Table{
		Columns: []string{"Fecha", "Inscriptos", "Presentes", "Asistencia", "Raciones", "Observaciones"},
		Rows:    make([]map[string]string, 0, len(records)),
	}
	for _, r := range records {
		t.Rows = append(t.Rows, map[string]string{
			"Fecha":         util.FormatDMY(r.Date),
			"Inscriptos":    r.Enrolled.String(),
			"Presentes":     r.Present.String(),
			"Asistencia":    FormatRate(pipeline.RecordRate(r)),
			"Raciones":      r.Rations.String(),
			"Observaciones": r.Note,
		})
	}
	return t
}

// AlertText renders one alert, e.g.
// "Baja asistencia en Escuela X (Club de Chicos) 05/03/2025: 35.0%".
func AlertText(a models.Alert) string {
	return fmt.Sprintf("%s en %s (%s) %s: %s",
		a.Kind.Description(), a.School, a.Program.Label(), util.FormatDMY(a.Date), alertValue(a))
}

// AlertLines renders a report. No alerts never renders as an empty list:
// it yields the all-clear or no-data message instead.
func AlertLines(report pipeline.AlertReport) []string {
	switch report.Status {
	case pipeline.AlertsNoData:
		return []string{NoDataMessage}
	case pipeline.AlertsAllClear:
		return []string{AllClearMessage}
	}
	lines := make([]string, 0, len(report.Alerts))
	for _, a := range report.Alerts {
		lines = append(lines, AlertText(a))
	}
	return lines
}

// FormatRate formats a percentage with one decimal.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}

func alertValue(a models.Alert) string {
	if a.Kind == models.LowAttendance {
		return FormatRate(a.Value)
	}
	return strconv.FormatFloat(a.Value, 'f', 0, 64)
}

func countValue(c models.Count) *float64 {
	if !c.Valid {
		return nil
	}
	v := float64(c.N)
	return &v
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}
