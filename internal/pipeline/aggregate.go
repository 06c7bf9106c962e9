package pipeline

import "raciones-dashboard/internal/models"

// ProgramSnapshot is the latest snapshot of one program.
type ProgramSnapshot struct {
	Program models.ProgramType
	Records []models.AttendanceRecord
}

// Aggregate is the cross-program summary of one refresh.
type Aggregate struct {
	Rows    []models.SummaryRow    `json:"rows"`
	Totals  []models.ProgramTotals `json:"totals"`
	Overall models.ProgramTotals   `json:"overall"`
}

// Empty reports that no program produced a snapshot row. Callers render a
// "no data" state for it.
func (a Aggregate) Empty() bool {
	return len(a.Rows) == 0
}

// RowsFor returns the summary rows of one program.
func (a Aggregate) RowsFor(program models.ProgramType) []models.SummaryRow {
	var rows []models.SummaryRow
	for _, row := range a.Rows {
		if row.Program == program {
			rows = append(rows, row)
		}
	}
	return rows
}

// AggregateSnapshots concatenates every program's snapshot into summary rows,
// in the order given, and computes per-program and overall totals.
func AggregateSnapshots(snapshots []ProgramSnapshot) Aggregate {
	agg := Aggregate{
		Rows:   make([]models.SummaryRow, 0),
		Totals: make([]models.ProgramTotals, 0, len(snapshots)),
	}

	for _, snap := range snapshots {
		rows := make([]models.SummaryRow, 0, len(snap.Records))
		for _, r := range snap.Records {
			rows = append(rows, Summarize(r, snap.Program))
		}
		agg.Rows = append(agg.Rows, rows...)
		agg.Totals = append(agg.Totals, Totals(snap.Program, rows))
	}

	agg.Overall = Totals(models.ProgramUnknown, agg.Rows)
	return agg
}
