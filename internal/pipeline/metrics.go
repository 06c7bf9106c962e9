package pipeline

import "raciones-dashboard/internal/models"

// AttendanceRate is present/enrolled as a percentage, or 0 when nobody is
// enrolled. Rates above 100 are returned as they are.
func AttendanceRate(enrolled, present int) float64 {
	if enrolled <= 0 {
		return 0
	}
	return float64(present) / float64(enrolled) * 100
}

// RecordRate is the rate of one record; missing counts give 0.
func RecordRate(r models.AttendanceRecord) float64 {
	if !r.Enrolled.Valid || !r.Present.Valid {
		return 0
	}
	return AttendanceRate(r.Enrolled.N, r.Present.N)
}

// Summarize turns a snapshot record into a SummaryRow tagged with program.
func Summarize(r models.AttendanceRecord, program models.ProgramType) models.SummaryRow {
	return models.SummaryRow{
		School:         r.School,
		Program:        program,
		Date:           r.Date,
		Enrolled:       r.Enrolled.N,
		Present:        r.Present,
		AttendanceRate: RecordRate(r),
	}
}

// Totals sums enrolled and present over rows and derives the rate from the
// sums. Missing present counts add nothing.
func Totals(program models.ProgramType, rows []models.SummaryRow) models.ProgramTotals {
	t := models.ProgramTotals{Program: program, Schools: len(rows)}
	for _, row := range rows {
		t.Enrolled += row.Enrolled
		if row.Present.Valid {
			t.Present += row.Present.N
		}
	}
	t.Rate = AttendanceRate(t.Enrolled, t.Present)
	return t
}
