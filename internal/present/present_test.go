package present

import (
	"reflect"
	"testing"
	"time"

	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/pipeline"
)

var march5 = time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

func TestAlertText(t *testing.T) {
	tests := []struct {
		name  string
		alert models.Alert
		want  string
	}{
		{
			name:  "low attendance",
			alert: models.Alert{Kind: models.LowAttendance, School: "Escuela X", Program: models.ChildrensClub, Date: march5, Value: 35},
			want:  "Baja asistencia en Escuela X (Club de Chicos) 05/03/2025: 35.0%",
		},
		{
			name:  "low enrollment",
			alert: models.Alert{Kind: models.LowEnrollment, School: "Esc 2", Program: models.YouthClub, Date: march5, Value: 25},
			want:  "Baja inscripción en Esc 2 (Club de Jóvenes) 05/03/2025: 25",
		},
		{
			name:  "rate rounding",
			alert: models.Alert{Kind: models.LowAttendance, School: "E", Program: models.DaycareCenter, Date: march5, Value: 100.0 / 3},
			want:  "Baja asistencia en E (Centro Infantil) 05/03/2025: 33.3%",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlertText(tt.alert); got != tt.want {
				t.Errorf("AlertText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlertLines(t *testing.T) {
	if got := AlertLines(pipeline.AlertReport{Status: pipeline.AlertsNoData}); !reflect.DeepEqual(got, []string{NoDataMessage}) {
		t.Errorf("no data = %v", got)
	}
	if got := AlertLines(pipeline.AlertReport{Status: pipeline.AlertsAllClear}); !reflect.DeepEqual(got, []string{AllClearMessage}) {
		t.Errorf("all clear = %v", got)
	}
	report := pipeline.AlertReport{Status: pipeline.AlertsRaised, Alerts: []models.Alert{
		{Kind: models.LowEnrollment, School: "A", Program: models.CAI, Date: march5, Value: 12},
	}}
	if got := AlertLines(report); len(got) != 1 || got[0] != "Baja inscripción en A (CAI) 05/03/2025: 12" {
		t.Errorf("alerts = %v", got)
	}
}

func TestAttendanceChart(t *testing.T) {
	records := []models.AttendanceRecord{
		{School: "A", Date: march5, Enrolled: models.CountOf(30), Present: models.CountOf(0), Note: "Paro"},
		{School: "A", Date: march5.AddDate(0, 0, 1), Enrolled: models.CountOf(30), Present: models.CountOf(0)},
		{School: "A", Date: march5.AddDate(0, 0, 2), Enrolled: models.CountOf(30), Present: models.Count{}, Note: "sin planilla"},
		{School: "A", Date: march5.AddDate(0, 0, 3), Enrolled: models.CountOf(30), Present: models.CountOf(20), Note: "normal"},
	}
	c := AttendanceChart("A", records)

	if len(c.X) != 4 || c.X[0] != "2025-03-05" {
		t.Fatalf("X = %v", c.X)
	}
	if len(c.Series) != 2 || c.Series[0].Name != "Inscriptos" || c.Series[1].Name != "Presentes" {
		t.Fatalf("Series = %+v", c.Series)
	}
	if c.Series[1].Values[2] != nil {
		t.Errorf("missing present should be a gap")
	}
	if len(c.Annotations) != 1 || c.Annotations[0] != (Annotation{Date: "2025-03-05", Note: "Paro"}) {
		t.Errorf("Annotations = %+v", c.Annotations)
	}
	if c.Empty() {
		t.Errorf("Empty() = true")
	}
	if !AttendanceChart("x", nil).Empty() {
		t.Errorf("chart of no records should be empty")
	}
}

func TestRationsChart(t *testing.T) {
	records := []models.AttendanceRecord{
		{Date: march5, Rations: models.CountOf(28)},
		{Date: march5.AddDate(0, 0, 1)},
	}
	c := RationsChart("r", records)
	if len(c.Series) != 1 || c.Series[0].Kind != "bar" {
		t.Fatalf("Series = %+v", c.Series)
	}
	if *c.Series[0].Values[0] != 28 || c.Series[0].Values[1] != nil {
		t.Errorf("Values = %v", c.Series[0].Values)
	}
}

func TestTables(t *testing.T) {
	rows := []models.SummaryRow{
		{School: "A", Program: models.ChildrensClub, Date: march5, Enrolled: 40, Present: models.CountOf(15), AttendanceRate: 37.5},
	}
	st := SummaryTable(rows)
	if len(st.Rows) != 1 || st.Rows[0]["Asistencia"] != "37.5%" || st.Rows[0]["Fecha"] != "05/03/2025" {
		t.Errorf("SummaryTable() = %+v", st)
	}
	for _, col := range st.Columns {
		if _, ok := st.Rows[0][col]; !ok {
			t.Errorf("row missing column %q", col)
		}
	}

	agg := pipeline.AggregateSnapshots([]pipeline.ProgramSnapshot{
		{Program: models.ChildrensClub, Records: []models.AttendanceRecord{
			{School: "A", Date: march5, Enrolled: models.CountOf(40), Present: models.CountOf(15)},
		}},
	})
	tt := TotalsTable(agg)
	if len(tt.Rows) != 2 || tt.Rows[1]["Programa"] != "Total" || tt.Rows[1]["Asistencia"] != "37.5%" {
		t.Errorf("TotalsTable() = %+v", tt)
	}

	rt := RecordTable([]models.AttendanceRecord{{Date: march5, Enrolled: models.CountOf(10), Note: "x"}})
	if rt.Rows[0]["Presentes"] != "-" || rt.Rows[0]["Asistencia"] != "0.0%" {
		t.Errorf("RecordTable() = %+v", rt)
	}
}
