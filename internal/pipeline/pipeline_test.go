package pipeline

import (
	"math"
	"reflect"
	"testing"
	"time"

	"raciones-dashboard/internal/models"
)

func rec(school string, d time.Time, enrolled, present models.Count) models.AttendanceRecord {
	return models.AttendanceRecord{School: school, Date: d, Enrolled: enrolled, Present: present, Program: models.ChildrensClub}
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		enrolled, present int
		want              float64
	}{
		{enrolled: 40, present: 15, want: 37.5},
		{enrolled: 0, present: 15, want: 0},
		{enrolled: 0, present: 0, want: 0},
		{enrolled: 10, present: 12, want: 120},
		{enrolled: 50, present: 45, want: 90},
	}
	for _, tt := range tests {
		got := AttendanceRate(tt.enrolled, tt.present)
		if got != tt.want || math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
			t.Errorf("AttendanceRate(%d, %d) = %v, want %v", tt.enrolled, tt.present, got, tt.want)
		}
	}
}

func TestLatestSnapshot(t *testing.T) {
	d1, d2, d3 := date(2025, 3, 3), date(2025, 3, 4), date(2025, 3, 5)
	records := []models.AttendanceRecord{
		rec("A", d1, models.CountOf(30), models.CountOf(20)),
		rec("B", d2, models.CountOf(35), models.CountOf(25)),
		rec("A", d2, models.CountOf(30), models.CountOf(22)),
		// d3 has no valid enrolled count, so d2 is the snapshot date.
		rec("C", d3, models.Count{}, models.CountOf(10)),
	}
	original := append([]models.AttendanceRecord(nil), records...)

	snap := LatestSnapshot(records)
	if len(snap) != 2 || snap[0].School != "B" || snap[1].School != "A" {
		t.Fatalf("LatestSnapshot() = %+v", snap)
	}
	for _, r := range snap {
		if !r.Date.Equal(d2) {
			t.Errorf("snapshot row dated %v, want %v", r.Date, d2)
		}
	}
	if !reflect.DeepEqual(records, original) {
		t.Errorf("LatestSnapshot() modified its input")
	}

	again := LatestSnapshot(snap)
	if !reflect.DeepEqual(again, snap) {
		t.Errorf("LatestSnapshot() is not idempotent: %+v vs %+v", again, snap)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	if got := LatestSnapshot(nil); len(got) != 0 {
		t.Errorf("LatestSnapshot(nil) = %+v", got)
	}
	noEnrolled := []models.AttendanceRecord{rec("A", date(2025, 3, 5), models.Count{}, models.CountOf(3))}
	if got := LatestSnapshot(noEnrolled); len(got) != 0 {
		t.Errorf("LatestSnapshot(no enrolled) = %+v", got)
	}
}

func TestAggregateSnapshots(t *testing.T) {
	d := date(2025, 3, 5)
	snaps := []ProgramSnapshot{
		{Program: models.DaycareCenter, Records: []models.AttendanceRecord{
			rec("A", d, models.CountOf(10), models.CountOf(9)),
			rec("B", d, models.CountOf(90), models.CountOf(10)),
		}},
		{Program: models.ChildrensClub, Records: nil},
		{Program: models.YouthClub, Records: []models.AttendanceRecord{
			rec("C", d, models.CountOf(20), models.Count{}),
		}},
	}

	agg := AggregateSnapshots(snaps)
	if len(agg.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(agg.Rows))
	}
	if agg.Rows[0].Program != models.DaycareCenter || agg.Rows[2].Program != models.YouthClub {
		t.Errorf("rows not tagged with their snapshot program: %+v", agg.Rows)
	}
	if len(agg.Totals) != 3 {
		t.Fatalf("len(Totals) = %d, want 3", len(agg.Totals))
	}

	ci := agg.Totals[0]
	// Sum then divide: 19/100, not the average of 90% and 11.1%.
	if ci.Enrolled != 100 || ci.Present != 19 || ci.Rate != 19 || ci.Schools != 2 {
		t.Errorf("daycare totals = %+v", ci)
	}
	if agg.Totals[1].Schools != 0 || agg.Totals[1].Rate != 0 {
		t.Errorf("empty program totals = %+v", agg.Totals[1])
	}
	if agg.Totals[2].Present != 0 || agg.Totals[2].Enrolled != 20 {
		t.Errorf("missing present should add nothing: %+v", agg.Totals[2])
	}
	if agg.Overall.Enrolled != 120 || agg.Overall.Present != 19 {
		t.Errorf("overall = %+v", agg.Overall)
	}
	if len(agg.RowsFor(models.YouthClub)) != 1 {
		t.Errorf("RowsFor(YouthClub) = %+v", agg.RowsFor(models.YouthClub))
	}
	if agg.Empty() {
		t.Errorf("Empty() = true, want false")
	}

	if !AggregateSnapshots([]ProgramSnapshot{{Program: models.DaycareCenter}}).Empty() {
		t.Errorf("aggregate of empty snapshots should be empty")
	}
}

func TestClassifyAlerts(t *testing.T) {
	d := date(2025, 3, 5)
	row := func(school string, enrolled int, present models.Count) models.SummaryRow {
		r := rec(school, d, models.CountOf(enrolled), present)
		return Summarize(r, models.ChildrensClub)
	}

	t.Run("low rate and low enrollment", func(t *testing.T) {
		got := ClassifyAlerts([]models.SummaryRow{row("A", 20, models.CountOf(5))}, DefaultThresholds)
		if got.Status != AlertsRaised || len(got.Alerts) != 2 {
			t.Fatalf("ClassifyAlerts() = %+v", got)
		}
		if got.Alerts[0].Kind != models.LowAttendance || got.Alerts[0].Value != 25 {
			t.Errorf("first alert = %+v", got.Alerts[0])
		}
		if got.Alerts[1].Kind != models.LowEnrollment || got.Alerts[1].Value != 20 {
			t.Errorf("second alert = %+v", got.Alerts[1])
		}
	})

	t.Run("healthy row", func(t *testing.T) {
		got := ClassifyAlerts([]models.SummaryRow{row("A", 50, models.CountOf(45))}, DefaultThresholds)
		if got.Status != AlertsAllClear || len(got.Alerts) != 0 {
			t.Errorf("ClassifyAlerts() = %+v", got)
		}
	})

	t.Run("ordering", func(t *testing.T) {
		rows := []models.SummaryRow{
			row("A", 20, models.CountOf(18)), // enrollment only
			row("B", 50, models.CountOf(10)), // attendance only
			row("C", 10, models.CountOf(1)),  // both
		}
		got := ClassifyAlerts(rows, DefaultThresholds)
		want := []struct {
			kind   models.AlertKind
			school string
		}{
			{models.LowAttendance, "B"},
			{models.LowAttendance, "C"},
			{models.LowEnrollment, "A"},
			{models.LowEnrollment, "C"},
		}
		if len(got.Alerts) != len(want) {
			t.Fatalf("len(Alerts) = %d, want %d", len(got.Alerts), len(want))
		}
		for i, w := range want {
			if got.Alerts[i].Kind != w.kind || got.Alerts[i].School != w.school {
				t.Errorf("alert %d = %v %s, want %v %s", i, got.Alerts[i].Kind, got.Alerts[i].School, w.kind, w.school)
			}
		}
	})

	t.Run("missing present skips rate check", func(t *testing.T) {
		got := ClassifyAlerts([]models.SummaryRow{row("A", 50, models.Count{})}, DefaultThresholds)
		if got.Status != AlertsAllClear {
			t.Errorf("ClassifyAlerts() = %+v", got)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		got := ClassifyAlerts(nil, DefaultThresholds)
		if got.Status != AlertsNoData || got.Alerts == nil {
			t.Errorf("ClassifyAlerts(nil) = %+v", got)
		}
	})
}

func TestEndToEndSingleGroup(t *testing.T) {
	snaps := []ProgramSnapshot{
		{Program: models.DaycareCenter, Records: LatestSnapshot([]models.AttendanceRecord{
			rec("Esc1", date(2025, 3, 5), models.CountOf(40), models.CountOf(15)),
		})},
		{Program: models.ChildrensClub},
		{Program: models.YouthClub},
	}
	agg := AggregateSnapshots(snaps)
	if len(agg.Rows) != 1 || agg.Rows[0].AttendanceRate != 37.5 {
		t.Fatalf("Rows = %+v", agg.Rows)
	}
	alerts := ClassifyAlerts(agg.Rows, DefaultThresholds)
	if len(alerts.Alerts) != 1 || alerts.Alerts[0].Kind != models.LowAttendance {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestBuildTrend(t *testing.T) {
	records := []models.AttendanceRecord{
		rec("B", date(2025, 3, 5), models.CountOf(30), models.CountOf(20)),
		rec("A", date(2025, 3, 5), models.CountOf(30), models.CountOf(20)),
		rec("A", date(2025, 3, 3), models.CountOf(30), models.CountOf(25)),
		rec("A", date(2025, 3, 4), models.Count{}, models.CountOf(25)),
		rec("C", date(2025, 3, 4), models.CountOf(0), models.CountOf(0)),
	}

	got := BuildTrend(records, models.ChildrensClub)
	if got.Status != TrendOK || len(got.Series) != 2 {
		t.Fatalf("BuildTrend() = %+v", got)
	}
	if got.Series[0].School != "A" || got.Series[1].School != "B" {
		t.Errorf("series order = %s, %s", got.Series[0].School, got.Series[1].School)
	}
	a := got.Series[0].Records
	if len(a) != 2 || !a[0].Date.Before(a[1].Date) {
		t.Errorf("series A = %+v", a)
	}
	for _, s := range got.Series {
		for _, r := range s.Records {
			if !r.Enrolled.Positive() {
				t.Errorf("trend kept invalid enrolled: %+v", r)
			}
		}
	}

	if one := got.ForSchool("B"); one.Status != TrendOK || len(one.Series) != 1 {
		t.Errorf("ForSchool(B) = %+v", one)
	}
	if none := got.ForSchool("Z"); none.Status != TrendNoData {
		t.Errorf("ForSchool(Z) = %+v", none)
	}
}

func TestBuildTrendEmptyStates(t *testing.T) {
	invalid := []models.AttendanceRecord{rec("A", date(2025, 3, 5), models.Count{}, models.CountOf(1))}

	if got := BuildTrend(invalid, models.ChildrensClub); got.Status != TrendNoData {
		t.Errorf("no valid rows: status = %v, want TrendNoData", got.Status)
	}
	if got := BuildTrend(nil, models.ChildrensClub); got.Status != TrendNoData {
		t.Errorf("no rows: status = %v, want TrendNoData", got.Status)
	}
	if got := BuildTrend(invalid, models.YouthClub); got.Status != TrendWrongProgram {
		t.Errorf("other program: status = %v, want TrendWrongProgram", got.Status)
	}
	if got := BuildTrend(invalid, models.ProgramUnknown); got.Status != TrendWrongProgram {
		t.Errorf("unknown program: status = %v, want TrendWrongProgram", got.Status)
	}
}
