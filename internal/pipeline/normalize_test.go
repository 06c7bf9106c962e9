package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"raciones-dashboard/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDropsBadRows(t *testing.T) {
	rows := []models.RawRow{
		{"Escuela": "Esc 1", "Fecha": "05/03/2025", "Inscriptos": 40.0, "Presentes": "15", "Observaciones": ""},
		{"Escuela": "Esc 2", "Fecha": "no es fecha", "Inscriptos": 40.0, "Presentes": 15.0},
		{"Escuela": "Esc 3", "Fecha": "", "Inscriptos": 40.0},
		{"Escuela": "  ", "Fecha": "06/03/2025", "Inscriptos": 10.0},
		{"Escuela": "Esc 4", "Fecha": "6-mar", "Inscriptos": "aprox 25", "Presentes": "ninguno", "Observaciones": " paro docente "},
	}

	got := Normalize(rows, models.ChildrensClub, NormalizeOptions{Policy: models.PolicyMissing, DefaultYear: 2025})

	if got.Total != 5 || got.BadDate != 2 || got.MissingSchool != 1 || got.Dropped() != 3 {
		t.Fatalf("counts: total=%d bad_date=%d missing_school=%d", got.Total, got.BadDate, got.MissingSchool)
	}
	if len(got.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(got.Records))
	}

	first := got.Records[0]
	if first.School != "Esc 1" || !first.Date.Equal(date(2025, time.March, 5)) {
		t.Errorf("first record = %+v", first)
	}
	if first.Enrolled != models.CountOf(40) || first.Present != models.CountOf(15) {
		t.Errorf("first counts = %v/%v, want 40/15", first.Enrolled, first.Present)
	}
	if first.Program != models.ChildrensClub {
		t.Errorf("program = %v, want ChildrensClub", first.Program)
	}

	second := got.Records[1]
	if second.Enrolled != models.CountOf(25) {
		t.Errorf("enrolled from text = %v, want 25", second.Enrolled)
	}
	if second.Present.Valid {
		t.Errorf("present without digits should be missing, got %v", second.Present)
	}
	if second.Rations.Valid {
		t.Errorf("absent rations column should be missing, got %v", second.Rations)
	}
	if second.Note != "paro docente" {
		t.Errorf("note = %q, want %q", second.Note, "paro docente")
	}
}

func TestNormalizeNeverKeepsUnparseableDates(t *testing.T) {
	inputs := []any{"", "31/02/2025", "abc", nil, true, "2025/13/45", 3.0, "5 martes", "3 junto"}
	for _, in := range inputs {
		rows := []models.RawRow{{"Escuela": "X", "Fecha": in, "Inscriptos": 10.0}}
		got := Normalize(rows, models.YouthClub, NormalizeOptions{DefaultYear: 2025})
		if len(got.Records) != 0 {
			t.Errorf("date %v produced a record: %+v", in, got.Records)
		}
	}
}

func TestNormalizeZeroPolicy(t *testing.T) {
	rows := []models.RawRow{
		{"Escuela": "Esc 1", "Fecha": "05/03/2025", "Inscriptos": "", "Presentes": "s/d", "Raciones": nil},
	}
	got := Normalize(rows, models.DaycareCenter, NormalizeOptions{Policy: models.PolicyZero, DefaultYear: 2025})
	if len(got.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(got.Records))
	}
	r := got.Records[0]
	if r.Enrolled != models.CountOf(0) || r.Present != models.CountOf(0) || r.Rations != models.CountOf(0) {
		t.Errorf("zero policy counts = %v/%v/%v, want 0/0/0", r.Enrolled, r.Present, r.Rations)
	}
}

func TestNormalizeHeaderAliases(t *testing.T) {
	rows := []models.RawRow{
		{"escuela ": "Esc 1", "FECHA": "05/03/2025", "Inscritos": json.Number("33"), "Asistencia": 30, "Obs.": "ok", "RACIONES": 31.0},
	}
	got := Normalize(rows, models.CAI, NormalizeOptions{DefaultYear: 2025})
	if len(got.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(got.Records))
	}
	r := got.Records[0]
	if r.Enrolled != models.CountOf(33) || r.Present != models.CountOf(30) || r.Rations != models.CountOf(31) || r.Note != "ok" {
		t.Errorf("record = %+v", r)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  models.Count
	}{
		{name: "float", value: 12.0, want: models.CountOf(12)},
		{name: "fraction truncated", value: 12.9, want: models.CountOf(12)},
		{name: "negative float", value: -3.0, want: models.Count{}},
		{name: "int", value: 7, want: models.CountOf(7)},
		{name: "negative int", value: -7, want: models.Count{}},
		{name: "digits in text", value: "30 chicos", want: models.CountOf(30)},
		{name: "first run only", value: "12 de 40", want: models.CountOf(12)},
		{name: "no digits", value: "feriado", want: models.Count{}},
		{name: "empty", value: "", want: models.Count{}},
		{name: "nil", value: nil, want: models.Count{}},
		{name: "bool", value: true, want: models.Count{}},
		{name: "json number", value: json.Number("41"), want: models.CountOf(41)},
		{name: "huge", value: "99999999999999999999", want: models.Count{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCount(tt.value); got != tt.want {
				t.Errorf("parseCount(%v) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}
