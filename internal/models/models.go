package models

import (
	"strconv"
	"time"
)

// RawRow is one spreadsheet row keyed by column header. Values are whatever
// the source produced: string, float64, int, nil.
type RawRow map[string]any

// Count is a non-negative integer that may be missing.
type Count struct {
	N     int
	Valid bool
}

// CountOf returns a valid Count.
func CountOf(n int) Count {
	return Count{N: n, Valid: true}
}

// Positive reports whether the count is present and greater than zero.
func (c Count) Positive() bool {
	return c.Valid && c.N > 0
}

func (c Count) String() string {
	if !c.Valid {
		return "-"
	}
	return strconv.Itoa(c.N)
}

func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.N)), nil
}

// AttendanceRecord is a normalized spreadsheet row.
type AttendanceRecord struct {
	School   string      `json:"school"`
	Date     time.Time   `json:"date"`
	Enrolled Count       `json:"enrolled"`
	Present  Count       `json:"present"`
	Rations  Count       `json:"rations"`
	Note     string      `json:"note,omitempty"`
	Program  ProgramType `json:"program"`
}

// SummaryRow is one school's latest snapshot with its attendance rate.
type SummaryRow struct {
	School         string      `json:"school"`
	Program        ProgramType `json:"program"`
	Date           time.Time   `json:"date"`
	Enrolled       int         `json:"enrolled"`
	Present        Count       `json:"present"`
	AttendanceRate float64     `json:"attendance_rate"`
}

// ProgramTotals sums a program's snapshot. Rate is computed from the sums.
type ProgramTotals struct {
	Program  ProgramType `json:"program"`
	Schools  int         `json:"schools"`
	Enrolled int         `json:"enrolled"`
	Present  int         `json:"present"`
	Rate     float64     `json:"attendance_rate"`
}

type AlertKind int

const (
	LowAttendance AlertKind = iota + 1
	LowEnrollment
)

// Description is the user-facing prefix of a rendered alert.
func (k AlertKind) Description() string {
	switch k {
	case LowAttendance:
		return "Baja asistencia"
	case LowEnrollment:
		return "Baja inscripción"
	default:
		return "Alerta"
	}
}

func (k AlertKind) MarshalText() ([]byte, error) {
	switch k {
	case LowAttendance:
		return []byte("low_attendance"), nil
	case LowEnrollment:
		return []byte("low_enrollment"), nil
	default:
		return []byte("unknown"), nil
	}
}

// Alert flags one summary row that fell below a threshold. Value is the
// attendance rate for LowAttendance and the enrolled count for LowEnrollment.
type Alert struct {
	Kind    AlertKind   `json:"kind"`
	School  string      `json:"school"`
	Program ProgramType `json:"program"`
	Date    time.Time   `json:"date"`
	Value   float64     `json:"value"`
}
