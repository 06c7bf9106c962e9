package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/util"
)

type NormalizeOptions struct {
	Policy models.CoercionPolicy
	// DefaultYear completes dates written without a year ("5-mar").
	DefaultYear int
}

// NormalizeResult holds the records that survived plus drop counts.
type NormalizeResult struct {
	Records       []models.AttendanceRecord
	Total         int
	BadDate       int
	MissingSchool int
}

// Dropped is the number of input rows that did not produce a record.
func (r NormalizeResult) Dropped() int {
	return r.BadDate + r.MissingSchool
}

type field int

const (
	fieldSchool field = iota
	fieldDate
	fieldEnrolled
	fieldPresent
	fieldRations
	fieldNote
)

// Header aliases in priority order, already normalized.
var fieldAliases = map[field][]string{
	fieldSchool:   {"escuela", "institucion", "centro", "sede", "nombre"},
	fieldDate:     {"fecha", "dia"},
	fieldEnrolled: {"inscriptos", "inscritos", "inscripcion", "matricula", "matriculados"},
	fieldPresent:  {"presentes", "asistencia", "asistentes"},
	fieldRations:  {"raciones"},
	fieldNote:     {"observaciones", "observacion", "obs", "notas", "nota", "comentarios"},
}

// Normalize converts raw rows of one program into typed records. Rows with
// an unparseable date or an empty school are dropped and counted.
func Normalize(rows []models.RawRow, program models.ProgramType, opts NormalizeOptions) NormalizeResult {
	result := NormalizeResult{
		Records: make([]models.AttendanceRecord, 0, len(rows)),
		Total:   len(rows),
	}

	for _, row := range rows {
		cells := resolveCells(row)

		date, err := util.ParseDayFirst(cells[fieldDate], opts.DefaultYear)
		if err != nil {
			result.BadDate++
			continue
		}

		school := cellString(cells[fieldSchool])
		if school == "" {
			result.MissingSchool++
			continue
		}

		result.Records = append(result.Records, models.AttendanceRecord{
			School:   school,
			Date:     date,
			Enrolled: coerceCount(cells[fieldEnrolled], opts.Policy),
			Present:  coerceCount(cells[fieldPresent], opts.Policy),
			Rations:  coerceCount(cells[fieldRations], opts.Policy),
			Note:     cellString(cells[fieldNote]),
			Program:  program,
		})
	}

	return result
}

// resolveCells maps a row onto known fields. Keys are visited in sorted
// order so that duplicate headers resolve the same way on every refresh.
func resolveCells(row models.RawRow) map[field]any {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byHeader := make(map[string]any, len(keys))
	for _, k := range keys {
		h := util.NormalizeHeader(k)
		if existing, ok := byHeader[h]; ok && cellString(existing) != "" {
			continue
		}
		byHeader[h] = row[k]
	}

	cells := make(map[field]any, len(fieldAliases))
	for f, aliases := range fieldAliases {
		for _, alias := range aliases {
			if v, ok := byHeader[alias]; ok {
				cells[f] = v
				break
			}
		}
	}
	return cells
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// coerceCount reads a count cell. Numbers are used as they are (truncated,
// negatives are invalid). Anything else yields its first run of digits.
func coerceCount(value any, policy models.CoercionPolicy) models.Count {
	c := parseCount(value)
	if !c.Valid && policy == models.PolicyZero {
		return models.CountOf(0)
	}
	return c
}

func parseCount(value any) models.Count {
	switch v := value.(type) {
	case nil, bool:
		return models.Count{}
	case float64:
		return countFromFloat(v)
	case float32:
		return countFromFloat(float64(v))
	case int:
		return countFromInt(int64(v))
	case int32:
		return countFromInt(int64(v))
	case int64:
		return countFromInt(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return countFromFloat(f)
		}
		return countFromString(v.String())
	case string:
		return countFromString(v)
	default:
		return countFromString(fmt.Sprint(v))
	}
}

func countFromFloat(v float64) models.Count {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt32 {
		return models.Count{}
	}
	return models.CountOf(int(math.Trunc(v)))
}

func countFromInt(v int64) models.Count {
	if v < 0 || v > math.MaxInt32 {
		return models.Count{}
	}
	return models.CountOf(int(v))
}

func countFromString(v string) models.Count {
	digits, ok := util.FirstDigits(v)
	if !ok {
		return models.Count{}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n > math.MaxInt32 {
		return models.Count{}
	}
	return models.CountOf(n)
}
