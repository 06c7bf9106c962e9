package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayoutDMY is the display format used in tables and alerts.
const DateLayoutDMY = "02/01/2006"

// Spreadsheet serial days are counted from 1899-12-30. Serials outside this
// window are treated as plain numbers rather than dates.
const (
	minSerialDay = 20000 // 1954-10-03
	maxSerialDay = 80000 // 2119-01-10
)

var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Numeric layouts, day first. Single-digit layouts also accept two digits.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2/1/06",
	"2-1-06",
}

var textualDate = regexp.MustCompile(`^(\d{1,2})[\s\-/.]*(?:de\s+)?([a-z]+)\.?(?:[\s\-/.,]*(?:de\s+|del\s+)?(\d{2,4}))?$`)

// Month words must match exactly; "martes" is not March.
var monthNames = map[string]time.Month{
	"ene": time.January, "enero": time.January, "jan": time.January, "january": time.January,
	"feb": time.February, "febrero": time.February, "february": time.February,
	"mar": time.March, "marzo": time.March, "march": time.March,
	"abr": time.April, "abril": time.April, "apr": time.April, "april": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "junio": time.June, "june": time.June,
	"jul": time.July, "julio": time.July, "july": time.July,
	"ago": time.August, "agosto": time.August, "aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "set": time.September,
	"septiembre": time.September, "setiembre": time.September, "september": time.September,
	"oct": time.October, "octubre": time.October, "october": time.October,
	"nov": time.November, "noviembre": time.November, "november": time.November,
	"dic": time.December, "diciembre": time.December, "dec": time.December, "december": time.December,
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDMY formats a date as DD/MM/YYYY, or "" for the zero time.
func FormatDMY(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayoutDMY)
}

// ParseDayFirst parses a spreadsheet date cell. Text is read day first
// (05/03/2025 is 5 March). Spanish month names are accepted, and when the
// year is omitted defaultYear is used. Numbers are spreadsheet serial days.
// The result is always a UTC calendar date.
func ParseDayFirst(value any, defaultYear int) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("empty date")
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("empty date")
		}
		return DateOnly(v), nil
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		return parseDateString(v, defaultYear)
	default:
		return parseDateString(fmt.Sprint(v), defaultYear)
	}
}

func parseDateString(value string, defaultYear int) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dayFirstLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return DateOnly(parsed), nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return fromSerial(serial)
	}

	if parsed, ok := parseTextual(value, defaultYear); ok {
		return parsed, nil
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

func parseTextual(value string, defaultYear int) (time.Time, bool) {
	m := textualDate.FindStringSubmatch(FoldAccents(strings.ToLower(value)))
	if m == nil {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := monthNames[m[2]]
	if !ok {
		return time.Time{}, false
	}

	year := defaultYear
	if m[3] != "" {
		year, err = strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, false
		}
		switch len(m[3]) {
		case 2:
			year += 2000
		case 3:
			return time.Time{}, false
		}
	}

	return buildDate(year, month, day)
}

// buildDate rejects days that time.Date would roll into the next month.
func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func fromSerial(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, fmt.Errorf("invalid serial date")
	}
	days := int(math.Floor(serial))
	if days < minSerialDay || days > maxSerialDay {
		return time.Time{}, fmt.Errorf("serial date out of range: %v", serial)
	}
	return sheetsEpoch.AddDate(0, 0, days), nil
}
