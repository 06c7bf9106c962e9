package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var digitRun = regexp.MustCompile(`\d+`)

// FoldAccents strips combining marks, so "Jóvenes" becomes "Jovenes".
func FoldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// NormalizeHeader lowercases a column header and removes accents, spaces,
// underscores, hyphens and dots so that "Inscriptos " and "inscriptos" match.
func NormalizeHeader(value string) string {
	value = FoldAccents(strings.ToLower(strings.TrimSpace(value)))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.', '\t':
			return -1
		}
		return r
	}, value)
}

// FirstDigits returns the first contiguous run of ASCII digits in value.
func FirstDigits(value string) (string, bool) {
	match := digitRun.FindString(value)
	return match, match != ""
}
