package models

import "strings"

// ProgramType is the community program a group of rows belongs to. It is
// assigned by the sheet the rows were read from, never by the rows.
type ProgramType int

const (
	ProgramUnknown ProgramType = iota
	DaycareCenter
	ChildrensClub
	YouthClub
	CAI
)

// AllPrograms lists every known program in display order.
var AllPrograms = []ProgramType{DaycareCenter, ChildrensClub, YouthClub, CAI}

var programInfo = map[ProgramType]struct {
	slug  string
	label string
}{
	DaycareCenter: {slug: "ci", label: "Centro Infantil"},
	ChildrensClub: {slug: "cch", label: "Club de Chicos"},
	YouthClub:     {slug: "cj", label: "Club de Jóvenes"},
	CAI:           {slug: "cai", label: "CAI"},
}

// Slug is the short identifier used in URLs and config.
func (p ProgramType) Slug() string {
	if info, ok := programInfo[p]; ok {
		return info.slug
	}
	return ""
}

// Label is the user-facing name.
func (p ProgramType) Label() string {
	if info, ok := programInfo[p]; ok {
		return info.label
	}
	return "Desconocido"
}

func (p ProgramType) String() string {
	return p.Label()
}

// Valid reports whether p is one of the known programs.
func (p ProgramType) Valid() bool {
	_, ok := programInfo[p]
	return ok
}

func (p ProgramType) MarshalText() ([]byte, error) {
	return []byte(p.Slug()), nil
}

// ParseProgram resolves a slug (case-insensitive). Unknown slugs return
// ProgramUnknown and false.
func ParseProgram(slug string) (ProgramType, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for p, info := range programInfo {
		if info.slug == slug {
			return p, true
		}
	}
	return ProgramUnknown, false
}
