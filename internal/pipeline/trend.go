package pipeline

import (
	"sort"

	"raciones-dashboard/internal/models"
)

type TrendStatus int

const (
	TrendOK TrendStatus = iota
	// TrendNoData: the program is right but no record has a positive
	// enrolled count.
	TrendNoData
	// TrendWrongProgram: the requested program is unknown, disabled, or
	// the records belong to another program.
	TrendWrongProgram
)

func (s TrendStatus) MarshalText() ([]byte, error) {
	switch s {
	case TrendOK:
		return []byte("ok"), nil
	case TrendNoData:
		return []byte("no_data"), nil
	default:
		return []byte("wrong_program"), nil
	}
}

// SchoolSeries is one school's history, oldest first.
type SchoolSeries struct {
	School  string                    `json:"school"`
	Records []models.AttendanceRecord `json:"records"`
}

type TrendResult struct {
	Program models.ProgramType `json:"program"`
	Status  TrendStatus        `json:"status"`
	Series  []SchoolSeries     `json:"series"`
}

// BuildTrend keeps the records of program with a positive enrolled count and
// groups them by school (alphabetical), each series sorted by date.
func BuildTrend(records []models.AttendanceRecord, program models.ProgramType) TrendResult {
	result := TrendResult{Program: program, Series: make([]SchoolSeries, 0)}
	if !program.Valid() {
		result.Status = TrendWrongProgram
		return result
	}

	matched := 0
	bySchool := map[string][]models.AttendanceRecord{}
	for _, r := range records {
		if r.Program != program {
			continue
		}
		matched++
		if !r.Enrolled.Positive() {
			continue
		}
		bySchool[r.School] = append(bySchool[r.School], r)
	}

	if len(bySchool) == 0 {
		if matched == 0 && len(records) > 0 {
			result.Status = TrendWrongProgram
		} else {
			result.Status = TrendNoData
		}
		return result
	}

	schools := make([]string, 0, len(bySchool))
	for school := range bySchool {
		schools = append(schools, school)
	}
	sort.Strings(schools)

	for _, school := range schools {
		series := bySchool[school]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
		result.Series = append(result.Series, SchoolSeries{School: school, Records: series})
	}
	result.Status = TrendOK
	return result
}

// ForSchool narrows a trend to one school. An unknown school yields
// TrendNoData; a non-OK trend is returned unchanged.
func (t TrendResult) ForSchool(school string) TrendResult {
	if t.Status != TrendOK || school == "" {
		return t
	}
	for _, s := range t.Series {
		if s.School == school {
			return TrendResult{Program: t.Program, Status: TrendOK, Series: []SchoolSeries{s}}
		}
	}
	return TrendResult{Program: t.Program, Status: TrendNoData, Series: make([]SchoolSeries, 0)}
}
