package pipeline

import (
	"fmt"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/models"
)

// GroupsFromSheets orders programs the way the dashboard lists them and
// drops programs with a negative (disabled) sheet index.
func GroupsFromSheets(sheets map[models.ProgramType]int) []Group {
	groups := make([]Group, 0, len(sheets))
	for _, p := range models.AllPrograms {
		idx, ok := sheets[p]
		if !ok || idx < 0 {
			continue
		}
		groups = append(groups, Group{Program: p, SheetIndex: idx})
	}
	return groups
}

// FromConfig builds the pipeline the server and the report share.
func FromConfig(fetcher Fetcher, cfg *config.Config) (*Pipeline, error) {
	policy, err := models.ParsePolicy(cfg.NumericPolicy)
	if err != nil {
		return nil, err
	}
	groups := GroupsFromSheets(cfg.ProgramSheets())
	if len(groups) == 0 {
		return nil, fmt.Errorf("no program has a sheet configured")
	}
	return New(fetcher, groups, Options{
		Normalize: NormalizeOptions{Policy: policy, DefaultYear: cfg.DefaultYear},
		Thresholds: Thresholds{
			MinAttendanceRate: cfg.MinAttendanceRate,
			MinEnrolled:       cfg.MinEnrolled,
		},
		FetchTimeout: cfg.SourceTimeout,
		Debugf:       cfg.Debugf,
	}), nil
}
