package pipeline

import (
	"time"

	"raciones-dashboard/internal/models"
)

// LatestSnapshot returns the records dated on the most recent day that has
// at least one valid enrolled count. Only records with a valid enrolled
// count are returned, in input order. The input is not modified.
func LatestSnapshot(records []models.AttendanceRecord) []models.AttendanceRecord {
	var latest time.Time
	found := false
	for _, r := range records {
		if !r.Enrolled.Valid {
			continue
		}
		if !found || r.Date.After(latest) {
			latest = r.Date
			found = true
		}
	}
	if !found {
		return nil
	}

	snapshot := make([]models.AttendanceRecord, 0)
	for _, r := range records {
		if r.Enrolled.Valid && r.Date.Equal(latest) {
			snapshot = append(snapshot, r)
		}
	}
	return snapshot
}
