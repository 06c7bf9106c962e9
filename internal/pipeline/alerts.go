package pipeline

import "raciones-dashboard/internal/models"

type Thresholds struct {
	MinAttendanceRate float64
	MinEnrolled       int
}

// DefaultThresholds flags attendance below 40% and enrollment below 30.
var DefaultThresholds = Thresholds{MinAttendanceRate: 40, MinEnrolled: 30}

type AlertStatus int

const (
	AlertsNoData AlertStatus = iota
	AlertsAllClear
	AlertsRaised
)

func (s AlertStatus) MarshalText() ([]byte, error) {
	switch s {
	case AlertsAllClear:
		return []byte("all_clear"), nil
	case AlertsRaised:
		return []byte("raised"), nil
	default:
		return []byte("no_data"), nil
	}
}

type AlertReport struct {
	Status AlertStatus    `json:"status"`
	Alerts []models.Alert `json:"alerts"`
}

// ClassifyAlerts checks every row against both thresholds. Low-attendance
// alerts come first, then low-enrollment alerts, each in row order. A row
// without a present count cannot have a low rate and is only checked for
// enrollment.
func ClassifyAlerts(rows []models.SummaryRow, th Thresholds) AlertReport {
	report := AlertReport{Alerts: make([]models.Alert, 0)}
	if len(rows) == 0 {
		report.Status = AlertsNoData
		return report
	}

	for _, row := range rows {
		if row.Present.Valid && row.AttendanceRate < th.MinAttendanceRate {
			report.Alerts = append(report.Alerts, models.Alert{
				Kind:    models.LowAttendance,
				School:  row.School,
				Program: row.Program,
				Date:    row.Date,
				Value:   row.AttendanceRate,
			})
		}
	}
	for _, row := range rows {
		if row.Enrolled < th.MinEnrolled {
			report.Alerts = append(report.Alerts, models.Alert{
				Kind:    models.LowEnrollment,
				School:  row.School,
				Program: row.Program,
				Date:    row.Date,
				Value:   float64(row.Enrolled),
			})
		}
	}

	if len(report.Alerts) == 0 {
		report.Status = AlertsAllClear
	} else {
		report.Status = AlertsRaised
	}
	return report
}
