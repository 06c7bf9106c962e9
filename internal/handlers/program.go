package handlers

import (
	"fmt"
	"net/http"

	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/pipeline"
	"raciones-dashboard/internal/present"
)

// schoolPage is the chart and table input of one program/school selection.
type schoolPage struct {
	Attendance present.Chart
	Rations    present.Chart
	Table      present.Table
}

func buildSchoolPage(view pipeline.TrendView) schoolPage {
	var records []models.AttendanceRecord
	if view.Trend.Status == pipeline.TrendOK && len(view.Trend.Series) > 0 {
		records = view.Trend.Series[0].Records
	}
	return schoolPage{
		Attendance: present.AttendanceChart(fmt.Sprintf("Evolución de Inscriptos vs. Presentes - %s", view.School), records),
		Rations:    present.RationsChart(fmt.Sprintf("Raciones entregadas - %s", view.School), records),
		Table:      present.RecordTable(records),
	}
}

// trendMessage explains an empty trend to the user.
func trendMessage(view pipeline.TrendView) string {
	switch {
	case view.Status == pipeline.GroupUnavailable:
		return "Fuente no disponible: " + view.Error
	case view.Trend.Status == pipeline.TrendWrongProgram:
		return "Programa no disponible"
	case view.Trend.Status == pipeline.TrendNoData:
		return present.NoDataMessage
	}
	return ""
}

// Program renders one program's history for the school picked in the
// selector (the first school when none is given).
func (h *DashboardHandler) Program(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	program, ok := models.ParseProgram(r.URL.Query().Get("type"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, ok := h.pipeline.Group(program); !ok {
		http.NotFound(w, r)
		return
	}

	view := h.pipeline.Trend(r.Context(), program, r.URL.Query().Get("school"))
	page := buildSchoolPage(view)

	renderTemplate(w, r, "program.html", map[string]interface{}{
		"Title":           "Seguimiento de " + program.Label(),
		"Programs":        h.programLinks(),
		"Program":         programLink{Slug: program.Slug(), Label: program.Label()},
		"Schools":         view.Schools,
		"School":          view.School,
		"HasData":         view.Trend.Status == pipeline.TrendOK,
		"Message":         trendMessage(view),
		"AttendanceChart": page.Attendance,
		"RationsChart":    page.Rations,
		"Table":           page.Table,
	})
}
