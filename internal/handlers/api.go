package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"raciones-dashboard/internal/models"
	"raciones-dashboard/internal/pipeline"
	"raciones-dashboard/internal/present"
)

// JSON response helpers
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: Failed to encode JSON response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// GET /api/summary
func (h *DashboardHandler) APISummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	dash := h.pipeline.Refresh(r.Context())
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"refresh_id":   dash.RefreshID,
		"generated_at": dash.GeneratedAt,
		"empty":        dash.Aggregate.Empty(),
		"groups":       dash.Groups,
		"rows":         dash.Aggregate.Rows,
		"totals":       dash.Aggregate.Totals,
		"overall":      dash.Aggregate.Overall,
		"table":        present.SummaryTable(dash.Aggregate.Rows),
	})
}

// GET /api/alerts
func (h *DashboardHandler) APIAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	dash := h.pipeline.Refresh(r.Context())
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"refresh_id": dash.RefreshID,
		"status":     dash.Alerts.Status,
		"alerts":     dash.Alerts.Alerts,
		"messages":   present.AlertLines(dash.Alerts),
	})
}

// GET /api/trend?type=<slug>&school=<name>
func (h *DashboardHandler) APITrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	program, ok := models.ParseProgram(r.URL.Query().Get("type"))
	if !ok {
		jsonError(w, http.StatusBadRequest, "Unknown program type")
		return
	}

	view := h.pipeline.Trend(r.Context(), program, r.URL.Query().Get("school"))
	page := buildSchoolPage(view)
	status := http.StatusOK
	if view.Trend.Status == pipeline.TrendWrongProgram {
		status = http.StatusNotFound
	}
	jsonResponse(w, status, map[string]interface{}{
		"view":             view,
		"message":          trendMessage(view),
		"attendance_chart": page.Attendance,
		"rations_chart":    page.Rations,
		"table":            page.Table,
	})
}

// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
