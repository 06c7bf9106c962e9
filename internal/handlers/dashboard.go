package handlers

import (
	"net/http"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/pipeline"
	"raciones-dashboard/internal/present"
)

type DashboardHandler struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
}

func NewDashboardHandler(cfg *config.Config, p *pipeline.Pipeline) *DashboardHandler {
	return &DashboardHandler{cfg: cfg, pipeline: p}
}

type programLink struct {
	Slug  string
	Label string
}

type groupView struct {
	Label   string
	Slug    string
	Status  string
	Error   string
	Rows    int
	Dropped int
}

var groupStatusText = map[pipeline.GroupStatus]string{
	pipeline.GroupOK:          "Datos actualizados",
	pipeline.GroupEmpty:       "Sin datos válidos",
	pipeline.GroupUnavailable: "Fuente no disponible",
}

func (h *DashboardHandler) programLinks() []programLink {
	var links []programLink
	for _, g := range h.pipeline.Groups() {
		links = append(links, programLink{Slug: g.Program.Slug(), Label: g.Program.Label()})
	}
	return links
}

// Overview renders the cross-program summary: totals, latest snapshot per
// school, alerts and the state of each source group.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dash := h.pipeline.Refresh(r.Context())

	groups := make([]groupView, 0, len(dash.Groups))
	for _, g := range dash.Groups {
		groups = append(groups, groupView{
			Label:   g.Program.Label(),
			Slug:    g.Program.Slug(),
			Status:  groupStatusText[g.Status],
			Error:   g.Error,
			Rows:    g.Rows,
			Dropped: g.Dropped,
		})
	}

	alertStatus, _ := dash.Alerts.Status.MarshalText()
	th := h.pipeline.Thresholds()
	renderTemplate(w, r, "dashboard.html", map[string]interface{}{
		"Title":         "Seguimiento de Raciones",
		"Programs":      h.programLinks(),
		"RefreshID":     dash.RefreshID,
		"GeneratedAt":   dash.GeneratedAt.Format("02/01/2006 15:04"),
		"Empty":         dash.Aggregate.Empty(),
		"NoDataMessage": present.NoDataMessage,
		"Groups":        groups,
		"Totals":        present.TotalsTable(dash.Aggregate),
		"Summary":       present.SummaryTable(dash.Aggregate.Rows),
		"AlertStatus":   string(alertStatus),
		"AlertLines":    present.AlertLines(dash.Alerts),
		"MinRate":       th.MinAttendanceRate,
		"MinEnrolled":   th.MinEnrolled,
	})
}
