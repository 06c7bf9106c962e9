package pipeline

import (
	"context"
	"log"
	"time"

	"raciones-dashboard/internal/models"

	"github.com/google/uuid"
)

// Fetcher returns the raw rows of one spreadsheet sheet.
type Fetcher interface {
	Fetch(ctx context.Context, sheetIndex int) ([]models.RawRow, error)
}

// Group binds a program to the sheet its rows live in.
type Group struct {
	Program    models.ProgramType
	SheetIndex int
}

type Options struct {
	Normalize    NormalizeOptions
	Thresholds   Thresholds
	FetchTimeout time.Duration
	Debugf       func(format string, v ...interface{})
}

// Pipeline recomputes the dashboard from the source on every call. It keeps
// no data between calls.
type Pipeline struct {
	fetcher Fetcher
	groups  []Group
	opts    Options
}

func New(fetcher Fetcher, groups []Group, opts Options) *Pipeline {
	if opts.Debugf == nil {
		opts.Debugf = func(string, ...interface{}) {}
	}
	return &Pipeline{fetcher: fetcher, groups: groups, opts: opts}
}

// Groups returns the configured groups in display order.
func (p *Pipeline) Groups() []Group {
	return append([]Group(nil), p.groups...)
}

// Thresholds returns the alert thresholds in use.
func (p *Pipeline) Thresholds() Thresholds {
	return p.opts.Thresholds
}

// Group looks up the configured group of a program.
func (p *Pipeline) Group(program models.ProgramType) (Group, bool) {
	for _, g := range p.groups {
		if g.Program == program {
			return g, true
		}
	}
	return Group{}, false
}

type GroupStatus int

const (
	GroupOK GroupStatus = iota
	// GroupEmpty: the fetch worked but no snapshot row survived.
	GroupEmpty
	// GroupUnavailable: the fetch failed; the group is shown as empty.
	GroupUnavailable
)

func (s GroupStatus) MarshalText() ([]byte, error) {
	switch s {
	case GroupOK:
		return []byte("ok"), nil
	case GroupEmpty:
		return []byte("empty"), nil
	default:
		return []byte("unavailable"), nil
	}
}

type GroupResult struct {
	Program    models.ProgramType        `json:"program"`
	SheetIndex int                       `json:"sheet_index"`
	Status     GroupStatus               `json:"status"`
	Error      string                    `json:"error,omitempty"`
	Rows       int                       `json:"rows"`
	Dropped    int                       `json:"dropped"`
	Snapshot   []models.AttendanceRecord `json:"snapshot"`
}

// Dashboard is everything one refresh produces.
type Dashboard struct {
	RefreshID   string        `json:"refresh_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Groups      []GroupResult `json:"groups"`
	Aggregate   Aggregate     `json:"aggregate"`
	Alerts      AlertReport   `json:"alerts"`
}

// Refresh fetches every group and rebuilds the summary and alerts. A group
// whose fetch fails is reported as unavailable with no rows; the others are
// unaffected.
func (p *Pipeline) Refresh(ctx context.Context) Dashboard {
	refreshID := uuid.New().String()
	dash := Dashboard{
		RefreshID:   refreshID,
		GeneratedAt: time.Now(),
		Groups:      make([]GroupResult, 0, len(p.groups)),
	}

	snapshots := make([]ProgramSnapshot, 0, len(p.groups))
	for _, g := range p.groups {
		gr := GroupResult{Program: g.Program, SheetIndex: g.SheetIndex, Snapshot: make([]models.AttendanceRecord, 0)}

		norm, err := p.load(ctx, refreshID, g)
		if err != nil {
			gr.Status = GroupUnavailable
			gr.Error = err.Error()
		} else {
			gr.Rows = norm.Total
			gr.Dropped = norm.Dropped()
			if snap := LatestSnapshot(norm.Records); len(snap) > 0 {
				gr.Snapshot = snap
				gr.Status = GroupOK
			} else {
				gr.Status = GroupEmpty
			}
		}

		dash.Groups = append(dash.Groups, gr)
		snapshots = append(snapshots, ProgramSnapshot{Program: g.Program, Records: gr.Snapshot})
	}

	dash.Aggregate = AggregateSnapshots(snapshots)
	dash.Alerts = ClassifyAlerts(dash.Aggregate.Rows, p.opts.Thresholds)
	p.opts.Debugf("refresh=%s rows=%d alerts=%d", refreshID, len(dash.Aggregate.Rows), len(dash.Alerts.Alerts))
	return dash
}

// TrendView is the per-program page: the school list for the selector and
// the trend of the selected school.
type TrendView struct {
	Program models.ProgramType `json:"program"`
	Status  GroupStatus        `json:"source_status"`
	Error   string             `json:"error,omitempty"`
	Schools []string           `json:"schools"`
	School  string             `json:"school"`
	Trend   TrendResult        `json:"trend"`
}

// Trend fetches one program and builds its trend. When school is empty the
// first school in sheet order that has a series is selected, which is what
// the selector shows on load.
func (p *Pipeline) Trend(ctx context.Context, program models.ProgramType, school string) TrendView {
	view := TrendView{
		Program: program,
		Schools: make([]string, 0),
		Trend:   TrendResult{Program: program, Status: TrendWrongProgram, Series: make([]SchoolSeries, 0)},
	}

	g, ok := p.Group(program)
	if !ok {
		view.Status = GroupEmpty
		return view
	}

	refreshID := uuid.New().String()
	norm, err := p.load(ctx, refreshID, g)
	if err != nil {
		view.Status = GroupUnavailable
		view.Error = err.Error()
		view.Trend.Status = TrendNoData
		return view
	}

	view.Schools = schoolNames(norm.Records)
	trend := BuildTrend(norm.Records, program)
	if school == "" {
		school = firstWithSeries(view.Schools, trend)
	}
	view.School = school

	view.Trend = trend.ForSchool(school)
	if view.Trend.Status == TrendOK {
		view.Status = GroupOK
	} else {
		view.Status = GroupEmpty
	}
	return view
}

func (p *Pipeline) load(ctx context.Context, refreshID string, g Group) (NormalizeResult, error) {
	fetchCtx := ctx
	if p.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := p.fetcher.Fetch(fetchCtx, g.SheetIndex)
	if err != nil {
		log.Printf("WARNING: refresh=%s program=%s sheet=%d source unavailable: %v", refreshID, g.Program.Slug(), g.SheetIndex, err)
		return NormalizeResult{}, err
	}

	norm := Normalize(rows, g.Program, p.opts.Normalize)
	p.opts.Debugf("refresh=%s program=%s sheet=%d fetched=%d kept=%d bad_date=%d no_school=%d in %v",
		refreshID, g.Program.Slug(), g.SheetIndex, norm.Total, len(norm.Records), norm.BadDate, norm.MissingSchool, time.Since(start))
	return norm, nil
}

// schoolNames lists schools in the order they first appear in the sheet.
func schoolNames(records []models.AttendanceRecord) []string {
	seen := map[string]bool{}
	names := make([]string, 0)
	for _, r := range records {
		if !seen[r.School] {
			seen[r.School] = true
			names = append(names, r.School)
		}
	}
	return names
}

func firstWithSeries(schools []string, trend TrendResult) string {
	has := make(map[string]bool, len(trend.Series))
	for _, s := range trend.Series {
		has[s.School] = true
	}
	for _, name := range schools {
		if has[name] {
			return name
		}
	}
	if len(schools) > 0 {
		return schools[0]
	}
	return ""
}
