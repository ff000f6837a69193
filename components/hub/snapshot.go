package hub

import (
	"context"
	"fmt"
	"time"
)

// FeedbackView switches the feedback panel between hub and per-RM breakdowns.
type FeedbackView string

const (
	FeedbackHub FeedbackView = "HUB"
	FeedbackRM  FeedbackView = "RM"
)

// State is the complete set of viewer selections a snapshot is derived from.
type State struct {
	Date        string       `json:"date"`
	Scope       Scope        `json:"scope"`
	FocusStatus VisitStatus  `json:"focus_status"`
	Range       RangeKey     `json:"range"`
	CustomStart string       `json:"custom_start,omitempty"`
	View        FeedbackView `json:"feedback_view"`
	FocusRating RatingFocus  `json:"focus_rating"`
	Stage       HTDStage     `json:"stage"`
	Clock       string       `json:"clock"`
	RMNow       time.Time    `json:"rm_now"`
	Order       SortOrder    `json:"order"`
}

// DefaultState returns the initial selections for a dashboard opened on date.
func DefaultState(date string) State {
	return State{
		Date:        date,
		Scope:       ScopeAll,
		FocusStatus: FocusAll,
		Range:       Range1D,
		CustomStart: date,
		View:        FeedbackHub,
		FocusRating: FocusAllRatings,
		Stage:       StageUpcoming,
		Clock:       DemoClock,
		RMNow:       DemoRMNow,
		Order:       OrderConcatenated,
	}
}

// Today returns the current calendar date as YYYY-MM-DD.
func Today() string {
	return FormatDate(time.Now())
}

// Sources bundles the repositories and the override overlay behind a snapshot.
type Sources struct {
	Visits  VisitRepository
	HTD     HTDRepository
	RMs     RMRepository
	Overlay Overlay
}

// DemoSources wires the demo repositories with an empty overlay.
func DemoSources() Sources {
	return Sources{
		Visits: DemoVisitRepository{},
		HTD:    DemoHTDRepository{},
		RMs:    DemoRMRepository{},
	}
}

// VisitsView is the visit panel.
type VisitsView struct {
	Counts  VisitCounts `json:"counts"`
	Visible []Visit     `json:"visible"`
}

// FeedbackPanel is the feedback panel.
type FeedbackPanel struct {
	RangeStart string          `json:"range_start"`
	RangeEnd   string          `json:"range_end"`
	Completed  []Visit         `json:"completed"`
	Histogram  RatingHistogram `json:"histogram"`
	Visible    []Visit         `json:"visible"`
	ByRM       []RMFeedbackRow `json:"by_rm"`
}

// TowerView is the HTD control tower panel.
type TowerView struct {
	Rows      []HTDRow    `json:"rows"`
	Filtered  []HTDRow    `json:"filtered"`
	Attention []HTDRow    `json:"attention"`
	Counts    StageCounts `json:"counts"`
}

// Snapshot is every derived view for one State.
type Snapshot struct {
	State        State            `json:"state"`
	Visits       VisitsView       `json:"visits"`
	Feedback     FeedbackPanel    `json:"feedback"`
	Tower        TowerView        `json:"tower"`
	Productivity []RMProductivity `json:"productivity"`
	Hub          HubTotals        `json:"hub"`
	Alerts       []Alert          `json:"alerts"`
}

// BuildSnapshot loads the datasets and derives every view in one pass.
func BuildSnapshot(ctx context.Context, state State, src Sources) (Snapshot, error) {
	state = state.withDefaults()

	visits, err := src.Visits.FetchVisits(ctx, state.Date)
	if err != nil {
		return Snapshot{}, fmt.Errorf("hub: load visits: %w", err)
	}
	rows, err := src.HTD.FetchHTDRows(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("hub: load htd rows: %w", err)
	}
	rms, err := src.RMs.FetchRMs(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("hub: load rms: %w", err)
	}
	return Derive(state, visits, rows, rms, src.Overlay), nil
}

// Derive computes a snapshot from already loaded datasets.
func Derive(state State, visits []Visit, rows []HTDRow, rms []RM, overlay Overlay) Snapshot {
	state = state.withDefaults()
	visits = NormalizeLeadIDs(visits)

	scoped := ScopeVisits(visits, state.Scope)
	start := RangeStart(state.Date, state.Range, state.CustomStart)
	completed := CompletedInRange(scoped, start, state.Date)

	effective := overlay.Apply(rows)
	attention := NeedsAttention(effective, state.Clock)

	return Snapshot{
		State: state,
		Visits: VisitsView{
			Counts:  CountVisits(scoped),
			Visible: VisibleVisits(scoped, state.FocusStatus, state.Order),
		},
		Feedback: FeedbackPanel{
			RangeStart: start,
			RangeEnd:   state.Date,
			Completed:  completed,
			Histogram:  BuildRatingHistogram(completed),
			Visible:    VisibleFeedback(completed, state.FocusRating),
			ByRM:       RollupByRM(completed),
		},
		Tower: TowerView{
			Rows:      effective,
			Filtered:  FilterStage(effective, state.Stage),
			Attention: attention,
			Counts:    CountStages(effective),
		},
		Productivity: ComputeProductivity(rms, state.RMNow),
		Hub:          HubAggregate(rms, state.RMNow),
		Alerts: BuildAlerts(AlertInput{
			Attention:        attention,
			Visits:           visits,
			CompletedInRange: completed,
			Now:              state.Clock,
		}),
	}
}

func (s State) withDefaults() State {
	if s.Date == "" {
		s.Date = Today()
	}
	def := DefaultState(s.Date)
	if s.Scope == "" {
		s.Scope = def.Scope
	}
	if s.FocusStatus == "" {
		s.FocusStatus = def.FocusStatus
	}
	if s.Range == "" {
		s.Range = def.Range
	}
	if s.View == "" {
		s.View = def.View
	}
	if s.FocusRating == "" {
		s.FocusRating = def.FocusRating
	}
	if s.Stage == "" {
		s.Stage = def.Stage
	}
	if s.Clock == "" {
		s.Clock = def.Clock
	}
	if s.RMNow.IsZero() {
		s.RMNow = def.RMNow
	}
	if s.Order == "" {
		s.Order = def.Order
	}
	return s
}
