package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goliatone/go-hubsummary/components/hub"
)

var errMissingHubSource = errors.New("dashboard: hub snapshot source not configured")

func defaultProviders() map[string]Provider {
	return map[string]Provider{
		WidgetVisitsSummary:  ProviderFunc(fetchVisitsSummary),
		WidgetFeedback:       ProviderFunc(fetchFeedback),
		WidgetRatingChart:    NewRatingChartProvider(nil),
		WidgetRMFeedback:     ProviderFunc(fetchRMFeedback),
		WidgetHTDTower:       ProviderFunc(fetchHTDTower),
		WidgetRMProductivity: NewProductivityProvider(nil),
		WidgetHubAggregate:   NewHubAggregateProvider(nil),
		WidgetAlerts:         ProviderFunc(fetchAlerts),
	}
}

// widgetSnapshot derives the snapshot for a widget, layering the instance
// configuration over the viewer's filters.
func widgetSnapshot(ctx context.Context, meta WidgetContext) (hub.Snapshot, error) {
	if meta.Hub == nil {
		return hub.Snapshot{}, errMissingHubSource
	}
	viewer := meta.Viewer
	viewer.State = applyConfigState(viewer.State, meta.Instance.Configuration)
	return meta.Hub.Snapshot(ctx, viewer)
}

// applyConfigState copies recognised filter keys from cfg onto state.
// Unrecognised values are ignored; the definition schema rejects them first.
func applyConfigState(state hub.State, cfg map[string]any) hub.State {
	if len(cfg) == 0 {
		return state
	}
	if v, ok := hub.ParseScope(stringValue(cfg["scope"], "")); ok {
		state.Scope = v
	}
	if v, ok := hub.ParseFocusStatus(stringValue(cfg["status"], "")); ok {
		state.FocusStatus = v
	}
	if v, ok := hub.ParseSortOrder(stringValue(cfg["order"], "")); ok {
		state.Order = v
	}
	if v, ok := hub.ParseRangeKey(stringValue(cfg["range"], "")); ok {
		state.Range = v
	}
	if v := stringValue(cfg["custom_start"], ""); v != "" {
		state.CustomStart = v
	}
	if v, ok := hub.ParseRatingFocus(stringValue(cfg["rating"], "")); ok {
		state.FocusRating = v
	}
	switch view := hub.FeedbackView(strings.ToUpper(stringValue(cfg["view"], ""))); view {
	case hub.FeedbackHub, hub.FeedbackRM:
		state.View = view
	}
	if v, ok := hub.ParseHTDStage(stringValue(cfg["stage"], "")); ok {
		state.Stage = v
	}
	return state
}

func fetchVisitsSummary(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	visible := snap.Visits.Visible
	limit := intValue(meta.Instance.Configuration["limit"], 0)
	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	counts := snap.Visits.Counts
	return WidgetData{
		"date":   snap.State.Date,
		"scope":  string(snap.State.Scope),
		"status": string(snap.State.FocusStatus),
		"order":  string(snap.State.Order),
		"counts": map[string]int{
			"total":     counts.Total,
			"completed": counts.Completed,
			"ongoing":   counts.Ongoing,
			"scheduled": counts.Scheduled,
			"cancelled": counts.Cancelled,
		},
		"visits": visitRows(visible),
	}, nil
}

func fetchFeedback(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	panel := snap.Feedback
	data := WidgetData{
		"range":       string(snap.State.Range),
		"range_start": panel.RangeStart,
		"range_end":   panel.RangeEnd,
		"rating":      string(snap.State.FocusRating),
		"view":        string(snap.State.View),
		"total":       panel.Histogram.Total(),
		"buckets":     bucketRows(panel.Histogram),
		"items":       visitRows(panel.Visible),
	}
	if snap.State.View == hub.FeedbackRM {
		data["by_rm"] = rmFeedbackRows(panel.ByRM)
	}
	return data, nil
}

func fetchRMFeedback(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"range_start": snap.Feedback.RangeStart,
		"range_end":   snap.Feedback.RangeEnd,
		"rows":        rmFeedbackRows(snap.Feedback.ByRM),
	}, nil
}

func fetchHTDTower(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	clock := snap.State.Clock
	attention := make([]map[string]any, 0, len(snap.Tower.Attention))
	for _, row := range snap.Tower.Attention {
		attention = append(attention, map[string]any{
			"lead_id":   row.LeadID,
			"customer":  row.CustomerName,
			"rm":        row.RMName,
			"rm_status": string(row.RMStatus),
			"slot":      row.Slot,
			"leave_by":  hub.FormatClock(row.LeaveBy()),
			"leave_in":  row.MinutesUntilLeave(clock),
		})
	}
	counts := snap.Tower.Counts
	return WidgetData{
		"clock": clock,
		"stage": string(snap.State.Stage),
		"counts": map[string]int{
			"upcoming":  counts.Upcoming,
			"ongoing":   counts.Ongoing,
			"completed": counts.Completed,
			"cancelled": counts.Cancelled,
		},
		"rows":      snap.Tower.Filtered,
		"attention": attention,
	}, nil
}

func fetchAlerts(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	cfg := meta.Instance.Configuration
	severity := hub.Severity(strings.ToLower(stringValue(cfg["severity"], "")))
	limit := intValue(cfg["limit"], 0)
	items := make([]map[string]any, 0, len(snap.Alerts))
	for _, alert := range snap.Alerts {
		if severity != "" && alert.Severity != severity {
			continue
		}
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, map[string]any{
			"id":       alert.ID,
			"severity": string(alert.Severity),
			"message":  alert.Message,
			"time":     alert.Time,
		})
	}
	return WidgetData{
		"count": len(items),
		"items": items,
	}, nil
}

// RatingChartProvider renders the feedback rating histogram as a chart.
type RatingChartProvider struct {
	renderers map[string]*ChartRenderer
}

// NewRatingChartProvider builds the provider. Missing renderers default to bar
// and pie renderers sharing the package chart cache.
func NewRatingChartProvider(renderers map[string]*ChartRenderer) *RatingChartProvider {
	if renderers == nil {
		renderers = map[string]*ChartRenderer{}
	}
	for _, chartType := range []string{"bar", "pie"} {
		if renderers[chartType] == nil {
			renderers[chartType] = NewChartRenderer(chartType)
		}
	}
	return &RatingChartProvider{renderers: renderers}
}

// Fetch renders the histogram for the configured range.
func (p *RatingChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	cfg := meta.Instance.Configuration
	chartType := strings.ToLower(stringValue(cfg["chart_type"], "bar"))
	renderer, ok := p.renderers[chartType]
	if !ok {
		return nil, fmt.Errorf("rating chart provider: unsupported chart type %s", chartType)
	}
	hist := snap.Feedback.Histogram
	points := make([]ChartPoint, 0, 6)
	for _, bucket := range hist.Buckets() {
		label := bucket.Label
		if label != string(hub.FocusNF) {
			label += "★"
		}
		points = append(points, ChartPoint{Label: label, Value: float64(bucket.Count)})
	}
	data, err := renderer.Render(ChartSpec{
		Title:    stringValue(cfg["title"], "Feedback ratings"),
		Subtitle: fmt.Sprintf("%s to %s", snap.Feedback.RangeStart, snap.Feedback.RangeEnd),
		Series:   []ChartSeries{{Name: "Visits", Points: points}},
		CacheKey: chartCacheKey(meta, map[string]any{"histogram": hist, "start": snap.Feedback.RangeStart}),
	})
	if err != nil {
		return nil, err
	}
	data["total"] = hist.Total()
	data["buckets"] = bucketRows(hist)
	return data, nil
}

// ProductivityProvider lists RM productivity rows, optionally with a
// utilization bar chart.
type ProductivityProvider struct {
	renderer *ChartRenderer
}

// NewProductivityProvider builds the provider; a nil renderer uses a bar chart.
func NewProductivityProvider(renderer *ChartRenderer) *ProductivityProvider {
	if renderer == nil {
		renderer = NewChartRenderer("bar")
	}
	return &ProductivityProvider{renderer: renderer}
}

// Fetch implements Provider.
func (p *ProductivityProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(snap.Productivity))
	points := make([]ChartPoint, 0, len(snap.Productivity))
	for _, row := range snap.Productivity {
		entry := map[string]any{
			"id":                row.ID,
			"name":              row.Name,
			"now":               string(row.Now),
			"customer":          row.Customer,
			"location":          row.Location,
			"runtime":           row.Runtime,
			"runtime_label":     row.RuntimeLabel,
			"minutes_since_frc": row.MinutesSinceFRC,
			"busy_done":         row.BusyDone,
			"busy_ongoing":      row.BusyOngoing,
			"utilization":       row.Utilization,
			"hv_done":           row.HVDone,
			"htd_done":          row.HTDDone,
		}
		if row.NextHTD != nil {
			entry["next_htd"] = map[string]any{
				"at":      row.NextHTD.At,
				"lead_id": row.NextHTD.LeadID,
			}
		}
		rows = append(rows, entry)
		points = append(points, ChartPoint{Label: row.Name, Value: float64(row.Utilization)})
	}
	data := WidgetData{"rows": rows}
	if !boolValue(meta.Instance.Configuration["show_chart"]) || len(points) == 0 {
		return data, nil
	}
	chart, err := p.renderer.Render(ChartSpec{
		Title:    "Utilization %",
		Subtitle: hub.ClockOf(snap.State.RMNow),
		Series:   []ChartSeries{{Name: "Utilization", Points: points}},
		CacheKey: chartCacheKey(meta, map[string]any{"points": points}),
	})
	if err != nil {
		return nil, err
	}
	for k, v := range chart {
		data[k] = v
	}
	return data, nil
}

// HubAggregateProvider renders hub totals and an average utilization gauge.
type HubAggregateProvider struct {
	renderer *ChartRenderer
}

// NewHubAggregateProvider builds the provider; a nil renderer uses a gauge.
func NewHubAggregateProvider(renderer *ChartRenderer) *HubAggregateProvider {
	if renderer == nil {
		renderer = NewChartRenderer("gauge")
	}
	return &HubAggregateProvider{renderer: renderer}
}

// Fetch implements Provider.
func (p *HubAggregateProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snap, err := widgetSnapshot(ctx, meta)
	if err != nil {
		return nil, err
	}
	totals := snap.Hub
	avg := AverageUtilization(snap.Productivity)
	data := WidgetData{
		"rm_count":        totals.RMCount,
		"frc":             totals.FRCClock,
		"frc_avg_mtd":     totals.FRCAvgMTD,
		"today":           counterMap(totals.Today),
		"mtd":             counterMap(totals.MTD),
		"avg_utilization": avg,
	}
	if !boolValue(meta.Instance.Configuration["show_gauge"]) {
		return data, nil
	}
	chart, err := p.renderer.Render(ChartSpec{
		Title:    "Hub utilization",
		Series:   []ChartSeries{{Name: "Utilization", Points: []ChartPoint{{Label: "Avg %", Value: float64(avg)}}}},
		CacheKey: chartCacheKey(meta, map[string]any{"avg": avg}),
	})
	if err != nil {
		return nil, err
	}
	for k, v := range chart {
		data[k] = v
	}
	return data, nil
}

// AverageUtilization returns the rounded mean utilization, 0 for no rows.
func AverageUtilization(rows []hub.RMProductivity) int {
	if len(rows) == 0 {
		return 0
	}
	sum := 0
	for _, row := range rows {
		sum += row.Utilization
	}
	return int(math.Round(float64(sum) / float64(len(rows))))
}

func chartCacheKey(meta WidgetContext, data map[string]any) string {
	return fmt.Sprintf("%s:%s:%s:%s", meta.Instance.DefinitionID, meta.Instance.ID, configHash(meta.Instance.Configuration), configHash(data))
}

func visitRows(visits []hub.Visit) []map[string]any {
	out := make([]map[string]any, 0, len(visits))
	for _, v := range visits {
		rating := string(hub.FocusNF)
		if v.FeedbackRating.Rated() {
			rating = fmt.Sprintf("%d", v.FeedbackRating)
		}
		rm := v.RM
		if rm == "" {
			rm = hub.UnassignedRM
		}
		out = append(out, map[string]any{
			"id":            v.ID,
			"lead_id":       v.LeadID,
			"type":          string(v.Type),
			"date":          v.Date,
			"time":          v.Time,
			"customer":      v.Customer,
			"car":           v.Car,
			"rm":            rm,
			"status":        string(v.Status),
			"rating":        rating,
			"feedback_text": v.FeedbackText,
		})
	}
	return out
}

func bucketRows(h hub.RatingHistogram) []map[string]any {
	buckets := h.Buckets()
	out := make([]map[string]any, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, map[string]any{"label": b.Label, "count": b.Count})
	}
	return out
}

func rmFeedbackRows(rows []hub.RMFeedbackRow) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			"rm":            r.RM,
			"total":         r.Total,
			"below_3":       r.Below3,
			"at_or_above_3": r.AtOrAbove3,
			"nf":            r.NF,
		})
	}
	return out
}

func counterMap(c hub.Counters) map[string]int {
	return map[string]int{
		"visits":          c.Visits,
		"tokens":          c.Tokens,
		"deliveries":      c.Deliveries,
		"feedback_filled": c.FeedbackFilled,
	}
}
