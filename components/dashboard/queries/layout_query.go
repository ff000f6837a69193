package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/hub"
)

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
}

type areaService interface {
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// LayoutQuery resolves every hub area for the viewer.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, dashboard.Layout] = (*LayoutQuery)(nil)

// Query resolves the layout. A viewer without a date sees today's hub.
func (q *LayoutQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error) {
	return q.service.ConfigureLayout(ctx, withDefaultState(viewer))
}

// WidgetAreaInput identifies an area request for a viewer.
type WidgetAreaInput struct {
	Viewer   dashboard.ViewerContext
	AreaCode string
}

// WidgetAreaQuery fetches widgets for a single area.
type WidgetAreaQuery struct {
	service areaService
}

// NewWidgetAreaQuery builds the query.
func NewWidgetAreaQuery(service areaService) *WidgetAreaQuery {
	return &WidgetAreaQuery{service: service}
}

var _ gocommand.Querier[WidgetAreaInput, dashboard.ResolvedArea] = (*WidgetAreaQuery)(nil)

// Query resolves one area; "main", "sidebar" and "footer" name the hub areas.
func (q *WidgetAreaQuery) Query(ctx context.Context, input WidgetAreaInput) (dashboard.ResolvedArea, error) {
	return q.service.ResolveArea(ctx, withDefaultState(input.Viewer), dashboard.NormalizeAreaCode(input.AreaCode))
}

func withDefaultState(viewer dashboard.ViewerContext) dashboard.ViewerContext {
	if viewer.State.Date == "" {
		viewer.State = hub.DefaultState(hub.Today())
	}
	return viewer
}
