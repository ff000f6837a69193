// Package dashboard is the public entry point of the hub summary dashboard.
package dashboard

import (
	"context"

	core "github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/commands"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext re-export for convenience.
type ViewerContext = core.ViewerContext

// AddWidgetRequest re-export for convenience.
type AddWidgetRequest = core.AddWidgetRequest

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// New builds a service backed by in-memory stores unless opts names others,
// registers the hub areas and widget definitions, and seeds layout. A nil
// layout seeds the default hub layout.
func New(ctx context.Context, opts Options, layout []AddWidgetRequest) (*Service, error) {
	if opts.WidgetStore == nil {
		opts.WidgetStore = core.NewMemoryWidgetStore()
	}
	if opts.Providers == nil {
		opts.Providers = core.NewRegistry()
	}
	service := core.NewService(opts)
	seed := commands.NewSeedDashboardCommand(opts.WidgetStore, opts.Providers, service, opts.Telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: true, Requests: layout}); err != nil {
		return nil, err
	}
	return service, nil
}
