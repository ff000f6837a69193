package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
)

// SeedDashboardInput controls bootstrap behavior. Requests replaces the
// default hub layout when non-nil, for example with a manifest layout.
type SeedDashboardInput struct {
	SeedLayout bool
	Requests   []dashboard.AddWidgetRequest
}

// SeedDashboardCommand registers areas and definitions and optionally seeds a layout.
type SeedDashboardCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.store == nil {
		return errors.New("seed command requires widget store")
	}
	if err := dashboard.RegisterAreas(ctx, c.store); err != nil {
		return err
	}
	if err := dashboard.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
		return err
	}
	seeded := 0
	if msg.SeedLayout && c.service != nil {
		requests := msg.Requests
		if requests == nil {
			requests = dashboard.DefaultSeedWidgets()
		}
		if err := dashboard.SeedLayout(ctx, c.service, requests); err != nil {
			return err
		}
		seeded = len(requests)
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"seed_layout": msg.SeedLayout,
		"widgets":     seeded,
	})
	return nil
}
