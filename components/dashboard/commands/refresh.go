package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
)

const reasonManual = "manual"

// RefreshWidgetInput asks live clients to reload widgets.
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// RefreshWidgetCommand triggers refresh hooks without touching any state.
// An event without an area refreshes every hub area.
type RefreshWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
	areas     []string
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshNotifier, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
		areas:     dashboard.DefaultAreaCodes(),
	}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	event := msg.Event
	if event.Reason == "" {
		event.Reason = reasonManual
	}
	areas := []string{event.AreaCode}
	if event.AreaCode == "" {
		areas = c.areas
	}
	for _, area := range areas {
		event.AreaCode = area
		if err := c.service.NotifyWidgetUpdated(ctx, event); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashboard.widget.refresh", map[string]any{
		"areas":     len(areas),
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}
