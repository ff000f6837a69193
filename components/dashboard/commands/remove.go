package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
)

// RemoveWidgetInput names the widget instance to take off the hub dashboard.
type RemoveWidgetInput struct {
	WidgetID string `json:"widget_id"`
	ActorID  string `json:"actor_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

type removeService interface {
	RemoveWidget(ctx context.Context, widgetID string) error
}

// RemoveWidgetCommand deletes a widget instance from its area.
type RemoveWidgetCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveWidgetCommand creates the command.
func NewRemoveWidgetCommand(service removeService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the widget.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errors.New("remove command requires service")
	}
	msg.WidgetID = strings.TrimSpace(msg.WidgetID)
	if msg.WidgetID == "" {
		return fmt.Errorf("%w: widget_id is required", ErrInvalidInput)
	}
	ctx = dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	if err := c.service.RemoveWidget(ctx, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.remove", map[string]any{"widget_id": msg.WidgetID})
	return nil
}
