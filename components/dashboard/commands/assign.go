package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
)

type assignService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) error
}

// AssignWidgetCommand places a widget instance in a hub dashboard area.
type AssignWidgetCommand struct {
	service   assignService
	telemetry Telemetry
}

// NewAssignWidgetCommand creates a command instance.
func NewAssignWidgetCommand(service assignService, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.AddWidgetRequest] = (*AssignWidgetCommand)(nil)

// Execute places the widget. Areas may be named "main", "sidebar" or "footer".
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg dashboard.AddWidgetRequest) error {
	if c.service == nil {
		return errors.New("assign command requires service")
	}
	msg.DefinitionID = strings.TrimSpace(msg.DefinitionID)
	if msg.DefinitionID == "" {
		return fmt.Errorf("%w: definition_id is required", ErrInvalidInput)
	}
	msg.AreaCode = dashboard.NormalizeAreaCode(msg.AreaCode)
	ctx = dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	if err := c.service.AddWidget(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.assign", map[string]any{
		"definition_id": msg.DefinitionID,
		"area_code":     msg.AreaCode,
	})
	return nil
}
