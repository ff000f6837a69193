package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-hubsummary/components/dashboard"
)

// SaveLayoutPreferencesInput captures viewer overrides for layout customization.
type SaveLayoutPreferencesInput struct {
	Viewer        dashboard.ViewerContext          `json:"-"`
	AreaOrder     map[string][]string              `json:"area_order"`
	AreaRows      map[string][]dashboard.LayoutRow `json:"layout_rows,omitempty"`
	HiddenWidgets []string                         `json:"hidden_widget_ids"`
	// Reset drops every override and restores the seeded layout.
	Reset bool `json:"reset,omitempty"`
}

type preferenceService interface {
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// SaveLayoutPreferencesCommand persists per-user layout overrides.
type SaveLayoutPreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSaveLayoutPreferencesCommand creates the command.
func NewSaveLayoutPreferencesCommand(service preferenceService, telemetry Telemetry) *SaveLayoutPreferencesCommand {
	return &SaveLayoutPreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutPreferencesInput] = (*SaveLayoutPreferencesCommand)(nil)

// Execute stores the provided overrides for the viewer.
func (c *SaveLayoutPreferencesCommand) Execute(ctx context.Context, msg SaveLayoutPreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return dashboard.ErrMissingViewer
	}
	overrides := dashboard.LayoutOverrides{
		AreaOrder:     map[string][]string{},
		AreaRows:      map[string][]dashboard.LayoutRow{},
		HiddenWidgets: map[string]bool{},
	}
	if !msg.Reset {
		for area, order := range msg.AreaOrder {
			overrides.AreaOrder[dashboard.NormalizeAreaCode(area)] = order
		}
		for area, rows := range msg.AreaRows {
			overrides.AreaRows[dashboard.NormalizeAreaCode(area)] = rows
		}
		for _, id := range msg.HiddenWidgets {
			if id = strings.TrimSpace(id); id != "" {
				overrides.HiddenWidgets[id] = true
			}
		}
	}
	if err := c.service.SavePreferences(ctx, msg.Viewer, overrides); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.preferences.save", map[string]any{
		"user_id":    msg.Viewer.UserID,
		"areas":      len(msg.AreaOrder),
		"rows":       len(msg.AreaRows),
		"hidden_cnt": len(overrides.HiddenWidgets),
		"reset":      msg.Reset,
	})
	return nil
}
