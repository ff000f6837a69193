package httpapi

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/commands"
	"github.com/goliatone/go-hubsummary/components/dashboard/queries"
	"github.com/goliatone/go-hubsummary/components/hub"
)

var errNotConfigured = errors.New("httpapi: operation not configured")

// Executor is the transport-neutral surface shared by the net/http handlers
// and the go-router integration.
type Executor interface {
	Snapshot(ctx context.Context, viewer dashboard.ViewerContext) (hub.Snapshot, error)
	Area(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
	UpdateHTD(ctx context.Context, input commands.UpdateHTDInput) (hub.HTDRow, error)
	ClearHTD(ctx context.Context, input commands.ClearHTDInput) (hub.HTDRow, error)
	Assign(ctx context.Context, req dashboard.AddWidgetRequest) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error
}

// CommandExecutor adapts commands and queries to the Executor interface.
// Effective HTD rows are read back from a fresh snapshot after each edit.
type CommandExecutor struct {
	SnapshotQuerier      gocommand.Querier[dashboard.ViewerContext, hub.Snapshot]
	AreaQuerier          gocommand.Querier[queries.WidgetAreaInput, dashboard.ResolvedArea]
	UpdateHTDCommander   gocommand.Commander[commands.UpdateHTDInput]
	ClearHTDCommander    gocommand.Commander[commands.ClearHTDInput]
	AssignCommander      gocommand.Commander[dashboard.AddWidgetRequest]
	RemoveCommander      gocommand.Commander[commands.RemoveWidgetInput]
	RefreshCommander     gocommand.Commander[commands.RefreshWidgetInput]
	PreferencesCommander gocommand.Commander[commands.SaveLayoutPreferencesInput]
}

var _ Executor = (*CommandExecutor)(nil)

// Snapshot implements Executor.
func (e *CommandExecutor) Snapshot(ctx context.Context, viewer dashboard.ViewerContext) (hub.Snapshot, error) {
	if e.SnapshotQuerier == nil {
		return hub.Snapshot{}, errNotConfigured
	}
	return e.SnapshotQuerier.Query(ctx, viewer)
}

// Area implements Executor.
func (e *CommandExecutor) Area(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error) {
	if e.AreaQuerier == nil {
		return dashboard.ResolvedArea{}, errNotConfigured
	}
	return e.AreaQuerier.Query(ctx, queries.WidgetAreaInput{Viewer: viewer, AreaCode: areaCode})
}

// UpdateHTD implements Executor.
func (e *CommandExecutor) UpdateHTD(ctx context.Context, input commands.UpdateHTDInput) (hub.HTDRow, error) {
	if e.UpdateHTDCommander == nil {
		return hub.HTDRow{}, errNotConfigured
	}
	if err := e.UpdateHTDCommander.Execute(ctx, input); err != nil {
		return hub.HTDRow{}, err
	}
	return e.effectiveRow(ctx, input.Viewer, input.LeadID)
}

// ClearHTD implements Executor.
func (e *CommandExecutor) ClearHTD(ctx context.Context, input commands.ClearHTDInput) (hub.HTDRow, error) {
	if e.ClearHTDCommander == nil {
		return hub.HTDRow{}, errNotConfigured
	}
	if err := e.ClearHTDCommander.Execute(ctx, input); err != nil {
		return hub.HTDRow{}, err
	}
	return e.effectiveRow(ctx, input.Viewer, input.LeadID)
}

// Assign implements Executor.
func (e *CommandExecutor) Assign(ctx context.Context, req dashboard.AddWidgetRequest) error {
	if e.AssignCommander == nil {
		return errNotConfigured
	}
	return e.AssignCommander.Execute(ctx, req)
}

// Remove implements Executor.
func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	if e.RemoveCommander == nil {
		return errNotConfigured
	}
	return e.RemoveCommander.Execute(ctx, input)
}

// Refresh implements Executor.
func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	if e.RefreshCommander == nil {
		return errNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, input)
}

// Preferences implements Executor.
func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error {
	if e.PreferencesCommander == nil {
		return errNotConfigured
	}
	return e.PreferencesCommander.Execute(ctx, input)
}

func (e *CommandExecutor) effectiveRow(ctx context.Context, viewer dashboard.ViewerContext, leadID string) (hub.HTDRow, error) {
	leadID = strings.TrimSpace(leadID)
	if e.SnapshotQuerier == nil {
		return hub.HTDRow{LeadID: leadID}, nil
	}
	snap, err := e.SnapshotQuerier.Query(ctx, viewer)
	if err != nil {
		return hub.HTDRow{}, err
	}
	for _, row := range snap.Tower.Rows {
		if row.LeadID == leadID {
			return row, nil
		}
	}
	return hub.HTDRow{}, dashboard.ErrUnknownLead
}

// NewServiceExecutor wires every hub command and query against service.
func NewServiceExecutor(service *dashboard.Service, telemetry dashboard.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		SnapshotQuerier:      queries.NewSnapshotQuery(service),
		AreaQuerier:          queries.NewWidgetAreaQuery(service),
		UpdateHTDCommander:   commands.NewUpdateHTDCommand(service, telemetry),
		ClearHTDCommander:    commands.NewClearHTDCommand(service, telemetry),
		AssignCommander:      commands.NewAssignWidgetCommand(service, telemetry),
		RemoveCommander:      commands.NewRemoveWidgetCommand(service, telemetry),
		RefreshCommander:     commands.NewRefreshWidgetCommand(service, telemetry),
		PreferencesCommander: commands.NewSaveLayoutPreferencesCommand(service, telemetry),
	}
}
