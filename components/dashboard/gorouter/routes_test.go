package gorouter

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/commands"
	"github.com/goliatone/go-hubsummary/components/dashboard/httpapi"
	"github.com/goliatone/go-hubsummary/components/hub"
)

const testDate = "2026-02-11"

func newExecutor() httpapi.Executor {
	service := dashboard.NewService(dashboard.Options{WidgetStore: dashboard.NewMemoryWidgetStore()})
	return httpapi.NewServiceExecutor(service, nil)
}

func testViewer(userID string) dashboard.ViewerContext {
	return dashboard.ViewerContext{UserID: userID, State: hub.DefaultState(testDate)}
}

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Snapshot: "/snap"})
	assert.Equal(t, "/snap", routes.Snapshot)
	assert.Equal(t, "/dashboard", routes.HTML)
	assert.Equal(t, "/dashboard/_layout", routes.Layout)
	assert.Equal(t, "/api/htd/:lead", routes.HTD)
	assert.Equal(t, "/dashboard/ws", routes.WebSocket)
	assert.Equal(t, "/dashboard/widgets/:id", routes.Widget)
}

type stubRemove struct {
	last commands.RemoveWidgetInput
	err  error
}

func (s *stubRemove) Execute(_ context.Context, msg commands.RemoveWidgetInput) error {
	s.last = msg
	return s.err
}

func TestRemoveResponse(t *testing.T) {
	remove := &stubRemove{}
	api := &httpapi.CommandExecutor{RemoveCommander: remove}
	status, _ := removeResponse(context.Background(), api, testViewer("ops-1"), "w-4")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "w-4", remove.last.WidgetID)
	assert.Equal(t, "ops-1", remove.last.ActorID)

	remove.err = dashboard.ErrWidgetNotFound
	status, _ = removeResponse(context.Background(), api, testViewer("ops-1"), "w-4")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSnapshotResponse(t *testing.T) {
	status, body := snapshotResponse(context.Background(), newExecutor(), testViewer("ops-1"))
	require.Equal(t, http.StatusOK, status)
	snap, ok := body.(hub.Snapshot)
	require.True(t, ok)
	require.Len(t, snap.Tower.Attention, 1)
	assert.Equal(t, "LD-10109", snap.Tower.Attention[0].LeadID)
}

func TestUpdateAndClearHTDResponse(t *testing.T) {
	api := newExecutor()
	viewer := testViewer("ops-1")

	status, body := updateHTDResponse(context.Background(), api, viewer, "LD-10109", []byte(`{"rm_status":"Driving"}`))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, hub.RMDriving, body.(hub.HTDRow).RMStatus)

	status, body = clearHTDResponse(context.Background(), api, viewer, "LD-10109")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, hub.RMAtHub, body.(hub.HTDRow).RMStatus)
}

func TestUpdateHTDResponseErrors(t *testing.T) {
	api := newExecutor()
	viewer := testViewer("ops-1")
	cases := []struct {
		name   string
		lead   string
		body   string
		status int
	}{
		{"malformed json", "LD-10109", `{`, http.StatusBadRequest},
		{"unknown lead", "LD-0000", `{"stage":"completed"}`, http.StatusNotFound},
		{"invalid call", "LD-10109", `{"call":"maybe"}`, http.StatusBadRequest},
		{"empty patch", "LD-10109", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := updateHTDResponse(context.Background(), api, viewer, tc.lead, []byte(tc.body))
			assert.Equal(t, tc.status, status)
			payload, ok := body.(map[string]string)
			require.True(t, ok)
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestPreferencesResponse(t *testing.T) {
	api := newExecutor()
	body := []byte(`{"hidden_widget_ids":["w1"]}`)
	status, _ := preferencesResponse(context.Background(), api, testViewer(""), body)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = preferencesResponse(context.Background(), api, testViewer("ops-1"), body)
	assert.Equal(t, http.StatusOK, status)
}

func TestRefreshResponse(t *testing.T) {
	refresh := &stubRefresh{}
	api := &httpapi.CommandExecutor{RefreshCommander: refresh}
	status, _ := refreshResponse(context.Background(), api, nil)
	assert.Equal(t, http.StatusAccepted, status)
	status, _ = refreshResponse(context.Background(), api, []byte(`{"area_code":"hub.dashboard.footer"}`))
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, dashboard.AreaFooter, refresh.last.Event.AreaCode)

	refresh.err = errors.New("hook offline")
	status, _ = refreshResponse(context.Background(), api, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestAssignResponseStampsViewer(t *testing.T) {
	assign := &stubAssign{}
	api := &httpapi.CommandExecutor{AssignCommander: assign}
	status, _ := assignResponse(context.Background(), api, testViewer("ops-1"), []byte(`{"definition_id":"hub.widget.alerts","area_code":"hub.dashboard.sidebar"}`))
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ops-1", assign.last.UserID)
	assert.Equal(t, dashboard.WidgetAlerts, assign.last.DefinitionID)
}

func TestResolveViewer(t *testing.T) {
	query := map[string]string{"scope": "HTD", "range": "7D"}
	viewer := resolveViewer("", nil, " ops-9 ", func(key string) string { return query[key] }, testDate, "")
	assert.Equal(t, "ops-9", viewer.UserID)
	assert.Equal(t, hub.ScopeHTD, viewer.State.Scope)
	assert.Equal(t, hub.Range7D, viewer.State.Range)

	viewer = resolveViewer("rm-lead", []string{"supervisor"}, "ops-9", nil, testDate, "")
	assert.Equal(t, "rm-lead", viewer.UserID)
	assert.Equal(t, []string{"supervisor"}, viewer.Roles)
	assert.Equal(t, hub.DefaultState(testDate), viewer.State)
}

func TestResolveViewerConfiguredClock(t *testing.T) {
	viewer := resolveViewer("", nil, "ops-1", nil, testDate, "18:45")
	assert.Equal(t, "18:45", viewer.State.Clock)

	query := map[string]string{"clock": "09:10"}
	viewer = resolveViewer("", nil, "ops-1", func(key string) string { return query[key] }, testDate, "18:45")
	assert.Equal(t, "09:10", viewer.State.Clock)

	viewer = resolveViewer("", nil, "ops-1", nil, testDate, "late")
	assert.Equal(t, hub.DemoClock, viewer.State.Clock)
}

type stubRefresh struct {
	last commands.RefreshWidgetInput
	err  error
}

func (s *stubRefresh) Execute(_ context.Context, msg commands.RefreshWidgetInput) error {
	s.last = msg
	return s.err
}

type stubAssign struct {
	last dashboard.AddWidgetRequest
}

func (s *stubAssign) Execute(_ context.Context, msg dashboard.AddWidgetRequest) error {
	s.last = msg
	return nil
}

func TestAreaResponse(t *testing.T) {
	status, body := areaResponse(context.Background(), newExecutor(), testViewer("ops-1"), "sidebar")
	require.Equal(t, http.StatusOK, status)
	area, ok := body.(dashboard.ResolvedArea)
	require.True(t, ok)
	assert.Equal(t, dashboard.AreaSidebar, area.AreaCode)
	assert.Empty(t, area.Widgets)

	status, _ = areaResponse(context.Background(), &httpapi.CommandExecutor{}, testViewer("ops-1"), "main")
	assert.Equal(t, http.StatusNotImplemented, status)
}
