package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/commands"
	"github.com/goliatone/go-hubsummary/components/hub"
)

const testDate = "2026-02-11"

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	service := dashboard.NewService(dashboard.Options{WidgetStore: dashboard.NewMemoryWidgetStore()})
	handlers := &Handlers{API: NewServiceExecutor(service, nil), Date: testDate}
	mux := http.NewServeMux()
	handlers.Mount(mux, "/hub/api/")
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) hub.Snapshot {
	t.Helper()
	var snap hub.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestHandleSnapshotAppliesQuerySelections(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, http.MethodGet, "/hub/api/snapshot?scope=htd&range=7D&stage=ongoing", "ops-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, testDate, snap.State.Date)
	assert.Equal(t, hub.ScopeHTD, snap.State.Scope)
	assert.Equal(t, hub.Range7D, snap.State.Range)
	assert.Equal(t, hub.StageOngoing, snap.State.Stage)
	assert.Equal(t, hub.StageCounts{Upcoming: 3, Ongoing: 2, Completed: 2, Cancelled: 1}, snap.Tower.Counts)
}

func TestHandleUpdateHTDOverlaysViewerOnly(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, http.MethodPatch, "/hub/api/htd/LD-10109", "ops-1", map[string]any{"stage": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var row hub.HTDRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, "LD-10109", row.LeadID)
	assert.Equal(t, hub.StageCompleted, row.Stage)

	mine := decodeSnapshot(t, do(t, mux, http.MethodGet, "/hub/api/snapshot", "ops-1", nil))
	assert.Equal(t, 2, mine.Tower.Counts.Upcoming)
	assert.Equal(t, 3, mine.Tower.Counts.Completed)
	assert.Empty(t, mine.Tower.Attention)

	other := decodeSnapshot(t, do(t, mux, http.MethodGet, "/hub/api/snapshot", "ops-2", nil))
	assert.Equal(t, 3, other.Tower.Counts.Upcoming)
	require.Len(t, other.Tower.Attention, 1)
}

func TestHandleClearHTDRestoresBaseRow(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, http.MethodPatch, "/hub/api/htd/LD-10109", "ops-1", map[string]any{"rm_status": "Driving"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, mux, http.MethodDelete, "/hub/api/htd/LD-10109", "ops-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var row hub.HTDRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, hub.RMAtHub, row.RMStatus)
}

func TestHandleUpdateHTDErrors(t *testing.T) {
	mux := newTestMux(t)
	cases := []struct {
		name   string
		target string
		body   any
		status int
	}{
		{"unknown lead", "/hub/api/htd/LD-0000", map[string]any{"stage": "completed"}, http.StatusNotFound},
		{"invalid stage", "/hub/api/htd/LD-10109", map[string]any{"stage": "parked"}, http.StatusBadRequest},
		{"empty patch", "/hub/api/htd/LD-10109", map[string]any{}, http.StatusBadRequest},
		{"missing lead", "/hub/api/htd/", map[string]any{"stage": "completed"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPatch, tc.target, "ops-1", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleHTDRejectsUnsupportedMethod(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, http.MethodGet, "/hub/api/htd/LD-10109", "ops-1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlePreferencesRequiresViewer(t *testing.T) {
	mux := newTestMux(t)
	payload := map[string]any{"hidden_widget_ids": []string{"w1"}}
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/hub/api/preferences", "", payload).Code)
	assert.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/hub/api/preferences", "ops-1", payload).Code)
}

func TestHandleAssignWidget(t *testing.T) {
	assign := &stubCommander[dashboard.AddWidgetRequest]{}
	api := &Handlers{API: &CommandExecutor{AssignCommander: assign}}
	payload := dashboard.AddWidgetRequest{DefinitionID: dashboard.WidgetAlerts, AreaCode: dashboard.AreaSidebar}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader(buf))
	req.Header.Set(HeaderUserID, "ops-1")
	rec := httptest.NewRecorder()
	api.HandleAssignWidget(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if assign.calls != 1 || assign.last.UserID != "ops-1" {
		t.Fatalf("expected assign to execute for the viewer, got %#v", assign.last)
	}
}

func TestHandleRefreshWithoutBody(t *testing.T) {
	refresh := &stubCommander[commands.RefreshWidgetInput]{}
	api := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.calls != 1 {
		t.Fatalf("expected refresh to execute")
	}
}

func TestHandleRefreshForwardsEvent(t *testing.T) {
	refresh := &stubCommander[commands.RefreshWidgetInput]{}
	api := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	buf, _ := json.Marshal(dashboard.WidgetEvent{AreaCode: dashboard.AreaFooter, Reason: "feedback"})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.last.Event.AreaCode != dashboard.AreaFooter || refresh.last.Event.Reason != "feedback" {
		t.Fatalf("expected event to be forwarded, got %#v", refresh.last.Event)
	}
}

func TestUnconfiguredExecutor(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{}, Date: testDate}
	rec := httptest.NewRecorder()
	api.HandleSnapshot(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		nil:                      http.StatusOK,
		dashboard.ErrUnknownLead: http.StatusNotFound,
		fmt.Errorf("wrap: %w", dashboard.ErrUnknownLead): http.StatusNotFound,
		dashboard.ErrWidgetNotFound:                      http.StatusNotFound,
		commands.ErrInvalidInput:                         http.StatusBadRequest,
		dashboard.ErrEmptyPatch:                          http.StatusBadRequest,
		dashboard.ErrMissingLeadID:                       http.StatusBadRequest,
		dashboard.ErrMissingViewer:                       http.StatusBadRequest,
		errors.New("datasets unavailable"):               http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), "%v", err)
	}
}

func TestAreaEndpointResolvesAliases(t *testing.T) {
	ctx := context.Background()
	store := dashboard.NewMemoryWidgetStore()
	service := dashboard.NewService(dashboard.Options{WidgetStore: store})
	require.NoError(t, dashboard.RegisterAreas(ctx, store))
	require.NoError(t, dashboard.RegisterDefinitions(ctx, store, nil))
	require.NoError(t, dashboard.SeedLayout(ctx, service, nil))

	mux := http.NewServeMux()
	(&Handlers{API: NewServiceExecutor(service, nil), Date: testDate}).Mount(mux, "/hub/api")

	rec := do(t, mux, http.MethodGet, "/hub/api/areas/main", "ops-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var area dashboard.ResolvedArea
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &area))
	assert.Equal(t, dashboard.AreaMain, area.AreaCode)
	require.Len(t, area.Widgets, 3)
	assert.Equal(t, dashboard.WidgetVisitsSummary, area.Widgets[0].DefinitionID)

	rec = do(t, mux, http.MethodPost, "/hub/api/areas/main", "ops-1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAreaNotConfigured(t *testing.T) {
	mux := http.NewServeMux()
	(&Handlers{API: &CommandExecutor{}}).Mount(mux, "/hub/api")
	rec := do(t, mux, http.MethodGet, "/hub/api/areas/footer", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestMountRefreshStream(t *testing.T) {
	hook := dashboard.NewBroadcastHook()
	t.Cleanup(hook.Close)
	mux := http.NewServeMux()
	(&Handlers{API: &CommandExecutor{}, Stream: hook}).Mount(mux, "/hub/api")
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/hub/api/ws?area=main"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, hook.WidgetUpdated(ctx, dashboard.WidgetEvent{AreaCode: dashboard.AreaFooter, LeadID: "LD-10105"}))
	require.NoError(t, hook.WidgetUpdated(ctx, dashboard.WidgetEvent{AreaCode: dashboard.AreaMain, LeadID: "LD-10109"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg dashboard.RefreshMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "LD-10109", msg.LeadID)
	assert.Equal(t, dashboard.AreaMain, msg.AreaCode)
}

func TestMountWithoutRefreshStream(t *testing.T) {
	mux := http.NewServeMux()
	(&Handlers{API: &CommandExecutor{}}).Mount(mux, "/hub/api")
	rec := do(t, mux, http.MethodGet, "/hub/api/events", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlersConfiguredClock(t *testing.T) {
	h := &Handlers{Date: testDate, Clock: "18:45"}
	viewer := h.viewer(httptest.NewRequest(http.MethodGet, "/hub/api/snapshot", nil))
	assert.Equal(t, "18:45", viewer.State.Clock)

	viewer = h.viewer(httptest.NewRequest(http.MethodGet, "/hub/api/snapshot?clock=09:10", nil))
	assert.Equal(t, "09:10", viewer.State.Clock)
}

func TestRemoveWidgetEndpoint(t *testing.T) {
	ctx := context.Background()
	store := dashboard.NewMemoryWidgetStore()
	service := dashboard.NewService(dashboard.Options{WidgetStore: store})
	require.NoError(t, dashboard.RegisterAreas(ctx, store))
	require.NoError(t, dashboard.RegisterDefinitions(ctx, store, nil))
	require.NoError(t, dashboard.SeedLayout(ctx, service, nil))

	mux := http.NewServeMux()
	(&Handlers{API: NewServiceExecutor(service, nil), Date: testDate}).Mount(mux, "/hub/api")

	rec := do(t, mux, http.MethodGet, "/hub/api/areas/sidebar", "ops-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var area dashboard.ResolvedArea
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &area))
	require.Len(t, area.Widgets, 2)
	target := area.Widgets[0].ID

	rec = do(t, mux, http.MethodDelete, "/hub/api/widgets/"+target, "ops-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/hub/api/areas/sidebar", "ops-1", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &area))
	assert.Len(t, area.Widgets, 1)

	rec = do(t, mux, http.MethodDelete, "/hub/api/widgets/"+target, "ops-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, http.MethodGet, "/hub/api/widgets/"+target, "ops-1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
