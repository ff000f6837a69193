package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/commands"
	"github.com/goliatone/go-hubsummary/components/hub"
)

// Headers carrying the viewer identity.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"
)

// Handlers exposes the hub API over net/http.
type Handlers struct {
	API Executor
	// Date is used when a request does not select one. Empty means today.
	Date string
	// Clock is the control tower time of day used when a request does not
	// select one. Empty keeps the demo clock.
	Clock string
	// Viewer overrides header based viewer resolution.
	Viewer func(*http.Request) dashboard.ViewerContext
	// Stream serves live refresh messages on /ws and /events when set.
	Stream RefreshStream
}

// RefreshStream pushes widget refresh messages to live clients.
type RefreshStream interface {
	ServeWebSocket(w http.ResponseWriter, r *http.Request)
	ServeSSE(w http.ResponseWriter, r *http.Request)
}

var _ RefreshStream = (*dashboard.BroadcastHook)(nil)

// Mount registers every handler on mux under base (for example "/hub/api").
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	base = strings.TrimRight(base, "/")
	mux.HandleFunc(base+"/snapshot", h.HandleSnapshot)
	mux.HandleFunc(base+"/htd/", func(w http.ResponseWriter, r *http.Request) {
		leadID := strings.TrimPrefix(r.URL.Path, base+"/htd/")
		switch r.Method {
		case http.MethodPatch, http.MethodPost:
			h.HandleUpdateHTD(w, r, leadID)
		case http.MethodDelete:
			h.HandleClearHTD(w, r, leadID)
		default:
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		}
	})
	mux.HandleFunc(base+"/areas/", func(w http.ResponseWriter, r *http.Request) {
		h.HandleArea(w, r, strings.TrimPrefix(r.URL.Path, base+"/areas/"))
	})
	mux.HandleFunc(base+"/widgets", h.HandleAssignWidget)
	mux.HandleFunc(base+"/widgets/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		h.HandleRemoveWidget(w, r, strings.TrimPrefix(r.URL.Path, base+"/widgets/"))
	})
	mux.HandleFunc(base+"/refresh", h.HandleRefresh)
	mux.HandleFunc(base+"/preferences", h.HandlePreferences)
	if h.Stream != nil {
		mux.HandleFunc(base+"/ws", h.Stream.ServeWebSocket)
		mux.HandleFunc(base+"/events", h.Stream.ServeSSE)
	}
}

// HandleSnapshot returns the derived hub views for the request's selections.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.Snapshot(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleArea returns the widgets of one area ("main", "sidebar", "footer" or
// a full area code) visible to the viewer.
func (h *Handlers) HandleArea(w http.ResponseWriter, r *http.Request, area string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	resolved, err := h.API.Area(r.Context(), h.viewer(r), area)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// HandleUpdateHTD merges a JSON patch onto the viewer's override for leadID.
func (h *Handlers) HandleUpdateHTD(w http.ResponseWriter, r *http.Request, leadID string) {
	var payload commands.UpdateHTDInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.LeadID = leadID
	payload.Viewer = h.viewer(r)
	payload.ActorID = payload.Viewer.UserID
	row, err := h.API.UpdateHTD(r.Context(), payload)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// HandleClearHTD drops the viewer's override for leadID.
func (h *Handlers) HandleClearHTD(w http.ResponseWriter, r *http.Request, leadID string) {
	viewer := h.viewer(r)
	row, err := h.API.ClearHTD(r.Context(), commands.ClearHTDInput{
		Viewer:  viewer,
		LeadID:  leadID,
		ActorID: viewer.UserID,
	})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *Handlers) HandleAssignWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.UserID == "" {
		payload.UserID = h.viewer(r).UserID
	}
	if err := h.API.Assign(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleRemoveWidget deletes the widget instance named in the path.
func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	viewer := h.viewer(r)
	input := commands.RemoveWidgetInput{WidgetID: widgetID, ActorID: viewer.UserID, UserID: viewer.UserID}
	if err := h.API.Remove(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshWidgetInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload.Event); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveLayoutPreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.API.Preferences(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	date := h.Date
	if date == "" {
		date = hub.Today()
	}
	viewer := ViewerFromRequest(r, date)
	if r.URL.Query().Get(ParamClock) == "" && ValidClock(h.Clock) {
		viewer.State.Clock = h.Clock
	}
	return viewer
}

// StatusFor maps hub errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrUnknownLead),
		errors.Is(err, dashboard.ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrInvalidInput),
		errors.Is(err, dashboard.ErrEmptyPatch),
		errors.Is(err, dashboard.ErrMissingLeadID),
		errors.Is(err, dashboard.ErrMissingViewer):
		return http.StatusBadRequest
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
func ErrorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
