package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/commands"
	"github.com/goliatone/go-hubsummary/components/dashboard/httpapi"
	"github.com/goliatone/go-hubsummary/components/hub"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the hub dashboard controller, API and refresh hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	// Date is the dashboard date used when a request does not select one.
	// Empty means today.
	Date string
	// Clock is the control tower time of day (HH:MM) used when a request
	// does not select one. Empty keeps the demo clock.
	Clock  string
	Routes RouteConfig
}

// RouteConfig customizes the relative paths used for hub endpoints.
type RouteConfig struct {
	HTML        string
	Layout      string
	Snapshot    string
	Areas       string
	HTD         string
	Widgets     string
	Widget      string
	Refresh     string
	Preferences string
	WebSocket   string
}

// Register mounts hub routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/hub"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver(cfg.Date, cfg.Clock)
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), viewer)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.Snapshot, router.WrapHandler(func(ctx router.Context) error {
		status, body := snapshotResponse(ctx.Context(), api, resolver(ctx))
		return ctx.JSON(status, body)
	}))

	r.Get(routes.Areas, router.WrapHandler(func(ctx router.Context) error {
		status, body := areaResponse(ctx.Context(), api, resolver(ctx), ctx.Param("area"))
		return ctx.JSON(status, body)
	}))

	r.Patch(routes.HTD, router.WrapHandler(func(ctx router.Context) error {
		status, body := updateHTDResponse(ctx.Context(), api, resolver(ctx), ctx.Param("lead"), ctx.Body())
		return ctx.JSON(status, body)
	}))

	r.Delete(routes.HTD, router.WrapHandler(func(ctx router.Context) error {
		status, body := clearHTDResponse(ctx.Context(), api, resolver(ctx), ctx.Param("lead"))
		return ctx.JSON(status, body)
	}))

	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		status, body := assignResponse(ctx.Context(), api, resolver(ctx), ctx.Body())
		return ctx.JSON(status, body)
	}))

	r.Delete(routes.Widget, router.WrapHandler(func(ctx router.Context) error {
		status, body := removeResponse(ctx.Context(), api, resolver(ctx), ctx.Param("id"))
		return ctx.JSON(status, body)
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		status, body := refreshResponse(ctx.Context(), api, ctx.Body())
		return ctx.JSON(status, body)
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		status, body := preferencesResponse(ctx.Context(), api, resolver(ctx), ctx.Body())
		return ctx.JSON(status, body)
	}))
}

func snapshotResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext) (int, any) {
	snap, err := api.Snapshot(ctx, viewer)
	if err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusOK, snap
}

func areaResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext, area string) (int, any) {
	resolved, err := api.Area(ctx, viewer, area)
	if err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusOK, resolved
}

func updateHTDResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext, leadID string, body []byte) (int, any) {
	var payload commands.UpdateHTDInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return http.StatusBadRequest, httpapi.ErrorBody(err)
	}
	payload.LeadID = leadID
	payload.Viewer = viewer
	payload.ActorID = viewer.UserID
	row, err := api.UpdateHTD(ctx, payload)
	if err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusOK, row
}

func clearHTDResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext, leadID string) (int, any) {
	row, err := api.ClearHTD(ctx, commands.ClearHTDInput{Viewer: viewer, LeadID: leadID, ActorID: viewer.UserID})
	if err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusOK, row
}

func assignResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext, body []byte) (int, any) {
	var payload dashboard.AddWidgetRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		return http.StatusBadRequest, httpapi.ErrorBody(err)
	}
	if payload.UserID == "" {
		payload.UserID = viewer.UserID
	}
	if err := api.Assign(ctx, payload); err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusCreated, map[string]string{"status": "created"}
}

func removeResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext, widgetID string) (int, any) {
	input := commands.RemoveWidgetInput{WidgetID: widgetID, ActorID: viewer.UserID, UserID: viewer.UserID}
	if err := api.Remove(ctx, input); err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusOK, map[string]string{"status": "removed"}
}

func refreshResponse(ctx context.Context, api httpapi.Executor, body []byte) (int, any) {
	var payload commands.RefreshWidgetInput
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload.Event); err != nil {
			return http.StatusBadRequest, httpapi.ErrorBody(err)
		}
	}
	if err := api.Refresh(ctx, payload); err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusAccepted, map[string]string{"status": "queued"}
}

func preferencesResponse(ctx context.Context, api httpapi.Executor, viewer dashboard.ViewerContext, body []byte) (int, any) {
	var payload commands.SaveLayoutPreferencesInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return http.StatusBadRequest, httpapi.ErrorBody(err)
	}
	payload.Viewer = viewer
	if err := api.Preferences(ctx, payload); err != nil {
		return httpapi.StatusFor(err), httpapi.ErrorBody(err)
	}
	return http.StatusOK, map[string]string{"status": "saved"}
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		filter := dashboard.RefreshFilterFromQuery(func(key string) string { return ws.Query(key) })
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if !filter.Match(event) {
					continue
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(date, clock string) ViewerResolver {
	return func(ctx router.Context) dashboard.ViewerContext {
		userID, _ := ctx.Locals("user_id").(string)
		roles, _ := ctx.Locals("roles").([]string)
		return resolveViewer(userID, roles, ctx.Header(httpapi.HeaderUserID), func(key string) string {
			return ctx.Query(key)
		}, date, clock)
	}
}

// resolveViewer prefers the identity stored in request locals by auth
// middleware and falls back to the X-User-ID header.
func resolveViewer(userID string, roles []string, header string, query func(string) string, date, clock string) dashboard.ViewerContext {
	if date == "" {
		date = hub.Today()
	}
	viewer := dashboard.ViewerContext{
		UserID: strings.TrimSpace(userID),
		Roles:  roles,
		State:  httpapi.StateFromQuery(query, date),
	}
	if (query == nil || query(httpapi.ParamClock) == "") && httpapi.ValidClock(clock) {
		viewer.State.Clock = clock
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(header)
	}
	return viewer
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, httpapi.ErrorBody(err))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Snapshot == "" {
		routes.Snapshot = "/api/snapshot"
	}
	if routes.Areas == "" {
		routes.Areas = "/api/areas/:area"
	}
	if routes.HTD == "" {
		routes.HTD = "/api/htd/:lead"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.Widget == "" {
		routes.Widget = "/dashboard/widgets/:id"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/refresh"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
