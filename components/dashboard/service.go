package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-hubsummary/components/hub"
	"github.com/goliatone/go-hubsummary/pkg/activity"
)

var (
	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errInvalidArea        = errors.New("dashboard: area code is required")
	errInvalidDefinition  = errors.New("dashboard: definition id is required")

	// ErrMissingViewer is returned when a per-viewer operation has no user id.
	ErrMissingViewer = errors.New("dashboard: viewer context missing user id")
	// ErrMissingLeadID is returned when an HTD edit names no lead.
	ErrMissingLeadID = errors.New("dashboard: lead id is required")
	// ErrUnknownLead is returned when an HTD edit targets a lead missing from the control tower.
	ErrUnknownLead = errors.New("dashboard: unknown lead id")
	// ErrEmptyPatch is returned when an HTD edit changes nothing.
	ErrEmptyPatch = errors.New("dashboard: htd patch is empty")
	// ErrWidgetNotFound is returned when a widget instance id is unknown.
	ErrWidgetNotFound = errors.New("dashboard: widget instance not found")
)

const (
	eventProviderError = "dashboard.widget.provider_error"

	// ReasonHTDUpdate marks refresh events caused by an HTD override edit.
	ReasonHTDUpdate = "htd.update"
	// ReasonHTDClear marks refresh events caused by dropping an HTD override.
	ReasonHTDClear = "htd.clear"
	// ReasonWidgetRemove marks refresh events caused by removing a widget.
	ReasonWidgetRemove = "remove"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Hub             *HubSource
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Areas           []string
	Now             func() time.Time
}

// Service orchestrates hub widgets, viewer preferences and HTD overrides.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Hub == nil {
		opts.Hub = NewHubSource(HubSourceOptions{})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Hub returns the snapshot source backing the hub widgets.
func (s *Service) Hub() *HubSource {
	return s.opts.Hub
}

// Providers returns the provider registry.
func (s *Service) Providers() ProviderRegistry {
	return s.opts.Providers
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty"`
	Roles         []string       `json:"roles,omitempty"`
	StartAt       *time.Time     `json:"start_at,omitempty"`
	EndAt         *time.Time     `json:"end_at,omitempty"`
	ActorID       string         `json:"actor_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	TenantID      string         `json:"tenant_id,omitempty"`
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.AreaCode == "" {
		return errInvalidArea
	}
	if req.DefinitionID == "" {
		return errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return err
	}
	instance.AreaCode = req.AreaCode
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: req.AreaCode,
		Instance: instance,
		Reason:   "add",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	})
	return s.emitActivity(ctx, ActivityContext{ActorID: req.ActorID, UserID: req.UserID, TenantID: req.TenantID}, activity.Event{
		Verb:           "dashboard.widget.add",
		ObjectType:     "widget_instance",
		ObjectID:       instance.ID,
		DefinitionCode: req.DefinitionID,
		Metadata: map[string]any{
			"area_code":     req.AreaCode,
			"definition_id": req.DefinitionID,
		},
	})
}

// RemoveWidget deletes a widget instance from its area. Saved layout
// overrides may still name the id; layout resolution skips unknown ids.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return fmt.Errorf("%w: empty id", ErrWidgetNotFound)
	}
	removed, err := store.DeleteInstance(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: removed.AreaCode,
		Instance: removed,
		Reason:   ReasonWidgetRemove,
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{
		"area_code":     removed.AreaCode,
		"definition_id": removed.DefinitionID,
	})
	return s.emitActivity(ctx, ActivityContext{}, activity.Event{
		Verb:           "dashboard.widget.remove",
		ObjectType:     "widget_instance",
		ObjectID:       removed.ID,
		DefinitionCode: removed.DefinitionID,
		Metadata: map[string]any{
			"area_code": removed.AreaCode,
		},
	})
}

// ConfigureLayout resolves widgets for each dashboard area respecting preferences + auth.
// Every widget in the layout shares one hub snapshot per distinct filter set.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	ctx = withSnapshotMemo(ctx)
	layout := Layout{
		Areas: make(map[string][]WidgetInstance),
		Rows:  make(map[string][]LayoutRow),
	}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
			AreaCode: area,
			Audience: viewer.Roles,
			At:       s.opts.Now(),
		})
		if err != nil {
			return Layout{}, err
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
		}
		visible := applyHiddenFilter(resolved.Widgets, overrides.HiddenWidgets)
		ordered := applyOrderOverride(visible, overrides.AreaOrder[area])
		layout.Areas[area] = s.filterAuthorized(ctx, viewer, ordered)
		if rows := overrides.AreaRows[area]; len(rows) > 0 {
			layout.Rows[area] = rows
		}
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
		"date":   viewer.State.Date,
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	ctx = withSnapshotMemo(ctx)
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: areaCode,
		Audience: viewer.Roles,
		At:       s.opts.Now(),
	})
	if err != nil {
		return ResolvedArea{}, err
	}
	for i := range resolved.Widgets {
		resolved.Widgets[i].AreaCode = areaCode
	}
	resolved.Widgets = s.filterAuthorized(ctx, viewer, resolved.Widgets)
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return resolved, nil
}

// Snapshot derives every hub view for the viewer's filters and overlay.
func (s *Service) Snapshot(ctx context.Context, viewer ViewerContext) (hub.Snapshot, error) {
	snap, err := s.opts.Hub.Snapshot(ctx, viewer)
	if err != nil {
		return hub.Snapshot{}, err
	}
	s.recordTelemetry(ctx, "hub.snapshot", map[string]any{
		"viewer":    viewer.UserID,
		"date":      snap.State.Date,
		"attention": len(snap.Tower.Attention),
		"alerts":    len(snap.Alerts),
	})
	return snap, nil
}

// UpdateHTD merges patch onto the viewer's override for leadID and returns the
// effective row.
func (s *Service) UpdateHTD(ctx context.Context, viewer ViewerContext, leadID string, patch hub.HTDPatch) (hub.HTDRow, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return hub.HTDRow{}, ErrMissingLeadID
	}
	if patch.IsZero() {
		return hub.HTDRow{}, ErrEmptyPatch
	}
	base, err := s.baseRow(ctx, leadID)
	if err != nil {
		return hub.HTDRow{}, err
	}
	key := OverlayKey(viewer)
	overlay, err := s.opts.Hub.Overlays().Update(ctx, key, func(o hub.Overlay) hub.Overlay {
		return o.Set(leadID, patch)
	})
	if err != nil {
		return hub.HTDRow{}, fmt.Errorf("dashboard: update overlay: %w", err)
	}
	row := overlay.Effective(base)
	fields := patchFields(patch)
	if err := s.notifyHTD(ctx, leadID, ReasonHTDUpdate); err != nil {
		return row, err
	}
	s.recordTelemetry(ctx, "hub.htd.update", map[string]any{
		"lead_id": leadID,
		"viewer":  key,
		"fields":  fields,
	})
	return row, s.emitActivity(ctx, ActivityContext{UserID: viewer.UserID}, activity.Event{
		Verb:           "hub.htd.update",
		ObjectType:     "htd_row",
		ObjectID:       leadID,
		DefinitionCode: WidgetHTDTower,
		Metadata: map[string]any{
			"fields":      fields,
			"overlay_key": key,
			"stage":       string(row.Stage),
		},
	})
}

// ClearHTD drops the viewer's override for leadID and returns the base row.
func (s *Service) ClearHTD(ctx context.Context, viewer ViewerContext, leadID string) (hub.HTDRow, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return hub.HTDRow{}, ErrMissingLeadID
	}
	base, err := s.baseRow(ctx, leadID)
	if err != nil {
		return hub.HTDRow{}, err
	}
	key := OverlayKey(viewer)
	if _, err := s.opts.Hub.Overlays().Update(ctx, key, func(o hub.Overlay) hub.Overlay {
		return o.Clear(leadID)
	}); err != nil {
		return hub.HTDRow{}, fmt.Errorf("dashboard: clear overlay: %w", err)
	}
	if err := s.notifyHTD(ctx, leadID, ReasonHTDClear); err != nil {
		return base, err
	}
	s.recordTelemetry(ctx, "hub.htd.clear", map[string]any{
		"lead_id": leadID,
		"viewer":  key,
	})
	return base, s.emitActivity(ctx, ActivityContext{UserID: viewer.UserID}, activity.Event{
		Verb:           "hub.htd.clear",
		ObjectType:     "htd_row",
		ObjectID:       leadID,
		DefinitionCode: WidgetHTDTower,
		Metadata:       map[string]any{"overlay_key": key},
	})
}

func (s *Service) baseRow(ctx context.Context, leadID string) (hub.HTDRow, error) {
	base, ok, err := s.opts.Hub.BaseRow(ctx, leadID)
	if err != nil {
		return hub.HTDRow{}, fmt.Errorf("dashboard: load htd rows: %w", err)
	}
	if !ok {
		return hub.HTDRow{}, fmt.Errorf("%w: %s", ErrUnknownLead, leadID)
	}
	return base, nil
}

func (s *Service) notifyHTD(ctx context.Context, leadID, reason string) error {
	return s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: AreaMain,
		Instance: WidgetInstance{DefinitionID: WidgetHTDTower},
		Reason:   reason,
		LeadID:   leadID,
	})
}

// patchFields lists the JSON names of the fields a patch sets.
func patchFields(patch hub.HTDPatch) []string {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	out := make([]string, 0, len(fields))
	for name := range fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emitActivity(ctx context.Context, ids ActivityContext, evt activity.Event) error {
	if !s.activity.Enabled() {
		return nil
	}
	meta := activityContextFrom(ctx)
	evt.ActorID = firstNonEmpty(ids.ActorID, meta.ActorID, ids.UserID, meta.UserID)
	evt.UserID = firstNonEmpty(ids.UserID, meta.UserID)
	evt.TenantID = firstNonEmpty(ids.TenantID, meta.TenantID)
	return s.activity.Emit(ctx, evt)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	if s.opts.ConfigValidator == nil || s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return DefaultAreaCodes()
}

func (s *Service) filterAuthorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	var filtered []WidgetInstance
	for _, w := range widgets {
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return s.attachProviderData(ctx, viewer, filtered)
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance: inst,
			Viewer:   viewer,
			Hub:      s.opts.Hub,
		})
		if err != nil {
			s.recordTelemetry(ctx, eventProviderError, map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         err.Error(),
			})
			continue
		}
		meta := make(map[string]any, len(inst.Metadata)+1)
		for k, v := range inst.Metadata {
			meta[k] = v
		}
		meta["data"] = data
		enriched[i].Metadata = meta
	}
	return enriched
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// SavePreferences persists per-viewer layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return ErrMissingViewer
	}
	normalizeOverrides(&overrides)
	if err := s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.preferences.save", map[string]any{
		"viewer": viewer.UserID,
		"hidden": len(overrides.HiddenWidgets),
	})
	return nil
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
