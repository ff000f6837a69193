package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// WidgetStore encapsulates persistence of areas, definitions and widget instances.
// Implementations ensure thread safety and idempotency.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	// DeleteInstance drops the instance and its area assignment and returns
	// it with AreaCode set.
	DeleteInstance(ctx context.Context, instanceID string) (WidgetInstance, error)
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer determines if a viewer can see a widget instance.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore returns layout overrides per viewer.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// OverlayStore holds the HTD override overlay of each viewer session.
type OverlayStore interface {
	Overlay(ctx context.Context, key string) (hub.Overlay, error)
	Update(ctx context.Context, key string, fn func(hub.Overlay) hub.Overlay) (hub.Overlay, error)
}

// ProviderRegistry stores widget definitions/providers discoverable via hooks or manifests.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition models a dashboard widget area (main/sidebar/footer).
type WidgetAreaDefinition struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WidgetDefinition describes a widget and the schema of its configuration.
type WidgetDefinition struct {
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance represents a configured widget placed in an area.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// WidgetVisibility defines runtime visibility constraints.
type WidgetVisibility struct {
	Roles   []string
	StartAt *time.Time
	EndAt   *time.Time
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ResolveAreaInput requests widget instances for a given area and audience.
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	At       time.Time
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string           `json:"area_code"`
	Widgets  []WidgetInstance `json:"widgets"`
}

// LayoutOverrides captures per-user adjustments.
type LayoutOverrides struct {
	AreaOrder     map[string][]string    `json:"area_order"`
	AreaRows      map[string][]LayoutRow `json:"area_rows,omitempty"`
	HiddenWidgets map[string]bool        `json:"hidden_widgets"`
}

// LayoutRow is one row of a twelve column grid.
type LayoutRow struct {
	Widgets []WidgetSlot `json:"widgets"`
}

// WidgetSlot places a widget within a row.
type WidgetSlot struct {
	ID    string `json:"id"`
	Width int    `json:"width"`
}

// ViewerContext captures the active user and the hub filters they selected.
type ViewerContext struct {
	UserID string    `json:"user_id"`
	Roles  []string  `json:"roles,omitempty"`
	State  hub.State `json:"state"`
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance `json:"areas"`
	Rows  map[string][]LayoutRow      `json:"rows,omitempty"`
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
	LeadID   string         `json:"lead_id,omitempty"`
}
