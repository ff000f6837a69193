package dashboard

import "context"

// Provider fetches data required to render a widget instance.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext contains the metadata needed by providers.
type WidgetContext struct {
	Instance WidgetInstance
	Viewer   ViewerContext
	Hub      SnapshotSource
}

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any
