package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-hubsummary/components/hub"
)

const demoDate = "2026-02-11"

var demoInstant = time.Date(2026, time.February, 11, 16, 30, 0, 0, time.UTC)

func demoViewer(userID string) ViewerContext {
	return ViewerContext{UserID: userID, State: hub.DefaultState(demoDate)}
}

// newSeededService wires an in-memory store seeded with the default layout.
func newSeededService(t *testing.T, opts Options) *Service {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryWidgetStore()
	if opts.WidgetStore == nil {
		opts.WidgetStore = store
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return demoInstant }
	}
	service := NewService(opts)
	if err := RegisterAreas(ctx, opts.WidgetStore); err != nil {
		t.Fatalf("RegisterAreas returned error: %v", err)
	}
	if err := RegisterDefinitions(ctx, opts.WidgetStore, service.Providers()); err != nil {
		t.Fatalf("RegisterDefinitions returned error: %v", err)
	}
	if err := SeedLayout(ctx, service, nil); err != nil {
		t.Fatalf("SeedLayout returned error: %v", err)
	}
	return service
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
	last   map[string]map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.last == nil {
		r.last = map[string]map[string]any{}
	}
	r.last[event] = payload
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type recordingRefresh struct {
	events []WidgetEvent
	err    error
}

func (r *recordingRefresh) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	r.events = append(r.events, event)
	return r.err
}

type allowListAuthorizer struct {
	allowed map[string]bool
}

func (a allowListAuthorizer) CanViewWidget(_ context.Context, _ ViewerContext, inst WidgetInstance) bool {
	return a.allowed[inst.DefinitionID]
}

func widgetIDs(widgets []WidgetInstance) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}

func definitionIDs(widgets []WidgetInstance) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.DefinitionID
	}
	return ids
}

func widgetData(t *testing.T, layout Layout, area, definition string) WidgetData {
	t.Helper()
	for _, w := range layout.Areas[area] {
		if w.DefinitionID != definition {
			continue
		}
		data, ok := w.Metadata["data"].(WidgetData)
		if !ok {
			t.Fatalf("widget %s has no provider data: %#v", definition, w.Metadata)
		}
		return data
	}
	t.Fatalf("widget %s not found in %s", definition, area)
	return nil
}
