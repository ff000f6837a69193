package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLayoutResolver struct {
	layout Layout
	err    error
}

func (s *stubLayoutResolver) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	return s.layout, s.err
}

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func TestControllerRenderTemplate(t *testing.T) {
	service := &stubLayoutResolver{
		layout: Layout{
			Areas: map[string][]WidgetInstance{
				AreaSidebar: {
					{ID: "w1", DefinitionID: WidgetAlerts, Metadata: map[string]any{"data": WidgetData{"count": 2}}},
				},
			},
		},
	}
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Template: "dashboard.html",
	})

	var buf bytes.Buffer
	if err := controller.RenderTemplate(context.Background(), demoViewer("user"), &buf); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}
	if renderer.lastTemplate != "dashboard.html" {
		t.Fatalf("expected dashboard template to render, got %s", renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
}

func TestControllerLayoutPayload(t *testing.T) {
	service := &stubLayoutResolver{
		layout: Layout{
			Areas: map[string][]WidgetInstance{
				AreaMain: {
					{ID: "w1", DefinitionID: WidgetHTDTower, AreaCode: AreaMain, Metadata: map[string]any{"data": WidgetData{"clock": "16:30"}}},
					{ID: "w2", DefinitionID: WidgetRMProductivity, AreaCode: AreaMain},
				},
			},
			Rows: map[string][]LayoutRow{
				AreaMain: {{Widgets: []WidgetSlot{{ID: "w1", Width: 8}}}},
			},
		},
	}
	controller := NewController(ControllerOptions{Service: service})
	payload, err := controller.LayoutPayload(context.Background(), demoViewer("user"))
	require.NoError(t, err)

	assert.Equal(t, "Hub Summary", payload["title"])
	state := payload["state"].(map[string]any)
	assert.Equal(t, demoDate, state["date"])
	assert.Equal(t, "16:30", state["clock"])

	areas := payload["areas"].(map[string]any)
	main := areas["main"].(map[string]any)
	assert.Equal(t, AreaMain, main["code"])
	widgets := main["widgets"].([]any)
	require.Len(t, widgets, 2)

	first := widgets[0].(map[string]any)
	assert.Equal(t, "htd_tower", first["kind"])
	assert.Equal(t, "htd-tower-w1", first["anchor"])
	assert.Equal(t, 8, first["width"])
	assert.Equal(t, WidgetData{"clock": "16:30"}, first["data"])

	second := widgets[1].(map[string]any)
	assert.Equal(t, gridColumns, second["width"])
	assert.NotContains(t, second, "data")

	sidebar := areas["sidebar"].(map[string]any)
	assert.Empty(t, sidebar["widgets"])
	assert.Len(t, payload["area_order"], 3)
}

func TestControllerPropagatesErrors(t *testing.T) {
	controller := NewController(ControllerOptions{
		Service:  &stubLayoutResolver{err: errors.New("store offline")},
		Renderer: &stubRenderer{},
	})
	_, err := controller.LayoutPayload(context.Background(), demoViewer("user"))
	assert.EqualError(t, err, "store offline")
	assert.Error(t, controller.RenderTemplate(context.Background(), demoViewer("user"), io.Discard))

	bare := NewController(ControllerOptions{Service: &stubLayoutResolver{}})
	assert.Error(t, bare.RenderTemplate(context.Background(), demoViewer("user"), io.Discard))
	assert.Error(t, NewController(ControllerOptions{}).RenderTemplate(context.Background(), demoViewer("user"), io.Discard))
}

func TestControllerRendersSeededLayout(t *testing.T) {
	service := newSeededService(t, Options{})
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{Service: service, Renderer: renderer})
	require.NoError(t, controller.RenderTemplate(context.Background(), demoViewer("user"), io.Discard))

	assert.Equal(t, defaultTemplate, renderer.lastTemplate)
	footer := renderer.lastPayload["areas"].(map[string]any)["footer"].(map[string]any)
	assert.Len(t, footer["widgets"], 3)
}

func TestDashboardTemplateVisitsHeading(t *testing.T) {
	raw, err := embeddedTemplates.ReadFile("templates/" + defaultTemplate + ".html")
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "<h2>Visits ({{ widget.data.counts.total }})</h2>")
	assert.NotContains(t, strings.ToLower(html), "home visit")
}
