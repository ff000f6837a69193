package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walkInManifest = `
version: "1"
name: hub-extras
widgets:
  - definition:
      code: hub.widget.walkin_visits
      name: Walk-in Visits
      description: Hub visits only, in natural order.
      category: visits
      schema:
        type: object
        additionalProperties: false
        properties:
          scope:
            type: string
            enum: [ALL, HV, HTD]
          order:
            type: string
    provider:
      name: Visits summary
      entry: hub.widget.visits_summary
      capabilities: ["json", "html"]
layout:
  - widget: hub.widget.walkin_visits
    area: hub.dashboard.main
    position: 0
    config:
      scope: HV
      order: natural
`

func TestDecodeManifest(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(walkInManifest))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)

	widget := doc.Widgets[0]
	assert.Equal(t, "hub.widget.walkin_visits", widget.Definition.Code)
	assert.Equal(t, "Walk-in Visits", widget.Definition.Name)
	assert.Equal(t, WidgetVisitsSummary, widget.Provider.Entry)
	assert.Equal(t, "visits", widget.Definition.Category)

	requests := doc.SeedRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, AreaMain, requests[0].AreaCode)
	require.NotNil(t, requests[0].Position)
	assert.Equal(t, 0, *requests[0].Position)
	assert.Equal(t, "HV", requests[0].Configuration["scope"])
}

func TestDecodeManifestRejectsUnknownFields(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader(`
version: "1"
widgets:
  - definition:
      code: hub.widget.x
      name: X
    provider:
      docs_url: https://example.com
`))
	require.Error(t, err)
}

func TestDecodeManifestValidation(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"version":        "version: \"2\"\nwidgets: []\n",
		"missing code":   "widgets:\n  - definition:\n      name: X\n",
		"missing name":   "widgets:\n  - definition:\n      code: hub.widget.x\n",
		"duplicate code": "widgets:\n  - definition: {code: a, name: A}\n  - definition: {code: a, name: B}\n",
		"layout area":    "widgets: []\nlayout:\n  - widget: hub.widget.alerts\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(payload))
			assert.Error(t, err)
		})
	}
}

func TestRegistryLoadManifestBindsEntryProvider(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(walkInManifest))
	require.NoError(t, err)

	registry := NewRegistry()
	require.NoError(t, registry.LoadManifestDocument(doc))

	_, ok := registry.Definition("hub.widget.walkin_visits")
	assert.True(t, ok)
	provider, ok := registry.Provider("hub.widget.walkin_visits")
	require.True(t, ok)
	require.NotNil(t, provider)
	meta, ok := registry.ProviderMetadata("hub.widget.walkin_visits")
	require.True(t, ok)
	assert.Equal(t, []string{"json", "html"}, meta.Capabilities)
}

func TestRegistryLoadManifestUnknownEntry(t *testing.T) {
	registry := NewRegistry()
	err := registry.LoadManifestDocument(&WidgetManifestDocument{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{{
			Definition: WidgetDefinition{Code: "hub.widget.orphan", Name: "Orphan"},
			Provider:   ManifestProvider{Entry: "hub.widget.missing"},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
	assert.Error(t, registry.LoadManifestDocument(nil))
}

func TestManifestWidgetRendersThroughService(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hub-extras.yaml")
	require.NoError(t, os.WriteFile(path, []byte(walkInManifest), 0o600))

	registry := NewRegistry()
	doc, err := registry.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	ctx := context.Background()
	store := NewMemoryWidgetStore()
	service := NewService(Options{WidgetStore: store, Providers: registry})
	require.NoError(t, RegisterAreas(ctx, store))
	require.NoError(t, RegisterDefinitions(ctx, store, registry))
	require.NoError(t, SeedLayout(ctx, service, doc.SeedRequests()))

	layout, err := service.ConfigureLayout(ctx, demoViewer("user-1"))
	require.NoError(t, err)
	data := widgetData(t, layout, AreaMain, "hub.widget.walkin_visits")
	assert.Equal(t, "HV", data["scope"])
	assert.Equal(t, "natural", data["order"])
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
