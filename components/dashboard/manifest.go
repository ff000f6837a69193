package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// WidgetManifestDocument models a YAML manifest describing widgets and a
// starter layout.
type WidgetManifestDocument struct {
	Version string              `json:"version" yaml:"version"`
	Name    string              `json:"name,omitempty" yaml:"name,omitempty"`
	Package string              `json:"package,omitempty" yaml:"package,omitempty"`
	Widgets []ManifestWidget    `json:"widgets" yaml:"widgets"`
	Layout  []ManifestPlacement `json:"layout,omitempty" yaml:"layout,omitempty"`
	Source  string              `json:"-" yaml:"-"`
}

// ManifestWidget describes a single widget entry within a manifest.
type ManifestWidget struct {
	Definition WidgetDefinition `json:"definition" yaml:"definition"`
	Provider   ManifestProvider `json:"provider,omitempty" yaml:"provider,omitempty"`
	Tags       []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestProvider captures discovery metadata about a provider. Entry names
// an already registered widget whose provider the manifest widget reuses.
type ManifestProvider struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Entry        string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// ManifestPlacement seeds a widget instance into an area.
type ManifestPlacement struct {
	Widget   string         `json:"widget" yaml:"widget"`
	Area     string         `json:"area" yaml:"area"`
	Position *int           `json:"position,omitempty" yaml:"position,omitempty"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Roles    []string       `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers it against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*WidgetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers definitions, provider bindings and metadata
// from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *WidgetManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, widget := range doc.Widgets {
		code := widget.Definition.Code
		if err := r.RegisterDefinition(widget.Definition); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", code, doc.Source, err)
		}
		if entry := widget.Provider.Entry; entry != "" {
			provider, ok := r.Provider(entry)
			if !ok {
				return fmt.Errorf("dashboard: widget %s references unknown provider %s", code, entry)
			}
			if err := r.RegisterProvider(code, provider); err != nil {
				return fmt.Errorf("dashboard: bind provider for %s: %w", code, err)
			}
		}
		r.recordProviderMetadata(code, widget.Provider)
	}
	return nil
}

// SeedRequests converts the manifest layout into AddWidget requests.
func (doc *WidgetManifestDocument) SeedRequests() []AddWidgetRequest {
	if doc == nil {
		return nil
	}
	out := make([]AddWidgetRequest, 0, len(doc.Layout))
	for _, placement := range doc.Layout {
		out = append(out, AddWidgetRequest{
			DefinitionID:  placement.Widget,
			AreaCode:      placement.Area,
			Configuration: placement.Config,
			Position:      placement.Position,
			Roles:         placement.Roles,
		})
	}
	return out
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*WidgetManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*WidgetManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc WidgetManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *WidgetManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		if widget.Definition.Code == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing definition.code", idx)
		}
		if widget.Definition.Name == "" {
			return fmt.Errorf("dashboard: manifest widget %s missing definition.name", widget.Definition.Code)
		}
		if _, exists := seen[widget.Definition.Code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates widget code %s", widget.Definition.Code)
		}
		seen[widget.Definition.Code] = struct{}{}
	}
	for idx, placement := range doc.Layout {
		if placement.Widget == "" || placement.Area == "" {
			return fmt.Errorf("dashboard: manifest layout entry %d requires widget and area", idx)
		}
	}
	return nil
}

func (doc *WidgetManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

func (p ManifestProvider) isZero() bool {
	return p.Name == "" &&
		p.Summary == "" &&
		p.Entry == "" &&
		len(p.Capabilities) == 0
}
