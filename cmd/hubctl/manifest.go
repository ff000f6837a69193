package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-hubsummary/components/dashboard"
)

type manifestCmd struct {
	Add   manifestAddCmd   `cmd:"" help:"Add or replace a widget definition in a manifest."`
	Place manifestPlaceCmd `cmd:"" help:"Append a layout placement to a manifest."`
	Check manifestCheckCmd `cmd:"" help:"Validate a manifest against the built-in hub widgets."`
}

type manifestAddCmd struct {
	Path         string   `arg:"" type:"path" help:"Manifest YAML file to update (created when missing)."`
	Code         string   `required:"" help:"Fully-qualified widget code (e.g. hub.widget.late_checkouts)."`
	Name         string   `help:"Display name. Derived from the code when empty."`
	Description  string   `help:"One-line description."`
	Category     string   `default:"custom" help:"Widget category."`
	SchemaPath   string   `name:"schema" type:"path" help:"JSON schema file for the widget configuration."`
	Provider     string   `help:"Built-in widget code whose provider renders this widget."`
	Capabilities []string `help:"Provider capability labels (html,json,...)."`
	Tag          []string `help:"Tags to record (repeatable)."`
	Overwrite    bool     `help:"Replace an existing entry with the same code."`
}

func (cmd *manifestAddCmd) Run(rc *runContext) error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("hubctl: widget code %s must contain at least one '.' segment", cmd.Code)
	}
	doc, err := loadOrInitManifest(cmd.Path)
	if err != nil {
		return err
	}
	schema, err := loadSchema(cmd.SchemaPath)
	if err != nil {
		return err
	}
	name := cmd.Name
	if name == "" {
		name = displayName(cmd.Code)
	}
	entry := dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        cmd.Code,
			Name:        name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Tags: cmd.Tag,
	}
	if cmd.Provider != "" {
		entry.Provider = dashboard.ManifestProvider{
			Name:         strcase.ToPascal(lastSegment(cmd.Code)) + "Provider",
			Summary:      cmd.Description,
			Entry:        cmd.Provider,
			Capabilities: cmd.Capabilities,
		}
	}
	if err := upsertWidget(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := writeManifest(cmd.Path, doc); err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "added %s to %s\n", cmd.Code, cmd.Path)
	return nil
}

type manifestPlaceCmd struct {
	Path     string   `arg:"" type:"path" help:"Manifest YAML file to update."`
	Widget   string   `required:"" help:"Widget code to place."`
	Area     string   `default:"hub.dashboard.main" help:"Target area code."`
	Position int      `default:"-1" help:"Position within the area; negative appends."`
	Config   string   `help:"Widget configuration as a JSON object."`
	Role     []string `help:"Roles allowed to see the widget (repeatable)."`
}

func (cmd *manifestPlaceCmd) Run(rc *runContext) error {
	doc, err := loadOrInitManifest(cmd.Path)
	if err != nil {
		return err
	}
	var config map[string]any
	if cmd.Config != "" {
		if err := json.Unmarshal([]byte(cmd.Config), &config); err != nil {
			return fmt.Errorf("hubctl: parse --config: %w", err)
		}
	}
	placement := dashboard.ManifestPlacement{
		Widget: cmd.Widget,
		Area:   cmd.Area,
		Config: config,
		Roles:  cmd.Role,
	}
	if cmd.Position >= 0 {
		pos := cmd.Position
		placement.Position = &pos
	}
	doc.Layout = append(doc.Layout, placement)
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(cmd.Path, doc); err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "placed %s in %s\n", cmd.Widget, cmd.Area)
	return nil
}

type manifestCheckCmd struct {
	Path string `arg:"" type:"existingfile" help:"Manifest YAML file to validate."`
}

func (cmd *manifestCheckCmd) Run(rc *runContext) error {
	doc, err := checkManifest(cmd.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "%s: %d widgets, %d placements\n", cmd.Path, len(doc.Widgets), len(doc.Layout))
	for _, code := range unboundWidgets(doc) {
		fmt.Fprintf(rc.out, "warning: %s has no provider entry and renders empty\n", code)
	}
	return nil
}

// checkManifest loads path into a fresh registry so provider entries and
// layout placements are resolved against the hub widgets.
func checkManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	registry := dashboard.NewRegistry()
	doc, err := registry.LoadManifestFile(path)
	if err != nil {
		return nil, err
	}
	for _, placement := range doc.Layout {
		if _, ok := registry.Definition(placement.Widget); !ok {
			return nil, fmt.Errorf("hubctl: layout references unknown widget %s", placement.Widget)
		}
	}
	return doc, nil
}

func unboundWidgets(doc *dashboard.WidgetManifestDocument) []string {
	registry := dashboard.NewRegistry()
	if err := registry.LoadManifestDocument(doc); err != nil {
		return nil
	}
	return registry.Unbound()
}

func upsertWidget(doc *dashboard.WidgetManifestDocument, entry dashboard.ManifestWidget, overwrite bool) error {
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Code != entry.Definition.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("hubctl: manifest already defines widget %s (use --overwrite to replace)", entry.Definition.Code)
		}
		doc.Widgets[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
	return nil
}

func loadSchema(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("hubctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("hubctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("hubctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("hubctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("hubctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("hubctl: write manifest: %w", err)
	}
	return encoder.Close()
}

func lastSegment(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		return code
	}
	return slug
}

// displayName turns "hub.widget.late_checkouts" into "Late Checkouts".
func displayName(code string) string {
	words := strings.Split(strcase.ToSnake(lastSegment(code)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
