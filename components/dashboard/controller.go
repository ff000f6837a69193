package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-hubsummary/components/hub"
)

const defaultTemplate = "dashboard"

// LayoutResolver resolves the widget layout for a viewer.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
	Title    string
	Areas    []string
}

// Controller turns resolved layouts into template payloads and HTML.
type Controller struct {
	service  LayoutResolver
	renderer Renderer
	template string
	title    string
	areas    []string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	if opts.Title == "" {
		opts.Title = "Hub Summary"
	}
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaCodes()
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		title:    opts.Title,
		areas:    opts.Areas,
	}
}

// Render resolves the layout for a viewer.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.service == nil {
		return Layout{}, errors.New("dashboard: controller requires a layout resolver")
	}
	return c.service.ConfigureLayout(ctx, viewer)
}

// LayoutPayload builds the template/JSON payload for a viewer.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return nil, err
	}
	areas := make(map[string]any, len(c.areas))
	order := make([]any, 0, len(c.areas))
	for _, code := range c.areas {
		slot := areaSlot(code)
		widths := slotWidths(layout.Rows[code])
		widgets := make([]any, 0, len(layout.Areas[code]))
		for _, inst := range layout.Areas[code] {
			widgets = append(widgets, widgetPayload(inst, widths))
		}
		area := map[string]any{
			"code":    code,
			"slot":    slot,
			"widgets": widgets,
		}
		areas[slot] = area
		order = append(order, area)
	}
	return map[string]any{
		"title":      c.title,
		"state":      statePayload(viewer.State),
		"areas":      areas,
		"area_order": order,
		"viewer":     viewer.UserID,
	}, nil
}

// RenderTemplate renders the dashboard template into w.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, w io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: controller requires a renderer")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, payload, w)
	return err
}

func widgetPayload(inst WidgetInstance, widths map[string]int) map[string]any {
	kind := strcase.ToSnake(strings.TrimPrefix(inst.DefinitionID, "hub.widget."))
	width, ok := widths[inst.ID]
	if !ok {
		width = gridColumns
	}
	payload := map[string]any{
		"id":         inst.ID,
		"definition": inst.DefinitionID,
		"kind":       kind,
		"anchor":     strcase.ToKebab(kind) + "-" + inst.ID,
		"area_code":  inst.AreaCode,
		"config":     inst.Configuration,
		"width":      width,
	}
	if data, ok := inst.Metadata["data"]; ok {
		payload["data"] = data
	}
	return payload
}

func slotWidths(rows []LayoutRow) map[string]int {
	widths := map[string]int{}
	for _, row := range rows {
		for _, slot := range row.Widgets {
			widths[slot.ID] = slot.Width
		}
	}
	return widths
}

func areaSlot(code string) string {
	if idx := strings.LastIndex(code, "."); idx >= 0 {
		return code[idx+1:]
	}
	return code
}

func statePayload(state hub.State) map[string]any {
	return map[string]any{
		"date":         state.Date,
		"scope":        string(state.Scope),
		"status":       string(state.FocusStatus),
		"range":        string(state.Range),
		"custom_start": state.CustomStart,
		"view":         string(state.View),
		"rating":       string(state.FocusRating),
		"stage":        string(state.Stage),
		"clock":        state.Clock,
		"order":        string(state.Order),
	}
}
