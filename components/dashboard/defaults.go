package dashboard

import "strings"

// Area codes of the hub dashboard.
const (
	AreaMain    = "hub.dashboard.main"
	AreaSidebar = "hub.dashboard.sidebar"
	AreaFooter  = "hub.dashboard.footer"
)

// Widget definition codes.
const (
	WidgetVisitsSummary  = "hub.widget.visits_summary"
	WidgetFeedback       = "hub.widget.feedback"
	WidgetRatingChart    = "hub.widget.rating_chart"
	WidgetRMFeedback     = "hub.widget.rm_feedback"
	WidgetHTDTower       = "hub.widget.htd_tower"
	WidgetRMProductivity = "hub.widget.rm_productivity"
	WidgetHubAggregate   = "hub.widget.hub_aggregate"
	WidgetAlerts         = "hub.widget.alerts"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaMain, Name: "Hub Summary (Main)", Description: "Visits, control tower and RM productivity"},
	{Code: AreaSidebar, Name: "Hub Summary (Sidebar)", Description: "Hub totals and live alerts"},
	{Code: AreaFooter, Name: "Hub Summary (Footer)", Description: "Customer feedback"},
}

var (
	rangeProperty = map[string]any{
		"type": "string",
		"enum": []string{"1D", "2D", "7D", "CUSTOM"},
	}
	customStartProperty = map[string]any{
		"type":    "string",
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
)

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:        WidgetVisitsSummary,
		Name:        "Today's Visits",
		Description: "Visit counts per status and the visit log",
		Category:    "visits",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"scope":  map[string]any{"type": "string", "enum": []string{"ALL", "HV", "HTD"}},
				"status": map[string]any{"type": "string", "enum": []string{"ALL", "SCHEDULED", "ONGOING", "COMPLETED", "CANCELLED"}},
				"order":  map[string]any{"type": "string", "enum": []string{"concatenated", "natural"}},
				"limit":  map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
			},
		},
	},
	{
		Code:        WidgetFeedback,
		Name:        "Customer Feedback",
		Description: "Rating histogram and feedback entries for the selected range",
		Category:    "feedback",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"range":        rangeProperty,
				"custom_start": customStartProperty,
				"rating":       map[string]any{"type": "string", "enum": []string{"ALL", "NF", "1", "2", "3", "4", "5"}},
				"view":         map[string]any{"type": "string", "enum": []string{"HUB", "RM"}},
			},
		},
	},
	{
		Code:        WidgetRatingChart,
		Name:        "Rating Distribution",
		Description: "Feedback ratings chart",
		Category:    "charts",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"range":        rangeProperty,
				"custom_start": customStartProperty,
				"chart_type":   map[string]any{"type": "string", "enum": []string{"bar", "pie"}, "default": "bar"},
				"title":        map[string]any{"type": "string", "minLength": 1},
			},
		},
	},
	{
		Code:        WidgetRMFeedback,
		Name:        "Feedback by RM",
		Description: "Ratings below and at or above 3 per relationship manager",
		Category:    "feedback",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"range":        rangeProperty,
				"custom_start": customStartProperty,
			},
		},
	},
	{
		Code:        WidgetHTDTower,
		Name:        "HTD Control Tower",
		Description: "Home test drives per stage and dispatch attention list",
		Category:    "logistics",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"stage": map[string]any{"type": "string", "enum": []string{"upcoming", "ongoing", "completed", "cancelled"}},
			},
		},
	},
	{
		Code:        WidgetRMProductivity,
		Name:        "RM Productivity",
		Description: "Utilization since first customer contact, lowest first",
		Category:    "productivity",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"show_chart": map[string]any{"type": "boolean", "default": false},
			},
		},
	},
	{
		Code:        WidgetHubAggregate,
		Name:        "Hub Totals",
		Description: "Today and month to date counters across the hub",
		Category:    "productivity",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"show_gauge": map[string]any{"type": "boolean", "default": false},
			},
		},
	},
	{
		Code:        WidgetAlerts,
		Name:        "Live Alerts",
		Description: "Dispatch, long visit and low rating alerts",
		Category:    "alerts",
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"severity": map[string]any{"type": "string", "enum": []string{"critical", "warning", "info"}},
				"limit":    map[string]any{"type": "integer", "minimum": 1, "maximum": 50},
			},
		},
	},
}

var defaultSeedWidgets = []AddWidgetRequest{
	{DefinitionID: WidgetVisitsSummary, AreaCode: AreaMain},
	{DefinitionID: WidgetHTDTower, AreaCode: AreaMain},
	{DefinitionID: WidgetRMProductivity, AreaCode: AreaMain, Configuration: map[string]any{"show_chart": true}},
	{DefinitionID: WidgetHubAggregate, AreaCode: AreaSidebar, Configuration: map[string]any{"show_gauge": true}},
	{DefinitionID: WidgetAlerts, AreaCode: AreaSidebar, Configuration: map[string]any{"limit": 10}},
	{DefinitionID: WidgetFeedback, AreaCode: AreaFooter},
	{DefinitionID: WidgetRatingChart, AreaCode: AreaFooter, Configuration: map[string]any{"chart_type": "bar"}},
	{DefinitionID: WidgetRMFeedback, AreaCode: AreaFooter},
}

var areaAliases = map[string]string{
	"main":    AreaMain,
	"sidebar": AreaSidebar,
	"footer":  AreaFooter,
}

// NormalizeAreaCode expands the short names "main", "sidebar" and "footer";
// other codes pass through trimmed.
func NormalizeAreaCode(value string) string {
	value = strings.TrimSpace(value)
	if code, ok := areaAliases[strings.ToLower(value)]; ok {
		return code
	}
	return value
}

// DefaultAreaDefinitions returns the hub dashboard areas.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultAreaCodes returns the area codes in display order.
func DefaultAreaCodes() []string {
	codes := make([]string, 0, len(defaultAreaDefinitions))
	for _, area := range defaultAreaDefinitions {
		codes = append(codes, area.Code)
	}
	return codes
}

// DefaultWidgetDefinitions returns the built-in hub widgets.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns the starter layout.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedWidgets))
	for i, req := range defaultSeedWidgets {
		out[i] = req
		if req.Configuration != nil {
			cfg := make(map[string]any, len(req.Configuration))
			for k, v := range req.Configuration {
				cfg[k] = v
			}
			out[i].Configuration = cfg
		}
	}
	return out
}
