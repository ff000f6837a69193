package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartPoint represents an individual labelled value.
type ChartPoint struct {
	Label string
	Value float64
}

// ChartSpec is everything needed to render one chart.
type ChartSpec struct {
	Title    string
	Subtitle string
	XAxis    []string
	Series   []ChartSeries
	// CacheKey identifies the rendered output; empty disables caching.
	CacheKey string
}

// ChartRenderer renders server-side ECharts markup for one chart type.
type ChartRenderer struct {
	chartType  string
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer for bar, pie or gauge charts.
func NewChartRenderer(chartType string, opts ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		chartType: strings.ToLower(chartType),
		cache:     sharedChartCache,
		theme:     types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ChartType returns the normalized chart type.
func (r *ChartRenderer) ChartType() string {
	return r.chartType
}

// Render produces the chart payload merged into widget data.
func (r *ChartRenderer) Render(spec ChartSpec) (WidgetData, error) {
	if len(spec.Series) == 0 {
		return nil, fmt.Errorf("chart series is required")
	}
	xAxis := spec.XAxis
	if len(xAxis) == 0 {
		xAxis = inferredAxisLabels(spec.Series)
	}
	renderFn := func() (string, error) {
		return r.render(spec.Title, spec.Subtitle, xAxis, spec.Series)
	}

	var (
		html string
		err  error
	)
	if r.cache != nil && spec.CacheKey != "" {
		html, err = r.cache.GetOrRender(r.chartType+":"+spec.CacheKey, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_html": html,
		"chart_type": r.chartType,
		"title":      spec.Title,
		"subtitle":   spec.Subtitle,
		"theme":      r.theme,
	}, nil
}

func (r *ChartRenderer) render(title, subtitle string, xAxis []string, series []ChartSeries) (string, error) {
	switch r.chartType {
	case "bar":
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalChartOptions(title, subtitle)...)
		bar.SetXAxis(xAxis)
		for _, s := range series {
			bar.AddSeries(s.Name, toBarData(s.Points))
		}
		return renderChart(bar)
	case "pie":
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalChartOptions(title, subtitle)...)
		for _, s := range series {
			pie.AddSeries(s.Name, toPieData(s.Points))
		}
		return renderChart(pie)
	case "gauge":
		gauge := charts.NewGauge()
		gauge.SetGlobalOptions(r.globalChartOptions(title, "")...)
		for _, s := range series {
			if len(s.Points) == 0 {
				continue
			}
			gauge.AddSeries(s.Name, []opts.GaugeData{
				{Name: s.Points[0].Label, Value: s.Points[0].Value},
			})
		}
		return renderChart(gauge)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", r.chartType)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalChartOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  name,
			Value: point.Value,
		}
	}
	return data
}

func inferredAxisLabels(series []ChartSeries) []string {
	var candidate []string
	longest := 0
	for _, s := range series {
		if len(s.Points) > longest {
			longest = len(s.Points)
			candidate = make([]string, len(s.Points))
			for i, point := range s.Points {
				if point.Label != "" {
					candidate[i] = point.Label
				} else {
					candidate[i] = fmt.Sprintf("Item %d", i+1)
				}
			}
		}
	}
	return candidate
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func intValue(v any, fallback int) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}
	return fallback
}

func boolValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	case int:
		return val != 0
	default:
		return false
	}
}
