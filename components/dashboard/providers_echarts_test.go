package dashboard

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRendererBar(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer("bar", WithChartCache(nil))
	data, err := renderer.Render(ChartSpec{
		Title:  "Ratings",
		Series: []ChartSeries{{Name: "Visits", Points: []ChartPoint{{Label: "5★", Value: 2}, {Label: "NF", Value: 1}}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "bar", data["chart_type"])
	assert.Equal(t, "Ratings", data["title"])
	assert.Equal(t, types.ThemeWesteros, data["theme"])
	assert.Contains(t, html(data), "echarts")
}

func TestChartRendererPieAndGauge(t *testing.T) {
	t.Parallel()
	for _, chartType := range []string{"pie", "gauge"} {
		renderer := NewChartRenderer(strings.ToUpper(chartType), WithChartCache(nil))
		data, err := renderer.Render(ChartSpec{
			Title:  "Chart " + chartType,
			Series: []ChartSeries{{Name: "Utilization", Points: []ChartPoint{{Label: "Avg %", Value: 28}}}},
		})
		require.NoError(t, err, chartType)
		assert.Equal(t, chartType, data["chart_type"])
		assert.Contains(t, html(data), "echarts")
	}
}

func TestChartRendererRejectsUnknownType(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer("bubble", WithChartCache(nil))
	_, err := renderer.Render(ChartSpec{Series: []ChartSeries{{Name: "x", Points: []ChartPoint{{Value: 1}}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported chart type")
}

func TestChartRendererRequiresSeries(t *testing.T) {
	t.Parallel()
	_, err := NewChartRenderer("bar").Render(ChartSpec{Title: "empty"})
	require.Error(t, err)
}

func TestChartRendererUsesCacheKey(t *testing.T) {
	t.Parallel()
	cache := &countingCache{inner: NewChartCache(time.Minute)}
	renderer := NewChartRenderer("bar", WithChartCache(cache))
	spec := ChartSpec{
		Title:    "Cached",
		Series:   []ChartSeries{{Name: "s", Points: []ChartPoint{{Label: "a", Value: 1}}}},
		CacheKey: "widget-1",
	}
	_, err := renderer.Render(spec)
	require.NoError(t, err)
	_, err = renderer.Render(spec)
	require.NoError(t, err)

	assert.Equal(t, []string{"bar:widget-1", "bar:widget-1"}, cache.keys)
	assert.Equal(t, 1, cache.inner.Stats().Entries)
}

func TestChartRendererAssetsHost(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer("bar", WithChartCache(nil), WithChartAssetsHost("https://cdn.example.com/echarts/"))
	data, err := renderer.Render(ChartSpec{
		Series: []ChartSeries{{Name: "s", Points: []ChartPoint{{Label: "a", Value: 1}}}},
	})
	require.NoError(t, err)
	assert.Contains(t, html(data), "cdn.example.com")
}

func TestInferredAxisLabelsFillsBlanks(t *testing.T) {
	labels := inferredAxisLabels([]ChartSeries{
		{Points: []ChartPoint{{Label: "a"}}},
		{Points: []ChartPoint{{Label: "x"}, {}}},
	})
	assert.Equal(t, []string{"x", "Item 2"}, labels)
}

func TestConfigValueHelpers(t *testing.T) {
	assert.Equal(t, 5, intValue(float64(5), 0))
	assert.Equal(t, 7, intValue(" 7 ", 0))
	assert.Equal(t, 3, intValue("nope", 3))
	assert.True(t, boolValue("TRUE"))
	assert.False(t, boolValue(nil))
	assert.Equal(t, "fallback", stringValue(12, "fallback"))
}

type countingCache struct {
	inner *ChartCache
	keys  []string
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	c.keys = append(c.keys, key)
	return c.inner.GetOrRender(key, render)
}

func html(data WidgetData) string {
	return fmt.Sprint(data["chart_html"])
}
