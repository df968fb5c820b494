package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/epitrend/epitrend-api/schema"
)

func TestChoroplethDerivesRange(t *testing.T) {
	spec := Choropleth(schema.MetricConfirmed, []schema.CountrySummary{
		{Country: "A", Confirmed: 25},
		{Country: "B", Confirmed: 100},
	}, "Confirmed cases")

	assert.Equal(t, "Confirmed cases", spec.Options.Title)
	assert.Equal(t, "Blues", spec.Options.ColorScale)
	assert.Equal(t, 100.0, spec.Options.RangeMax)
	assert.Len(t, spec.Data, 2)
}

func TestRankedBarKeepsOrder(t *testing.T) {
	ranks := []schema.CountryRank{{Country: "B", Value: 100}, {Country: "A", Value: 25}}
	spec := RankedBar(schema.MetricDeaths, ranks, "Deaths")
	assert.Equal(t, ranks, spec.Data)
	assert.Equal(t, "Reds", spec.Options.ColorScale)
}

func TestRenderLineSVG(t *testing.T) {
	d := func(i int) time.Time { return time.Date(2020, 3, i, 0, 0, 0, 0, time.UTC) }
	spec := Lines(schema.MetricConfirmed, "Global confirmed",
		NamedSeries{Label: "confirmed", Points: schema.DailySeries{
			{Date: d(1), Value: 10}, {Date: d(2), Value: 20}, {Date: d(3), Value: 35},
		}},
	)

	svg := RenderLineSVG(spec)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "<polyline")
	assert.Contains(t, svg, "Global confirmed")
	assert.Contains(t, svg, "confirmed</text>")
}

func TestRenderLineSVGEscapesTitle(t *testing.T) {
	spec := Lines(schema.MetricActive, `active <&> "cases"`)
	svg := RenderLineSVG(spec)
	assert.Contains(t, svg, "&lt;&amp;&gt;")
	assert.NotContains(t, svg, "<&>")
}

func TestRenderLineSVGEmptySeries(t *testing.T) {
	svg := RenderLineSVG(Lines(schema.MetricDeaths, "empty"))
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.NotContains(t, svg, "<polyline")
}
