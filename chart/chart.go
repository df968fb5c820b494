// Package chart shapes aggregated case data into the payloads the
// rendering side consumes: choropleth, bar and line specs carrying the
// data plus display options. Rendering itself stays out of the pipeline;
// the SVG writer in this package is a convenience for the export
// endpoints and nothing upstream depends on it.
package chart

import (
	"github.com/epitrend/epitrend-api/schema"
)

// DisplayOptions are the knobs a renderer honors.
type DisplayOptions struct {
	Title      string  `json:"title"`
	ColorScale string  `json:"color_scale"`
	RangeMin   float64 `json:"range_min"`
	RangeMax   float64 `json:"range_max"`
}

// ChoroplethSpec shades countries by one metric.
type ChoroplethSpec struct {
	Metric  schema.Metric           `json:"metric"`
	Data    []schema.CountrySummary `json:"data"`
	Options DisplayOptions          `json:"options"`
}

// BarSpec is a ranked bar chart payload.
type BarSpec struct {
	Metric  schema.Metric        `json:"metric"`
	Data    []schema.CountryRank `json:"data"`
	Options DisplayOptions       `json:"options"`
}

// LineSpec plots one or more daily series on a shared date axis.
type LineSpec struct {
	Metric  schema.Metric  `json:"metric"`
	Series  []NamedSeries  `json:"series"`
	Options DisplayOptions `json:"options"`
}

// NamedSeries is one labeled line of a LineSpec.
type NamedSeries struct {
	Label  string             `json:"label"`
	Points schema.DailySeries `json:"points"`
}

// defaultScales matches the palette the upstream analysis used per metric.
var defaultScales = map[schema.Metric]string{
	schema.MetricConfirmed: "Blues",
	schema.MetricDeaths:    "Reds",
	schema.MetricRecovered: "Greens",
	schema.MetricActive:    "Oranges",
}

// Choropleth builds a choropleth payload from country summaries, deriving
// the value range from the data.
func Choropleth(metric schema.Metric, summaries []schema.CountrySummary, title string) ChoroplethSpec {
	var max int64
	for _, s := range summaries {
		if v := s.MetricValue(metric); v > max {
			max = v
		}
	}
	return ChoroplethSpec{
		Metric: metric,
		Data:   summaries,
		Options: DisplayOptions{
			Title:      title,
			ColorScale: defaultScales[metric],
			RangeMax:   float64(max),
		},
	}
}

// RankedBar builds a bar payload from a top-N ranking.
func RankedBar(metric schema.Metric, ranks []schema.CountryRank, title string) BarSpec {
	return BarSpec{
		Metric: metric,
		Data:   ranks,
		Options: DisplayOptions{
			Title:      title,
			ColorScale: defaultScales[metric],
		},
	}
}

// Lines builds a line payload from one or more labeled series.
func Lines(metric schema.Metric, title string, series ...NamedSeries) LineSpec {
	return LineSpec{
		Metric:  metric,
		Series:  series,
		Options: DisplayOptions{Title: title, ColorScale: defaultScales[metric]},
	}
}
