package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/epitrend/epitrend-api/agg"
	"github.com/epitrend/epitrend-api/chart"
	"github.com/epitrend/epitrend-api/forecast"
	"github.com/epitrend/epitrend-api/schema"
)

// metricParam validates the "metric" query parameter, defaulting to
// confirmed. It aborts the request on an unknown metric.
func metricParam(c *gin.Context) (schema.Metric, bool) {
	metric := schema.Metric(c.DefaultQuery("metric", string(schema.MetricConfirmed)))
	if err := agg.ValidateMetric(metric); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownMetric, err)
		return "", false
	}
	return metric, true
}

func (s *Server) getSummaries(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}

	summaries := agg.SummarizeByCountry(s.records)
	title := fmt.Sprintf("%s cases by country", metric)
	c.JSON(http.StatusOK, chart.Choropleth(metric, summaries, title))
}

func (s *Server) getTopCountries(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}

	n := agg.DefaultRankSize
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
			return
		}
		n = parsed
	}

	ranks, err := agg.TopN(s.records, metric, n)
	if err != nil {
		if errors.Is(err, agg.ErrInvalidLimit) {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidRankingSize, err)
			return
		}
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	title := fmt.Sprintf("top %d countries by %s", n, metric)
	c.JSON(http.StatusOK, chart.RankedBar(metric, ranks, title))
}

func (s *Server) getGlobalSeries(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}

	series, err := agg.DailyGlobalSeries(s.records, metric)
	if err != nil {
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	title := fmt.Sprintf("global %s cases over time", metric)
	c.JSON(http.StatusOK, chart.Lines(metric, title, chart.NamedSeries{Label: "global", Points: series}))
}

func (s *Server) getCountrySeries(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}

	country := c.Query("name")
	if country == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("missing country name"))
		return
	}

	series, err := agg.DailyCountrySeries(s.records, country, metric)
	if err != nil {
		if errors.Is(err, agg.ErrCountryNotFound) {
			abortWithEncoding(c, http.StatusNotFound, errorCountryNotFound, err)
			return
		}
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	title := fmt.Sprintf("%s %s cases over time", country, metric)
	c.JSON(http.StatusOK, chart.Lines(metric, title, chart.NamedSeries{Label: country, Points: series}))
}

// getTrackedSeries returns one series per configured tracked country. A
// tracked name with no rows surfaces as not-found rather than being
// silently skipped.
func (s *Server) getTrackedSeries(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}

	var lines []chart.NamedSeries
	for _, country := range viper.GetStringSlice("countries.tracked") {
		series, err := agg.DailyCountrySeries(s.records, country, metric)
		if err != nil {
			if errors.Is(err, agg.ErrCountryNotFound) {
				abortWithEncoding(c, http.StatusNotFound, errorCountryNotFound, err)
				return
			}
			log.Error(err)
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		lines = append(lines, chart.NamedSeries{Label: country, Points: series})
	}

	title := fmt.Sprintf("tracked countries, %s cases", metric)
	c.JSON(http.StatusOK, chart.Lines(metric, title, lines...))
}

// forecastableMetrics are fitted independently, one model per metric.
var forecastableMetrics = map[schema.Metric]bool{
	schema.MetricConfirmed: true,
	schema.MetricRecovered: true,
	schema.MetricDeaths:    true,
}

func (s *Server) getForecast(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}
	if !forecastableMetrics[metric] {
		abortWithEncoding(c, http.StatusBadRequest, errorUnforecastable, fmt.Errorf("metric %q has no forecast", metric))
		return
	}

	series, err := agg.DailyGlobalSeries(s.records, metric)
	if err != nil {
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	projector := forecast.Projector{
		Horizon:    viper.GetInt("forecast.horizon"),
		Confidence: viper.GetFloat64("forecast.confidence"),
	}
	out, err := projector.Project(series)
	if err != nil {
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorForecastFailed, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":   metric,
		"forecast": out,
	})
}

func (s *Server) getSeriesChart(c *gin.Context) {
	metric, ok := metricParam(c)
	if !ok {
		return
	}

	var spec chart.LineSpec
	if country := c.Query("name"); country != "" {
		series, err := agg.DailyCountrySeries(s.records, country, metric)
		if err != nil {
			if errors.Is(err, agg.ErrCountryNotFound) {
				abortWithEncoding(c, http.StatusNotFound, errorCountryNotFound, err)
				return
			}
			log.Error(err)
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		spec = chart.Lines(metric, fmt.Sprintf("%s %s cases", country, metric), chart.NamedSeries{Label: country, Points: series})
	} else {
		series, err := agg.DailyGlobalSeries(s.records, metric)
		if err != nil {
			log.Error(err)
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		spec = chart.Lines(metric, fmt.Sprintf("global %s cases", metric), chart.NamedSeries{Label: "global", Points: series})
	}

	c.Data(http.StatusOK, "image/svg+xml", []byte(chart.RenderLineSVG(spec)))
}

// writeSnapshot persists the loaded dataset and its country summaries to
// the snapshot store.
func (s *Server) writeSnapshot(c *gin.Context) {
	if s.mongoStore == nil {
		abortWithEncoding(c, http.StatusBadRequest, errorNoSnapshotStore)
		return
	}

	ctx := c.Request.Context()
	if err := s.mongoStore.ReplaceCases(ctx, s.records); err != nil {
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	summaries := agg.SummarizeByCountry(s.records)
	if err := s.mongoStore.ReplaceSummaries(ctx, summaries); err != nil {
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"records":   len(s.records),
		"countries": len(summaries),
	})
}
