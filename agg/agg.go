// Package agg holds the pure aggregation operations over loaded case
// records. Every function is a deterministic read: the record slice is
// never mutated, so callers may run them in any order or in parallel.
package agg

import (
	"fmt"
	"sort"
	"time"

	"github.com/epitrend/epitrend-api/schema"
)

var (
	ErrCountryNotFound = fmt.Errorf("no records for country")
	ErrInvalidLimit    = fmt.Errorf("ranking size must be positive")
	ErrUnknownMetric   = fmt.Errorf("unknown metric")
)

// DefaultRankSize is the ranking length used when a caller passes no
// explicit n.
const DefaultRankSize = 20

// ValidateMetric reports whether m names a known series.
func ValidateMetric(m schema.Metric) error {
	for _, known := range schema.Metrics {
		if m == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownMetric, m)
}

// SummarizeByCountry groups records by exact country name and sums all four
// counts across every row of the group, states and dates included. Output
// is ordered by country name ascending. Note the source counts are
// cumulative-to-date, so these totals double-accumulate across dates; the
// upstream analysis feeds exactly this to its choropleths.
func SummarizeByCountry(records []schema.CaseRecord) []schema.CountrySummary {
	byCountry := make(map[string]*schema.CountrySummary)
	for _, r := range records {
		s, ok := byCountry[r.Country]
		if !ok {
			s = &schema.CountrySummary{Country: r.Country}
			byCountry[r.Country] = s
		}
		s.Confirmed += r.Confirmed
		s.Active += r.Active
		s.Recovered += r.Recovered
		s.Deaths += r.Deaths
	}

	summaries := make([]schema.CountrySummary, 0, len(byCountry))
	for _, s := range byCountry {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Country < summaries[j].Country
	})
	return summaries
}

// DailyGlobalSeries sums one metric across every country per day. Dates are
// strictly ascending with no duplicates.
func DailyGlobalSeries(records []schema.CaseRecord, metric schema.Metric) (schema.DailySeries, error) {
	if err := ValidateMetric(metric); err != nil {
		return nil, err
	}
	return sumByDay(records, metric), nil
}

// DailyCountrySeries is DailyGlobalSeries restricted to one country's rows.
// A country with no matching rows fails with ErrCountryNotFound rather than
// returning an empty series, so a typo in a tracked-country name surfaces
// instead of producing a silent flat chart.
func DailyCountrySeries(records []schema.CaseRecord, country string, metric schema.Metric) (schema.DailySeries, error) {
	if err := ValidateMetric(metric); err != nil {
		return nil, err
	}

	var matched []schema.CaseRecord
	for _, r := range records {
		if r.Country == country {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrCountryNotFound, country)
	}
	return sumByDay(matched, metric), nil
}

// TopN ranks countries by their summarized metric, descending, ties broken
// by country name ascending, and returns the first n entries.
func TopN(records []schema.CaseRecord, metric schema.Metric, n int) ([]schema.CountryRank, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	if err := ValidateMetric(metric); err != nil {
		return nil, err
	}

	summaries := SummarizeByCountry(records)
	ranks := make([]schema.CountryRank, 0, len(summaries))
	for _, s := range summaries {
		ranks = append(ranks, schema.CountryRank{Country: s.Country, Value: s.MetricValue(metric)})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Value != ranks[j].Value {
			return ranks[i].Value > ranks[j].Value
		}
		return ranks[i].Country < ranks[j].Country
	})

	if n > len(ranks) {
		n = len(ranks)
	}
	return ranks[:n], nil
}

func sumByDay(records []schema.CaseRecord, metric schema.Metric) schema.DailySeries {
	byDay := make(map[time.Time]int64)
	for _, r := range records {
		byDay[dayOf(r.Date)] += r.MetricValue(metric)
	}

	series := make(schema.DailySeries, 0, len(byDay))
	for day, value := range byDay {
		series = append(series, schema.DataPoint{Date: day, Value: value})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// dayOf truncates a timestamp to its UTC calendar day, normalizing finer
// source granularity before grouping.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
