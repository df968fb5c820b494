package schema

import "time"

// Metric names a reported case count series.
type Metric string

const (
	MetricConfirmed Metric = "confirmed"
	MetricDeaths    Metric = "deaths"
	MetricRecovered Metric = "recovered"
	MetricActive    Metric = "active"
)

// Metrics lists every metric a series or ranking can be requested for.
var Metrics = []Metric{MetricConfirmed, MetricDeaths, MetricRecovered, MetricActive}

// CaseRecord is one row of the daily report: cumulative counts for a
// country (optionally a state within it) on a given calendar day.
// Active is derived after load and is not trusted from the source; it may
// be negative when the source counts are inconsistent.
type CaseRecord struct {
	Country   string    `json:"country" bson:"country"`
	State     string    `json:"state" bson:"state"`
	Date      time.Time `json:"date" bson:"date"`
	Latitude  float64   `json:"lat" bson:"lat"`
	Longitude float64   `json:"long" bson:"long"`
	Confirmed int64     `json:"confirmed" bson:"confirmed"`
	Deaths    int64     `json:"deaths" bson:"deaths"`
	Recovered int64     `json:"recovered" bson:"recovered"`
	Active    int64     `json:"active" bson:"active"`
	Region    string    `json:"who_region" bson:"who_region"`
}

// MetricValue returns the record's count for the given metric. Unknown
// metrics return zero; callers validate the metric name first.
func (r CaseRecord) MetricValue(m Metric) int64 {
	switch m {
	case MetricConfirmed:
		return r.Confirmed
	case MetricDeaths:
		return r.Deaths
	case MetricRecovered:
		return r.Recovered
	case MetricActive:
		return r.Active
	}
	return 0
}

// CountrySummary is the per-country total of every row in the dataset.
// Because the source counts are already cumulative-to-date, summing them
// across dates double-accumulates; the upstream analysis does exactly this
// for its choropleths and rankings, so the behavior is preserved here.
type CountrySummary struct {
	Country   string `json:"country" bson:"country"`
	Confirmed int64  `json:"confirmed" bson:"confirmed"`
	Active    int64  `json:"active" bson:"active"`
	Recovered int64  `json:"recovered" bson:"recovered"`
	Deaths    int64  `json:"deaths" bson:"deaths"`
}

func (s CountrySummary) MetricValue(m Metric) int64 {
	switch m {
	case MetricConfirmed:
		return s.Confirmed
	case MetricDeaths:
		return s.Deaths
	case MetricRecovered:
		return s.Recovered
	case MetricActive:
		return s.Active
	}
	return 0
}

// CountryRank is one entry of a top-N ranking for a single metric.
type CountryRank struct {
	Country string `json:"country"`
	Value   int64  `json:"value"`
}

// DataPoint is one day of a summed series.
type DataPoint struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
}

// DailySeries is an ordered daily series of one metric, dates strictly
// ascending with no duplicates. It covers both the global series and a
// single country's series.
type DailySeries []DataPoint
