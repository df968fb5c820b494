package schema

import "time"

// ForecastPoint is one (timestamp, value) observation handed to the
// forecasting collaborator.
type ForecastPoint struct {
	Timestamp time.Time `json:"ds"`
	Value     float64   `json:"y"`
}

// ForecastInput is the two-column series a forecaster fits on, sorted by
// timestamp ascending, one row per historical day.
type ForecastInput []ForecastPoint

// ForecastOutput carries the fitted curve with its uncertainty interval.
// The slices are parallel and span the historical range plus the requested
// horizon.
type ForecastOutput struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Lower    []float64   `json:"lower"`
	Upper    []float64   `json:"upper"`
}
