// Package forecast shapes daily series into the form a univariate
// forecasting model fits on and extends the date range past the last
// observation. The model itself is an opaque capability behind the
// Forecaster interface; TrendModel is the in-repo implementation.
package forecast

import (
	"fmt"
	"time"

	"github.com/epitrend/epitrend-api/schema"
)

const (
	// DefaultHorizonDays is how far past the last observation a
	// projection extends.
	DefaultHorizonDays = 7

	// DefaultConfidence is the probability mass the prediction interval
	// covers.
	DefaultConfidence = 0.95
)

var (
	ErrInvalidHorizon = fmt.Errorf("horizon must be positive")
	ErrFitFailed      = fmt.Errorf("forecast fit failed")
)

// Forecaster fits a model on one series. Each Fit call is independent;
// fitting three metrics shares no state between them.
type Forecaster interface {
	Fit(input schema.ForecastInput, confidence float64) (FittedModel, error)
}

// FittedModel predicts values with uncertainty bounds at arbitrary dates.
type FittedModel interface {
	Predict(dates []time.Time) schema.ForecastOutput
}

// PrepareSeries reshapes a daily series into the two-column input a
// forecaster expects, keeping the ascending date order.
func PrepareSeries(series schema.DailySeries) schema.ForecastInput {
	input := make(schema.ForecastInput, 0, len(series))
	for _, p := range series {
		input = append(input, schema.ForecastPoint{Timestamp: p.Date, Value: float64(p.Value)})
	}
	return input
}

// ExtendHorizon generates horizonDays consecutive calendar days starting
// the day after lastDate.
func ExtendHorizon(lastDate time.Time, horizonDays int) ([]time.Time, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizonDays)
	}
	dates := make([]time.Time, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		dates = append(dates, lastDate.AddDate(0, 0, i))
	}
	return dates, nil
}

// Projector runs the full adapter flow for one metric series: prepare,
// fit, extend, predict. Zero values fall back to the defaults.
type Projector struct {
	Model      Forecaster
	Horizon    int
	Confidence float64
}

// Project fits on the series and returns predictions spanning the
// historical dates plus the horizon. A fit failure surfaces immediately
// and is never retried.
func (p Projector) Project(series schema.DailySeries) (schema.ForecastOutput, error) {
	model := p.Model
	if model == nil {
		model = TrendModel{}
	}
	horizon := p.Horizon
	if horizon == 0 {
		horizon = DefaultHorizonDays
	}
	confidence := p.Confidence
	if confidence == 0 {
		confidence = DefaultConfidence
	}

	if len(series) == 0 {
		return schema.ForecastOutput{}, fmt.Errorf("%w: empty series", ErrFitFailed)
	}

	input := PrepareSeries(series)
	fitted, err := model.Fit(input, confidence)
	if err != nil {
		return schema.ForecastOutput{}, err
	}

	future, err := ExtendHorizon(series[len(series)-1].Date, horizon)
	if err != nil {
		return schema.ForecastOutput{}, err
	}

	dates := make([]time.Time, 0, len(input)+len(future))
	for _, pt := range input {
		dates = append(dates, pt.Timestamp)
	}
	dates = append(dates, future...)

	return fitted.Predict(dates), nil
}
