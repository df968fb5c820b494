package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/epitrend/epitrend-api/schema"
)

// TrendModel fits an additive linear trend by least squares. The
// prediction interval is symmetric around the trend line, scaled from the
// residual standard deviation to the requested confidence width.
type TrendModel struct{}

type fittedTrend struct {
	origin    time.Time
	slope     float64
	intercept float64
	margin    float64
}

// Fit estimates the trend over the input series. It fails with
// ErrFitFailed when the series is too short to carry a trend or the
// regression cannot be solved.
func (TrendModel) Fit(input schema.ForecastInput, confidence float64) (FittedModel, error) {
	if len(input) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrFitFailed, len(input))
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("%w: confidence %v outside (0, 1)", ErrFitFailed, confidence)
	}

	origin := input[0].Timestamp
	series := make(stats.Series, 0, len(input))
	for _, p := range input {
		series = append(series, stats.Coordinate{X: daysSince(origin, p.Timestamp), Y: p.Value})
	}

	fitted, err := stats.LinearRegression(series)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	first, last := fitted[0], fitted[len(fitted)-1]
	span := last.X - first.X
	if span == 0 {
		return nil, fmt.Errorf("%w: observations cover a single day", ErrFitFailed)
	}
	slope := (last.Y - first.Y) / span
	intercept := first.Y - slope*first.X

	residuals := make([]float64, len(input))
	for i := range input {
		residuals[i] = series[i].Y - fitted[i].Y
	}
	sd, err := stats.StandardDeviation(residuals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	return &fittedTrend{
		origin:    origin,
		slope:     slope,
		intercept: intercept,
		margin:    zScore(confidence) * sd,
	}, nil
}

func (m *fittedTrend) Predict(dates []time.Time) schema.ForecastOutput {
	out := schema.ForecastOutput{
		T:        dates,
		Forecast: make([]float64, len(dates)),
		Lower:    make([]float64, len(dates)),
		Upper:    make([]float64, len(dates)),
	}
	for i, d := range dates {
		y := m.intercept + m.slope*daysSince(m.origin, d)
		out.Forecast[i] = y
		out.Lower[i] = y - m.margin
		out.Upper[i] = y + m.margin
	}
	return out
}

func daysSince(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}

// zScore maps a two-sided confidence width to its normal quantile, e.g.
// 0.95 to roughly 1.96.
func zScore(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(confidence)
}
