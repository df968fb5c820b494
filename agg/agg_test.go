package agg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epitrend/epitrend-api/dataset"
	"github.com/epitrend/epitrend-api/schema"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

// twoCountryFixture is country A over two days plus country B on one day,
// active counts already derived.
func twoCountryFixture() []schema.CaseRecord {
	records := []schema.CaseRecord{
		{Country: "A", Date: day(1), Confirmed: 10, Deaths: 1, Recovered: 2},
		{Country: "A", Date: day(2), Confirmed: 15, Deaths: 2, Recovered: 5},
		{Country: "B", Date: day(1), Confirmed: 100, Deaths: 10, Recovered: 20},
	}
	dataset.DeriveActive(records)
	return records
}

func TestSummarizeByCountry(t *testing.T) {
	summaries := SummarizeByCountry(twoCountryFixture())
	require.Len(t, summaries, 2)

	assert.Equal(t, schema.CountrySummary{
		Country: "A", Confirmed: 25, Deaths: 3, Recovered: 7, Active: 15,
	}, summaries[0])
	assert.Equal(t, schema.CountrySummary{
		Country: "B", Confirmed: 100, Deaths: 10, Recovered: 20, Active: 70,
	}, summaries[1])
}

func TestSummarizeByCountrySumsMatchRows(t *testing.T) {
	records := twoCountryFixture()
	summaries := SummarizeByCountry(records)

	for _, s := range summaries {
		var confirmed, deaths, recovered, active int64
		for _, r := range records {
			if r.Country == s.Country {
				confirmed += r.Confirmed
				deaths += r.Deaths
				recovered += r.Recovered
				active += r.Active
			}
		}
		assert.Equal(t, confirmed, s.Confirmed, s.Country)
		assert.Equal(t, deaths, s.Deaths, s.Country)
		assert.Equal(t, recovered, s.Recovered, s.Country)
		assert.Equal(t, active, s.Active, s.Country)
	}
}

func TestSummarizeByCountryExactNameMatch(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "US", Date: day(1), Confirmed: 1},
		{Country: "us", Date: day(1), Confirmed: 2},
		{Country: " US", Date: day(1), Confirmed: 4},
	}
	summaries := SummarizeByCountry(records)
	assert.Len(t, summaries, 3)
}

func TestDailyGlobalSeries(t *testing.T) {
	series, err := DailyGlobalSeries(twoCountryFixture(), schema.MetricConfirmed)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, schema.DataPoint{Date: day(1), Value: 110}, series[0])
	assert.Equal(t, schema.DataPoint{Date: day(2), Value: 15}, series[1])
}

func TestDailyGlobalSeriesStrictlyIncreasingDates(t *testing.T) {
	// duplicate dates and sub-day timestamps collapse to single days
	records := []schema.CaseRecord{
		{Country: "A", Date: day(2).Add(13 * time.Hour), Confirmed: 1},
		{Country: "B", Date: day(2), Confirmed: 2},
		{Country: "A", Date: day(1), Confirmed: 3},
	}
	series, err := DailyGlobalSeries(records, schema.MetricConfirmed)
	require.NoError(t, err)
	require.Len(t, series, 2)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Date.Before(series[i].Date))
	}
	assert.Equal(t, int64(3), series[1].Value)
}

func TestDailyGlobalSeriesUnknownMetric(t *testing.T) {
	_, err := DailyGlobalSeries(twoCountryFixture(), schema.Metric("vaccinated"))
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestDailyCountrySeries(t *testing.T) {
	series, err := DailyCountrySeries(twoCountryFixture(), "A", schema.MetricDeaths)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(1), series[0].Value)
	assert.Equal(t, int64(2), series[1].Value)
}

func TestDailyCountrySeriesNotFound(t *testing.T) {
	_, err := DailyCountrySeries(twoCountryFixture(), "Atlantis", schema.MetricConfirmed)
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestTopN(t *testing.T) {
	ranks, err := TopN(twoCountryFixture(), schema.MetricConfirmed, 1)
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	assert.Equal(t, schema.CountryRank{Country: "B", Value: 100}, ranks[0])
}

func TestTopNClampsToDistinctCountries(t *testing.T) {
	ranks, err := TopN(twoCountryFixture(), schema.MetricConfirmed, 50)
	require.NoError(t, err)
	assert.Len(t, ranks, 2)
}

func TestTopNTieBreakByCountryName(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "Chile", Date: day(1), Confirmed: 10},
		{Country: "Brazil", Date: day(1), Confirmed: 10},
		{Country: "Peru", Date: day(1), Confirmed: 99},
	}
	ranks, err := TopN(records, schema.MetricConfirmed, 3)
	require.NoError(t, err)
	assert.Equal(t, "Peru", ranks[0].Country)
	assert.Equal(t, "Brazil", ranks[1].Country)
	assert.Equal(t, "Chile", ranks[2].Country)
}

func TestTopNInvalidLimit(t *testing.T) {
	_, err := TopN(twoCountryFixture(), schema.MetricConfirmed, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = TopN(twoCountryFixture(), schema.MetricConfirmed, -5)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}
