package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Province/State,Country/Region,Lat,Long,Date,Confirmed,Deaths,Recovered,Active,WHO Region
,Afghanistan,33.93911,67.709953,2020-01-22,5,1,2,0,Eastern Mediterranean
British Columbia,Canada,49.2827,-123.1207,2020-01-22,10,0,3,0,Americas
,Afghanistan,33.93911,67.709953,2020-01-23,8,1,3,0,Eastern Mediterranean
`

func TestReadCanonicalColumns(t *testing.T) {
	records, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Afghanistan", records[0].Country)
	assert.Equal(t, "", records[0].State)
	assert.Equal(t, time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, int64(5), records[0].Confirmed)
	assert.Equal(t, int64(1), records[0].Deaths)
	assert.Equal(t, int64(2), records[0].Recovered)
	assert.Equal(t, "Eastern Mediterranean", records[0].Region)

	assert.Equal(t, "British Columbia", records[1].State)
	assert.InDelta(t, 49.2827, records[1].Latitude, 1e-9)
	assert.InDelta(t, -123.1207, records[1].Longitude, 1e-9)
}

func TestReadAlternateHeaderSpellings(t *testing.T) {
	csv := "Province_State,Country_Region,Latitude,Longitude,ObservationDate,Confirmed,Deaths,Recovered\n" +
		",Iceland,64.9,-19.0,1/22/20,100,2,30\n"
	records, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Iceland", records[0].Country)
	assert.Equal(t, time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, int64(100), records[0].Confirmed)
}

func TestReadMissingRequiredColumn(t *testing.T) {
	csv := "Province/State,Lat,Long,Date,Confirmed,Deaths,Recovered\n,1,2,2020-01-22,1,1,1\n"
	_, err := Read(strings.NewReader(csv))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadEmptySource(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestReadMalformedCellsPropagateAsZero(t *testing.T) {
	csv := "Country/Region,Date,Confirmed,Deaths,Recovered\nNarnia,not-a-date,many,3,1\n"
	records, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.IsZero())
	assert.Equal(t, int64(0), records[0].Confirmed)
	assert.Equal(t, int64(3), records[0].Deaths)
}

func TestDeriveActive(t *testing.T) {
	records, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	DeriveActive(records)
	for _, r := range records {
		assert.Equal(t, r.Confirmed-r.Deaths-r.Recovered, r.Active)
	}
	assert.Equal(t, int64(2), records[0].Active)

	// applying it twice recomputes the same values
	DeriveActive(records)
	assert.Equal(t, int64(2), records[0].Active)
}

func TestDeriveActiveNegative(t *testing.T) {
	csv := "Country/Region,Date,Confirmed,Deaths,Recovered\nX,2020-01-22,1,3,4\n"
	records, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	DeriveActive(records)
	assert.Equal(t, int64(-6), records[0].Active)
}
