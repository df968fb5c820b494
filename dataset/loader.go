package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/epitrend/epitrend-api/schema"
)

const logPrefix = "dataset"

var (
	ErrMissingColumn = fmt.Errorf("source is missing a required column")
	ErrEmptySource   = fmt.Errorf("source contains no header row")
)

// Canonical column names with the header spellings seen across the JHU
// style daily report exports. Matching is case-insensitive after trimming.
var columnAliases = map[string][]string{
	"state":     {"Province/State", "Province_State", "State"},
	"country":   {"Country/Region", "Country_Region", "Country"},
	"lat":       {"Lat", "Latitude"},
	"long":      {"Long", "Long_", "Longitude"},
	"date":      {"Date", "ObservationDate"},
	"confirmed": {"Confirmed"},
	"deaths":    {"Deaths"},
	"recovered": {"Recovered"},
	"active":    {"Active"},
	"region":    {"WHO Region", "WHO_Region"},
}

// requiredColumns must resolve at load time; the rest default to zero
// values when absent.
var requiredColumns = []string{"country", "date", "confirmed", "deaths", "recovered"}

// Load reads a daily report CSV from disk. See Read.
func Load(path string) ([]schema.CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read parses a daily report CSV into case records with canonical field
// names. Only the header is validated: rows with malformed cells keep
// their zero values and propagate downstream unchanged.
func Read(r io.Reader) ([]schema.CaseRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, err
	}

	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []schema.CaseRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, parseRow(row, index))
	}

	log.WithFields(log.Fields{"prefix": logPrefix, "records": len(records)}).Debug("loaded source table")
	return records, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for name, aliases := range columnAliases {
		for i, cell := range header {
			cell = strings.TrimPrefix(strings.TrimSpace(cell), "\uFEFF")
			for _, alias := range aliases {
				if strings.EqualFold(cell, alias) {
					index[name] = i
				}
			}
		}
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) schema.CaseRecord {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	return schema.CaseRecord{
		Country:   cell("country"),
		State:     cell("state"),
		Date:      parseDay(cell("date")),
		Latitude:  parseFloat(cell("lat")),
		Longitude: parseFloat(cell("long")),
		Confirmed: parseCount(cell("confirmed")),
		Deaths:    parseCount(cell("deaths")),
		Recovered: parseCount(cell("recovered")),
		Active:    parseCount(cell("active")),
		Region:    cell("region"),
	}
}

var dateLayouts = []string{"2006-01-02", "1/2/06", "1/2/2006"}

// parseDay truncates any finer source granularity to a UTC calendar day.
func parseDay(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// some exports write counts as floats
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
