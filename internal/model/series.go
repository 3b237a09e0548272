package model

import (
	"fmt"
	"time"
)

// SeriesID names one of the supported upstream time series.
type SeriesID string

const (
	SeriesCPI     SeriesID = "CPI"
	SeriesM2      SeriesID = "M2"
	SeriesFedRate SeriesID = "FED_RATE"
)

// AllSeries lists every supported series in display order.
var AllSeries = []SeriesID{SeriesCPI, SeriesM2, SeriesFedRate}

// fredCodes maps internal series IDs to FRED series codes.
var fredCodes = map[SeriesID]string{
	SeriesCPI:     "CPIAUCSL",
	SeriesM2:      "M2SL",
	SeriesFedRate: "FEDFUNDS",
}

// FREDCode returns the upstream series code, or "" if the ID is not supported.
func (id SeriesID) FREDCode() string { return fredCodes[id] }

// Valid reports whether id is one of the supported series.
func (id SeriesID) Valid() bool {
	_, ok := fredCodes[id]
	return ok
}

// ParseSeriesID accepts the canonical name or the FRED code, case-sensitive.
func ParseSeriesID(s string) (SeriesID, error) {
	id := SeriesID(s)
	if id.Valid() {
		return id, nil
	}
	for k, code := range fredCodes {
		if code == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown series %q", ErrInvalidRequest, s)
}

// Observation is one dated value of a series. Dates are UTC midnight.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesRequest identifies a fetch and doubles as the cache key.
type SeriesRequest struct {
	ID       SeriesID
	Lookback time.Duration
}

// Key returns the string form used by cache stores.
func (r SeriesRequest) Key() string {
	return fmt.Sprintf("%s:%s", r.ID, r.Lookback)
}

// Validate checks the request constraints of the series client.
func (r SeriesRequest) Validate() error {
	if !r.ID.Valid() {
		return fmt.Errorf("%w: unsupported series %q", ErrInvalidRequest, r.ID)
	}
	if r.Lookback <= 0 {
		return fmt.Errorf("%w: lookback must be positive, got %s", ErrInvalidRequest, r.Lookback)
	}
	return nil
}

// DerivedMetric is a computed series. It is never persisted.
type DerivedMetric struct {
	Label  string        `json:"label"`
	Points []Observation `json:"points"`
}

// Date builds a UTC midnight date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns a comparable calendar-month index (year*12 + month-1).
func MonthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// DayKey returns a comparable calendar-day index for date alignment.
func DayKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
