package collector

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"InflationTracker/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data  map[model.SeriesID][]model.Observation
	Err   error
	Now   func() time.Time
	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchSeries was invoked.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchSeries(_ context.Context, id model.SeriesID, lookback time.Duration) ([]model.Observation, error) {
	m.calls.Add(1)
	if err := (model.SeriesRequest{ID: id, Lookback: lookback}).Validate(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if obs, ok := m.Data[id]; ok {
		return obs, nil
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return generateMockSeries(id, now().UTC(), lookback), nil
}

func (m *MockFetcher) Ping(context.Context) error { return m.Err }

var mockEpoch = model.MonthKey(model.Date(2000, time.January, 1))

// generateMockSeries emits first-of-month observations inside the lookback
// window. Values depend only on the month, so overlapping windows agree.
func generateMockSeries(id model.SeriesID, now time.Time, lookback time.Duration) []model.Observation {
	start := now.Add(-lookback)
	first := model.Date(start.Year(), start.Month(), 1)
	if first.Before(start) {
		first = first.AddDate(0, 1, 0)
	}

	var obs []model.Observation
	for d := first; !d.After(now); d = d.AddDate(0, 1, 0) {
		i := float64(model.MonthKey(d) - mockEpoch)
		var v float64
		switch id {
		case model.SeriesCPI:
			v = 170 * math.Pow(1.0022, i) * (1 + 0.002*math.Sin(i/5))
		case model.SeriesM2:
			v = 4700 * math.Pow(1.0052, i) * (1 + 0.004*math.Sin(i/7))
		case model.SeriesFedRate:
			v = math.Max(0.05, 2.5+2.4*math.Sin(i/30))
		}
		obs = append(obs, model.Observation{Date: d, Value: math.Round(v*1000) / 1000})
	}
	return obs
}
