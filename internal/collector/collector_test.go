package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"InflationTracker/internal/cache"
	"InflationTracker/internal/model"
)

func series(n int, f func(i int) float64) []model.Observation {
	start := model.Date(2021, time.June, 1)
	obs := make([]model.Observation, n)
	for i := range obs {
		obs[i] = model.Observation{Date: start.AddDate(0, i, 0), Value: f(i)}
	}
	return obs
}

func newTestCollector(data map[model.SeriesID][]model.Observation) (*Collector, *MockFetcher) {
	mock := &MockFetcher{Data: data}
	c := NewCollector(mock, cache.New(time.Minute))
	c.Now = fixedNow
	return c, mock
}

func testData() map[model.SeriesID][]model.Observation {
	return map[model.SeriesID][]model.Observation{
		model.SeriesCPI:     series(36, func(i int) float64 { return 100 + float64(i) + 0.05*float64(i*i) }),
		model.SeriesM2:      series(36, func(i int) float64 { return 1000 + 10*float64(i) + 0.7*float64(i*i) }),
		model.SeriesFedRate: series(36, func(i int) float64 { return 5.25 }),
	}
}

func TestGetSeries_ServedFromCache(t *testing.T) {
	c, mock := newTestCollector(testData())
	for i := 0; i < 3; i++ {
		if _, err := c.GetSeries(context.Background(), model.SeriesCPI, time.Hour); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if mock.Calls() != 1 {
		t.Errorf("expected 1 fetch, got %d", mock.Calls())
	}
}

func TestGetSeries_InvalidRequest(t *testing.T) {
	c, mock := newTestCollector(nil)
	_, err := c.GetSeries(context.Background(), "GDP", time.Hour)
	if !errors.Is(err, model.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if mock.Calls() != 0 {
		t.Errorf("invalid request reached the fetcher")
	}
}

func TestSnapshot(t *testing.T) {
	data := testData()
	c, _ := newTestCollector(data)

	snap, err := c.Snapshot(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cpi := data[model.SeriesCPI]
	last, yearAgo := cpi[35].Value, cpi[23].Value

	if snap.CPI.Value != last {
		t.Errorf("CPI = %v, want %v", snap.CPI.Value, last)
	}
	if snap.CPI.Change == nil || math.Abs(*snap.CPI.Change-(last-yearAgo)) > 1e-9 {
		t.Errorf("CPI change = %v, want %v", snap.CPI.Change, last-yearAgo)
	}
	wantInflation := (last - yearAgo) * 100 / yearAgo
	if math.Abs(snap.Inflation.Value-wantInflation) > 1e-9 {
		t.Errorf("inflation = %v, want %v", snap.Inflation.Value, wantInflation)
	}
	if want := 100 * yearAgo / last; math.Abs(snap.PurchasingPower-want) > 1e-9 {
		t.Errorf("purchasing power = %v, want %v", snap.PurchasingPower, want)
	}
	if snap.FedRate.Value != 5.25 || snap.FedRate.Change == nil || *snap.FedRate.Change != 0 {
		t.Errorf("fed rate headline = %+v", snap.FedRate)
	}
	if snap.Correlation < -1 || snap.Correlation > 1 || snap.CorrelationTier == "" {
		t.Errorf("correlation = %v (%q)", snap.Correlation, snap.CorrelationTier)
	}
	if !snap.TakenAt.Equal(fixedNow()) {
		t.Errorf("taken at = %v", snap.TakenAt)
	}
}

func TestSnapshot_PropagatesErrors(t *testing.T) {
	c, mock := newTestCollector(nil)
	mock.Err = model.ErrNetwork

	_, err := c.Snapshot(context.Background(), 0)
	if !errors.Is(err, model.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestGetMetric(t *testing.T) {
	c, _ := newTestCollector(testData())
	ctx := context.Background()

	res, err := c.GetMetric(ctx, MetricInflation, MetricParams{})
	if err != nil {
		t.Fatalf("inflation: %v", err)
	}
	if res.Metric == nil || len(res.Metric.Points) != 24 {
		t.Errorf("inflation should have 24 points, got %+v", res.Metric)
	}

	res, err = c.GetMetric(ctx, MetricCorrelation, MetricParams{})
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if res.Value == nil || res.Label == "" {
		t.Errorf("correlation result = %+v", res)
	}

	res, err = c.GetMetric(ctx, MetricCorrelation, MetricParams{A: OperandCPI, B: OperandCPI})
	if err != nil {
		t.Fatalf("self correlation: %v", err)
	}
	if math.Abs(*res.Value-1) > 1e-9 || res.Label != "Very Strong" {
		t.Errorf("self correlation = %v %q", *res.Value, res.Label)
	}

	res, err = c.GetMetric(ctx, MetricPurchasingPower, MetricParams{BaseDate: model.Date(2021, time.June, 1)})
	if err != nil {
		t.Fatalf("purchasing power: %v", err)
	}
	if res.Metric.Points[0].Value != 1 {
		t.Errorf("purchasing power at base = %v, want 1", res.Metric.Points[0].Value)
	}

	res, err = c.GetMetric(ctx, MetricMovingAverage, MetricParams{Series: model.SeriesFedRate, Period: 6})
	if err != nil {
		t.Fatalf("moving average: %v", err)
	}
	if len(res.Metric.Points) != 31 {
		t.Errorf("moving average points = %d, want 31", len(res.Metric.Points))
	}

	res, err = c.GetMetric(ctx, MetricTrend, MetricParams{})
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if res.Trend == nil || res.Trend.Direction != "Increasing" {
		t.Errorf("trend = %+v", res.Trend)
	}

	if _, err := c.GetMetric(ctx, MetricRollingCorrelation, MetricParams{Window: 6}); err != nil {
		t.Errorf("rolling correlation: %v", err)
	}
	if _, err := c.GetMetric(ctx, MetricAverageInflation, MetricParams{Years: 2}); err != nil {
		t.Errorf("average inflation: %v", err)
	}
}

func TestGetMetric_Errors(t *testing.T) {
	c, _ := newTestCollector(testData())
	ctx := context.Background()

	tests := []struct {
		name string
		kind MetricKind
		p    MetricParams
		want error
	}{
		{"unknown kind", "velocity", MetricParams{}, model.ErrInvalidRequest},
		{"missing base", MetricPurchasingPower, MetricParams{}, model.ErrInvalidRequest},
		{"base outside data", MetricPurchasingPower, MetricParams{BaseDate: model.Date(1999, time.January, 1)}, model.ErrInvalidBaseDate},
		{"unknown operand", MetricCorrelation, MetricParams{A: "GOLD"}, model.ErrInvalidRequest},
		{"window too large", MetricRollingCorrelation, MetricParams{Window: 100}, model.ErrInsufficientData},
		{"years overflow", MetricAverageInflation, MetricParams{Years: math.MaxInt}, model.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.GetMetric(ctx, tt.kind, tt.p)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEquivalentValue(t *testing.T) {
	c, _ := newTestCollector(testData())
	cpi := testData()[model.SeriesCPI]

	eq, err := c.EquivalentValue(context.Background(), decimal.NewFromInt(100), cpi[0].Date, cpi[12].Date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := decimal.NewFromFloat(100 * cpi[12].Value / cpi[0].Value).Round(2)
	if !eq.Value.Equal(want) {
		t.Errorf("value = %s, want %s", eq.Value, want)
	}

	_, err = c.EquivalentValue(context.Background(), decimal.NewFromInt(100), fixedNow().AddDate(1, 0, 0), cpi[0].Date)
	if !errors.Is(err, model.ErrInvalidRequest) {
		t.Errorf("future date: expected ErrInvalidRequest, got %v", err)
	}
}

func TestMockFetcher_GeneratesMonthlySeries(t *testing.T) {
	m := &MockFetcher{Now: fixedNow}
	obs, err := m.FetchSeries(context.Background(), model.SeriesCPI, 365*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 12 {
		t.Fatalf("expected 12 monthly points, got %d", len(obs))
	}
	for i := 1; i < len(obs); i++ {
		if !obs[i].Date.After(obs[i-1].Date) {
			t.Fatalf("dates not ascending at %d", i)
		}
	}
	longer, _ := m.FetchSeries(context.Background(), model.SeriesCPI, 2*365*24*time.Hour)
	if longer[len(longer)-1] != obs[len(obs)-1] {
		t.Errorf("overlapping windows disagree: %+v vs %+v", longer[len(longer)-1], obs[len(obs)-1])
	}
}
