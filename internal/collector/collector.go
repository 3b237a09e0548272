package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"InflationTracker/internal/cache"
	"InflationTracker/internal/calculator"
	"InflationTracker/internal/model"
)

const (
	// DefaultLookback is used when a caller does not specify one.
	DefaultLookback = 5 * 365 * 24 * time.Hour
	// SnapshotLookback covers two YoY windows plus a year of correlation data.
	SnapshotLookback = 3 * 365 * 24 * time.Hour
)

// Collector wires the series cache, the upstream fetcher and the calculators.
// It is safe for concurrent use.
type Collector struct {
	Fetcher Fetcher
	Cache   *cache.Cache
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, c *cache.Cache) *Collector {
	if c == nil {
		c = cache.New(cache.DefaultTTL)
	}
	return &Collector{Fetcher: fetcher, Cache: c, Now: time.Now}
}

// GetSeries returns the observations of one series, served from cache while fresh.
func (c *Collector) GetSeries(ctx context.Context, id model.SeriesID, lookback time.Duration) ([]model.Observation, error) {
	if lookback == 0 {
		lookback = DefaultLookback
	}
	req := model.SeriesRequest{ID: id, Lookback: lookback}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.Cache.GetOrFetch(ctx, req, func(ctx context.Context) ([]model.Observation, error) {
		return c.Fetcher.FetchSeries(ctx, id, lookback)
	})
}

// Warm pre-fetches every supported series.
func (c *Collector) Warm(ctx context.Context, lookback time.Duration) error {
	var errs []error
	for _, id := range model.AllSeries {
		obs, err := c.GetSeries(ctx, id, lookback)
		if err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", id, err))
			continue
		}
		log.Printf("[INFO] Warmed %s: %d observations", id, len(obs))
	}
	return errors.Join(errs...)
}

// Health reports whether the upstream provider is reachable.
func (c *Collector) Health(ctx context.Context) error {
	return c.Fetcher.Ping(ctx)
}

// Snapshot computes the headline figures. Any failing input fails the whole
// snapshot; no placeholder values are substituted.
func (c *Collector) Snapshot(ctx context.Context, lookback time.Duration) (*model.Snapshot, error) {
	if lookback == 0 {
		lookback = SnapshotLookback
	}
	cpi, err := c.GetSeries(ctx, model.SeriesCPI, lookback)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	m2, err := c.GetSeries(ctx, model.SeriesM2, lookback)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	rate, err := c.GetSeries(ctx, model.SeriesFedRate, lookback)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	inflation := calculator.InflationRate(cpi)
	growth := calculator.M2GrowthRate(m2)
	if len(inflation) == 0 || len(growth) == 0 {
		return nil, fmt.Errorf("snapshot: no year-over-year points in %s: %w", lookback, model.ErrInsufficientData)
	}

	snap := &model.Snapshot{
		TakenAt:   c.now(),
		CPI:       headline(cpi),
		Inflation: headline(inflation),
		M2Growth:  headline(growth),
		FedRate:   headline(rate),
	}

	latest := cpi[len(cpi)-1].Date
	pp, err := calculator.PurchasingPower(cpi, latest.AddDate(-1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("snapshot purchasing power: %w", err)
	}
	snap.PurchasingPower = pp[len(pp)-1].Value * 100

	r, err := calculator.Correlation(inflation, growth)
	if err != nil {
		return nil, fmt.Errorf("snapshot correlation: %w", err)
	}
	snap.Correlation = r
	snap.CorrelationTier = calculator.InterpretCorrelation(r)
	return snap, nil
}

// EquivalentValue converts amount from the price level of one month to another.
func (c *Collector) EquivalentValue(ctx context.Context, amount decimal.Decimal, from, to time.Time) (calculator.Equivalent, error) {
	now := c.now()
	if from.IsZero() || to.IsZero() || from.After(now) || to.After(now) {
		return calculator.Equivalent{}, fmt.Errorf("%w: dates must be in the past", model.ErrInvalidRequest)
	}
	earliest := from
	if to.Before(earliest) {
		earliest = to
	}
	// whole years keep the number of distinct cache keys small
	years := now.Year() - earliest.Year() + 1
	cpi, err := c.GetSeries(ctx, model.SeriesCPI, time.Duration(years)*366*24*time.Hour)
	if err != nil {
		return calculator.Equivalent{}, err
	}
	return calculator.EquivalentValue(cpi, amount, from, to)
}

// headline returns the latest point and its change against the same month a
// year earlier.
func headline(obs []model.Observation) model.Headline {
	last := obs[len(obs)-1]
	h := model.Headline{Date: last.Date, Value: last.Value}
	target := model.MonthKey(last.Date) - 12
	for _, o := range obs {
		if model.MonthKey(o.Date) == target {
			d := last.Value - o.Value
			h.Change = &d
			break
		}
	}
	return h
}

func (c *Collector) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

// CacheStats reports hit and miss counters of the series cache.
func (c *Collector) CacheStats() cache.Stats {
	return c.Cache.Stats()
}
