// Package cache memoizes series fetches for a fixed TTL.
package cache

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"InflationTracker/internal/model"
)

// DefaultTTL matches the refresh cadence of the dashboard.
const DefaultTTL = 5 * time.Minute

// FetchFunc performs the underlying fetch on a miss.
type FetchFunc func(ctx context.Context) ([]model.Observation, error)

// Entry is a stored fetch result.
type Entry struct {
	Request      model.SeriesRequest `json:"request"`
	Observations []model.Observation `json:"observations"`
	FetchedAt    time.Time           `json:"fetched_at"`
}

// Stats reports cache effectiveness since process start.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Fetches uint64 `json:"fetches"`
}

// Cache is a TTL cache keyed by SeriesRequest. It is safe for concurrent use;
// concurrent misses on one key share a single fetch.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	hits, misses, fetches atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// New creates a Cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store: NewMemoryStore(),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// GetOrFetch returns the live entry for req, or calls fetch once and stores
// its result. Fetch errors are returned and never stored. A caller whose ctx
// is cancelled returns early; the shared fetch keeps running for the others.
func (c *Cache) GetOrFetch(ctx context.Context, req model.SeriesRequest, fetch FetchFunc) ([]model.Observation, error) {
	key := req.Key()
	if obs, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		return obs, nil
	}
	c.misses.Add(1)

	// the flight is shared, so it must outlive any one caller's cancellation
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// another flight may have stored the entry while we waited
		if obs, ok := c.lookup(flightCtx, key); ok {
			return obs, nil
		}
		c.fetches.Add(1)
		obs, err := fetch(flightCtx)
		if err != nil {
			return nil, err
		}
		entry := Entry{Request: req, Observations: obs, FetchedAt: c.now()}
		if err := c.store.Set(flightCtx, key, entry, c.ttl); err != nil {
			log.Printf("[WARN] cache store %s: %v", key, err)
		}
		return obs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.Observation)), nil
	}
}

// Invalidate drops the entry for req, if any.
func (c *Cache) Invalidate(ctx context.Context, req model.SeriesRequest) error {
	if err := c.store.Delete(ctx, req.Key()); err != nil {
		return fmt.Errorf("invalidate %s: %w", req.Key(), err)
	}
	return nil
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fetches: c.fetches.Load(),
	}
}

func (c *Cache) lookup(ctx context.Context, key string) ([]model.Observation, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] cache lookup %s: %v", key, err)
		return nil, false
	}
	if !ok || c.now().Sub(e.FetchedAt) > c.ttl {
		return nil, false
	}
	return slices.Clone(e.Observations), true
}
