package collector

import (
	"context"
	"time"

	"InflationTracker/internal/model"
)

// Fetcher retrieves one economic time series from an upstream provider.
// Implementations return observations sorted strictly ascending by date.
type Fetcher interface {
	FetchSeries(ctx context.Context, id model.SeriesID, lookback time.Duration) ([]model.Observation, error)
	Ping(ctx context.Context) error
	Name() string
}
