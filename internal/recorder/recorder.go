package recorder

import (
	"context"

	"InflationTracker/internal/model"
)

// Recorder persists snapshot history for later analysis.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *model.Snapshot) error
	// RecentSnapshots returns up to limit snapshots, newest first.
	RecentSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error)
	Close() error
}
