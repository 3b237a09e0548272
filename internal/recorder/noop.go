package recorder

import (
	"context"

	"InflationTracker/internal/model"
)

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(context.Context, *model.Snapshot) error { return nil }
func (n *NoopRecorder) RecentSnapshots(context.Context, int) ([]model.Snapshot, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
