package recorder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"InflationTracker/internal/model"
)

func sampleSnapshot(takenAt time.Time, cpi float64) *model.Snapshot {
	change := 9.5
	return &model.Snapshot{
		TakenAt:         takenAt,
		CPI:             model.Headline{Date: model.Date(2024, time.May, 1), Value: cpi, Change: &change},
		Inflation:       model.Headline{Date: model.Date(2024, time.May, 1), Value: 3.3},
		M2Growth:        model.Headline{Date: model.Date(2024, time.May, 1), Value: 0.6},
		FedRate:         model.Headline{Date: model.Date(2024, time.May, 1), Value: 5.33},
		PurchasingPower: 96.8,
		Correlation:     0.42,
		CorrelationTier: "Moderate",
	}
}

func checkRoundTrip(t *testing.T, rec Recorder) {
	t.Helper()
	ctx := context.Background()
	first := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	if err := rec.RecordSnapshot(ctx, sampleSnapshot(first, 313.0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.RecordSnapshot(ctx, sampleSnapshot(first.Add(time.Hour), 314.0)); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := rec.RecentSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
	latest := got[0]
	if latest.CPI.Value != 314.0 || !latest.TakenAt.Equal(first.Add(time.Hour)) {
		t.Errorf("newest first expected, got %+v", latest)
	}
	if latest.CPI.Change == nil || *latest.CPI.Change != 9.5 {
		t.Errorf("cpi change = %v, want 9.5", latest.CPI.Change)
	}
	if latest.Inflation.Change != nil {
		t.Errorf("missing change should stay nil, got %v", *latest.Inflation.Change)
	}
	if !latest.FedRate.Date.Equal(model.Date(2024, time.May, 1)) || latest.FedRate.Value != 5.33 {
		t.Errorf("fed rate = %+v", latest.FedRate)
	}
	if latest.CorrelationTier != "Moderate" {
		t.Errorf("tier = %q", latest.CorrelationTier)
	}

	one, err := rec.RecentSnapshots(ctx, 1)
	if err != nil || len(one) != 1 {
		t.Errorf("limit 1: got %d rows, err %v", len(one), err)
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rec.Close()
	checkRoundTrip(t, rec)
}

func TestPostgresRecorder_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	rec, err := NewPostgresRecorder(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rec.Close()
	if _, err := rec.db.Exec("TRUNCATE snapshots"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	checkRoundTrip(t, rec)
}

func TestBindPlaceholders(t *testing.T) {
	r := &sqlRecorder{dollar: true}
	if got := r.bind("SELECT ? , ?"); got != "SELECT $1 , $2" {
		t.Errorf("bind = %q", got)
	}
	r.dollar = false
	if got := r.bind("SELECT ?"); got != "SELECT ?" {
		t.Errorf("bind = %q", got)
	}
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	if err := rec.RecordSnapshot(context.Background(), sampleSnapshot(time.Now(), 1)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
