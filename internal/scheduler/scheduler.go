package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"InflationTracker/internal/collector"
	"InflationTracker/internal/notifier"
	"InflationTracker/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Sender delivers digest messages. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. A nil Sender disables the digest.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  sender,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh and digest tasks.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if s.Notifier == nil {
		log.Println("[INFO] no notifier configured, digest task disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

// refreshTask warms the cache for the common lookbacks and records a snapshot.
func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	for _, lookback := range []time.Duration{collector.DefaultLookback, collector.SnapshotLookback} {
		if err := s.Collector.Warm(s.Ctx, lookback); err != nil {
			log.Printf("[ERROR] warm %s: %v", lookback, err)
		}
	}

	snap, err := s.Collector.Snapshot(s.Ctx, 0)
	if err != nil {
		log.Printf("[ERROR] refresh snapshot: %v", err)
		return
	}
	if err := s.Recorder.RecordSnapshot(s.Ctx, snap); err != nil {
		log.Printf("[ERROR] record snapshot: %v", err)
	}
}

func (s *Scheduler) digestTask() {
	log.Println("[INFO] running digest task")
	snap, err := s.Collector.Snapshot(s.Ctx, 0)
	if err != nil {
		log.Printf("[ERROR] digest snapshot: %v", err)
		s.trySend(notifier.FormatError("Weekly digest", err))
		return
	}
	s.trySend(notifier.FormatSnapshot(snap))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		// "/snapshot@SomeBot" in group chats
		cmd, _, _ = strings.Cut(fields[0], "@")
	}
	switch strings.ToLower(cmd) {
	case "/snapshot":
		snap, err := s.Collector.Snapshot(ctx, 0)
		if err != nil {
			log.Printf("[ERROR] command snapshot: %v", err)
			return notifier.FormatError("Snapshot", err)
		}
		return notifier.FormatSnapshot(snap)
	case "/inflation":
		res, err := s.Collector.GetMetric(ctx, collector.MetricInflation, collector.MetricParams{})
		if err != nil {
			log.Printf("[ERROR] command inflation: %v", err)
			return notifier.FormatError("Inflation", err)
		}
		return notifier.FormatSeries(res.Metric, 12)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
