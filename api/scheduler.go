/*
scheduler.go - Automated snapshot scheduler

PURPOSE:
  Periodically recalculates every stored school year and stores one report
  snapshot per workload, so the latest report is available without a
  recalculation.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - A failing school year aborts that run; the next tick retries

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerSnapshots endpoint (manual run)
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SnapshotScheduler stores workload snapshots periodically.
type SnapshotScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(handler *Handler) *SnapshotScheduler {
	return &SnapshotScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (s *SnapshotScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.Handler.Logger
	if !s.Enabled {
		logger.Info("snapshot scheduler disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run()

	logger.Info("snapshot scheduler started", zap.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for a running pass.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Handler.Logger.Info("snapshot scheduler stopped")
	}
}

func (s *SnapshotScheduler) run() {
	defer s.wg.Done()

	s.RunOnce(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunOnce(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunOnce performs one snapshot pass and returns the number of stored
// snapshots.
func (s *SnapshotScheduler) RunOnce(ctx context.Context) int {
	logger := s.Handler.Logger
	start := time.Now()

	snaps, err := s.Handler.SnapshotAll(ctx)
	if err != nil {
		logger.Error("snapshot run failed", zap.Error(err))
		return 0
	}
	logger.Info("snapshot run completed",
		zap.Int("snapshots", len(snaps)),
		zap.Duration("duration", time.Since(start)),
	)
	return len(snaps)
}
