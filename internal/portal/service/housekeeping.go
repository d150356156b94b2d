package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/borealfin/portal/internal/portal/store"
)

// HousekeepingService periodically deletes expired one-time codes, expired
// portal sessions, and abandoned draft snapshots so the durable store does
// not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// SnapshotMaxAge is how long an untouched draft snapshot survives.
	SnapshotMaxAge time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the background cleaner. A non-positive
// interval defaults to 1 hour; a non-positive snapshot age to 30 days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, snapshotMaxAge time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if snapshotMaxAge <= 0 {
		snapshotMaxAge = 30 * 24 * time.Hour
	}
	return &HousekeepingService{
		Store:          st,
		Logger:         logger,
		Interval:       interval,
		SnapshotMaxAge: snapshotMaxAge,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep performs the actual deletions. Each deletion is independent;
// failures in one do not stop the others.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	now := time.Now()

	if n, err := s.Store.OTPs().DeleteExpiredOTPs(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired one-time codes", "error", err)
	} else if n > 0 {
		s.Logger.Debug("deleted expired one-time codes", "count", n)
	}

	if n, err := s.Store.Sessions().DeleteExpiredSessions(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired portal sessions", "error", err)
	} else if n > 0 {
		s.Logger.Debug("deleted expired portal sessions", "count", n)
	}

	if n, err := s.Store.Applications().DeleteStaleSnapshots(ctx, now.Add(-s.SnapshotMaxAge)); err != nil {
		s.Logger.Error("failed to delete stale draft snapshots", "error", err)
	} else if n > 0 {
		s.Logger.Debug("deleted stale draft snapshots", "count", n)
	}
}
