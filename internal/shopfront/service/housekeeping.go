package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chommo/shopfront/internal/shopfront/store"
)

// HousekeepingService periodically removes idle sessions so abandoned
// browsers don't grow the database without bound. A session is idle when it
// hasn't been touched for MaxIdle; its cookie would have expired by then
// anyway.
type HousekeepingService struct {
	Sessions store.Sessions
	Logger   *slog.Logger
	Interval time.Duration
	MaxIdle  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour; a non-positive maxIdle defaults to 7 days.
func NewHousekeepingService(sessions store.Sessions, logger *slog.Logger, interval, maxIdle time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if maxIdle <= 0 {
		maxIdle = 7 * 24 * time.Hour
	}

	return &HousekeepingService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		MaxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "max_idle", s.MaxIdle)
}

// Stop shuts down the worker, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.MaxIdle)

	removed, err := s.Sessions.DeleteIdleSessions(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete idle sessions", "error", err)
		return
	}

	if removed > 0 {
		s.Logger.Info("idle sessions removed", "count", removed)
	}
}
