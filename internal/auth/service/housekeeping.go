package service

import (
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quill/internal/auth/metrics"
)

// Sweeper is implemented by token stores that need expired entries removed
// by hand. Redis expires keys itself and does not need one.
type Sweeper interface {
	Sweep(now time.Time) int
}

// HousekeepingService periodically sweeps expired refresh tokens.
type HousekeepingService struct {
	Sweeper  Sweeper
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  *metrics.Metrics

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	sweeper Sweeper,
	logger *slog.Logger,
	interval time.Duration,
	m *metrics.Metrics,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Sweeper:  sweeper,
		Logger:   logger,
		Interval: interval,
		Metrics:  m,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.Cleanup(now)
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one sweep.
func (s *HousekeepingService) Cleanup(now time.Time) int {
	n := s.Sweeper.Sweep(now)
	s.Metrics.Swept(n)
	s.Logger.Debug("housekeeping sweep completed", "removed", n)
	return n
}
