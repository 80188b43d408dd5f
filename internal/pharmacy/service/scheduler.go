package service

import (
	"context"
	"sync"
	"time"

	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// RetentionPolicy sets how long resolved alerts and read notifications are kept.
type RetentionPolicy struct {
	Alerts        time.Duration
	Notifications time.Duration
}

// Cleanup is an extra pass run at the end of every cycle, such as purging
// expired sessions. It reports how many rows it removed.
type Cleanup func(ctx context.Context) (int64, error)

// Scheduler runs the alert scan and retention cleanup periodically.
type Scheduler struct {
	scanner       *AlertScanner
	alerts        *AlertService
	notifications *NotificationService
	retention     RetentionPolicy
	interval      time.Duration
	extra         map[string]Cleanup
	logger        *logger.Logger
	cancel        context.CancelFunc
	done          sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(scanner *AlertScanner, alerts *AlertService, notifications *NotificationService, retention RetentionPolicy, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scanner:       scanner,
		alerts:        alerts,
		notifications: notifications,
		retention:     retention,
		interval:      interval,
		extra:         make(map[string]Cleanup),
		logger:        log.WithComponent("scheduler"),
	}
}

// AddCleanup registers fn to run after the retention pass. Call before Start.
func (s *Scheduler) AddCleanup(name string, fn Cleanup) {
	s.extra[name] = fn
}

// Start starts the scheduler in a background goroutine. The first cycle runs
// immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done.Add(1)

	go func() {
		defer s.done.Done()
		s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

		s.RunCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("scheduler stopped")
				return
			case <-ticker.C:
				s.RunCycle(ctx)
			}
		}
	}()
}

// Stop stops the scheduler and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.done.Wait()
}

// RunCycle runs one scan and cleanup pass
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()

	result, err := s.scanner.ScanAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("alert scan finished with errors")
	}

	if s.retention.Alerts > 0 {
		if _, err := s.alerts.CleanupResolved(ctx, s.retention.Alerts); err != nil {
			s.logger.Error().Err(err).Msg("resolved alert cleanup failed")
		}
	}
	if s.retention.Notifications > 0 {
		if _, err := s.notifications.Cleanup(ctx, s.retention.Notifications); err != nil {
			s.logger.Error().Err(err).Msg("notification cleanup failed")
		}
	}
	for name, fn := range s.extra {
		if _, err := fn(ctx); err != nil {
			s.logger.Error().Err(err).Str("cleanup", name).Msg("cleanup failed")
		}
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Int("expiry_alerts", result.ExpiryAlerts).
		Int("low_stock_alerts", result.LowStockAlerts).
		Msg("scheduler cycle completed")
}
