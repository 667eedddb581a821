package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives the periodic stock and expiry sweeps from the saved
// Telegram settings. Rebuild swaps in new cron entries after a settings
// change without restarting the process.
type Scheduler struct {
	service *Service
	logger  *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewScheduler creates a scheduler over the notification service.
func NewScheduler(service *Service, logger *zap.Logger) *Scheduler {
	return &Scheduler{service: service, logger: logger}
}

// Start reads the current settings and begins running the sweeps.
func (s *Scheduler) Start(ctx context.Context) error {
	return s.Rebuild(ctx)
}

// Stop halts all scheduled sweeps.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// Rebuild replaces the schedule with one derived from the stored settings.
func (s *Scheduler) Rebuild(ctx context.Context) error {
	settings, err := s.service.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notification settings: %w", err)
	}

	next := cron.New()

	if _, err := next.AddFunc(settings.LowStockCheckCron, s.runSweep("low stock", func(ctx context.Context) error {
		_, err := s.service.CheckLowStock(ctx)
		return err
	})); err != nil {
		return fmt.Errorf("invalid low stock schedule %q: %w", settings.LowStockCheckCron, err)
	}

	if _, err := next.AddFunc(settings.ExpiryCheckCron, s.runSweep("expiry", func(ctx context.Context) error {
		_, err := s.service.CheckExpiry(ctx)
		return err
	})); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", settings.ExpiryCheckCron, err)
	}

	if _, err := next.AddFunc(settings.ExpiredCheckCron, s.runSweep("expired", func(ctx context.Context) error {
		_, err := s.service.CheckExpired(ctx)
		return err
	})); err != nil {
		return fmt.Errorf("invalid expired schedule %q: %w", settings.ExpiredCheckCron, err)
	}

	reportSpec, err := dailyTimeToCron(settings.DailyReportTime)
	if err != nil {
		return err
	}
	if _, err := next.AddFunc(reportSpec, s.runSweep("daily report", s.service.SendDailyReport)); err != nil {
		return fmt.Errorf("invalid daily report schedule %q: %w", reportSpec, err)
	}

	s.mu.Lock()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = next
	s.cron.Start()
	s.mu.Unlock()

	s.logger.Info("notification schedule rebuilt",
		zap.String("low_stock", settings.LowStockCheckCron),
		zap.String("expiry", settings.ExpiryCheckCron),
		zap.String("expired", settings.ExpiredCheckCron),
		zap.String("daily_report", settings.DailyReportTime))
	return nil
}

func (s *Scheduler) runSweep(name string, run func(context.Context) error) func() {
	return func() {
		if err := run(context.Background()); err != nil {
			s.logger.Warn("scheduled sweep failed", zap.String("sweep", name), zap.Error(err))
		}
	}
}

// dailyTimeToCron turns an HH:MM wall clock time into a five-field cron spec.
func dailyTimeToCron(hhmm string) (string, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid daily report time %q", hhmm)
	}
	var hour, minute int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("invalid daily report time %q", hhmm)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid daily report time %q", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
