package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

const (
	topMedicinesLimit = 10
	cacheTTL          = 60 * time.Second
	defaultRangeDays  = 30
)

// Service answers analytics queries over sales and stock history. Reports
// are cached briefly to absorb dashboard refresh bursts; when no cache is
// configured every call hits the database.
type Service struct {
	analytics repository.AnalyticsRepository
	movements repository.StockMovementRepository
	cache     *redis.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an analytics service. cache may be nil.
func NewService(analytics repository.AnalyticsRepository, movements repository.StockMovementRepository, cache *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		analytics: analytics,
		movements: movements,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// SalesReport is the full dashboard payload for one date range.
type SalesReport struct {
	StartDate        string                    `json:"start_date"`
	EndDate          string                    `json:"end_date"`
	Totals           domain.SalesTotals        `json:"totals"`
	TopMedicines     []domain.MedicineSales    `json:"top_medicines"`
	DailySales       []domain.DailySales       `json:"daily_sales"`
	PaymentBreakdown []domain.PaymentBreakdown `json:"payment_breakdown"`
	HourlyPattern    []domain.HourlySales      `json:"hourly_pattern"`
}

// SalesReportForRange aggregates one date range. An empty range produces
// zero totals, never an error.
func (s *Service) SalesReportForRange(ctx context.Context, start, end time.Time) (SalesReport, error) {
	if start.IsZero() {
		start = s.now().UTC().AddDate(0, 0, -defaultRangeDays)
	}
	if end.IsZero() {
		end = s.now().UTC().AddDate(0, 0, 1)
	}

	cacheKey := fmt.Sprintf("analytics:sales:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	report := SalesReport{
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		TopMedicines:     []domain.MedicineSales{},
		DailySales:       []domain.DailySales{},
		PaymentBreakdown: []domain.PaymentBreakdown{},
	}

	var err error
	if report.Totals, err = s.analytics.SalesTotals(ctx, start, end); err != nil {
		return report, err
	}
	top, err := s.analytics.TopMedicines(ctx, start, end, topMedicinesLimit)
	if err != nil {
		return report, err
	}
	if top != nil {
		report.TopMedicines = top
	}
	daily, err := s.analytics.DailySales(ctx, start, end)
	if err != nil {
		return report, err
	}
	if daily != nil {
		report.DailySales = daily
	}
	payments, err := s.analytics.PaymentBreakdown(ctx, start, end)
	if err != nil {
		return report, err
	}
	if payments != nil {
		report.PaymentBreakdown = payments
	}
	hourly, err := s.analytics.HourlySales(ctx, start, end)
	if err != nil {
		return report, err
	}
	report.HourlyPattern = fillHourlySlots(hourly)

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

// MedicineSales returns one medicine's per-day quantity and revenue over the
// trailing window.
func (s *Service) MedicineSales(ctx context.Context, medicineID uuid.UUID, days int) ([]domain.MedicineDailySales, error) {
	if days <= 0 {
		days = defaultRangeDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	daily, err := s.analytics.MedicineDailySales(ctx, medicineID, since)
	if err != nil {
		return nil, err
	}
	if daily == nil {
		daily = []domain.MedicineDailySales{}
	}
	return daily, nil
}

// StockHistory returns one medicine's stock movements over the trailing
// window, oldest first.
func (s *Service) StockHistory(ctx context.Context, medicineID uuid.UUID, days int) ([]domain.StockMovement, error) {
	if days <= 0 {
		days = defaultRangeDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	movements, err := s.movements.ListByMedicine(ctx, medicineID, since)
	if err != nil {
		return nil, err
	}
	if movements == nil {
		movements = []domain.StockMovement{}
	}
	return movements, nil
}

// MedicinesSoldSummary aggregates every medicine's quantity and revenue over
// the range, highest revenue first.
func (s *Service) MedicinesSoldSummary(ctx context.Context, start, end time.Time) ([]domain.MedicineSales, error) {
	if start.IsZero() {
		start = s.now().UTC().AddDate(0, 0, -defaultRangeDays)
	}
	if end.IsZero() {
		end = s.now().UTC().AddDate(0, 0, 1)
	}
	summary, err := s.analytics.MedicinesSoldSummary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		summary = []domain.MedicineSales{}
	}
	return summary, nil
}

// fillHourlySlots expands sparse query results into all 24 hour slots.
func fillHourlySlots(hourly []domain.HourlySales) []domain.HourlySales {
	slots := make([]domain.HourlySales, 24)
	for hour := range slots {
		slots[hour].Hour = hour
	}
	for _, slot := range hourly {
		if slot.Hour >= 0 && slot.Hour < 24 {
			slots[slot.Hour] = slot
		}
	}
	return slots
}

func (s *Service) fromCache(ctx context.Context, key string) (SalesReport, bool) {
	if s.cache == nil {
		return SalesReport{}, false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
		return SalesReport{}, false
	}
	var report SalesReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return SalesReport{}, false
	}
	return report, true
}

func (s *Service) toCache(ctx context.Context, key string, report SalesReport) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		s.logger.Debug("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
