package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos/rms-api/internal/domain"
)

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository wires sales aggregation queries backed by pgxpool.
// Per-item aggregates unnest the JSONB items column.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) SalesTotals(ctx context.Context, start, end time.Time) (domain.SalesTotals, error) {
	var totals domain.SalesTotals

	err := r.pool.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		 FROM sales
		 WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&totals.TotalSales, &totals.TotalTransactions)
	if err != nil {
		return totals, fmt.Errorf("failed to aggregate sales totals: %w", err)
	}

	err = r.pool.QueryRow(
		ctx,
		`SELECT COALESCE(SUM((item->>'quantity')::int), 0)
		 FROM sales, jsonb_array_elements(items) AS item
		 WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&totals.TotalItemsSold)
	if err != nil {
		return totals, fmt.Errorf("failed to aggregate items sold: %w", err)
	}
	return totals, nil
}

func (r *analyticsRepository) TopMedicines(ctx context.Context, start, end time.Time, limit int) ([]domain.MedicineSales, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT item->>'medicine_name',
			SUM((item->>'quantity')::int),
			SUM((item->>'total')::double precision)
		 FROM sales, jsonb_array_elements(items) AS item
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1
		 ORDER BY 2 DESC
		 LIMIT $3`,
		start, end, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top medicines: %w", err)
	}
	defer rows.Close()

	return collectMedicineSales(rows)
}

func (r *analyticsRepository) DailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT to_char(created_at, 'YYYY-MM-DD'), SUM(total_amount), COUNT(*)
		 FROM sales
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1
		 ORDER BY 1`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	defer rows.Close()

	var daily []domain.DailySales
	for rows.Next() {
		var day domain.DailySales
		if err := rows.Scan(&day.Date, &day.Total, &day.Transactions); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		daily = append(daily, day)
	}
	return daily, rows.Err()
}

func (r *analyticsRepository) PaymentBreakdown(ctx context.Context, start, end time.Time) ([]domain.PaymentBreakdown, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT payment_method, SUM(total_amount), COUNT(*)
		 FROM sales
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY payment_method`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []domain.PaymentBreakdown
	for rows.Next() {
		var entry domain.PaymentBreakdown
		if err := rows.Scan(&entry.PaymentMethod, &entry.Total, &entry.Transactions); err != nil {
			return nil, fmt.Errorf("failed to scan payment breakdown: %w", err)
		}
		breakdown = append(breakdown, entry)
	}
	return breakdown, rows.Err()
}

func (r *analyticsRepository) HourlySales(ctx context.Context, start, end time.Time) ([]domain.HourlySales, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT EXTRACT(HOUR FROM created_at)::int, SUM(total_amount), COUNT(*)
		 FROM sales
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1
		 ORDER BY 1`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hourly sales: %w", err)
	}
	defer rows.Close()

	var hourly []domain.HourlySales
	for rows.Next() {
		var slot domain.HourlySales
		if err := rows.Scan(&slot.Hour, &slot.Total, &slot.Transactions); err != nil {
			return nil, fmt.Errorf("failed to scan hourly sales: %w", err)
		}
		hourly = append(hourly, slot)
	}
	return hourly, rows.Err()
}

func (r *analyticsRepository) MedicineDailySales(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.MedicineDailySales, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT to_char(created_at, 'YYYY-MM-DD'),
			SUM((item->>'quantity')::int),
			SUM((item->>'total')::double precision)
		 FROM sales, jsonb_array_elements(items) AS item
		 WHERE item->>'medicine_id' = $1 AND created_at >= $2
		 GROUP BY 1
		 ORDER BY 1`,
		medicineID.String(), since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate medicine sales: %w", err)
	}
	defer rows.Close()

	var daily []domain.MedicineDailySales
	for rows.Next() {
		var day domain.MedicineDailySales
		if err := rows.Scan(&day.Date, &day.Quantity, &day.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan medicine sales: %w", err)
		}
		daily = append(daily, day)
	}
	return daily, rows.Err()
}

func (r *analyticsRepository) MedicinesSoldSummary(ctx context.Context, start, end time.Time) ([]domain.MedicineSales, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT item->>'medicine_name',
			SUM((item->>'quantity')::int),
			SUM((item->>'total')::double precision)
		 FROM sales, jsonb_array_elements(items) AS item
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1
		 ORDER BY 3 DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sold summary: %w", err)
	}
	defer rows.Close()

	return collectMedicineSales(rows)
}

func collectMedicineSales(rows pgx.Rows) ([]domain.MedicineSales, error) {
	var result []domain.MedicineSales
	for rows.Next() {
		var entry domain.MedicineSales
		if err := rows.Scan(&entry.MedicineName, &entry.Quantity, &entry.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan medicine sales: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
