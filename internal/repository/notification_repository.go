package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository wires a repository backed by pgxpool.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) GetSettings(ctx context.Context) (domain.TelegramSettings, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, bot_token, chat_id, notifications_enabled, low_stock_alerts_enabled,
			expiry_alerts_enabled, expired_alerts_enabled, daily_reports_enabled,
			daily_report_time, low_stock_check_cron, expiry_check_cron, expired_check_cron,
			created_at, updated_at
		 FROM telegram_settings LIMIT 1`,
	)

	var s domain.TelegramSettings
	err := row.Scan(
		&s.ID,
		&s.BotToken,
		&s.ChatID,
		&s.NotificationsEnabled,
		&s.LowStockAlerts,
		&s.ExpiryAlerts,
		&s.ExpiredAlerts,
		&s.DailyReports,
		&s.DailyReportTime,
		&s.LowStockCheckCron,
		&s.ExpiryCheckCron,
		&s.ExpiredCheckCron,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TelegramSettings{}, ErrNotFound
		}
		return domain.TelegramSettings{}, fmt.Errorf("failed to get telegram settings: %w", err)
	}
	return s, nil
}

func (r *notificationRepository) SaveSettings(ctx context.Context, settings domain.TelegramSettings) (domain.TelegramSettings, error) {
	// Single-row table: replace whatever is there.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.TelegramSettings{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM telegram_settings`); err != nil {
		return domain.TelegramSettings{}, fmt.Errorf("failed to clear telegram settings: %w", err)
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO telegram_settings (id, bot_token, chat_id, notifications_enabled,
			low_stock_alerts_enabled, expiry_alerts_enabled, expired_alerts_enabled,
			daily_reports_enabled, daily_report_time, low_stock_check_cron,
			expiry_check_cron, expired_check_cron, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())`,
		settings.ID,
		settings.BotToken,
		settings.ChatID,
		settings.NotificationsEnabled,
		settings.LowStockAlerts,
		settings.ExpiryAlerts,
		settings.ExpiredAlerts,
		settings.DailyReports,
		settings.DailyReportTime,
		settings.LowStockCheckCron,
		settings.ExpiryCheckCron,
		settings.ExpiredCheckCron,
		settings.CreatedAt,
	)
	if err != nil {
		return domain.TelegramSettings{}, fmt.Errorf("failed to save telegram settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.TelegramSettings{}, fmt.Errorf("failed to commit telegram settings: %w", err)
	}

	return r.GetSettings(ctx)
}

func (r *notificationRepository) RecordNotification(ctx context.Context, record domain.NotificationRecord) error {
	var dataJSON []byte
	if record.Data != nil {
		var err error
		dataJSON, err = json.Marshal(record.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO notification_history (id, notification_type, message, status, error_message, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID,
		record.NotificationType,
		record.Message,
		record.Status,
		record.ErrorMessage,
		dataJSON,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListNotifications(ctx context.Context, limit int) ([]domain.NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, notification_type, message, status, error_message, data, created_at
		 FROM notification_history
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	records := []domain.NotificationRecord{}
	for rows.Next() {
		var (
			record   domain.NotificationRecord
			dataJSON []byte
		)
		if err := rows.Scan(
			&record.ID,
			&record.NotificationType,
			&record.Message,
			&record.Status,
			&record.ErrorMessage,
			&dataJSON,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(dataJSON) > 0 {
			var data any
			if err := json.Unmarshal(dataJSON, &data); err == nil {
				record.Data = data
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return records, nil
}
