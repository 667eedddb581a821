package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationLowStock    = "low_stock"
	NotificationExpiry      = "expiry"
	NotificationExpired     = "expired"
	NotificationDailyReport = "daily_report"
)

// Notification delivery states.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// TelegramSettings is the singleton notification configuration. Check times
// for stock/expiry sweeps are five-field cron expressions; the daily report
// time is a plain HH:MM.
type TelegramSettings struct {
	ID                   uuid.UUID `json:"id"`
	BotToken             string    `json:"bot_token"`
	ChatID               string    `json:"chat_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	LowStockAlerts       bool      `json:"low_stock_alerts_enabled"`
	ExpiryAlerts         bool      `json:"expiry_alerts_enabled"`
	ExpiredAlerts        bool      `json:"expired_alerts_enabled"`
	DailyReports         bool      `json:"daily_reports_enabled"`
	DailyReportTime      string    `json:"daily_report_time"`
	LowStockCheckCron    string    `json:"low_stock_check_time"`
	ExpiryCheckCron      string    `json:"expiry_check_time"`
	ExpiredCheckCron     string    `json:"expired_check_time"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultTelegramSettings returns the settings used before any are saved.
func DefaultTelegramSettings() TelegramSettings {
	now := time.Now().UTC()
	return TelegramSettings{
		ID:                   uuid.New(),
		NotificationsEnabled: true,
		LowStockAlerts:       true,
		ExpiryAlerts:         true,
		ExpiredAlerts:        true,
		DailyReports:         true,
		DailyReportTime:      "18:00",
		LowStockCheckCron:    "0 */4 * * *",
		ExpiryCheckCron:      "0 9 * * *",
		ExpiredCheckCron:     "0 10 * * *",
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// NotificationRecord is one entry in the notification history.
type NotificationRecord struct {
	ID               uuid.UUID `json:"id"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	Data             any       `json:"data,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewNotificationRecord captures one send attempt.
func NewNotificationRecord(notificationType, message, status, errorMessage string, data any) NotificationRecord {
	return NotificationRecord{
		ID:               uuid.New(),
		NotificationType: notificationType,
		Message:          message,
		Status:           status,
		ErrorMessage:     errorMessage,
		Data:             data,
		CreatedAt:        time.Now().UTC(),
	}
}
