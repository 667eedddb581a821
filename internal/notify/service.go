package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

// Sender delivers one message to a Telegram chat.
type Sender interface {
	SendMessage(ctx context.Context, botToken, chatID, text string) error
}

// historyLimit bounds the notification history listing.
const historyLimit = 50

// Service runs the stock and expiry sweeps and delivers alerts.
type Service struct {
	medicines     repository.MedicineRepository
	notifications repository.NotificationRepository
	analytics     repository.AnalyticsRepository
	sender        Sender
	logger        *zap.Logger
	now           func() time.Time
}

// NewService creates a notification service.
func NewService(
	medicines repository.MedicineRepository,
	notifications repository.NotificationRepository,
	analytics repository.AnalyticsRepository,
	sender Sender,
	logger *zap.Logger,
) *Service {
	return &Service{
		medicines:     medicines,
		notifications: notifications,
		analytics:     analytics,
		sender:        sender,
		logger:        logger,
		now:           time.Now,
	}
}

// GetSettings returns the saved Telegram settings, or the defaults when
// nothing has been saved yet.
func (s *Service) GetSettings(ctx context.Context) (domain.TelegramSettings, error) {
	settings, err := s.notifications.GetSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.DefaultTelegramSettings(), nil
	}
	return settings, err
}

// SaveSettings replaces the Telegram settings.
func (s *Service) SaveSettings(ctx context.Context, settings domain.TelegramSettings) (domain.TelegramSettings, error) {
	return s.notifications.SaveSettings(ctx, settings)
}

// History lists recent notification attempts, newest first.
func (s *Service) History(ctx context.Context) ([]domain.NotificationRecord, error) {
	records, err := s.notifications.ListNotifications(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.NotificationRecord{}
	}
	return records, nil
}

// SendTest delivers a test message with the saved credentials.
func (s *Service) SendTest(ctx context.Context) error {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	message := "✅ <b>MediPOS</b>\nTelegram notifications are working."
	return s.deliver(ctx, settings, "test", message, nil)
}

// CheckLowStock alerts on every medicine at or below its low stock
// threshold. Returns the number of medicines flagged.
func (s *Service) CheckLowStock(ctx context.Context) (int, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.NotificationsEnabled || !settings.LowStockAlerts {
		return 0, nil
	}

	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var flagged []domain.Medicine
	for _, medicine := range medicines {
		if medicine.NotificationsEnabled && medicine.StockQuantity <= medicine.LowStockThreshold {
			flagged = append(flagged, medicine)
		}
	}
	if len(flagged) == 0 {
		return 0, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ <b>Low Stock Alert</b>\n%d medicine(s) running low:\n", len(flagged))
	for _, medicine := range flagged {
		fmt.Fprintf(&b, "• %s: %d left (threshold %d)\n", medicine.Name, medicine.StockQuantity, medicine.LowStockThreshold)
	}

	err = s.deliver(ctx, settings, domain.NotificationLowStock, b.String(), map[string]any{"count": len(flagged)})
	return len(flagged), err
}

// CheckExpiry alerts on medicines expiring within their alert window.
func (s *Service) CheckExpiry(ctx context.Context) (int, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.NotificationsEnabled || !settings.ExpiryAlerts {
		return 0, nil
	}

	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	today := s.now().UTC()
	var b strings.Builder
	count := 0
	for _, medicine := range medicines {
		if !medicine.NotificationsEnabled {
			continue
		}
		days, ok := medicine.DaysToExpiry(today)
		if !ok || days < 0 || days > medicine.ExpiryAlertDays {
			continue
		}
		count++
		fmt.Fprintf(&b, "• %s expires in %d day(s) (%s)\n", medicine.Name, days, medicine.ExpiryDate)
	}
	if count == 0 {
		return 0, nil
	}

	message := fmt.Sprintf("⏳ <b>Expiry Alert</b>\n%d medicine(s) expiring soon:\n%s", count, b.String())
	err = s.deliver(ctx, settings, domain.NotificationExpiry, message, map[string]any{"count": count})
	return count, err
}

// CheckExpired alerts on medicines already past their expiry date.
func (s *Service) CheckExpired(ctx context.Context) (int, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.NotificationsEnabled || !settings.ExpiredAlerts {
		return 0, nil
	}

	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	today := s.now().UTC()
	var b strings.Builder
	count := 0
	for _, medicine := range medicines {
		if !medicine.NotificationsEnabled || medicine.StockQuantity <= 0 {
			continue
		}
		days, ok := medicine.DaysToExpiry(today)
		if !ok || days >= 0 {
			continue
		}
		count++
		fmt.Fprintf(&b, "• %s expired %d day(s) ago (%s)\n", medicine.Name, -days, medicine.ExpiryDate)
	}
	if count == 0 {
		return 0, nil
	}

	message := fmt.Sprintf("❌ <b>Expired Medicines</b>\n%d medicine(s) past expiry:\n%s", count, b.String())
	err = s.deliver(ctx, settings, domain.NotificationExpired, message, map[string]any{"count": count})
	return count, err
}

// SendDailyReport summarizes today's sales and current stock warnings.
func (s *Service) SendDailyReport(ctx context.Context) error {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled || !settings.DailyReports {
		return nil
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	totals, err := s.analytics.SalesTotals(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	payments, err := s.analytics.PaymentBreakdown(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	topMedicines, err := s.analytics.TopMedicines(ctx, dayStart, dayEnd, 5)
	if err != nil {
		return err
	}

	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return err
	}
	lowStock := 0
	for _, medicine := range medicines {
		if medicine.StockQuantity <= medicine.LowStockThreshold {
			lowStock++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Daily Report</b> %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Sales: %.2f across %d transaction(s)\n", totals.TotalSales, totals.TotalTransactions)
	fmt.Fprintf(&b, "Items sold: %d\n", totals.TotalItemsSold)
	for _, payment := range payments {
		fmt.Fprintf(&b, "• %s: %.2f\n", payment.PaymentMethod, payment.Total)
	}
	if len(topMedicines) > 0 {
		b.WriteString("Top sellers:\n")
		for _, top := range topMedicines {
			fmt.Fprintf(&b, "• %s: %d sold\n", top.MedicineName, top.Quantity)
		}
	}
	fmt.Fprintf(&b, "Low stock medicines: %d\n", lowStock)

	return s.deliver(ctx, settings, domain.NotificationDailyReport, b.String(), map[string]any{
		"total_sales":        totals.TotalSales,
		"total_transactions": totals.TotalTransactions,
	})
}

// deliver sends the message and records the attempt. The history write never
// fails the delivery.
func (s *Service) deliver(ctx context.Context, settings domain.TelegramSettings, notificationType, message string, data map[string]any) error {
	sendErr := s.sender.SendMessage(ctx, settings.BotToken, settings.ChatID, message)

	status := domain.NotificationSent
	errorMessage := ""
	if sendErr != nil {
		status = domain.NotificationFailed
		errorMessage = sendErr.Error()
	}

	record := domain.NewNotificationRecord(notificationType, message, status, errorMessage, data)
	if err := s.notifications.RecordNotification(ctx, record); err != nil {
		s.logger.Warn("failed to record notification", zap.String("type", notificationType), zap.Error(err))
	}
	return sendErr
}
