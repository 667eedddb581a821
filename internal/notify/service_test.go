package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(medicines *stubMedicineRepo, notifications *stubNotificationRepo, sender *stubSender) *Service {
	service := NewService(medicines, notifications, &stubAnalyticsRepo{}, sender, zap.NewNop())
	service.now = fixedNow
	return service
}

func configuredSettings() domain.TelegramSettings {
	settings := domain.DefaultTelegramSettings()
	settings.BotToken = "token"
	settings.ChatID = "chat"
	return settings
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	service := newTestService(&stubMedicineRepo{}, &stubNotificationRepo{}, &stubSender{})

	settings, err := service.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "18:00", settings.DailyReportTime)
	assert.Equal(t, "0 */4 * * *", settings.LowStockCheckCron)
	assert.True(t, settings.NotificationsEnabled)
}

func TestCheckLowStockFlagsAndRecords(t *testing.T) {
	medicines := &stubMedicineRepo{medicines: []domain.Medicine{
		medicineWithStock("Paracetamol", 3, 10),
		medicineWithStock("Ibuprofen", 50, 10),
	}}
	notifications := &stubNotificationRepo{settings: configuredSettings()}
	sender := &stubSender{}
	service := newTestService(medicines, notifications, sender)

	count, err := service.CheckLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Paracetamol")
	assert.NotContains(t, sender.sent[0], "Ibuprofen")

	require.Len(t, notifications.records, 1)
	assert.Equal(t, domain.NotificationLowStock, notifications.records[0].NotificationType)
	assert.Equal(t, domain.NotificationSent, notifications.records[0].Status)
}

func TestCheckLowStockRespectsDisabledAlerts(t *testing.T) {
	settings := configuredSettings()
	settings.LowStockAlerts = false
	medicines := &stubMedicineRepo{medicines: []domain.Medicine{medicineWithStock("Paracetamol", 0, 10)}}
	sender := &stubSender{}
	service := newTestService(medicines, &stubNotificationRepo{settings: settings}, sender)

	count, err := service.CheckLowStock(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, sender.sent)
}

func TestCheckExpirySeparatesExpiringFromExpired(t *testing.T) {
	expiring := medicineWithStock("Expiring", 10, 5)
	expiring.ExpiryDate = "2025-06-10"
	expired := medicineWithStock("Expired", 10, 5)
	expired.ExpiryDate = "2025-05-20"
	fresh := medicineWithStock("Fresh", 10, 5)
	fresh.ExpiryDate = "2026-06-01"

	medicines := &stubMedicineRepo{medicines: []domain.Medicine{expiring, expired, fresh}}
	notifications := &stubNotificationRepo{settings: configuredSettings()}
	sender := &stubSender{}
	service := newTestService(medicines, notifications, sender)

	count, err := service.CheckExpiry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, sender.sent[0], "Expiring")
	assert.NotContains(t, sender.sent[0], "Expired")

	count, err = service.CheckExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, sender.sent[1], "Expired")
	assert.NotContains(t, sender.sent[1], "Fresh")
}

func TestDeliverRecordsFailure(t *testing.T) {
	medicines := &stubMedicineRepo{medicines: []domain.Medicine{medicineWithStock("Paracetamol", 0, 10)}}
	notifications := &stubNotificationRepo{settings: configuredSettings()}
	sender := &stubSender{err: errors.New("telegram down")}
	service := newTestService(medicines, notifications, sender)

	_, err := service.CheckLowStock(context.Background())
	require.Error(t, err)

	require.Len(t, notifications.records, 1)
	assert.Equal(t, domain.NotificationFailed, notifications.records[0].Status)
	assert.Equal(t, "telegram down", notifications.records[0].ErrorMessage)
}

func TestDailyTimeToCron(t *testing.T) {
	spec, err := dailyTimeToCron("18:00")
	require.NoError(t, err)
	assert.Equal(t, "0 18 * * *", spec)

	spec, err = dailyTimeToCron("09:30")
	require.NoError(t, err)
	assert.Equal(t, "30 9 * * *", spec)

	_, err = dailyTimeToCron("25:00")
	assert.Error(t, err)
	_, err = dailyTimeToCron("evening")
	assert.Error(t, err)
}

func medicineWithStock(name string, stock, threshold int) domain.Medicine {
	medicine := domain.NewMedicine(name, 10, stock, "", "", "", "")
	medicine.LowStockThreshold = threshold
	return medicine
}

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

type stubMedicineRepo struct {
	medicines []domain.Medicine
}

func (s *stubMedicineRepo) Create(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	return medicine, nil
}

func (s *stubMedicineRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Medicine, error) {
	return domain.Medicine{}, repository.ErrNotFound
}

func (s *stubMedicineRepo) List(ctx context.Context, search string, limit int) ([]domain.Medicine, error) {
	return s.medicines, nil
}

func (s *stubMedicineRepo) ListAll(ctx context.Context) ([]domain.Medicine, error) {
	return s.medicines, nil
}

func (s *stubMedicineRepo) ListNames(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubMedicineRepo) Update(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	return medicine, nil
}

func (s *stubMedicineRepo) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return nil
}

func (s *stubMedicineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubMedicineRepo) DeleteAll(ctx context.Context) error {
	return nil
}

type stubNotificationRepo struct {
	settings domain.TelegramSettings
	records  []domain.NotificationRecord
}

func (s *stubNotificationRepo) GetSettings(ctx context.Context) (domain.TelegramSettings, error) {
	if s.settings.ID == uuid.Nil && s.settings.BotToken == "" {
		return domain.TelegramSettings{}, repository.ErrNotFound
	}
	return s.settings, nil
}

func (s *stubNotificationRepo) SaveSettings(ctx context.Context, settings domain.TelegramSettings) (domain.TelegramSettings, error) {
	s.settings = settings
	return settings, nil
}

func (s *stubNotificationRepo) RecordNotification(ctx context.Context, record domain.NotificationRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubNotificationRepo) ListNotifications(ctx context.Context, limit int) ([]domain.NotificationRecord, error) {
	return s.records, nil
}

type stubAnalyticsRepo struct{}

func (s *stubAnalyticsRepo) SalesTotals(ctx context.Context, start, end time.Time) (domain.SalesTotals, error) {
	return domain.SalesTotals{}, nil
}

func (s *stubAnalyticsRepo) TopMedicines(ctx context.Context, start, end time.Time, limit int) ([]domain.MedicineSales, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) DailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) PaymentBreakdown(ctx context.Context, start, end time.Time) ([]domain.PaymentBreakdown, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) HourlySales(ctx context.Context, start, end time.Time) ([]domain.HourlySales, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) MedicineDailySales(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.MedicineDailySales, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) MedicinesSoldSummary(ctx context.Context, start, end time.Time) ([]domain.MedicineSales, error) {
	return nil, nil
}
