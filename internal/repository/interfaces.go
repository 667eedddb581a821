package repository

import (
	"context"
	"errors"
	"time"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// MedicineRepository defines the interface for inventory item operations.
type MedicineRepository interface {
	Create(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Medicine, error)
	List(ctx context.Context, search string, limit int) ([]domain.Medicine, error)
	ListAll(ctx context.Context) ([]domain.Medicine, error)
	ListNames(ctx context.Context) ([]string, error)
	Update(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error)
	SetStock(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

// SaleRepository defines the interface for sale records.
type SaleRepository interface {
	Create(ctx context.Context, sale domain.Sale) (domain.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]domain.Sale, error)
	ListAll(ctx context.Context) ([]domain.Sale, error)
	DeleteAll(ctx context.Context) error
}

// SaleFilter narrows sale listings. Zero time values mean unbounded.
type SaleFilter struct {
	Start        time.Time
	End          time.Time
	MedicineName string
	Limit        int
}

// StockMovementRepository stores the stock-change audit trail.
type StockMovementRepository interface {
	Record(ctx context.Context, movement domain.StockMovement) error
	ListByMedicine(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.StockMovement, error)
	ListAll(ctx context.Context) ([]domain.StockMovement, error)
	DeleteAll(ctx context.Context) error
}

// ImportLogRepository is the append-only log of bulk import runs.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLog) error
	List(ctx context.Context, limit int) ([]domain.ImportLog, error)
	ListAll(ctx context.Context) ([]domain.ImportLog, error)
	DeleteAll(ctx context.Context) error
}

// AnalyticsRepository aggregates sales data in the database.
type AnalyticsRepository interface {
	SalesTotals(ctx context.Context, start, end time.Time) (domain.SalesTotals, error)
	TopMedicines(ctx context.Context, start, end time.Time, limit int) ([]domain.MedicineSales, error)
	DailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error)
	PaymentBreakdown(ctx context.Context, start, end time.Time) ([]domain.PaymentBreakdown, error)
	HourlySales(ctx context.Context, start, end time.Time) ([]domain.HourlySales, error)
	MedicineDailySales(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.MedicineDailySales, error)
	MedicinesSoldSummary(ctx context.Context, start, end time.Time) ([]domain.MedicineSales, error)
}

// UserRepository defines the interface for staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// ShopRepository stores the single shop-details record.
type ShopRepository interface {
	Get(ctx context.Context) (domain.Shop, error)
	Upsert(ctx context.Context, shop domain.Shop) (domain.Shop, error)
	DeleteAll(ctx context.Context) error
}

// BackupRepository stores backup metadata alongside the serialized payload.
type BackupRepository interface {
	Create(ctx context.Context, meta domain.BackupMetadata, payload []byte) error
	List(ctx context.Context) ([]domain.BackupMetadata, error)
	GetMetadata(ctx context.Context, id uuid.UUID) (domain.BackupMetadata, error)
	GetPayload(ctx context.Context, id uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository stores Telegram settings and send history.
type NotificationRepository interface {
	GetSettings(ctx context.Context) (domain.TelegramSettings, error)
	SaveSettings(ctx context.Context, settings domain.TelegramSettings) (domain.TelegramSettings, error)
	RecordNotification(ctx context.Context, record domain.NotificationRecord) error
	ListNotifications(ctx context.Context, limit int) ([]domain.NotificationRecord, error)
}
