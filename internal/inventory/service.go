package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

var (
	// ErrNameRequired is returned when a medicine is created without a name.
	ErrNameRequired = errors.New("medicine name is required")
	// ErrNegativeValue is returned for negative prices or stock levels.
	ErrNegativeValue = errors.New("price and stock quantity must be nonnegative")
	// ErrInvalidMovement is returned for unknown stock movement types.
	ErrInvalidMovement = errors.New("invalid stock movement type")
)

// Service manages the medicine catalogue, stock levels, and shop details.
type Service struct {
	medicines repository.MedicineRepository
	movements repository.StockMovementRepository
	shop      repository.ShopRepository
	logger    *zap.Logger
}

// NewService creates an inventory service.
func NewService(medicines repository.MedicineRepository, movements repository.StockMovementRepository, shop repository.ShopRepository, logger *zap.Logger) *Service {
	return &Service{
		medicines: medicines,
		movements: movements,
		shop:      shop,
		logger:    logger,
	}
}

// MedicineInput carries client-supplied medicine fields.
type MedicineInput struct {
	Name                 string  `json:"name"`
	Price                float64 `json:"price"`
	StockQuantity        int     `json:"stock_quantity"`
	ExpiryDate           string  `json:"expiry_date"`
	BatchNumber          string  `json:"batch_number"`
	Supplier             string  `json:"supplier"`
	Barcode              string  `json:"barcode"`
	Category             string  `json:"category"`
	Unit                 string  `json:"unit"`
	LowStockThreshold    *int    `json:"low_stock_threshold"`
	ExpiryAlertDays      *int    `json:"expiry_alert_days"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

func (in MedicineInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if in.Price < 0 || in.StockQuantity < 0 {
		return ErrNegativeValue
	}
	return nil
}

// CreateMedicine validates and stores a new medicine.
func (s *Service) CreateMedicine(ctx context.Context, input MedicineInput) (domain.Medicine, error) {
	if err := input.validate(); err != nil {
		return domain.Medicine{}, err
	}

	medicine := domain.NewMedicine(strings.TrimSpace(input.Name), input.Price, input.StockQuantity,
		input.ExpiryDate, input.BatchNumber, input.Supplier, input.Barcode)
	medicine.Category = input.Category
	medicine.Unit = input.Unit
	if input.LowStockThreshold != nil {
		medicine.LowStockThreshold = *input.LowStockThreshold
	}
	if input.ExpiryAlertDays != nil {
		medicine.ExpiryAlertDays = *input.ExpiryAlertDays
	}
	if input.NotificationsEnabled != nil {
		medicine.NotificationsEnabled = *input.NotificationsEnabled
	}

	created, err := s.medicines.Create(ctx, medicine)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("failed to create medicine: %w", err)
	}

	if created.StockQuantity > 0 {
		s.recordMovement(ctx, created, domain.MovementAddition, 0, created.StockQuantity, "", "Initial stock")
	}
	return created, nil
}

// GetMedicine returns one medicine by id.
func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (domain.Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

// ListMedicines lists the catalogue, optionally filtered by a
// case-insensitive search over name and barcode.
func (s *Service) ListMedicines(ctx context.Context, search string, limit int) ([]domain.Medicine, error) {
	return s.medicines.List(ctx, search, limit)
}

// UpdateMedicine replaces the editable fields of an existing medicine.
func (s *Service) UpdateMedicine(ctx context.Context, id uuid.UUID, input MedicineInput) (domain.Medicine, error) {
	if err := input.validate(); err != nil {
		return domain.Medicine{}, err
	}

	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return domain.Medicine{}, err
	}

	previousStock := existing.StockQuantity
	existing.Name = strings.TrimSpace(input.Name)
	existing.Price = input.Price
	existing.StockQuantity = input.StockQuantity
	existing.ExpiryDate = input.ExpiryDate
	existing.BatchNumber = input.BatchNumber
	existing.Supplier = input.Supplier
	existing.Barcode = input.Barcode
	existing.Category = input.Category
	existing.Unit = input.Unit
	if input.LowStockThreshold != nil {
		existing.LowStockThreshold = *input.LowStockThreshold
	}
	if input.ExpiryAlertDays != nil {
		existing.ExpiryAlertDays = *input.ExpiryAlertDays
	}
	if input.NotificationsEnabled != nil {
		existing.NotificationsEnabled = *input.NotificationsEnabled
	}

	updated, err := s.medicines.Update(ctx, existing)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("failed to update medicine: %w", err)
	}

	if updated.StockQuantity != previousStock {
		s.recordMovement(ctx, updated, domain.MovementAdjustment, previousStock, updated.StockQuantity, "", "Manual edit")
	}
	return updated, nil
}

// DeleteMedicine removes a medicine from the catalogue.
func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	return s.medicines.Delete(ctx, id)
}

// AdjustStock applies a signed stock change and records the movement.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, change int, movementType, notes string) (domain.Medicine, error) {
	switch movementType {
	case domain.MovementAddition, domain.MovementReturn, domain.MovementAdjustment:
	default:
		return domain.Medicine{}, fmt.Errorf("%w: %s", ErrInvalidMovement, movementType)
	}

	medicine, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return domain.Medicine{}, err
	}

	newStock := medicine.StockQuantity + change
	if newStock < 0 {
		return domain.Medicine{}, ErrNegativeValue
	}

	if err := s.medicines.SetStock(ctx, id, newStock); err != nil {
		return domain.Medicine{}, fmt.Errorf("failed to set stock: %w", err)
	}

	previous := medicine.StockQuantity
	medicine = medicine.WithStock(newStock)
	s.recordMovement(ctx, medicine, movementType, previous, newStock, "", notes)
	return medicine, nil
}

// GetShop returns the shop details record, or an empty record when none has
// been saved yet.
func (s *Service) GetShop(ctx context.Context) (domain.Shop, error) {
	shop, err := s.shop.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Shop{}, nil
	}
	return shop, err
}

// SaveShop creates or replaces the shop details record.
func (s *Service) SaveShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	return s.shop.Upsert(ctx, shop)
}

func (s *Service) recordMovement(ctx context.Context, medicine domain.Medicine, movementType string, previous, next int, referenceID, notes string) {
	movement := domain.NewStockMovement(medicine.ID, medicine.Name, movementType, previous, next, referenceID, notes)
	if err := s.movements.Record(ctx, movement); err != nil {
		s.logger.Warn("failed to record stock movement",
			zap.String("medicine", medicine.Name), zap.Error(err))
	}
}
