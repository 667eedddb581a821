package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

var (
	// ErrNoItems is returned for a sale without line items.
	ErrNoItems = errors.New("sale requires at least one item")
	// ErrInvalidPayment is returned for unknown payment methods.
	ErrInvalidPayment = errors.New("invalid payment method")
	// ErrInsufficientStock is returned when an item's quantity exceeds the
	// medicine's current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// defaultListLimit bounds sale listings when the caller gives no limit.
const defaultListLimit = 100

// Service records point-of-sale transactions and keeps stock in step.
type Service struct {
	sales     repository.SaleRepository
	medicines repository.MedicineRepository
	movements repository.StockMovementRepository
	logger    *zap.Logger
}

// NewService creates a sales service.
func NewService(sales repository.SaleRepository, medicines repository.MedicineRepository, movements repository.StockMovementRepository, logger *zap.Logger) *Service {
	return &Service{
		sales:     sales,
		medicines: medicines,
		movements: movements,
		logger:    logger,
	}
}

// ItemInput is one requested sale line.
type ItemInput struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
}

// SaleInput carries a requested sale.
type SaleInput struct {
	Items         []ItemInput `json:"items"`
	PaymentMethod string      `json:"payment_method"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	CashierID     string      `json:"cashier_id"`
}

// CreateSale checks stock for every item before touching anything, then
// decrements stock, records a movement per item, and stores the sale.
func (s *Service) CreateSale(ctx context.Context, input SaleInput) (domain.Sale, error) {
	if len(input.Items) == 0 {
		return domain.Sale{}, ErrNoItems
	}
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return domain.Sale{}, fmt.Errorf("%w: %s", ErrInvalidPayment, input.PaymentMethod)
	}

	// First pass: resolve every medicine and verify stock so a later line
	// cannot fail after an earlier one already decremented. Lines for the
	// same medicine draw from one running balance, so their combined
	// quantity is checked too.
	resolved := make([]domain.Medicine, len(input.Items))
	remaining := make(map[uuid.UUID]int)
	for idx, item := range input.Items {
		if item.Quantity <= 0 {
			return domain.Sale{}, fmt.Errorf("%w: quantity must be positive", ErrNoItems)
		}
		medicine, err := s.medicines.GetByID(ctx, item.MedicineID)
		if err != nil {
			return domain.Sale{}, err
		}
		if _, ok := remaining[medicine.ID]; !ok {
			remaining[medicine.ID] = medicine.StockQuantity
		}
		if remaining[medicine.ID] < item.Quantity {
			return domain.Sale{}, fmt.Errorf("%w: %s has %d left, requested %d",
				ErrInsufficientStock, medicine.Name, remaining[medicine.ID], item.Quantity)
		}
		remaining[medicine.ID] -= item.Quantity
		resolved[idx] = medicine
	}

	items := make([]domain.SaleItem, len(input.Items))
	var total float64
	for idx, item := range input.Items {
		medicine := resolved[idx]
		lineTotal := medicine.Price * float64(item.Quantity)
		items[idx] = domain.SaleItem{
			MedicineID:   medicine.ID,
			MedicineName: medicine.Name,
			Quantity:     item.Quantity,
			Price:        medicine.Price,
			Total:        lineTotal,
		}
		total += lineTotal
	}

	sale := domain.NewSale(items, total, input.PaymentMethod, input.CustomerName, input.CustomerPhone, input.CashierID)

	stock := make(map[uuid.UUID]int, len(input.Items))
	for idx, item := range input.Items {
		medicine := resolved[idx]
		previous, ok := stock[medicine.ID]
		if !ok {
			previous = medicine.StockQuantity
		}
		newStock := previous - item.Quantity
		stock[medicine.ID] = newStock
		if err := s.medicines.SetStock(ctx, medicine.ID, newStock); err != nil {
			return domain.Sale{}, fmt.Errorf("failed to decrement stock for %s: %w", medicine.Name, err)
		}

		movement := domain.NewStockMovement(medicine.ID, medicine.Name, domain.MovementSale,
			previous, newStock, sale.ReceiptNumber, "")
		if err := s.movements.Record(ctx, movement); err != nil {
			s.logger.Warn("failed to record sale movement",
				zap.String("medicine", medicine.Name), zap.Error(err))
		}
	}

	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("failed to store sale: %w", err)
	}
	return created, nil
}

// ListSales returns sales newest first, bounded by filter.Limit.
func (s *Service) ListSales(ctx context.Context, start, end time.Time, medicineName string, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.sales.List(ctx, repository.SaleFilter{
		Start:        start,
		End:          end,
		MedicineName: medicineName,
		Limit:        limit,
	})
}
