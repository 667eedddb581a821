package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

func newTestService(medicines *stubMedicineRepo, movements *stubMovementRepo) *Service {
	return NewService(medicines, movements, &stubShopRepo{}, zap.NewNop())
}

func TestCreateMedicineRecordsInitialStock(t *testing.T) {
	medicines := &stubMedicineRepo{}
	movements := &stubMovementRepo{}
	service := newTestService(medicines, movements)

	medicine, err := service.CreateMedicine(context.Background(), MedicineInput{
		Name:          "Paracetamol",
		Price:         10,
		StockQuantity: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, "Paracetamol", medicine.Name)
	assert.Equal(t, 10, medicine.LowStockThreshold)
	assert.True(t, medicine.NotificationsEnabled)

	require.Len(t, movements.recorded, 1)
	assert.Equal(t, domain.MovementAddition, movements.recorded[0].MovementType)
	assert.Equal(t, 50, movements.recorded[0].QuantityChange)
}

func TestCreateMedicineValidatesInput(t *testing.T) {
	service := newTestService(&stubMedicineRepo{}, &stubMovementRepo{})

	_, err := service.CreateMedicine(context.Background(), MedicineInput{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = service.CreateMedicine(context.Background(), MedicineInput{Name: "X", Price: -1})
	assert.ErrorIs(t, err, ErrNegativeValue)
}

func TestUpdateMedicineRecordsStockAdjustment(t *testing.T) {
	existing := domain.NewMedicine("Paracetamol", 10, 20, "2026-01-01", "", "", "")
	medicines := &stubMedicineRepo{byID: map[uuid.UUID]domain.Medicine{existing.ID: existing}}
	movements := &stubMovementRepo{}
	service := newTestService(medicines, movements)

	updated, err := service.UpdateMedicine(context.Background(), existing.ID, MedicineInput{
		Name:          "Paracetamol",
		Price:         12,
		StockQuantity: 35,
	})
	require.NoError(t, err)
	assert.Equal(t, 35, updated.StockQuantity)

	require.Len(t, movements.recorded, 1)
	assert.Equal(t, domain.MovementAdjustment, movements.recorded[0].MovementType)
	assert.Equal(t, 15, movements.recorded[0].QuantityChange)
	assert.Equal(t, 20, movements.recorded[0].PreviousStock)
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	existing := domain.NewMedicine("Paracetamol", 10, 2, "2026-01-01", "", "", "")
	medicines := &stubMedicineRepo{byID: map[uuid.UUID]domain.Medicine{existing.ID: existing}}
	service := newTestService(medicines, &stubMovementRepo{})

	_, err := service.AdjustStock(context.Background(), existing.ID, -5, domain.MovementAdjustment, "")
	assert.ErrorIs(t, err, ErrNegativeValue)

	_, err = service.AdjustStock(context.Background(), existing.ID, 5, "theft", "")
	assert.ErrorIs(t, err, ErrInvalidMovement)
}

func TestAdjustStockAppliesChange(t *testing.T) {
	existing := domain.NewMedicine("Paracetamol", 10, 2, "2026-01-01", "", "", "")
	medicines := &stubMedicineRepo{byID: map[uuid.UUID]domain.Medicine{existing.ID: existing}}
	movements := &stubMovementRepo{}
	service := newTestService(medicines, movements)

	medicine, err := service.AdjustStock(context.Background(), existing.ID, 8, domain.MovementAddition, "restock")
	require.NoError(t, err)
	assert.Equal(t, 10, medicine.StockQuantity)
	assert.Equal(t, 10, medicines.stock[existing.ID])

	require.Len(t, movements.recorded, 1)
	assert.Equal(t, "restock", movements.recorded[0].Notes)
}

func TestGetShopReturnsEmptyWhenUnset(t *testing.T) {
	service := newTestService(&stubMedicineRepo{}, &stubMovementRepo{})

	shop, err := service.GetShop(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shop.Name)
}

type stubMedicineRepo struct {
	byID    map[uuid.UUID]domain.Medicine
	created []domain.Medicine
	updated []domain.Medicine
	stock   map[uuid.UUID]int
}

func (s *stubMedicineRepo) Create(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	s.created = append(s.created, medicine)
	return medicine, nil
}

func (s *stubMedicineRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Medicine, error) {
	medicine, ok := s.byID[id]
	if !ok {
		return domain.Medicine{}, repository.ErrNotFound
	}
	return medicine, nil
}

func (s *stubMedicineRepo) List(ctx context.Context, search string, limit int) ([]domain.Medicine, error) {
	return nil, nil
}

func (s *stubMedicineRepo) ListAll(ctx context.Context) ([]domain.Medicine, error) {
	return nil, nil
}

func (s *stubMedicineRepo) ListNames(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubMedicineRepo) Update(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	s.updated = append(s.updated, medicine)
	return medicine, nil
}

func (s *stubMedicineRepo) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if s.stock == nil {
		s.stock = map[uuid.UUID]int{}
	}
	s.stock[id] = quantity
	return nil
}

func (s *stubMedicineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubMedicineRepo) DeleteAll(ctx context.Context) error {
	s.byID = nil
	return nil
}

type stubMovementRepo struct {
	recorded []domain.StockMovement
}

func (s *stubMovementRepo) Record(ctx context.Context, movement domain.StockMovement) error {
	s.recorded = append(s.recorded, movement)
	return nil
}

func (s *stubMovementRepo) ListByMedicine(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.StockMovement, error) {
	return s.recorded, nil
}

func (s *stubMovementRepo) ListAll(ctx context.Context) ([]domain.StockMovement, error) {
	return s.recorded, nil
}

func (s *stubMovementRepo) DeleteAll(ctx context.Context) error {
	s.recorded = nil
	return nil
}

type stubShopRepo struct {
	shop *domain.Shop
}

func (s *stubShopRepo) Get(ctx context.Context) (domain.Shop, error) {
	if s.shop == nil {
		return domain.Shop{}, repository.ErrNotFound
	}
	return *s.shop, nil
}

func (s *stubShopRepo) Upsert(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	s.shop = &shop
	return shop, nil
}

func (s *stubShopRepo) DeleteAll(ctx context.Context) error {
	s.shop = nil
	return nil
}
