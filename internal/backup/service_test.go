package backup

import (
	"context"
	"encoding/json"
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

func newTestService(medicines *stubMedicineRepo, backups *stubBackupRepo) *Service {
	service := NewService(backups, medicines, &stubSaleRepo{}, &stubMovementRepo{}, &stubShopRepo{}, &stubImportLogRepo{}, zap.NewNop())
	service.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return service
}

func TestCreateAndRestoreRoundTrip(t *testing.T) {
	medicines := &stubMedicineRepo{medicines: []domain.Medicine{
		domain.NewMedicine("Paracetamol", 10, 5, "2026-01-01", "B1", "Acme", "111"),
		domain.NewMedicine("Ibuprofen", 8, 3, "2026-02-01", "", "", ""),
	}}
	backups := &stubBackupRepo{}
	service := newTestService(medicines, backups)

	meta, err := service.Create(context.Background(), "", []string{domain.CategoryMedicines})
	require.NoError(t, err)
	assert.Equal(t, "backup-20250601-120000", meta.Name)
	assert.Equal(t, 2, meta.TotalRecords)
	assert.Equal(t, []string{domain.CategoryMedicines}, meta.DataCategories)
	assert.Equal(t, len(backups.payloads[meta.ID]), meta.FileSize)

	// Wipe the live data, then restore from the backup.
	medicines.medicines = nil
	result, err := service.Restore(context.Background(), meta.ID, RestoreOptions{ClearExisting: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Restored[domain.CategoryMedicines])
	require.Len(t, medicines.medicines, 2)
	assert.Equal(t, "Paracetamol", medicines.medicines[0].Name)
	assert.Equal(t, "B1", medicines.medicines[0].BatchNumber)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	service := newTestService(&stubMedicineRepo{}, &stubBackupRepo{})

	_, err := service.Create(context.Background(), "x", []string{"receipts"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRestoreUploadRejectsGarbage(t *testing.T) {
	service := newTestService(&stubMedicineRepo{}, &stubBackupRepo{})

	_, err := service.RestoreUpload(context.Background(), []byte("not json"), RestoreOptions{})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = service.RestoreUpload(context.Background(), []byte(`{"metadata":{},"data":{}}`), RestoreOptions{})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestRestoreUploadReplacesSelectedCategories(t *testing.T) {
	medicines := &stubMedicineRepo{medicines: []domain.Medicine{
		domain.NewMedicine("Old", 1, 1, "", "", "", ""),
	}}
	service := newTestService(medicines, &stubBackupRepo{})

	document := domain.BackupDocument{
		Data: map[string]any{
			domain.CategoryMedicines: []domain.Medicine{
				domain.NewMedicine("New", 2, 2, "", "", "", ""),
			},
		},
	}
	payload, err := json.Marshal(document)
	require.NoError(t, err)

	result, err := service.RestoreUpload(context.Background(), payload, RestoreOptions{
		Categories:    []string{domain.CategoryMedicines},
		ClearExisting: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Restored[domain.CategoryMedicines])
	require.Len(t, medicines.medicines, 1)
	assert.Equal(t, "New", medicines.medicines[0].Name)
}

func TestUploadRegistersDocumentWithoutRestoring(t *testing.T) {
	medicines := &stubMedicineRepo{}
	backups := &stubBackupRepo{}
	service := newTestService(medicines, backups)

	document := domain.BackupDocument{
		Metadata: domain.BackupDocumentMetadata{ID: uuid.New(), Name: "exported"},
		Data: map[string]any{
			domain.CategoryMedicines: []domain.Medicine{
				domain.NewMedicine("Paracetamol", 10, 5, "", "", "", ""),
			},
		},
	}
	payload, err := json.Marshal(document)
	require.NoError(t, err)

	meta, err := service.Upload(context.Background(), "", payload)
	require.NoError(t, err)
	assert.Equal(t, "exported", meta.Name)
	assert.NotEqual(t, document.Metadata.ID, meta.ID, "uploads get a fresh id")
	assert.Equal(t, 1, meta.TotalRecords)
	assert.Equal(t, []string{domain.CategoryMedicines}, meta.DataCategories)

	require.Len(t, backups.metas, 1)
	assert.Empty(t, medicines.medicines, "upload must not restore anything")

	// The stored payload can be restored later like any other backup.
	result, err := service.Restore(context.Background(), meta.ID, RestoreOptions{ClearExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored[domain.CategoryMedicines])
	assert.Len(t, medicines.medicines, 1)
}

func TestUploadRejectsUnknownCategory(t *testing.T) {
	service := newTestService(&stubMedicineRepo{}, &stubBackupRepo{})

	_, err := service.Upload(context.Background(), "", []byte(`{"data":{"receipts":[]}}`))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRestoreContinuesPastFailedCategory(t *testing.T) {
	medicines := &stubMedicineRepo{failCreate: true}
	service := newTestService(medicines, &stubBackupRepo{})

	document := domain.BackupDocument{
		Data: map[string]any{
			domain.CategoryMedicines: []domain.Medicine{
				domain.NewMedicine("Broken", 1, 1, "", "", "", ""),
			},
			domain.CategoryShop: []domain.Shop{{Name: "Corner Pharmacy"}},
		},
	}
	payload, err := json.Marshal(document)
	require.NoError(t, err)

	result, err := service.RestoreUpload(context.Background(), payload, RestoreOptions{ClearExisting: true})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], domain.CategoryMedicines)
	assert.Equal(t, 1, result.Restored[domain.CategoryShop])
}

type stubBackupRepo struct {
	metas    []domain.BackupMetadata
	payloads map[uuid.UUID][]byte
}

func (s *stubBackupRepo) Create(ctx context.Context, meta domain.BackupMetadata, payload []byte) error {
	if s.payloads == nil {
		s.payloads = map[uuid.UUID][]byte{}
	}
	s.metas = append(s.metas, meta)
	s.payloads[meta.ID] = payload
	return nil
}

func (s *stubBackupRepo) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	return s.metas, nil
}

func (s *stubBackupRepo) GetMetadata(ctx context.Context, id uuid.UUID) (domain.BackupMetadata, error) {
	for _, meta := range s.metas {
		if meta.ID == id {
			return meta, nil
		}
	}
	return domain.BackupMetadata{}, repository.ErrNotFound
}

func (s *stubBackupRepo) GetPayload(ctx context.Context, id uuid.UUID) ([]byte, error) {
	payload, ok := s.payloads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return payload, nil
}

func (s *stubBackupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.payloads, id)
	return nil
}

type stubMedicineRepo struct {
	medicines  []domain.Medicine
	failCreate bool
}

func (s *stubMedicineRepo) Create(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	if s.failCreate {
		return domain.Medicine{}, errors.New("insert failed")
	}
	s.medicines = append(s.medicines, medicine)
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
	s.medicines = nil
	return nil
}

type stubSaleRepo struct {
	sales []domain.Sale
}

func (s *stubSaleRepo) Create(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	s.sales = append(s.sales, sale)
	return sale, nil
}

func (s *stubSaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]domain.Sale, error) {
	return s.sales, nil
}

func (s *stubSaleRepo) ListAll(ctx context.Context) ([]domain.Sale, error) {
	return s.sales, nil
}

func (s *stubSaleRepo) DeleteAll(ctx context.Context) error {
	s.sales = nil
	return nil
}

type stubMovementRepo struct {
	movements []domain.StockMovement
}

func (s *stubMovementRepo) Record(ctx context.Context, movement domain.StockMovement) error {
	s.movements = append(s.movements, movement)
	return nil
}

func (s *stubMovementRepo) ListByMedicine(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.StockMovement, error) {
	return s.movements, nil
}

func (s *stubMovementRepo) ListAll(ctx context.Context) ([]domain.StockMovement, error) {
	return s.movements, nil
}

func (s *stubMovementRepo) DeleteAll(ctx context.Context) error {
	s.movements = nil
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

type stubImportLogRepo struct {
	entries []domain.ImportLog
}

func (s *stubImportLogRepo) Record(ctx context.Context, entry domain.ImportLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubImportLogRepo) List(ctx context.Context, limit int) ([]domain.ImportLog, error) {
	return s.entries, nil
}

func (s *stubImportLogRepo) ListAll(ctx context.Context) ([]domain.ImportLog, error) {
	return s.entries, nil
}

func (s *stubImportLogRepo) DeleteAll(ctx context.Context) error {
	s.entries = nil
	return nil
}
