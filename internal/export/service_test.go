package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

func fixedService(repo *stubMedicineRepo) *Service {
	service := NewService(repo)
	service.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return service
}

func TestExportCSV(t *testing.T) {
	repo := &stubMedicineRepo{medicines: []domain.Medicine{
		domain.NewMedicine("Paracetamol 500mg", 12.5, 40, "2026-01-01", "B7", "Acme Pharma", "890123"),
	}}
	service := fixedService(repo)

	file, err := service.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inventory-20250601-120000.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "Paracetamol 500mg", rows[1][0])
	assert.Equal(t, "12.5", rows[1][1])
	assert.Equal(t, "40", rows[1][2])
	assert.Equal(t, "Acme Pharma", rows[1][5])
}

func TestExportXLSX(t *testing.T) {
	repo := &stubMedicineRepo{medicines: []domain.Medicine{
		domain.NewMedicine("Ibuprofen", 8, 12, "2026-03-01", "", "", ""),
	}}
	service := fixedService(repo)

	file, err := service.ExportXLSX(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inventory-20250601-120000.xlsx", file.Name)

	workbook, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	name, err := workbook.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", name)
	stock, err := workbook.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "12", stock)
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
