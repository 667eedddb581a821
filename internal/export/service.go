package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

// exportColumns is the fixed column order of inventory exports.
var exportColumns = []string{
	"name", "price", "stock_quantity", "expiry_date",
	"batch_number", "supplier", "barcode", "category", "unit",
}

// Service renders the medicine catalogue as a downloadable file.
type Service struct {
	medicines repository.MedicineRepository
	now       func() time.Time
}

// NewService creates an export service.
func NewService(medicines repository.MedicineRepository) *Service {
	return &Service{medicines: medicines, now: time.Now}
}

// File is a rendered export ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportCSV renders every medicine as CSV.
func (s *Service) ExportCSV(ctx context.Context) (File, error) {
	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return File{}, fmt.Errorf("failed to list medicines: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportColumns); err != nil {
		return File{}, fmt.Errorf("failed to write header: %w", err)
	}
	for _, medicine := range medicines {
		if err := writer.Write(medicineRow(medicine)); err != nil {
			return File{}, fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return File{}, fmt.Errorf("failed to flush csv: %w", err)
	}

	return File{
		Name:        s.fileName("csv"),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

// ExportXLSX renders every medicine as a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context) (File, error) {
	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return File{}, fmt.Errorf("failed to list medicines: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]any, len(exportColumns))
	for idx, column := range exportColumns {
		header[idx] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return File{}, fmt.Errorf("failed to write header: %w", err)
	}

	for rowIdx, medicine := range medicines {
		row := medicineRow(medicine)
		cells := make([]any, len(row))
		for idx, value := range row {
			cells[idx] = value
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return File{}, fmt.Errorf("failed to address row: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return File{}, fmt.Errorf("failed to write row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return File{}, fmt.Errorf("failed to render workbook: %w", err)
	}

	return File{
		Name:        s.fileName("xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func (s *Service) fileName(ext string) string {
	return "inventory-" + s.now().UTC().Format("20060102-150405") + "." + ext
}

func medicineRow(medicine domain.Medicine) []string {
	return []string{
		medicine.Name,
		strconv.FormatFloat(medicine.Price, 'f', -1, 64),
		strconv.Itoa(medicine.StockQuantity),
		medicine.ExpiryDate,
		medicine.BatchNumber,
		medicine.Supplier,
		medicine.Barcode,
		medicine.Category,
		medicine.Unit,
	}
}
