package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

// Duplicate handling policies.
const (
	PolicySkip      = "skip"
	PolicyMerge     = "merge"
	PolicyOverwrite = "overwrite"
)

// ErrInvalidPolicy is returned when the duplicate handling policy is not
// one of skip, merge, or overwrite.
var ErrInvalidPolicy = errors.New("invalid duplicate handling policy")

// maxErrorDetails caps how many per-row failures an import result carries.
const maxErrorDetails = 10

// defaultExpiryDays is added to new records committed without an expiry date.
const defaultExpiryDays = 365

// historyLimit bounds the import history listing.
const historyLimit = 50

// Service runs the bulk import pipeline: parse, map, normalize, and either
// preview or commit against the inventory store.
type Service struct {
	medicines repository.MedicineRepository
	logs      repository.ImportLogRepository
	mapper    *Mapper
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an import service.
func NewService(medicines repository.MedicineRepository, logs repository.ImportLogRepository, logger *zap.Logger) *Service {
	return &Service{
		medicines: medicines,
		logs:      logs,
		mapper:    NewMapper(),
		logger:    logger,
		now:       time.Now,
	}
}

// Metadata describes the uploaded file.
type Metadata struct {
	FileName    string    `json:"filename"`
	FileSize    int       `json:"file_size"`
	Format      string    `json:"format"`
	ProcessedAt time.Time `json:"processed_at"`
}

// PreviewResult is the dry-run report for an upload. No writes happen.
type PreviewResult struct {
	TotalRecords   int             `json:"total_records"`
	ValidRecords   int             `json:"valid_records"`
	InvalidRecords int             `json:"invalid_records"`
	Duplicates     int             `json:"duplicates"`
	Records        []PreviewRecord `json:"records"`
	FieldMapping   FieldMapping    `json:"field_mapping"`
	Metadata       Metadata        `json:"metadata"`
}

// ErrorDetail reports one failed row during commit.
type ErrorDetail struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ImportResult summarizes a committed import run.
type ImportResult struct {
	Success           bool          `json:"success"`
	Message           string        `json:"message"`
	TotalProcessed    int           `json:"total_processed"`
	Imported          int           `json:"imported"`
	Skipped           int           `json:"skipped"`
	Errors            int           `json:"errors"`
	DuplicatesHandled int           `json:"duplicates_handled"`
	ErrorDetails      []ErrorDetail `json:"error_details"`
}

// Preview parses the upload and reports what a commit would do, including
// duplicate checks against the current inventory names.
func (s *Service) Preview(ctx context.Context, fileName string, payload []byte) (PreviewResult, error) {
	result := PreviewResult{Records: []PreviewRecord{}}

	records, err := Parse(fileName, payload)
	if err != nil {
		return result, err
	}

	format, _ := DetectFormat(fileName)
	result.Metadata = Metadata{
		FileName:    fileName,
		FileSize:    len(payload),
		Format:      format,
		ProcessedAt: s.now().UTC(),
	}

	mapping := s.mapper.Build(records)
	result.FieldMapping = mapping

	existing, err := s.existingNames(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load existing names: %w", err)
	}

	result.TotalRecords = len(records)
	for idx, record := range records {
		preview := normalizeRecord(mapping, record, idx+1)

		if preview.Status != StatusError && existing[strings.ToLower(preview.Name)] {
			result.Duplicates++
			preview.Issues = append(preview.Issues, issueDuplicateName)
			if preview.Status == StatusValid {
				preview.Status = StatusWarning
			}
		}

		switch preview.Status {
		case StatusError:
			result.InvalidRecords++
		case StatusValid:
			result.ValidRecords++
		}
		result.Records = append(result.Records, preview)
	}

	return result, nil
}

// Import parses the upload and commits it row by row under the given
// duplicate handling policy. A failed row never aborts the run.
func (s *Service) Import(ctx context.Context, fileName string, payload []byte, policy string, validationStrict bool) (ImportResult, error) {
	result := ImportResult{ErrorDetails: []ErrorDetail{}}

	switch policy {
	case PolicySkip, PolicyMerge, PolicyOverwrite:
	default:
		return result, fmt.Errorf("%w: %s", ErrInvalidPolicy, policy)
	}

	records, err := Parse(fileName, payload)
	if err != nil {
		return result, err
	}

	mapping := s.mapper.Build(records)

	// One snapshot for the whole run. Concurrent imports racing on the same
	// names can both insert; uniqueness is not enforced here.
	snapshot, err := s.snapshotByName(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load inventory snapshot: %w", err)
	}

	result.TotalProcessed = len(records)
	for idx, record := range records {
		preview := normalizeRecord(mapping, record, idx+1)
		if preview.Status == StatusError {
			s.recordError(&result, preview, strings.Join(preview.Issues, "; "))
			continue
		}

		key := strings.ToLower(preview.Name)
		existing, isDuplicate := snapshot[key]

		if !isDuplicate {
			// The snapshot is never updated during the run, so a name first
			// introduced by an earlier row is not seen as a duplicate here.
			// Preview behaves the same way.
			if _, err := s.insertRecord(ctx, preview); err != nil {
				s.recordError(&result, preview, err.Error())
				continue
			}
			result.Imported++
			continue
		}

		result.DuplicatesHandled++
		switch policy {
		case PolicySkip:
			result.Skipped++
		case PolicyOverwrite:
			updated, err := s.overwriteRecord(ctx, existing, preview)
			if err != nil {
				s.recordError(&result, preview, err.Error())
				continue
			}
			snapshot[key] = updated
			result.Imported++
		case PolicyMerge:
			updated, err := s.mergeRecord(ctx, existing, preview)
			if err != nil {
				s.recordError(&result, preview, err.Error())
				continue
			}
			snapshot[key] = updated
			result.Imported++
		}
	}

	result.Success = result.Errors < result.TotalProcessed
	result.Message = fmt.Sprintf("Imported %d, skipped %d, handled %d duplicates, %d errors",
		result.Imported, result.Skipped, result.DuplicatesHandled, result.Errors)

	entry := domain.ImportLog{
		ID:                uuid.New(),
		FileName:          fileName,
		DuplicateHandling: policy,
		ValidationStrict:  validationStrict,
		TotalProcessed:    result.TotalProcessed,
		Imported:          result.Imported,
		Skipped:           result.Skipped,
		Errors:            result.Errors,
		DuplicatesHandled: result.DuplicatesHandled,
		ImportedAt:        s.now().UTC(),
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record import log", zap.String("file", fileName), zap.Error(err))
	}

	return result, nil
}

// History lists recent import runs, newest first.
func (s *Service) History(ctx context.Context) ([]domain.ImportLog, error) {
	return s.logs.List(ctx, historyLimit)
}

func (s *Service) existingNames(ctx context.Context) (map[string]bool, error) {
	names, err := s.medicines.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}
	return set, nil
}

func (s *Service) snapshotByName(ctx context.Context) (map[string]domain.Medicine, error) {
	medicines, err := s.medicines.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]domain.Medicine, len(medicines))
	for _, medicine := range medicines {
		snapshot[strings.ToLower(medicine.Name)] = medicine
	}
	return snapshot, nil
}

func (s *Service) insertRecord(ctx context.Context, preview PreviewRecord) (domain.Medicine, error) {
	expiry := preview.ExpiryDate
	if expiry == "" {
		expiry = s.now().UTC().AddDate(0, 0, defaultExpiryDays).Format("2006-01-02")
	}

	medicine := domain.NewMedicine(preview.Name, preview.Price, preview.StockQuantity,
		expiry, preview.BatchNumber, preview.Supplier, preview.Barcode)
	medicine.Category = preview.Category
	medicine.Unit = preview.Unit

	return s.medicines.Create(ctx, medicine)
}

func (s *Service) overwriteRecord(ctx context.Context, existing domain.Medicine, preview PreviewRecord) (domain.Medicine, error) {
	existing.Name = preview.Name
	existing.Price = preview.Price
	existing.StockQuantity = preview.StockQuantity
	existing.Supplier = preview.Supplier
	existing.BatchNumber = preview.BatchNumber
	existing.Barcode = preview.Barcode
	if preview.ExpiryDate != "" {
		existing.ExpiryDate = preview.ExpiryDate
	}
	existing.UpdatedAt = s.now().UTC()
	return s.medicines.Update(ctx, existing)
}

// mergeRecord copies only fields the incoming record actually carries; zero
// or blank values never clobber existing data.
func (s *Service) mergeRecord(ctx context.Context, existing domain.Medicine, preview PreviewRecord) (domain.Medicine, error) {
	if preview.Price > 0 {
		existing.Price = preview.Price
	}
	if preview.StockQuantity > 0 {
		existing.StockQuantity = preview.StockQuantity
	}
	if preview.Supplier != "" {
		existing.Supplier = preview.Supplier
	}
	if preview.BatchNumber != "" {
		existing.BatchNumber = preview.BatchNumber
	}
	if preview.Barcode != "" {
		existing.Barcode = preview.Barcode
	}
	if preview.ExpiryDate != "" {
		existing.ExpiryDate = preview.ExpiryDate
	}
	existing.UpdatedAt = s.now().UTC()
	return s.medicines.Update(ctx, existing)
}

func (s *Service) recordError(result *ImportResult, preview PreviewRecord, message string) {
	result.Errors++
	if len(result.ErrorDetails) < maxErrorDetails {
		result.ErrorDetails = append(result.ErrorDetails, ErrorDetail{
			Row:     preview.RowNumber,
			Name:    preview.Name,
			Message: message,
		})
	}
}
