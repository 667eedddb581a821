package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

// documentVersion tags backup documents so future readers can tell old
// layouts apart.
const documentVersion = "1.0"

var (
	// ErrUnknownCategory is returned for a backup request naming a category
	// that does not exist.
	ErrUnknownCategory = errors.New("unknown backup category")
	// ErrInvalidDocument is returned when a restore payload is not a backup
	// document.
	ErrInvalidDocument = errors.New("invalid backup document")
)

var allCategories = []string{
	domain.CategoryMedicines,
	domain.CategorySales,
	domain.CategoryStockMovements,
	domain.CategoryShop,
	domain.CategoryImportLogs,
}

// Service creates, restores, and manages full-database JSON backups.
type Service struct {
	backups   repository.BackupRepository
	medicines repository.MedicineRepository
	sales     repository.SaleRepository
	movements repository.StockMovementRepository
	shop      repository.ShopRepository
	logs      repository.ImportLogRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a backup service.
func NewService(
	backups repository.BackupRepository,
	medicines repository.MedicineRepository,
	sales repository.SaleRepository,
	movements repository.StockMovementRepository,
	shop repository.ShopRepository,
	logs repository.ImportLogRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		backups:   backups,
		medicines: medicines,
		sales:     sales,
		movements: movements,
		shop:      shop,
		logs:      logs,
		logger:    logger,
		now:       time.Now,
	}
}

// Create snapshots the requested categories into one stored JSON document.
// An empty category list means everything.
func (s *Service) Create(ctx context.Context, name string, categories []string) (domain.BackupMetadata, error) {
	if len(categories) == 0 {
		categories = allCategories
	}
	for _, category := range categories {
		if !knownCategory(category) {
			return domain.BackupMetadata{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
		}
	}

	data := make(map[string]any, len(categories))
	totalRecords := 0
	for _, category := range categories {
		records, count, err := s.collectCategory(ctx, category)
		if err != nil {
			return domain.BackupMetadata{}, fmt.Errorf("failed to collect %s: %w", category, err)
		}
		data[category] = records
		totalRecords += count
	}

	createdAt := s.now().UTC()
	if name == "" {
		name = "backup-" + createdAt.Format("20060102-150405")
	}

	meta := domain.BackupMetadata{
		ID:             uuid.New(),
		Name:           name,
		CreatedAt:      createdAt,
		DataCategories: categories,
		TotalRecords:   totalRecords,
	}

	document := domain.BackupDocument{
		Metadata: domain.BackupDocumentMetadata{
			ID:             meta.ID,
			Name:           meta.Name,
			CreatedAt:      meta.CreatedAt,
			Version:        documentVersion,
			DataCategories: categories,
			TotalRecords:   totalRecords,
		},
		Data: data,
	}

	payload, err := json.Marshal(document)
	if err != nil {
		return domain.BackupMetadata{}, fmt.Errorf("failed to serialize backup: %w", err)
	}
	meta.FileSize = len(payload)

	if err := s.backups.Create(ctx, meta, payload); err != nil {
		return domain.BackupMetadata{}, fmt.Errorf("failed to store backup: %w", err)
	}

	s.logger.Info("backup created",
		zap.String("name", meta.Name),
		zap.Int("records", totalRecords),
		zap.Int("bytes", meta.FileSize))
	return meta, nil
}

// Upload validates an exported backup document and registers it as a new
// stored backup under a fresh id. Nothing is restored.
func (s *Service) Upload(ctx context.Context, name string, payload []byte) (domain.BackupMetadata, error) {
	var document domain.BackupDocument
	if err := json.Unmarshal(payload, &document); err != nil {
		return domain.BackupMetadata{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(document.Data) == 0 {
		return domain.BackupMetadata{}, fmt.Errorf("%w: document has no data", ErrInvalidDocument)
	}

	categories := make([]string, 0, len(document.Data))
	totalRecords := 0
	for category, records := range document.Data {
		if !knownCategory(category) {
			return domain.BackupMetadata{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
		}
		categories = append(categories, category)
		totalRecords += categoryLen(records)
	}
	sort.Strings(categories)

	if name == "" {
		name = document.Metadata.Name
	}
	createdAt := s.now().UTC()
	if name == "" {
		name = "backup-" + createdAt.Format("20060102-150405")
	}

	meta := domain.BackupMetadata{
		ID:             uuid.New(),
		Name:           name,
		CreatedAt:      createdAt,
		DataCategories: categories,
		TotalRecords:   totalRecords,
	}
	document.Metadata = domain.BackupDocumentMetadata{
		ID:             meta.ID,
		Name:           meta.Name,
		CreatedAt:      meta.CreatedAt,
		Version:        documentVersion,
		DataCategories: categories,
		TotalRecords:   totalRecords,
	}

	stored, err := json.Marshal(document)
	if err != nil {
		return domain.BackupMetadata{}, fmt.Errorf("failed to serialize backup: %w", err)
	}
	meta.FileSize = len(stored)

	if err := s.backups.Create(ctx, meta, stored); err != nil {
		return domain.BackupMetadata{}, fmt.Errorf("failed to store backup: %w", err)
	}

	s.logger.Info("backup uploaded",
		zap.String("name", meta.Name),
		zap.Int("records", totalRecords))
	return meta, nil
}

// List returns stored backups, newest first.
func (s *Service) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	backups, err := s.backups.List(ctx)
	if err != nil {
		return nil, err
	}
	if backups == nil {
		backups = []domain.BackupMetadata{}
	}
	return backups, nil
}

// Preview returns a backup's metadata and per-category record counts without
// restoring anything.
func (s *Service) Preview(ctx context.Context, id uuid.UUID) (domain.BackupMetadata, map[string]int, error) {
	meta, err := s.backups.GetMetadata(ctx, id)
	if err != nil {
		return domain.BackupMetadata{}, nil, err
	}

	document, err := s.loadDocument(ctx, id)
	if err != nil {
		return domain.BackupMetadata{}, nil, err
	}

	counts := make(map[string]int, len(document.Data))
	for category, records := range document.Data {
		counts[category] = categoryLen(records)
	}
	return meta, counts, nil
}

// Download returns the raw backup document bytes.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (domain.BackupMetadata, []byte, error) {
	meta, err := s.backups.GetMetadata(ctx, id)
	if err != nil {
		return domain.BackupMetadata{}, nil, err
	}
	payload, err := s.backups.GetPayload(ctx, id)
	if err != nil {
		return domain.BackupMetadata{}, nil, err
	}
	return meta, payload, nil
}

// Delete removes a stored backup.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.backups.Delete(ctx, id)
}

// RestoreOptions selects what a restore run touches. Zero categories means
// everything. ClearExisting wipes each selected category before loading its
// records; otherwise records are added alongside the existing data.
type RestoreOptions struct {
	Categories    []string
	ClearExisting bool
}

// RestoreResult reports what a restore run replaced. A failed category is
// recorded in Errors and the remaining categories still run.
type RestoreResult struct {
	Success   bool           `json:"success"`
	RestoreID uuid.UUID      `json:"restore_id"`
	Restored  map[string]int `json:"restored_records"`
	Errors    []string       `json:"errors"`
}

// Restore loads the selected categories from a stored backup.
func (s *Service) Restore(ctx context.Context, id uuid.UUID, options RestoreOptions) (RestoreResult, error) {
	document, err := s.loadDocument(ctx, id)
	if err != nil {
		return RestoreResult{}, err
	}
	return s.restoreDocument(ctx, document, options)
}

// RestoreUpload loads the selected categories from an uploaded backup
// document instead of a stored one.
func (s *Service) RestoreUpload(ctx context.Context, payload []byte, options RestoreOptions) (RestoreResult, error) {
	var document domain.BackupDocument
	if err := json.Unmarshal(payload, &document); err != nil {
		return RestoreResult{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(document.Data) == 0 {
		return RestoreResult{}, fmt.Errorf("%w: document has no data", ErrInvalidDocument)
	}
	return s.restoreDocument(ctx, document, options)
}

func (s *Service) restoreDocument(ctx context.Context, document domain.BackupDocument, options RestoreOptions) (RestoreResult, error) {
	categories := options.Categories
	if len(categories) == 0 {
		categories = allCategories
	}
	for _, category := range categories {
		if !knownCategory(category) {
			return RestoreResult{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
		}
	}

	result := RestoreResult{
		RestoreID: uuid.New(),
		Restored:  map[string]int{},
		Errors:    []string{},
	}
	for _, category := range categories {
		records, ok := document.Data[category]
		if !ok {
			continue
		}
		count, err := s.restoreCategory(ctx, category, records, options.ClearExisting)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", category, err))
			continue
		}
		result.Restored[category] = count
	}
	result.Success = len(result.Errors) == 0

	s.logger.Info("backup restored",
		zap.Any("restored", result.Restored),
		zap.Int("failed_categories", len(result.Errors)))
	return result, nil
}

func (s *Service) collectCategory(ctx context.Context, category string) (any, int, error) {
	switch category {
	case domain.CategoryMedicines:
		medicines, err := s.medicines.ListAll(ctx)
		return medicines, len(medicines), err
	case domain.CategorySales:
		sales, err := s.sales.ListAll(ctx)
		return sales, len(sales), err
	case domain.CategoryStockMovements:
		movements, err := s.movements.ListAll(ctx)
		return movements, len(movements), err
	case domain.CategoryShop:
		shop, err := s.shop.Get(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Shop{}, 0, nil
		}
		return []domain.Shop{shop}, 1, err
	case domain.CategoryImportLogs:
		logs, err := s.logs.ListAll(ctx)
		return logs, len(logs), err
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
}

func (s *Service) restoreCategory(ctx context.Context, category string, records any, clearExisting bool) (int, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return 0, err
	}

	switch category {
	case domain.CategoryMedicines:
		var medicines []domain.Medicine
		if err := json.Unmarshal(raw, &medicines); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if clearExisting {
			if err := s.medicines.DeleteAll(ctx); err != nil {
				return 0, err
			}
		}
		for _, medicine := range medicines {
			if _, err := s.medicines.Create(ctx, medicine); err != nil {
				return 0, err
			}
		}
		return len(medicines), nil
	case domain.CategorySales:
		var sales []domain.Sale
		if err := json.Unmarshal(raw, &sales); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if clearExisting {
			if err := s.sales.DeleteAll(ctx); err != nil {
				return 0, err
			}
		}
		for _, sale := range sales {
			if _, err := s.sales.Create(ctx, sale); err != nil {
				return 0, err
			}
		}
		return len(sales), nil
	case domain.CategoryStockMovements:
		var movements []domain.StockMovement
		if err := json.Unmarshal(raw, &movements); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if clearExisting {
			if err := s.movements.DeleteAll(ctx); err != nil {
				return 0, err
			}
		}
		for _, movement := range movements {
			if err := s.movements.Record(ctx, movement); err != nil {
				return 0, err
			}
		}
		return len(movements), nil
	case domain.CategoryShop:
		var shops []domain.Shop
		if err := json.Unmarshal(raw, &shops); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if clearExisting {
			if err := s.shop.DeleteAll(ctx); err != nil {
				return 0, err
			}
		}
		if len(shops) == 0 {
			return 0, nil
		}
		if _, err := s.shop.Upsert(ctx, shops[0]); err != nil {
			return 0, err
		}
		return 1, nil
	case domain.CategoryImportLogs:
		var logs []domain.ImportLog
		if err := json.Unmarshal(raw, &logs); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if clearExisting {
			if err := s.logs.DeleteAll(ctx); err != nil {
				return 0, err
			}
		}
		for _, entry := range logs {
			if err := s.logs.Record(ctx, entry); err != nil {
				return 0, err
			}
		}
		return len(logs), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
}

func (s *Service) loadDocument(ctx context.Context, id uuid.UUID) (domain.BackupDocument, error) {
	payload, err := s.backups.GetPayload(ctx, id)
	if err != nil {
		return domain.BackupDocument{}, err
	}
	var document domain.BackupDocument
	if err := json.Unmarshal(payload, &document); err != nil {
		return domain.BackupDocument{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return document, nil
}

func knownCategory(category string) bool {
	for _, known := range allCategories {
		if category == known {
			return true
		}
	}
	return false
}

func categoryLen(records any) int {
	if list, ok := records.([]any); ok {
		return len(list)
	}
	return 0
}
