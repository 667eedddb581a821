package domain

import (
	"time"

	"github.com/google/uuid"
)

// Backup data categories.
const (
	CategoryMedicines      = "medicines"
	CategorySales          = "sales"
	CategoryStockMovements = "stock_movements"
	CategoryShop           = "shop"
	CategoryImportLogs     = "import_logs"
)

// BackupMetadata describes a stored backup without its payload.
type BackupMetadata struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	DataCategories []string  `json:"data_categories"`
	TotalRecords   int       `json:"total_records"`
	FileSize       int       `json:"file_size"`
}

// BackupDocument is the self-contained JSON document a backup serializes to.
// Data maps category name to the category's records.
type BackupDocument struct {
	Metadata BackupDocumentMetadata `json:"metadata"`
	Data     map[string]any         `json:"data"`
}

// BackupDocumentMetadata is the metadata block embedded in the document.
type BackupDocumentMetadata struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	Version        string    `json:"version"`
	DataCategories []string  `json:"data_categories"`
	TotalRecords   int       `json:"total_records"`
	FileSize       int       `json:"file_size"`
}
