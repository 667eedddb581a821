package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLog is the append-only record of one bulk import run: the settings it
// ran with and the aggregate counts it produced.
type ImportLog struct {
	ID                uuid.UUID `json:"import_id"`
	FileName          string    `json:"filename"`
	DuplicateHandling string    `json:"duplicate_handling"`
	ValidationStrict  bool      `json:"validation_strict"`
	TotalProcessed    int       `json:"total_processed"`
	Imported          int       `json:"imported"`
	Skipped           int       `json:"skipped"`
	Errors            int       `json:"errors"`
	DuplicatesHandled int       `json:"duplicates_handled"`
	ImportedAt        time.Time `json:"imported_at"`
}
