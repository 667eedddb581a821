package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Record statuses.
const (
	StatusValid   = "valid"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Issue strings surfaced on preview records.
const (
	issueNameRequired   = "Medicine name is required"
	issuePriceDefaulted = "Price not found, defaulted to 0"
	issueStockDefaulted = "Stock quantity not found, defaulted to 0"
	issueDuplicateName  = "Duplicate medicine name found in database"
)

var numericNoise = regexp.MustCompile(`[₹$,\s]`)

// dateLayouts are tried in order; the first layout that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"2006.01.02",
	"02.01.2006",
	"01.02.2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// PreviewRecord is a normalized candidate inventory item derived from one
// RawRecord. Row numbers are 1-based and stable between preview and commit.
type PreviewRecord struct {
	RowNumber     int               `json:"row_number"`
	Name          string            `json:"name"`
	Price         float64           `json:"price"`
	StockQuantity int               `json:"stock_quantity"`
	Supplier      string            `json:"supplier"`
	BatchNumber   string            `json:"batch_number"`
	ExpiryDate    string            `json:"expiry_date"`
	Barcode       string            `json:"barcode"`
	Category      string            `json:"category"`
	Unit          string            `json:"unit"`
	OriginalData  map[string]string `json:"original_data"`
	Status        string            `json:"status"`
	Issues        []string          `json:"issues"`
}

func cleanNumeric(raw string) string {
	return numericNoise.ReplaceAllString(raw, "")
}

func parseNumber(raw string) (float64, bool) {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// parseInteger accepts decimal input and truncates toward zero, so
// quantities exported as "150.0" still import as 150.
func parseInteger(raw string) (int, bool) {
	value, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	return int(value), true
}

// parseDate normalizes a date string to ISO YYYY-MM-DD, or reports failure
// when no supported layout matches.
func parseDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

// fallbackName scans the record's values in source order and returns the
// first one long enough to plausibly be a product name.
func fallbackName(record RawRecord) string {
	for _, column := range record.Columns {
		value := strings.TrimSpace(record.Values[column])
		if utf8.RuneCountInString(value) > 2 {
			return value
		}
	}
	return ""
}

// normalizeRecord applies the run's field mapping to one raw record. Status
// is error iff no name could be determined, warning iff any other issue was
// recorded, valid otherwise.
func normalizeRecord(mapping FieldMapping, record RawRecord, rowNumber int) PreviewRecord {
	preview := PreviewRecord{
		RowNumber:    rowNumber,
		OriginalData: record.Values,
		Status:       StatusValid,
		Issues:       []string{},
	}

	mappedValue := func(field string) string {
		column, ok := mapping[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(record.Get(column))
	}

	preview.Name = mappedValue(FieldName)
	if preview.Name == "" {
		preview.Name = fallbackName(record)
	}
	if preview.Name == "" {
		preview.Status = StatusError
		preview.Issues = append(preview.Issues, issueNameRequired)
		return preview
	}

	if price, ok := parseNumber(mappedValue(FieldPrice)); ok {
		preview.Price = price
	} else {
		preview.Issues = append(preview.Issues, issuePriceDefaulted)
	}

	if stock, ok := parseInteger(mappedValue(FieldStockQuantity)); ok {
		preview.StockQuantity = stock
	} else {
		preview.Issues = append(preview.Issues, issueStockDefaulted)
	}

	preview.Supplier = mappedValue(FieldSupplier)
	preview.BatchNumber = mappedValue(FieldBatchNumber)
	preview.Barcode = mappedValue(FieldBarcode)
	preview.Category = mappedValue(FieldCategory)
	preview.Unit = mappedValue(FieldUnit)

	if normalized, ok := parseDate(mappedValue(FieldExpiryDate)); ok {
		preview.ExpiryDate = normalized
	}

	if len(preview.Issues) > 0 {
		preview.Status = StatusWarning
	}
	return preview
}
