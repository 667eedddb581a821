package importer

import "strings"

// aliasEntry binds one canonical target field to its ordered alias list.
// Order matters twice over: fields are resolved in declaration order, and
// within a field the first alias present in the data wins.
type aliasEntry struct {
	Field   string
	Aliases []string
}

// Canonical target field names.
const (
	FieldName          = "name"
	FieldPrice         = "price"
	FieldStockQuantity = "stock_quantity"
	FieldSupplier      = "supplier"
	FieldBatchNumber   = "batch_number"
	FieldExpiryDate    = "expiry_date"
	FieldBarcode       = "barcode"
	FieldCategory      = "category"
	FieldUnit          = "unit"
)

func defaultAliasTable() []aliasEntry {
	return []aliasEntry{
		{FieldName, []string{"name", "medicine_name", "item_name", "product_name", "stockitem", "stock_item_name"}},
		{FieldPrice, []string{"price", "rate", "selling_price", "unit_price", "mrp", "sale_rate"}},
		{FieldStockQuantity, []string{"stock", "quantity", "stock_quantity", "qty", "closing_balance", "current_stock"}},
		{FieldSupplier, []string{"supplier", "vendor", "manufacturer", "company", "supplier_name"}},
		{FieldBatchNumber, []string{"batch", "batch_no", "batch_number", "lot_number"}},
		{FieldExpiryDate, []string{"expiry", "expiry_date", "exp_date", "expiration_date"}},
		{FieldBarcode, []string{"barcode", "ean", "sku", "item_code", "product_code"}},
		{FieldCategory, []string{"category", "group", "item_group", "product_category"}},
		{FieldUnit, []string{"unit", "uom", "base_unit", "stock_unit"}},
	}
}

// mappingSampleSize bounds how many records are scanned for column names.
const mappingSampleSize = 5

// Mapper resolves source columns onto canonical fields using an immutable
// alias table.
type Mapper struct {
	table []aliasEntry
}

// NewMapper builds a Mapper over the default alias table.
func NewMapper() *Mapper {
	return &Mapper{table: defaultAliasTable()}
}

// FieldMapping is the per-run binding of canonical field to the source
// column chosen for it. Unmapped fields are absent.
type FieldMapping map[string]string

// Build derives the run-global mapping from the column names observed in
// the first few records. The mapping never changes mid run, so files whose
// column names drift after the sample window keep the original bindings.
func (m *Mapper) Build(records []RawRecord) FieldMapping {
	observed := make(map[string]bool)
	sample := records
	if len(sample) > mappingSampleSize {
		sample = sample[:mappingSampleSize]
	}
	for _, record := range sample {
		for _, column := range record.Columns {
			observed[strings.ToLower(strings.TrimSpace(column))] = true
		}
	}

	mapping := make(FieldMapping)
	for _, entry := range m.table {
		for _, alias := range entry.Aliases {
			if observed[alias] {
				mapping[entry.Field] = alias
				break
			}
		}
	}
	return mapping
}
