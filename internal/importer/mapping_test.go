package importer

import "testing"

func recordWith(pairs ...string) RawRecord {
	record := newRawRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		record.Set(pairs[i], pairs[i+1])
	}
	return record
}

func TestMapperPicksFirstAliasPresent(t *testing.T) {
	records := []RawRecord{
		recordWith("item_name", "Paracetamol", "mrp", "12", "rate", "10", "qty", "5"),
	}

	mapping := NewMapper().Build(records)

	if mapping[FieldName] != "item_name" {
		t.Fatalf("expected name from item_name, got %q", mapping[FieldName])
	}
	// rate outranks mrp in the alias list even though mrp appears first
	// in the record.
	if mapping[FieldPrice] != "rate" {
		t.Fatalf("expected price from rate, got %q", mapping[FieldPrice])
	}
	if mapping[FieldStockQuantity] != "qty" {
		t.Fatalf("expected stock from qty, got %q", mapping[FieldStockQuantity])
	}
}

func TestMapperLeavesUnknownFieldsUnmapped(t *testing.T) {
	records := []RawRecord{recordWith("item_name", "Paracetamol")}

	mapping := NewMapper().Build(records)

	if _, ok := mapping[FieldPrice]; ok {
		t.Fatalf("expected price to stay unmapped")
	}
	if _, ok := mapping[FieldSupplier]; ok {
		t.Fatalf("expected supplier to stay unmapped")
	}
}

func TestMapperOnlySamplesFirstFiveRecords(t *testing.T) {
	records := []RawRecord{
		recordWith("item_name", "a"),
		recordWith("item_name", "b"),
		recordWith("item_name", "c"),
		recordWith("item_name", "d"),
		recordWith("item_name", "e"),
		recordWith("item_name", "f", "price", "10"),
	}

	mapping := NewMapper().Build(records)

	if mapping[FieldName] != "item_name" {
		t.Fatalf("expected name mapping, got %q", mapping[FieldName])
	}
	if _, ok := mapping[FieldPrice]; ok {
		t.Fatalf("column introduced after the sample window should not bind")
	}
}
