package importer

import "testing"

func TestParseDateNormalizesToISO(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"2025-12-31", "2025-12-31"},
		{"31-12-2025", "2025-12-31"},
		{"12/31/2025", "2025-12-31"},
		{"31/12/2025", "2025-12-31"},
		{"2025/12/31", "2025-12-31"},
		{"31.12.2025", "2025-12-31"},
		{"31 Dec 2025", "2025-12-31"},
		{"31 December 2025", "2025-12-31"},
		{"Dec 31, 2025", "2025-12-31"},
		{"December 31, 2025", "2025-12-31"},
	}

	for _, tc := range cases {
		got, ok := parseDate(tc.input)
		if !ok {
			t.Fatalf("parseDate(%q) failed", tc.input)
		}
		if got != tc.want {
			t.Fatalf("parseDate(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}

	if _, ok := parseDate("next week"); ok {
		t.Fatalf("expected unparseable date to fail")
	}
}

func TestParseNumberStripsCurrencyNoise(t *testing.T) {
	value, ok := parseNumber("₹1,234.50")
	if !ok || value != 1234.5 {
		t.Fatalf("expected 1234.5, got %v (ok=%v)", value, ok)
	}
	if _, ok := parseNumber("-5"); ok {
		t.Fatalf("expected negative price to be rejected")
	}
	if _, ok := parseNumber("n/a"); ok {
		t.Fatalf("expected non-numeric input to fail")
	}
}

func TestParseIntegerTruncatesDecimals(t *testing.T) {
	value, ok := parseInteger("150.9")
	if !ok || value != 150 {
		t.Fatalf("expected 150, got %d (ok=%v)", value, ok)
	}
}

func TestNormalizeRecordDefaultsAndIssues(t *testing.T) {
	mapping := FieldMapping{
		FieldName:  "name",
		FieldPrice: "price",
	}
	record := recordWith("name", "Paracetamol", "price", "")

	preview := normalizeRecord(mapping, record, 3)

	if preview.RowNumber != 3 {
		t.Fatalf("expected row 3, got %d", preview.RowNumber)
	}
	if preview.Status != StatusWarning {
		t.Fatalf("expected warning status, got %s", preview.Status)
	}
	if preview.Price != 0 || preview.StockQuantity != 0 {
		t.Fatalf("expected zero defaults, got price=%v stock=%d", preview.Price, preview.StockQuantity)
	}
	if len(preview.Issues) != 2 {
		t.Fatalf("expected price and stock issues, got %v", preview.Issues)
	}
	if preview.Issues[0] != "Price not found, defaulted to 0" {
		t.Fatalf("unexpected issue text: %q", preview.Issues[0])
	}
	if preview.Issues[1] != "Stock quantity not found, defaulted to 0" {
		t.Fatalf("unexpected issue text: %q", preview.Issues[1])
	}
}

func TestNormalizeRecordNameFallback(t *testing.T) {
	record := recordWith("col1", "ab", "col2", "Paracetamol 500mg", "col3", "99")

	preview := normalizeRecord(FieldMapping{}, record, 1)

	if preview.Name != "Paracetamol 500mg" {
		t.Fatalf("expected fallback name, got %q", preview.Name)
	}
	if preview.Status == StatusError {
		t.Fatalf("fallback name should avoid error status")
	}
}

func TestNormalizeRecordNameFallbackCountsCharacters(t *testing.T) {
	// Two multibyte characters are over two bytes but still too short.
	record := recordWith("col1", "药丸", "col2", "Paracetamol 500mg")

	preview := normalizeRecord(FieldMapping{}, record, 1)

	if preview.Name != "Paracetamol 500mg" {
		t.Fatalf("two-character value must not win the fallback, got %q", preview.Name)
	}

	record = recordWith("col1", "扑热息痛")
	preview = normalizeRecord(FieldMapping{}, record, 1)
	if preview.Name != "扑热息痛" {
		t.Fatalf("expected multibyte fallback name, got %q", preview.Name)
	}
}

func TestNormalizeRecordMissingNameIsError(t *testing.T) {
	record := recordWith("col1", "ab", "col2", "x")

	preview := normalizeRecord(FieldMapping{}, record, 1)

	if preview.Status != StatusError {
		t.Fatalf("expected error status, got %s", preview.Status)
	}
	if len(preview.Issues) != 1 || preview.Issues[0] != "Medicine name is required" {
		t.Fatalf("unexpected issues: %v", preview.Issues)
	}
}

func TestNormalizeRecordExpiryStaysBlankWhenUnparseable(t *testing.T) {
	mapping := FieldMapping{FieldName: "name", FieldExpiryDate: "expiry"}
	record := recordWith("name", "Paracetamol", "expiry", "soon")

	preview := normalizeRecord(mapping, record, 1)

	if preview.ExpiryDate != "" {
		t.Fatalf("expected blank expiry, got %q", preview.ExpiryDate)
	}
}
