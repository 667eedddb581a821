package importer

import (
	"errors"
	"testing"
)

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,price\nParacetamol,10\n")...)

	records, err := Parse("stock.csv", payload)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Get("name") != "Paracetamol" {
		t.Fatalf("expected BOM-free header binding, got %q", records[0].Get("name"))
	}
}

func TestParseCSVDecodesLatin1(t *testing.T) {
	// "Doliprane é" encoded as Latin-1, invalid as UTF-8.
	payload := []byte("name,price\nDoliprane \xe9,5\n")

	records, err := Parse("stock.csv", payload)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if records[0].Get("name") != "Doliprane é" {
		t.Fatalf("expected Latin-1 decode, got %q", records[0].Get("name"))
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	_, err := Parse("stock.csv", []byte("name,price\n"))
	if !errors.Is(err, ErrNoDataFound) {
		t.Fatalf("expected ErrNoDataFound, got %v", err)
	}
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("stock.csv", nil)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("stock.pdf", []byte("data"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseXMLStockItems(t *testing.T) {
	payload := []byte(`<?xml version="1.0"?>
<ENVELOPE>
  <STOCKITEM>
    <NAME>Paracetamol 500mg</NAME>
    <RATE>12.50</RATE>
    <CLOSING_BALANCE>40</CLOSING_BALANCE>
  </STOCKITEM>
  <STOCKITEM>
    <NAME>Ibuprofen</NAME>
    <RATE>8</RATE>
  </STOCKITEM>
</ENVELOPE>`)

	records, err := Parse("stock.xml", payload)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Get("name") != "Paracetamol 500mg" {
		t.Fatalf("unexpected name: %q", records[0].Get("name"))
	}
	if records[0].Get("rate") != "12.50" {
		t.Fatalf("unexpected rate: %q", records[0].Get("rate"))
	}
}

func TestParseXMLPermissiveFallback(t *testing.T) {
	// Undefined entity makes the strict pass fail; the permissive pass
	// still recovers both items.
	payload := []byte(`<ENVELOPE>
  <ITEM>
    <NAME>Cough&nbsp;Syrup</NAME>
    <RATE>30</RATE>
  </ITEM>
  <ITEM>
    <NAME>Vitamin C</NAME>
  </ITEM>
</ENVELOPE>`)

	records, err := Parse("stock.xml", payload)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Get("name") != "Vitamin C" {
		t.Fatalf("unexpected name: %q", records[1].Get("name"))
	}
}

func TestParseXMLNoItems(t *testing.T) {
	_, err := Parse("stock.xml", []byte(`<ENVELOPE><OTHER>x</OTHER></ENVELOPE>`))
	if !errors.Is(err, ErrNoDataFound) {
		t.Fatalf("expected ErrNoDataFound, got %v", err)
	}
}
