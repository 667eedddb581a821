package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file extension is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyFile is returned when the upload contains no bytes.
	ErrEmptyFile = errors.New("file is empty")
	// ErrNoDataFound is returned when parsing succeeds but yields no records.
	ErrNoDataFound = errors.New("no data found in file")
	// ErrParse wraps format-level parsing failures.
	ErrParse = errors.New("failed to parse file")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// RawRecord is one row of the uploaded file. Columns preserves source
// order so fallback scans walk values the same way they appeared in the
// file; Values is keyed by the lowercased, trimmed column name.
type RawRecord struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value bound to a lowercased column name.
func (r RawRecord) Get(column string) string {
	return r.Values[column]
}

// Set appends a column if unseen and stores its value.
func (r *RawRecord) Set(column, value string) {
	if _, seen := r.Values[column]; !seen {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

func newRawRecord() RawRecord {
	return RawRecord{Values: make(map[string]string)}
}

// DetectFormat maps a filename to its import format.
func DetectFormat(fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv", nil
	case ".xlsx", ".xls":
		return "excel", nil
	case ".xml":
		return "xml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Parse turns raw file bytes into an ordered list of records. The format
// comes from the filename extension.
func Parse(fileName string, payload []byte) ([]RawRecord, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyFile
	}

	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	var records []RawRecord
	switch format {
	case "csv":
		records, err = parseCSV(payload)
	case "excel":
		records, err = parseExcel(payload)
	case "xml":
		records, err = parseXML(payload)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoDataFound
	}
	return records, nil
}

// decodeText tries each candidate encoding in order and returns the first
// decode that produces valid text.
func decodeText(payload []byte) (string, error) {
	if bytes.HasPrefix(payload, byteOrderMark) {
		payload = payload[len(byteOrderMark):]
	}
	if utf8.Valid(payload) {
		return string(payload), nil
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(payload)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("%w: could not decode text content", ErrParse)
}

func parseCSV(payload []byte) ([]RawRecord, error) {
	text, err := decodeText(payload)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(strings.NewReader(text)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return tableToRecords(rows), nil
}

func parseExcel(payload []byte) ([]RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoDataFound
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return tableToRecords(rows), nil
}

// tableToRecords treats the first non-empty row as the header and each
// following row as one record.
func tableToRecords(rows [][]string) []RawRecord {
	headerIdx := -1
	for idx, row := range rows {
		if !rowEmpty(row) {
			headerIdx = idx
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	headers := make([]string, len(rows[headerIdx]))
	for idx, cell := range rows[headerIdx] {
		headers[idx] = strings.ToLower(strings.TrimSpace(cell))
	}

	var records []RawRecord
	for _, row := range rows[headerIdx+1:] {
		if rowEmpty(row) {
			continue
		}
		record := newRawRecord()
		for idx, header := range headers {
			if header == "" || idx >= len(row) {
				continue
			}
			record.Set(header, strings.TrimSpace(row[idx]))
		}
		if len(record.Columns) > 0 {
			records = append(records, record)
		}
	}
	return records
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// xmlExtractor is one pass over an XML payload. Strict parsing runs first;
// the permissive pass only runs when strict parsing fails or finds nothing.
type xmlExtractor interface {
	Extract(payload []byte) ([]RawRecord, error)
}

var xmlContainerTags = map[string]bool{
	"stockitem": true,
	"inventory": true,
	"item":      true,
}

func parseXML(payload []byte) ([]RawRecord, error) {
	strict := strictXMLExtractor{}
	records, err := strict.Extract(payload)
	if err == nil && len(records) > 0 {
		return records, nil
	}

	permissive := permissiveXMLExtractor{}
	records, permErr := permissive.Extract(payload)
	if permErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, permErr
	}
	return records, nil
}

// strictXMLExtractor walks the token stream and collects every container
// element's direct children as column/value pairs.
type strictXMLExtractor struct{}

func (strictXMLExtractor) Extract(payload []byte) ([]RawRecord, error) {
	decoder := xml.NewDecoder(bytes.NewReader(payload))

	var records []RawRecord
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || !xmlContainerTags[strings.ToLower(start.Name.Local)] {
			continue
		}

		record, err := collectXMLRecord(decoder, start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if len(record.Columns) > 0 {
			records = append(records, record)
		}
	}
	return records, nil
}

// permissiveXMLExtractor tolerates malformed markup by re-scanning with a
// lenient decoder and keeping whatever container elements it can recover.
type permissiveXMLExtractor struct{}

func (permissiveXMLExtractor) Extract(payload []byte) ([]RawRecord, error) {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose

	var records []RawRecord
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok || !xmlContainerTags[strings.ToLower(start.Name.Local)] {
			continue
		}

		record, err := collectXMLRecord(decoder, start)
		if err != nil {
			break
		}
		if len(record.Columns) > 0 {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil, ErrNoDataFound
	}
	return records, nil
}

// collectXMLRecord reads until the container closes, mapping each child
// element's lowercased tag to its trimmed text content.
func collectXMLRecord(decoder *xml.Decoder, container xml.StartElement) (RawRecord, error) {
	record := newRawRecord()
	depth := 1
	var currentField string
	var text strings.Builder

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return record, err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				currentField = strings.ToLower(tok.Name.Local)
				text.Reset()
			}
		case xml.CharData:
			if depth == 2 && currentField != "" {
				text.Write(tok)
			}
		case xml.EndElement:
			depth--
			if depth == 1 && currentField != "" {
				value := strings.TrimSpace(text.String())
				if value != "" {
					record.Set(currentField, value)
				}
				currentField = ""
			}
		}
	}
	return record, nil
}
