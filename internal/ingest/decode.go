package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Accepted upload types.
const (
	MIMECSV   = "text/csv"
	MIMEExcel = "application/vnd.ms-excel"
	MIMEXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Required header columns, matched case-insensitively.
const (
	ColCategory = "category"
	ColAmount   = "amount"
	ColDate     = "date"
)

var (
	// ErrUnsupportedType rejects anything that is not CSV or Excel.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmptySheet rejects a file with no data rows.
	ErrEmptySheet = errors.New("sheet is empty")
	// ErrMissingColumns rejects a header without category, amount and date.
	ErrMissingColumns = errors.New("missing required columns")
)

// mimeFallback covers systems whose mime database lacks spreadsheet types.
var mimeFallback = map[string]string{
	".csv":  MIMECSV,
	".xls":  MIMEExcel,
	".xlsx": MIMEXLSX,
}

// ole2Magic starts every legacy BIFF workbook.
var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Cell is one decoded spreadsheet value.
type Cell struct {
	Text string
	// Numeric is set when the stored value is a plain number.
	Numeric bool
}

// RawRow is a data row keyed by lower-cased header name. Line is the
// spreadsheet row number, counting the header as row 1.
type RawRow struct {
	Line  int
	Cells map[string]Cell
}

// Get returns the cell for column col.
func (r RawRow) Get(col string) Cell {
	return r.Cells[col]
}

// DetectMIME maps a file name to one of the accepted types.
func DetectMIME(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if typ := mime.TypeByExtension(ext); typ != "" {
		if mediaType, _, err := mime.ParseMediaType(typ); err == nil && accepted(mediaType) {
			return mediaType, nil
		}
	}
	if typ, ok := mimeFallback[ext]; ok {
		return typ, nil
	}
	return "", fmt.Errorf("%w: %s (expected .csv, .xls or .xlsx)", ErrUnsupportedType, filepath.Base(name))
}

func accepted(mediaType string) bool {
	switch mediaType {
	case MIMECSV, MIMEExcel, MIMEXLSX:
		return true
	}
	return false
}

// Decode reads the first sheet of r. The whole file is rejected when the
// type is not accepted, the sheet has no data rows, or a required column
// is missing.
func Decode(name, mimeType string, r io.Reader) ([]RawRow, error) {
	var (
		records [][]string
		err     error
	)
	switch mimeType {
	case MIMECSV:
		records, err = readCSV(r)
	case MIMEXLSX:
		records, err = readXLSX(r)
	case MIMEExcel:
		records, err = readLegacyExcel(r)
	default:
		return nil, fmt.Errorf("%s: %w: %q", name, ErrUnsupportedType, mimeType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	rows, err := toRows(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readLegacyExcel handles the vnd.ms-excel type, which is also what many
// systems report for plain CSV files.
func readLegacyExcel(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if bytes.HasPrefix(data, ole2Magic) {
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save the file as .xlsx or .csv", ErrUnsupportedType)
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return readXLSX(bytes.NewReader(data))
	}
	return readCSV(bytes.NewReader(data))
}

// toRows keys records by the header row and drops blank lines.
func toRows(records [][]string) ([]RawRow, error) {
	headerAt := -1
	for i, rec := range records {
		if !blank(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(records[headerAt]))
	present := make(map[string]bool, len(header))
	for i, h := range records[headerAt] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		present[header[i]] = true
	}

	var missing []string
	for _, col := range []string{ColCategory, ColAmount, ColDate} {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []RawRow
	for i := headerAt + 1; i < len(records); i++ {
		rec := records[i]
		if blank(rec) {
			continue
		}
		row := RawRow{Line: i + 1, Cells: make(map[string]Cell, len(header))}
		for j, key := range header {
			if key == "" {
				continue
			}
			if _, seen := row.Cells[key]; seen {
				continue
			}
			var text string
			if j < len(rec) {
				text = strings.TrimSpace(rec[j])
			}
			row.Cells[key] = Cell{Text: text, Numeric: isNumber(text)}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}
