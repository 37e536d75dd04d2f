package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"march.csv", MIMECSV, false},
		{"MARCH.CSV", MIMECSV, false},
		{"march.xlsx", MIMEXLSX, false},
		{"legacy.xls", MIMEExcel, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := DetectMIME(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectMIME(%q) err = %v", tt.name, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("DetectMIME(%q) err = %v, want ErrUnsupportedType", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("DetectMIME(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeCSV(t *testing.T) {
	in := "\ufeffCategory, Amount ,DATE,Note\nFood,250,2024-03-05,lunch\n,,,\nRent,1200,45356\n"
	rows, err := Decode("march.csv", MIMECSV, strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.Line != 2 || first.Get(ColCategory).Text != "Food" || first.Get("note").Text != "lunch" {
		t.Errorf("first row = %+v", first)
	}
	if first.Get(ColDate).Numeric {
		t.Error("text date flagged numeric")
	}

	second := rows[1]
	if second.Line != 4 {
		t.Errorf("second row line = %d, want 4", second.Line)
	}
	if !second.Get(ColDate).Numeric || second.Get(ColDate).Text != "45356" {
		t.Errorf("serial date cell = %+v", second.Get(ColDate))
	}
	if second.Get("note").Text != "" {
		t.Errorf("short record should yield empty trailing cells")
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		mime string
		in   string
		want error
	}{
		{"empty file", MIMECSV, "", ErrEmptySheet},
		{"header only", MIMECSV, "category,amount,date\n", ErrEmptySheet},
		{"missing amount", MIMECSV, "category,date\nFood,2024-03-05\n", ErrMissingColumns},
		{"wrong type", "application/pdf", "category,amount,date\nFood,1,2024-03-05\n", ErrUnsupportedType},
		{"legacy biff", MIMEExcel, string(ole2Magic) + "rest", ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("upload", tt.mime, strings.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeMissingColumnsNamesThem(t *testing.T) {
	_, err := Decode("upload.csv", MIMECSV, strings.NewReader("Category\nFood\n"))
	if err == nil || !strings.Contains(err.Error(), "amount, date") {
		t.Fatalf("err = %v, want it to name amount and date", err)
	}
}

func TestDecodeExcelTypeWithCSVContent(t *testing.T) {
	rows, err := Decode("export.csv", MIMEExcel, strings.NewReader("category,amount,date\nFood,10,2024-03-06\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Get(ColAmount).Text != "10" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "Category", "B1": "Amount", "C1": "Date",
		"A2": "Food", "B2": 250.5, "C2": 45356,
		"A3": "Rent", "B3": 1200, "C3": "2024-03-01",
	}
	for axis, v := range cells {
		if err := f.SetCellValue(sheet, axis, v); err != nil {
			t.Fatal(err)
		}
	}
	// Only the first sheet is read.
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatal(err)
	}
	_ = f.SetCellValue("Other", "A1", "ignored")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := Decode("march.xlsx", MIMEXLSX, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if d := rows[0].Get(ColDate); !d.Numeric || d.Text != "45356" {
		t.Errorf("serial date cell = %+v", d)
	}
	if d := rows[1].Get(ColDate); d.Numeric || d.Text != "2024-03-01" {
		t.Errorf("text date cell = %+v", d)
	}
	if a := rows[0].Get(ColAmount).Text; a != "250.5" {
		t.Errorf("amount = %q", a)
	}
}
