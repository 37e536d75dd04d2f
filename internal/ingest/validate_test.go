package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/smartexpense/smartexpense/internal/model"
)

func csvRows(t *testing.T, in string) []RawRow {
	t.Helper()
	rows, err := Decode("test.csv", MIMECSV, strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return rows
}

func TestParseDate(t *testing.T) {
	valid := map[string]string{
		"2024-03-05":           "2024-03-05",
		"2024/03/05":           "2024-03-05",
		"05-03-2024":           "2024-03-05",
		"05/03/2024":           "2024-03-05",
		"2024-03-05T23:30:00Z": "2024-03-05",
		"2024-03-05 08:15:00":  "2024-03-05",
		" 2024-03-05 ":         "2024-03-05",
	}
	for in, want := range valid {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", in, err)
			continue
		}
		if s := got.Format(model.DateLayout); s != want {
			t.Errorf("ParseDate(%q) = %s, want %s", in, s, want)
		}
	}

	for _, in := range []string{"", "yesterday", "2024-02-30", "2024-13-01", "32/01/2024"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", in)
		}
	}
}

func TestValidateRows(t *testing.T) {
	v := NewValidator(testRegistry())
	rows, err := v.Rows(csvRows(t, "category,amount,date\n FOOD ,250,2024-03-05\nrent,1200.50,45356\n"))
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Category != "food" || rows[0].CategoryID != 1 || rows[0].ExpenseDate != "2024-03-05" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].CategoryID != 2 || rows[1].ExpenseDate != "2024-03-05" || rows[1].Amount.String() != "1200.5" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestValidateRowsRejectsWholeFile(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		row    int
		column string
	}{
		{"unknown category", "category,amount,date\nfood,1,2024-03-05\nXYZ,10,2024-03-06\n", 3, ColCategory},
		{"bad date", "category,amount,date\nfood,1,2024-03-05\nfood,1,someday\n", 3, ColDate},
		{"zero amount", "category,amount,date\nfood,0,2024-03-05\n", 2, ColAmount},
		{"negative amount", "category,amount,date\nfood,-5,2024-03-05\n", 2, ColAmount},
		{"text amount", "category,amount,date\nfood,ten,2024-03-05\n", 2, ColAmount},
		{"nan amount", "category,amount,date\nfood,NaN,2024-03-05\n", 2, ColAmount},
		{"empty amount", "category,amount,date\nfood,,2024-03-05\n", 2, ColAmount},
		{"overflowing amount", "category,amount,date\nfood,12,2024-03-05\nfood,1e400,2024-03-06\n", 3, ColAmount},
		{"overflowing negative amount", "category,amount,date\nfood,-1e400,2024-03-05\n", 2, ColAmount},
	}
	v := NewValidator(testRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := v.Rows(csvRows(t, tt.in))
			if rows != nil {
				t.Errorf("rows = %v, want none", rows)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Row != tt.row || verr.Column != tt.column {
				t.Errorf("error at row %d column %s, want row %d column %s", verr.Row, verr.Column, tt.row, tt.column)
			}
		})
	}
}

func TestUnknownCategoryKeepsOriginalSpelling(t *testing.T) {
	v := NewValidator(testRegistry())
	_, err := v.Rows(csvRows(t, "category,amount,date\nXYZ,10,2024-03-06\n"))
	if err == nil || !strings.Contains(err.Error(), "XYZ") {
		t.Fatalf("err = %v, want it to mention XYZ", err)
	}
}

func TestSameMonthPolicy(t *testing.T) {
	earning := &model.Earning{UserID: 1, EarningDate: "2024-03-01"}
	in := "category,amount,date\nfood,1,2024-03-31\nfood,1,2024-04-01\n"

	_, err := NewValidator(testRegistry(), RequireSameMonth(earning)).Rows(csvRows(t, in))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Row != 3 || verr.Value != "2024-04-01" {
		t.Fatalf("err = %v, want mismatch at row 3", err)
	}

	if _, err := NewValidator(testRegistry()).Rows(csvRows(t, in)); err != nil {
		t.Errorf("policy off: %v", err)
	}

	_, err = NewValidator(testRegistry(), RequireSameMonth(nil)).Rows(csvRows(t, in))
	if !errors.Is(err, ErrNoEarning) {
		t.Errorf("no earning: err = %v, want ErrNoEarning", err)
	}
}

func TestEntryIgnoresSerials(t *testing.T) {
	v := NewValidator(testRegistry())
	if _, err := v.Entry("food", "45356", "10"); err == nil {
		t.Error("manual entry accepted a date serial")
	}
}
