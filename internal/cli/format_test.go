package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":          "0.00",
		"12.5":       "12.50",
		"999.999":    "1,000.00",
		"1234567.5":  "1,234,567.50",
		"-1200":      "-1,200.00",
		"250.104":    "250.10",
		"1000000000": "1,000,000,000.00",
	}
	for in, want := range tests {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	if got := FormatRemaining(decimal.NewFromInt(-50)); got != "-50.00" {
		t.Errorf("got %s", got)
	}
	if got := FormatRemaining(decimal.NewFromInt(4000)); got != "+4,000.00" {
		t.Errorf("got %s", got)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := map[float64]string{
		0:         "0",
		999:       "999",
		1234:      "1.2K",
		1_500_000: "1.5M",
	}
	for in, want := range tests {
		if got := FormatCompact(in); got != want {
			t.Errorf("FormatCompact(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatMonth(t *testing.T) {
	if got := FormatMonth(3, 2024); got != "March 2024" {
		t.Errorf("got %q", got)
	}
	if got := FormatMonth(13, 2024); got != "13/2024" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:      "Batch",
		Headers:    []string{"Date", "Category", "Amount"},
		Rows:       [][]string{{"2024-03-05", "food", "250.00"}},
		Footer:     []string{"", "Total", "250.00"},
		RightAlign: []int{3},
	})
	for _, want := range []string{"Batch", "Category", "food", "250.00", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 5, 10}); got != "▁▄█" {
		t.Errorf("got %q", got)
	}
}
