package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/smartexpense/smartexpense/internal/tui/theme"
)

func TestKeepLargestPreservesOrder(t *testing.T) {
	values := []float64{5, 50, 1, 30, 2}
	labels := []string{"a", "b", "c", "d", "e"}

	gotV, gotL, hidden := keepLargest(values, labels, 3)
	if hidden != 2 {
		t.Errorf("hidden = %d, want 2", hidden)
	}
	want := []string{"a", "b", "d"}
	if strings.Join(gotL, ",") != strings.Join(want, ",") {
		t.Errorf("labels = %v, want %v", gotL, want)
	}
	if gotV[1] != 50 || gotV[2] != 30 {
		t.Errorf("values = %v", gotV)
	}
}

func TestBarChartLabelsEveryCategory(t *testing.T) {
	th := theme.FlexokiDark
	out := ansi.Strip(BarChart(th, []float64{120, 40, 75}, []string{"food", "rent", "fun"}, th.Blue, 60, 6))

	for _, want := range []string{"food", "rent", "fun", "120"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "not shown") {
		t.Errorf("no category should be hidden at this width:\n%s", out)
	}
}

func TestBarChartReportsHiddenCategories(t *testing.T) {
	th := theme.FlexokiDark
	values := make([]float64, 12)
	labels := make([]string, 12)
	for i := range values {
		values[i] = float64(i + 1)
		labels[i] = "c"
	}
	out := ansi.Strip(BarChart(th, values, labels, th.Blue, 20, 5))
	if !strings.Contains(out, "smaller not shown") {
		t.Errorf("expected hidden-category footer:\n%s", out)
	}
}

func TestFitCell(t *testing.T) {
	if got := fitCell("groceries", 5); got != "groc…" {
		t.Errorf("fitCell truncate = %q", got)
	}
	if got := fitCell("tax", 5); got != "tax  " {
		t.Errorf("fitCell pad = %q", got)
	}
}
