package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(t theme.Theme, values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// BarChart renders one labelled column per category. Values are assumed
// non-negative. When the columns do not fit in width, the largest values
// are kept in their original order and the rest are counted in a footer.
func BarChart(t theme.Theme, values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(t, values, color)
	}
	if len(labels) != len(values) {
		labels = make([]string, len(values))
	}

	bg := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}
	top := cli.FormatCompact(maxVal)
	yLabelW := max(len(top), 3) + 1
	chartW := max(width-yLabelW-1, 5)

	const gap, minBarW, maxBarW = 1, 3, 10
	fit := max((chartW+gap)/(minBarW+gap), 1)
	values, labels, hidden := keepLargest(values, labels, fit)
	n := len(values)

	barW := min(max((chartW-(n-1)*gap)/n, minBarW), maxBarW)
	axisLen := n*barW + (n-1)*gap

	// Leave one row for the value printed above each column.
	chartH := height - 1
	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := maxVal * float64(row) / float64(chartH)
		rowBottom := maxVal * float64(row-1) / float64(chartH)

		barColor := color
		if float64(row)/float64(chartH) > 0.8 {
			barColor = t.AccentBright
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		label := ""
		if row == chartH {
			label = top
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(bg.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := min(max(int((v-rowBottom)/(rowTop-rowBottom)*8), 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(bg.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└", yLabelW, "0")))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))
	b.WriteString("\n")

	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	cells := make([]string, n)
	for i, l := range labels {
		cells[i] = fitCell(l, barW)
	}
	b.WriteString(bg.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(labelStyle.Render(strings.Join(cells, strings.Repeat(" ", gap))))

	if hidden > 0 {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(labelStyle.Render(fmt.Sprintf("+%d smaller not shown", hidden)))
	}
	return b.String()
}

// keepLargest returns at most n entries, dropping the smallest values and
// preserving order. hidden is the number dropped.
func keepLargest(values []float64, labels []string, n int) ([]float64, []string, int) {
	if len(values) <= n {
		return values, labels, 0
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	keep := idx[:n]
	sort.Ints(keep)

	outV := make([]float64, n)
	outL := make([]string, n)
	for i, j := range keep {
		outV[i] = values[j]
		outL[i] = labels[j]
	}
	return outV, outL, len(values) - n
}

// fitCell truncates or pads s to exactly w columns.
func fitCell(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		if w > 1 {
			return string(r[:w-1]) + "…"
		}
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}
