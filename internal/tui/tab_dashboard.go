package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/dashboard"
	"github.com/smartexpense/smartexpense/internal/tui/components"
	"github.com/smartexpense/smartexpense/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dashState struct {
	refresher *dashboard.Refresher
	sel       dashboard.Selection
	view      *dashboard.View
	loading   bool
}

type dashboardMsg struct {
	sel  dashboard.Selection
	view dashboard.View
	err  error
}

func newDashState() dashState {
	return dashState{sel: dashboard.SelectionOf(time.Now())}
}

func dashboardCmd(r *dashboard.Refresher, sel dashboard.Selection) tea.Cmd {
	return func() tea.Msg {
		v, err := r.Refresh(context.Background(), sel)
		return dashboardMsg{sel: sel, view: v, err: err}
	}
}

func (a *App) refreshDashboard() tea.Cmd {
	if a.dash.refresher == nil {
		return nil
	}
	a.dash.loading = true
	return dashboardCmd(a.dash.refresher, a.dash.sel)
}

// shiftMonth moves the selection by n months, rolling the year over.
func shiftMonth(sel dashboard.Selection, n int) dashboard.Selection {
	t := time.Date(sel.Year, time.Month(sel.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return dashboard.SelectionOf(t)
}

func (a App) updateDashboardKey(key string) (tea.Model, tea.Cmd, bool) {
	sel := a.dash.sel
	switch key {
	case "[":
		sel = shiftMonth(sel, -1)
	case "]":
		sel = shiftMonth(sel, 1)
	case "{":
		sel = shiftMonth(sel, -12)
	case "}":
		sel = shiftMonth(sel, 12)
	case "t":
		sel = dashboard.SelectionOf(time.Now())
	default:
		return a, nil, false
	}
	if sel == a.dash.sel {
		return a, nil, true
	}
	a.dash.sel = sel
	// The old month's figures must not show under the new month's label.
	a.dash.view = nil
	cmd := a.refreshDashboard()
	return a, cmd, true
}

func (a App) handleDashboard(msg dashboardMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, dashboard.ErrSuperseded) {
		return a, nil
	}
	if msg.sel != a.dash.sel {
		return a, nil
	}
	a.dash.loading = false
	if msg.err != nil {
		a.dash.view = nil
		a.setError(msg.err)
		return a, nil
	}
	v := msg.view
	a.dash.view = &v
	a.clearStatus()
	return a, nil
}

func (a App) dashboardContext() string {
	return fmt.Sprintf("◀ [ %s ] ▶", cli.FormatMonth(a.dash.sel.Month, a.dash.sel.Year))
}

// sliceColors cycles through the palette for per-category series.
func sliceColors(t theme.Theme) []lipgloss.Color {
	return []lipgloss.Color{t.Blue, t.Orange, t.Green, t.Magenta, t.Cyan, t.Yellow, t.Red, t.Accent}
}

func (a App) renderDashboardTab(cw int) string {
	t := a.palette
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	if a.dash.view == nil {
		if a.dash.loading {
			return "\n  " + a.spinner.View() + dimStyle.Render(" Loading dashboard...")
		}
		return "\n" + dimStyle.Render("  No data. Press [ or ] to change month.")
	}
	v := *a.dash.view

	var b strings.Builder

	// Row 1: totals
	spent := 0.0
	if v.TotalEarning > 0 {
		spent = v.TotalExpense / v.TotalEarning
	}
	remainingColor := t.Green
	if v.Remaining() < 0 {
		remainingColor = t.Red
	}
	b.WriteString(components.MetricCardRow(t, []components.Metric{
		{Label: "Earning", Value: cli.FormatMoney(v.TotalEarning)},
		{Label: "Expenses", Value: cli.FormatMoney(v.TotalExpense), Delta: cli.FormatPercent(spent) + " of earning"},
		{Label: "Remaining", Value: cli.FormatMoney(v.Remaining()), Color: remainingColor},
		{Label: "Categories", Value: cli.FormatNumber(int64(len(v.CategoryBars)))},
	}, cw))
	b.WriteString("\n")

	if v.Empty() {
		b.WriteString(dimStyle.Render("  Nothing recorded for this month."))
		return b.String()
	}

	// Row 2: category bars + share of spend
	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	halves := components.LayoutRow(cw, 2)
	barCard := a.categoryBarsCard(v, halves[0], chartH)
	pieCard := a.categoryShareCard(v, halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard(t, "Expenses by Category", a.categoryBarsBody(v, components.CardInnerWidth(cw), chartH), cw))
		b.WriteString("\n")
		b.WriteString(a.categoryShareCard(v, cw))
	} else {
		b.WriteString(components.CardRow([]string{barCard, pieCard}))
	}
	b.WriteString("\n")

	// Row 3: trends
	b.WriteString(components.CardRow([]string{
		a.trendCard("Expense Trend", v.ExpenseTrend, t.Orange, halves[0]),
		a.trendCard("Earning Trend", v.EarningTrend, t.Green, halves[1]),
	}))
	b.WriteString("\n")

	// Row 4: cumulative earning vs expense
	b.WriteString(a.cumulativeCard(v, cw))

	return b.String()
}

func (a App) categoryBarsBody(v dashboard.View, innerW, h int) string {
	values := make([]float64, len(v.CategoryBars))
	labels := make([]string, len(v.CategoryBars))
	for i, p := range v.CategoryBars {
		values[i] = p.Value
		labels[i] = p.Label
	}
	return components.BarChart(a.palette, values, labels, a.palette.Blue, innerW, h)
}

func (a App) categoryBarsCard(v dashboard.View, w, h int) string {
	return components.ContentCard(a.palette, "Expenses by Category",
		a.categoryBarsBody(v, components.CardInnerWidth(w), h), w)
}

func (a App) categoryShareCard(v dashboard.View, w int) string {
	t := a.palette
	innerW := components.CardInnerWidth(w)
	colors := sliceColors(t)

	labelW := 12
	barW := innerW - labelW - 22
	if barW < 6 {
		barW = 6
	}

	var body strings.Builder
	for i, s := range v.CategoryPie {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(components.ShareBar(t, s.Label, s.Share, colors[i%len(colors)],
			cli.FormatCompact(s.Value), labelW, barW))
	}
	return components.ContentCard(t, "Share of Spend", body.String(), w)
}

func (a App) trendCard(title string, pts []dashboard.Point, color lipgloss.Color, w int) string {
	t := a.palette
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	if len(pts) == 0 {
		return components.ContentCard(t, title, dimStyle.Render("No entries"), w)
	}

	values := make([]float64, len(pts))
	total := 0.0
	for i, p := range pts {
		values[i] = p.Value
		total += p.Value
	}
	innerW := components.CardInnerWidth(w)
	if len(values) > innerW {
		values = values[len(values)-innerW:]
	}

	body := components.Sparkline(t, values, color) + "\n" +
		dimStyle.Render(fmt.Sprintf("%s → %s  total %s",
			pts[0].Label, pts[len(pts)-1].Label, cli.FormatCompact(total)))
	return components.ContentCard(t, title, body, w)
}

func (a App) cumulativeCard(v dashboard.View, w int) string {
	t := a.palette
	innerW := components.CardInnerWidth(w)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	earnStyle := lipgloss.NewStyle().Foreground(t.Green)
	spendStyle := lipgloss.NewStyle().Foreground(t.Orange)

	maxVal := 0.0
	for _, m := range v.Cumulative {
		maxVal = max(maxVal, m.Earning, m.Expense)
	}

	const labelW = 10
	barW := innerW - labelW - 12
	if barW < 4 {
		barW = 4
	}

	bar := func(val float64) int {
		if maxVal <= 0 {
			return 0
		}
		return int(val / maxVal * float64(barW))
	}

	var body strings.Builder
	for i, m := range v.Cumulative {
		if i > 0 {
			body.WriteString("\n")
		}
		label := m.Label
		if label == "" {
			label = "start"
		}
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncStr(label, labelW))))
		body.WriteString(earnStyle.Render(strings.Repeat("█", bar(m.Earning))))
		body.WriteString(" " + labelStyle.Render(cli.FormatCompact(m.Earning)))
		body.WriteString("\n")
		body.WriteString(strings.Repeat(" ", labelW))
		body.WriteString(spendStyle.Render(strings.Repeat("█", bar(m.Expense))))
		body.WriteString(" " + labelStyle.Render(cli.FormatCompact(m.Expense)))
	}
	body.WriteString("\n")
	body.WriteString(earnStyle.Render("█ earning") + "  " + spendStyle.Render("█ expense"))

	return components.ContentCard(t, "Cumulative Earning vs Expense", body.String(), w)
}
