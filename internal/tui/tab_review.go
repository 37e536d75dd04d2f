package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/review"
	"github.com/smartexpense/smartexpense/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type reviewState struct {
	summary *review.Summary
	noData  bool
	loading bool
}

type reviewMsg struct {
	userID  int
	summary review.Summary
	err     error
}

func (a *App) loadReview() tea.Cmd {
	if a.user == nil || a.rev.loading {
		return nil
	}
	a.rev.loading = true
	client, userID := a.deps.Client, a.user.ID
	return func() tea.Msg {
		s, err := review.Build(context.Background(), client, userID)
		return reviewMsg{userID: userID, summary: s, err: err}
	}
}

func (a App) handleReview(msg reviewMsg) (tea.Model, tea.Cmd) {
	if a.user == nil || msg.userID != a.user.ID {
		return a, nil
	}
	a.rev.loading = false
	if msg.err != nil {
		a.rev.summary = nil
		if errors.Is(msg.err, review.ErrNoEarning) {
			a.rev.noData = true
			return a, nil
		}
		a.setError(msg.err)
		return a, nil
	}
	a.rev.noData = false
	s := msg.summary
	a.rev.summary = &s
	return a, nil
}

func (a App) updateReviewKey(key string) (tea.Model, tea.Cmd, bool) {
	if key == "g" {
		cmd := a.loadReview()
		return a, cmd, true
	}
	return a, nil, false
}

func (a App) renderReviewTab(cw int) string {
	t := a.palette
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	switch {
	case a.rev.loading && a.rev.summary == nil:
		return "\n  " + a.spinner.View() + dimStyle.Render(" Loading review...")
	case a.rev.noData:
		return "\n  " + lipgloss.NewStyle().Foreground(t.Orange).Render(review.ErrNoEarning.Error()) +
			"\n\n  " + dimStyle.Render("Record one with `smartexpense earning add`.")
	case a.rev.summary == nil:
		return "\n" + dimStyle.Render("  Press g to load the review.")
	}
	s := *a.rev.summary

	var b strings.Builder

	remainingColor := t.Green
	if s.Remaining.IsNegative() {
		remainingColor = t.Red
	}
	b.WriteString(components.MetricCardRow(t, []components.Metric{
		{Label: "Earning", Value: cli.FormatAmount(s.Earning.Amount), Delta: s.Month.Format("January 2006")},
		{Label: "Expenses", Value: cli.FormatAmount(s.Total)},
		{Label: "Remaining", Value: cli.FormatRemaining(s.Remaining), Color: remainingColor},
		{Label: "Entries", Value: cli.FormatNumber(int64(s.Count()))},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	spent := 0.0
	if s.Earning.Amount.IsPositive() {
		spent = s.Total.Div(s.Earning.Amount).InexactFloat64()
	}
	b.WriteString(components.ContentCard(t, "Budget", components.BudgetBar(t, spent, innerW), cw))
	b.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	catW := max(innerW-12-16, 10)
	line := func(date, cat, amount string) string {
		return fmt.Sprintf("%-12s%-*s%16s", date, catW, truncStr(cat, catW), amount)
	}

	var body strings.Builder
	if s.Count() == 0 {
		body.WriteString(dimStyle.Render("No expenses recorded in this month."))
	} else {
		body.WriteString(headerStyle.Render(line("Date", "Category", "Amount")))
		limit := max(a.height-20, 5)
		for i, e := range s.Expenses {
			if i >= limit {
				body.WriteString("\n" + dimStyle.Render(fmt.Sprintf("... %d more", s.Count()-limit)))
				break
			}
			date := e.ExpenseDate
			if d, ok := e.Date(); ok {
				date = d.Format("2006-01-02")
			}
			body.WriteString("\n")
			body.WriteString(rowStyle.Render(line(date, e.CategoryName, cli.FormatAmount(e.Amount))))
		}
	}
	b.WriteString(components.ContentCard(t, fmt.Sprintf("Expenses in %s", s.Month.Format("January 2006")), body.String(), cw))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [g] reload  [e] add more expenses"))

	return b.String()
}
