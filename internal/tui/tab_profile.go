package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type profileState struct {
	user    *model.User
	loading bool
}

type profileMsg struct {
	userID int
	user   model.User
	err  error
}

func (a *App) loadProfile() tea.Cmd {
	if a.user == nil || a.prof.loading {
		return nil
	}
	a.prof.loading = true
	client, userID := a.deps.Client, a.user.ID
	return func() tea.Msg {
		u, err := client.Profile(context.Background(), userID)
		return profileMsg{userID: userID, user: u, err: err}
	}
}

func (a App) handleProfile(msg profileMsg) (tea.Model, tea.Cmd) {
	if a.user == nil || msg.userID != a.user.ID {
		return a, nil
	}
	a.prof.loading = false
	if msg.err != nil {
		a.setError(msg.err)
		return a, nil
	}
	u := msg.user
	a.prof.user = &u
	return a, nil
}

func (a App) updateProfileKey(key string) (tea.Model, tea.Cmd, bool) {
	if key != "L" {
		return a, nil, false
	}
	// Subscribers (this UI included) react to the cleared session.
	if err := a.deps.Session.Logout(); err != nil {
		a.setError(err)
	}
	return a, nil, true
}

func (a App) renderProfileTab(cw int) string {
	t := a.palette
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	// Fall back to the session copy until the fresh profile arrives.
	u := a.user
	if a.prof.user != nil {
		u = a.prof.user
	}

	or := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return dimStyle.Render("(not set)")
		}
		return valueStyle.Render(s)
	}

	var body strings.Builder
	rows := [][2]string{
		{"Username", u.Username},
		{"Email", u.Email},
		{"Phone", u.Phone},
		{"Bio", u.Bio},
		{"User ID", strconv.Itoa(u.ID)},
	}
	for i, r := range rows {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", r[0])))
		body.WriteString(or(r[1]))
	}
	if a.prof.loading {
		body.WriteString("\n\n" + a.spinner.View() + dimStyle.Render(" Refreshing..."))
	}

	var earn strings.Builder
	if e, ok := a.deps.Session.Earning(); ok {
		earn.WriteString(labelStyle.Render("Latest earning  ") + valueStyle.Render(cli.FormatAmount(e.Amount)))
		earn.WriteString("\n")
		earn.WriteString(labelStyle.Render("Earning date    ") + valueStyle.Render(e.EarningDate))
	} else {
		earn.WriteString(dimStyle.Render("No earning recorded yet."))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(t, "Profile", body.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard(t, "Earning", earn.String(), cw))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [L] log out"))
	return b.String()
}
