package components

import (
	"strings"

	"github.com/smartexpense/smartexpense/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind selects the status message color.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusOK
	StatusError
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the current status message and signed-in user on the right.
func RenderStatusBar(t theme.Theme, width int, msg string, kind StatusKind, user string) string {
	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	msgColor := t.TextMuted
	switch kind {
	case StatusOK:
		msgColor = t.Green
	case StatusError:
		msgColor = t.Red
	}
	msgStyle := lipgloss.NewStyle().Foreground(msgColor).Background(t.Surface).Bold(kind == StatusError)
	userStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	plain := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := plain.Render(" [?]help  [q]uit")
	right := ""
	if msg != "" {
		right = msgStyle.Render(msg)
	}
	if user != "" {
		if right != "" {
			right += plain.Render("  ")
		}
		right += userStyle.Render("● "+user) + plain.Render(" ")
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + plain.Render(strings.Repeat(" ", padding)) + right)
}
