package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// loginValues is bound to the login form fields.
type loginValues struct {
	email    string
	password string
}

// loginState is the signed-out screen.
type loginState struct {
	form    *huh.Form
	vals    *loginValues
	pending bool
	err     string
}

type loginDoneMsg struct {
	user model.User
	err  error
}

type earningMsg struct {
	userID  int
	earning model.Earning
	err     error
}

func newLoginState(email string) loginState {
	vals := &loginValues{email: email}
	return loginState{
		form: newLoginForm(vals),
		vals: vals,
	}
}

func newLoginForm(vals *loginValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&vals.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&vals.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		).Title("Sign in to SmartExpense").
			Description("Create an account with `smartexpense signup`."),
	).WithShowHelp(true)
}

func loginCmd(client *api.Client, creds model.Credentials) tea.Cmd {
	return func() tea.Msg {
		u, err := client.Login(context.Background(), creds)
		return loginDoneMsg{user: u, err: err}
	}
}

// earningCmd refreshes the stored earning snapshot the same-month policy
// reads.
func earningCmd(client *api.Client, userID int) tea.Cmd {
	return func() tea.Msg {
		e, err := client.LatestEarning(context.Background(), userID)
		return earningMsg{userID: userID, earning: e, err: err}
	}
}

func (a App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.login.form == nil {
		return a, nil
	}

	form, cmd := a.login.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.login.form = f
	}

	switch a.login.form.State {
	case huh.StateCompleted:
		creds := model.Credentials{
			Email:    strings.TrimSpace(a.login.vals.email),
			Password: a.login.vals.password,
		}
		a.login.form = nil
		a.login.pending = true
		a.login.err = ""
		return a, loginCmd(a.deps.Client, creds)

	case huh.StateAborted:
		return a, tea.Quit
	}

	return a, cmd
}

func (a App) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	a.login.pending = false
	if msg.err != nil {
		a.deps.Log.Info("login failed", zap.Error(msg.err))
		email := a.login.vals.email
		a.login = newLoginState(email)
		a.login.err = api.UserMessage(msg.err)
		a.resizeForms()
		return a, a.login.form.Init()
	}

	// The session notifies subscribers, which switches the UI to the tabs.
	if err := a.deps.Session.Login(msg.user); err != nil {
		a.login = newLoginState(msg.user.Email)
		a.login.err = "Could not save session: " + err.Error()
		return a, a.login.form.Init()
	}
	return a, nil
}

func (a App) viewLogin() string {
	t := a.palette

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ SmartExpense"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(a.deps.Client.BaseURL()))
	b.WriteString("\n\n")

	if a.login.err != "" {
		b.WriteString(errStyle.Render(a.login.err))
		b.WriteString("\n\n")
	}

	switch {
	case a.login.pending:
		b.WriteString(a.spinner.View() + " Signing in...")
	case a.login.form != nil:
		b.WriteString(a.login.form.View())
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(t.Background))
}
