package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/smartexpense/smartexpense/internal/config"
	"github.com/smartexpense/smartexpense/internal/dashboard"
	"github.com/smartexpense/smartexpense/internal/ingest"
	"github.com/smartexpense/smartexpense/internal/tui/components"
	"github.com/smartexpense/smartexpense/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldDarkMode = iota
	settingsFieldDarkTheme
	settingsFieldLightTheme
	settingsFieldSameMonth
	settingsFieldReviewDelay
	settingsFieldDebounce
	settingsFieldAPIURL
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return a, nil, true
	case "enter", " ":
		m, cmd := a.settingsActivate()
		return m, cmd, true
	}
	return a, nil, false
}

// settingsActivate toggles or cycles choice fields and opens an input for
// free-form ones.
func (a App) settingsActivate() (tea.Model, tea.Cmd) {
	cfg := a.deps.Config
	a.settings.saved = false

	switch a.settings.cursor {
	case settingsFieldDarkMode:
		if _, err := a.deps.Theme.Toggle(); err != nil {
			a.settings.saveErr = err
		}
		return a, nil
	case settingsFieldDarkTheme:
		cfg.Appearance.DarkTheme = nextName(theme.Names(theme.Dark), cfg.Appearance.DarkTheme)
		a.saveSettings(cfg)
		return a, nil
	case settingsFieldLightTheme:
		cfg.Appearance.LightTheme = nextName(theme.Names(theme.Light), cfg.Appearance.LightTheme)
		a.saveSettings(cfg)
		return a, nil
	case settingsFieldSameMonth:
		cfg.Import.SameMonthAsEarning = !cfg.Import.SameMonthAsEarning
		a.saveSettings(cfg)
		return a, nil
	}

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldReviewDelay:
		ti.Placeholder = "2000 (milliseconds)"
		ti.SetValue(strconv.Itoa(cfg.Import.ReviewDelayMs))
	case settingsFieldDebounce:
		ti.Placeholder = "300 (milliseconds)"
		ti.SetValue(strconv.Itoa(cfg.Dashboard.DebounceMs))
	case settingsFieldAPIURL:
		ti.Placeholder = config.DefaultAPIURL
		ti.SetValue(cfg.API.BaseURL)
	}
	ti.Focus()
	a.settings.input = ti
	a.settings.editing = true
	return a, ti.Cursor.BlinkCmd()
}

func nextName(names []string, current string) string {
	i := slices.Index(names, current)
	return names[(i+1)%len(names)]
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSaveInput()
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSaveInput() {
	cfg := a.deps.Config
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldReviewDelay:
		ms, err := strconv.Atoi(val)
		if err != nil || ms < 0 {
			a.settings.saveErr = errors.New("review delay must be a whole number of milliseconds")
			return
		}
		cfg.Import.ReviewDelayMs = ms
	case settingsFieldDebounce:
		ms, err := strconv.Atoi(val)
		if err != nil || ms <= 0 {
			a.settings.saveErr = errors.New("debounce must be a positive number of milliseconds")
			return
		}
		cfg.Dashboard.DebounceMs = ms
	case settingsFieldAPIURL:
		if val == "" {
			val = config.DefaultAPIURL
		}
		cfg.API.BaseURL = val
	}
	a.saveSettings(cfg)
}

// saveSettings persists cfg and rebuilds the services that read it.
// A new API URL takes effect on the next start.
func (a *App) saveSettings(cfg config.Config) {
	a.settings.saveErr = config.Save(cfg)
	a.settings.saved = a.settings.saveErr == nil
	a.deps.Config = cfg
	a.palette = theme.ForMode(a.deps.Theme.Dark(), cfg.Appearance.DarkTheme, cfg.Appearance.LightTheme)

	if a.user == nil {
		return
	}
	if a.dash.refresher != nil {
		a.dash.refresher.Cancel()
		a.dash.loading = false
	}
	a.dash.refresher = dashboard.NewRefresher(a.deps.Client, a.user.ID, cfg.Debounce(), a.deps.Log)
	if !a.exp.submitting {
		a.exp.submitter = ingest.NewSubmitter(a.deps.Client, a.exp.batch, a.user.ID, cfg.ReviewDelay(), a.deps.Log)
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := a.palette
	cfg := a.deps.Config

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	fields := []struct{ label, value string }{
		{"Dark Mode", onOff(a.deps.Theme.Dark())},
		{"Dark Theme", cfg.Appearance.DarkTheme},
		{"Light Theme", cfg.Appearance.LightTheme},
		{"Same Month Only", onOff(cfg.Import.SameMonthAsEarning)},
		{"Review Delay", fmt.Sprintf("%dms", cfg.Import.ReviewDelayMs)},
		{"Debounce", fmt.Sprintf("%dms", cfg.Dashboard.DebounceMs)},
		{"API URL", cfg.API.BaseURL},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker)
			formBody.WriteString(label)
			formBody.WriteString(value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			innerW := components.CardInnerWidth(cw)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] change  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()) + "\n")
	infoBody.WriteString(labelStyle.Render("Local store:  ") + valueStyle.Render(config.StorePath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Log file:     ") + valueStyle.Render(cfg.LogPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Connected to: ") + valueStyle.Render(a.deps.Client.BaseURL()))

	var b strings.Builder
	b.WriteString(components.ContentCard(t, "Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard(t, "General", infoBody.String(), cw))

	return b.String()
}
