// Package tui provides the interactive Bubble Tea client for smartexpense.
package tui

import (
	"fmt"
	"strings"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/config"
	"github.com/smartexpense/smartexpense/internal/dashboard"
	"github.com/smartexpense/smartexpense/internal/ingest"
	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/state"
	"github.com/smartexpense/smartexpense/internal/tui/components"
	"github.com/smartexpense/smartexpense/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Deps are the services the UI runs on. Session and Theme are shared with
// the rest of the process; the UI observes them instead of owning them.
type Deps struct {
	Client  *api.Client
	Session *state.Session
	Theme   *state.Theme
	Config  config.Config
	Log     *zap.Logger
}

// sessionChangedMsg is delivered when the session user logs in or out.
type sessionChangedMsg struct {
	user *model.User
}

// themeChangedMsg is delivered when dark mode is toggled.
type themeChangedMsg struct {
	dark bool
}

const (
	tabDashboard = iota
	tabExpenses
	tabReview
	tabProfile
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// App is the root Bubble Tea model.
type App struct {
	deps    Deps
	palette theme.Theme

	// Session user, nil when signed out.
	user *model.User

	// State subscriptions bridged into the program.
	events      chan tea.Msg
	unsubscribe []func()

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	status     string
	statusKind components.StatusKind

	// Per-tab state
	login    loginState
	dash     dashState
	exp      expensesState
	rev      reviewState
	prof     profileState
	settings settingsState
}

// NewApp creates the TUI model and subscribes it to session and theme
// changes. Call Close when the program exits.
func NewApp(deps Deps) *App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	a := &App{
		deps:    deps,
		palette: theme.ForMode(deps.Theme.Dark(), deps.Config.Appearance.DarkTheme, deps.Config.Appearance.LightTheme),
		events:  make(chan tea.Msg, 8),
		exp:     newExpensesState(),
		dash:    newDashState(),
	}
	a.spinner = newSpinner(a.palette)

	a.unsubscribe = append(a.unsubscribe,
		deps.Session.Subscribe(func(u *model.User) { a.events <- sessionChangedMsg{user: u} }),
		deps.Theme.Subscribe(func(dark bool) { a.events <- themeChangedMsg{dark: dark} }),
	)

	if u, ok := deps.Session.User(); ok {
		a.setUser(&u)
	} else {
		a.login = newLoginState("")
	}
	return a
}

// Close drops the state subscriptions.
func (a *App) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

func newSpinner(t theme.Theme) spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	return sp
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		a.waitForEvent(),
	}
	if a.user == nil {
		cmds = append(cmds, a.login.form.Init())
	} else {
		cmds = append(cmds, a.activate(a.activeTab), earningCmd(a.deps.Client, a.user.ID))
	}
	return tea.Batch(cmds...)
}

func (a App) waitForEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		return <-events
	}
}

// setUser switches the per-user services to u.
func (a *App) setUser(u *model.User) {
	a.user = u
	if a.dash.refresher != nil {
		a.dash.refresher.Cancel()
	}
	a.dash = newDashState()
	a.exp = newExpensesState()
	a.rev = reviewState{}
	a.prof = profileState{}
	if u == nil {
		return
	}
	a.dash.refresher = dashboard.NewRefresher(a.deps.Client, u.ID, a.deps.Config.Debounce(), a.deps.Log)
	a.exp.submitter = ingest.NewSubmitter(a.deps.Client, a.exp.batch, u.ID, a.deps.Config.ReviewDelay(), a.deps.Log)
}

// activate runs the load a tab needs when it becomes visible.
func (a *App) activate(tab int) tea.Cmd {
	if a.user == nil {
		return nil
	}
	switch tab {
	case tabDashboard:
		return a.refreshDashboard()
	case tabExpenses:
		return a.loadRegistry()
	case tabReview:
		return a.loadReview()
	case tabProfile:
		return a.loadProfile()
	}
	return nil
}

func (a *App) switchTab(tab int) tea.Cmd {
	if tab == a.activeTab {
		return nil
	}
	a.activeTab = tab
	return a.activate(tab)
}

func (a *App) setStatus(kind components.StatusKind, format string, args ...any) {
	a.statusKind = kind
	a.status = fmt.Sprintf(format, args...)
}

func (a *App) setError(err error) {
	a.setStatus(components.StatusError, "%s", api.UserMessage(err))
}

func (a *App) clearStatus() {
	a.status = ""
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeForms()
		return a, nil

	case sessionChangedMsg:
		a.setUser(msg.user)
		a.clearStatus()
		if msg.user == nil {
			a.login = newLoginState("")
			a.resizeForms()
			return a, tea.Batch(a.waitForEvent(), a.login.form.Init())
		}
		a.setStatus(components.StatusOK, "Signed in as %s", msg.user.Username)
		cmd := tea.Batch(a.waitForEvent(), a.activate(a.activeTab), earningCmd(a.deps.Client, msg.user.ID))
		return a, cmd

	case themeChangedMsg:
		a.palette = theme.ForMode(msg.dark, a.deps.Config.Appearance.DarkTheme, a.deps.Config.Appearance.LightTheme)
		a.spinner.Style = a.spinner.Style.Foreground(a.palette.Accent).Background(a.palette.Surface)
		return a, a.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case loginDoneMsg:
		return a.handleLoginDone(msg)

	case earningMsg:
		// A response for a user who has since signed out must not become
		// the next user's snapshot.
		if msg.err == nil && a.user != nil && msg.userID == a.user.ID {
			e := msg.earning
			if err := a.deps.Session.SetEarning(e); err != nil {
				a.deps.Log.Warn("saving earning snapshot", zap.Error(err))
			}
		}
		return a, nil

	case dashboardMsg:
		return a.handleDashboard(msg)

	case registryMsg:
		return a.handleRegistry(msg)

	case importDoneMsg:
		return a.handleImportDone(msg)

	case submitDoneMsg:
		return a.handleSubmitDone(msg)

	case reviewMsg:
		return a.handleReview(msg)

	case profileMsg:
		return a.handleProfile(msg)

	case tea.MouseMsg:
		if a.user == nil || a.showHelp || a.exp.mode != expModeList {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				cmd := a.switchTab(tab)
				return a, cmd
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Forward everything else (cursor blinks etc.) to whichever form is open.
	return a.forwardToForms(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.user == nil {
		return a.updateLogin(msg)
	}

	// Open forms and inputs take every key.
	if a.activeTab == tabExpenses && a.exp.mode != expModeList {
		return a.updateExpensesInput(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "T":
		if _, err := a.deps.Theme.Toggle(); err != nil {
			a.setError(fmt.Errorf("saving theme: %w", err))
		}
		return a, nil
	case "left", "shift+tab":
		cmd := a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		return a, cmd
	case "right", "tab":
		cmd := a.switchTab((a.activeTab + 1) % len(components.Tabs))
		return a, cmd
	}

	if m, cmd, handled := a.handleTabKey(key); handled {
		return m, cmd
	}

	if len(msg.Runes) == 1 {
		if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
			cmd := a.switchTab(tab)
			return a, cmd
		}
	}
	return a, nil
}

// handleTabKey gives the active tab first refusal on a key.
func (a App) handleTabKey(key string) (tea.Model, tea.Cmd, bool) {
	switch a.activeTab {
	case tabDashboard:
		return a.updateDashboardKey(key)
	case tabExpenses:
		return a.updateExpensesKey(key)
	case tabReview:
		return a.updateReviewKey(key)
	case tabProfile:
		return a.updateProfileKey(key)
	case tabSettings:
		return a.updateSettingsKey(key)
	}
	return a, nil, false
}

func (a App) forwardToForms(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.user == nil && a.login.form != nil {
		return a.updateLogin(msg)
	}
	if a.activeTab == tabExpenses && a.exp.mode != expModeList {
		return a.updateExpensesInput(msg)
	}
	return a, nil
}

func (a *App) resizeForms() {
	if a.width == 0 {
		return
	}
	if a.login.form != nil {
		a.login.form = a.login.form.WithWidth(min(a.width, 60))
	}
	if a.exp.form != nil {
		a.exp.form = a.exp.form.WithWidth(min(a.contentWidth()-4, 60))
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.user == nil {
		return a.viewLogin()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  smartexpense needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := a.palette
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d e r p x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move through lists"},
		}},
		{"Dashboard", []struct{ key, desc string }{
			{"[ ]", "Previous / Next month"},
			{"{ }", "Previous / Next year"},
			{"t", "Current month"},
		}},
		{"Expenses", []struct{ key, desc string }{
			{"i", "Import a CSV or Excel file"},
			{"a", "Add an expense by hand"},
			{"D", "Remove selected row"},
			{"s", "Submit the batch"},
		}},
		{"General", []struct{ key, desc string }{
			{"T", "Toggle dark / light"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := a.palette
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + per-tab context line
	contextStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Width(w)
	header := components.RenderTabBar(t, a.activeTab, w) + "\n" +
		contextStyle.Render(" "+a.contextLine())

	// 2. Status bar
	status := a.status
	if a.busy() {
		status = a.spinner.View() + " " + a.busyLabel()
	}
	statusBar := components.RenderStatusBar(t, w, status, a.statusKind, a.user.Username)

	// 3. Content zone height
	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabExpenses:
		content = a.renderExpensesTab(cw)
	case tabReview:
		content = a.renderReviewTab(cw)
	case tabProfile:
		content = a.renderProfileTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) contextLine() string {
	switch a.activeTab {
	case tabDashboard:
		return a.dashboardContext()
	case tabExpenses:
		return a.expensesContext()
	case tabReview:
		return "Latest earning against its month's expenses"
	case tabProfile:
		return "Account"
	case tabSettings:
		return "Saved to " + config.Path()
	}
	return ""
}

func (a App) busy() bool {
	return a.dash.loading || a.exp.loadingRegistry || a.exp.importing ||
		a.exp.submitting || a.rev.loading || a.prof.loading || a.login.pending
}

func (a App) busyLabel() string {
	switch {
	case a.exp.submitting:
		return "Submitting expenses..."
	case a.exp.importing:
		return "Importing..."
	case a.exp.loadingRegistry:
		return "Loading categories..."
	case a.dash.loading:
		return "Loading dashboard..."
	default:
		return "Loading..."
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color
// so gaps between cards are filled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
