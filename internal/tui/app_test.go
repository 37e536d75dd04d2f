package tui

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/config"
	"github.com/smartexpense/smartexpense/internal/dashboard"
	"github.com/smartexpense/smartexpense/internal/ingest"
	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/review"
	"github.com/smartexpense/smartexpense/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T, h http.Handler, user *model.User) *App {
	t.Helper()
	if h == nil {
		h = http.NotFoundHandler()
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second, DisableBreaker: true})
	if err != nil {
		t.Fatal(err)
	}

	session := state.NewSession(nil)
	if user != nil {
		if err := session.Login(*user); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Import.ReviewDelayMs = 0
	cfg.Dashboard.DebounceMs = 1

	a := NewApp(Deps{
		Client:  client,
		Session: session,
		Theme:   state.NewTheme(nil, true),
		Config:  cfg,
	})
	t.Cleanup(a.Close)
	return a
}

func nextEvent(t *testing.T, a *App) tea.Msg {
	t.Helper()
	select {
	case msg := <-a.events:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no state event delivered")
		return nil
	}
}

func update(t *testing.T, m tea.Model, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(App)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return app, cmd
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var testUser = &model.User{ID: 7, Username: "asha", Email: "asha@example.com"}

func TestLoginSwitchesToTabs(t *testing.T) {
	a := newTestApp(t, nil, nil)
	if a.user != nil || a.login.form == nil {
		t.Fatal("expected login screen when signed out")
	}

	m, _ := update(t, *a, loginDoneMsg{user: *testUser})
	m, cmd := update(t, m, nextEvent(t, a))

	if m.user == nil || m.user.ID != 7 {
		t.Fatalf("user = %+v, want id 7", m.user)
	}
	if m.dash.refresher == nil || m.exp.submitter == nil {
		t.Fatal("per-user services not created")
	}
	if cmd == nil {
		t.Fatal("expected activation commands after login")
	}
	if u, ok := a.deps.Session.User(); !ok || u.Username != "asha" {
		t.Fatalf("session user = %+v, %v", u, ok)
	}
}

func TestLoginFailureKeepsEmail(t *testing.T) {
	a := newTestApp(t, nil, nil)
	a.login.vals.email = "asha@example.com"

	m, _ := update(t, *a, loginDoneMsg{err: &api.APIError{Status: 401, Message: "Invalid credentials"}})

	if m.login.err != "Invalid credentials" {
		t.Errorf("login error = %q", m.login.err)
	}
	if m.login.vals.email != "asha@example.com" {
		t.Errorf("email = %q, want it kept", m.login.vals.email)
	}
	if m.login.form == nil {
		t.Error("form not rebuilt")
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.activeTab = tabProfile

	m, _ = update(t, m, keyMsg("L"))
	m, _ = update(t, m, nextEvent(t, a))

	if m.user != nil {
		t.Fatal("user still set after logout")
	}
	if m.login.form == nil {
		t.Fatal("login form not shown after logout")
	}
	if _, ok := a.deps.Session.User(); ok {
		t.Fatal("session still holds a user")
	}
}

func TestShiftMonthRollsYear(t *testing.T) {
	tests := []struct {
		sel  dashboard.Selection
		n    int
		want dashboard.Selection
	}{
		{dashboard.Selection{Month: 1, Year: 2024}, -1, dashboard.Selection{Month: 12, Year: 2023}},
		{dashboard.Selection{Month: 12, Year: 2024}, 1, dashboard.Selection{Month: 1, Year: 2025}},
		{dashboard.Selection{Month: 3, Year: 2024}, -12, dashboard.Selection{Month: 3, Year: 2023}},
	}
	for _, tt := range tests {
		if got := shiftMonth(tt.sel, tt.n); got != tt.want {
			t.Errorf("shiftMonth(%+v, %d) = %+v, want %+v", tt.sel, tt.n, got, tt.want)
		}
	}
}

func TestDashboardMonthKeys(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.dash.sel = dashboard.Selection{Month: 3, Year: 2024}

	m, cmd := update(t, m, keyMsg("["))
	if m.dash.sel != (dashboard.Selection{Month: 2, Year: 2024}) {
		t.Fatalf("sel = %+v", m.dash.sel)
	}
	if cmd == nil || !m.dash.loading {
		t.Fatal("month change did not start a refresh")
	}

	m, _ = update(t, m, keyMsg("{"))
	if m.dash.sel != (dashboard.Selection{Month: 2, Year: 2023}) {
		t.Fatalf("sel = %+v", m.dash.sel)
	}
}

func TestDashboardMonthChangeHidesOldView(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.dash.sel = dashboard.Selection{Month: 3, Year: 2024}
	m.dash.view = &dashboard.View{TotalEarning: 1000, TotalExpense: 250}

	m, _ = update(t, m, keyMsg("]"))
	if m.dash.view != nil {
		t.Fatalf("March figures still shown for %+v", m.dash.sel)
	}
	if out := m.renderDashboardTab(100); !strings.Contains(out, "Loading dashboard") {
		t.Errorf("expected loading line, got:\n%s", out)
	}
}

func TestDashboardResults(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	sel := dashboard.Selection{Month: 5, Year: 2024}
	m.dash.sel = sel
	m.dash.loading = true

	// A superseded refresh leaves the pending one alone.
	m, _ = update(t, m, dashboardMsg{sel: sel, err: dashboard.ErrSuperseded})
	if !m.dash.loading {
		t.Fatal("superseded result ended loading")
	}

	view := dashboard.View{TotalEarning: 1000, TotalExpense: 250}
	m, _ = update(t, m, dashboardMsg{sel: sel, view: view})
	if m.dash.view == nil || m.dash.view.Remaining() != 750 {
		t.Fatalf("view = %+v", m.dash.view)
	}

	// A failure discards the previous result.
	m, _ = update(t, m, dashboardMsg{sel: sel, err: api.ErrConnect})
	if m.dash.view != nil {
		t.Fatal("stale view kept after error")
	}
	if m.status != "Failed to connect to server" {
		t.Errorf("status = %q", m.status)
	}

	// Results for an older selection are ignored.
	m.dash.sel = dashboard.Selection{Month: 6, Year: 2024}
	m, _ = update(t, m, dashboardMsg{sel: sel, view: view})
	if m.dash.view != nil {
		t.Fatal("result for old selection applied")
	}
}

func testRegistry() *ingest.Registry {
	return ingest.NewRegistry([]model.Category{{ID: 1, Name: "Food"}, {ID: 2, Name: "Rent"}})
}

func TestSubmitKeyInertWhenEmpty(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.activeTab = tabExpenses
	m.exp.registry = testRegistry()

	m, cmd := update(t, m, keyMsg("s"))
	if cmd != nil || m.exp.submitting {
		t.Fatal("submit started with an empty batch")
	}
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportThenSubmitOpensReview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/expense/add_bulk", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"inserted":[{},{}]}`)
	})
	a := newTestApp(t, mux, testUser)
	m := *a
	m.activeTab = tabExpenses
	m.exp.registry = testRegistry()

	path := writeCSV(t, "Category,Amount,Date\nfood,12.50,2024-03-01\nRENT,900,2024-03-02\n")
	m, _ = update(t, m, importCmd(m.exp.batch, m.validator(), path)())
	if m.exp.batch.Len() != 2 {
		t.Fatalf("batch len = %d, want 2", m.exp.batch.Len())
	}

	m, cmd := update(t, m, keyMsg("s"))
	if cmd == nil || !m.exp.submitting {
		t.Fatal("submit did not start")
	}

	m, _ = update(t, m, cmd())
	if m.exp.batch.Len() != 0 {
		t.Errorf("batch len = %d after submit, want 0", m.exp.batch.Len())
	}
	if m.activeTab != tabReview {
		t.Errorf("active tab = %d, want review", m.activeTab)
	}
	if !m.rev.loading {
		t.Error("review not loading after submit")
	}
}

func TestImportRejectsWholeFile(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.exp.registry = testRegistry()

	path := writeCSV(t, "category,amount,date\nFood,10,2024-03-01\nXYZ,5,2024-03-02\n")
	m, _ = update(t, m, importCmd(m.exp.batch, m.validator(), path)())

	if m.exp.batch.Len() != 0 {
		t.Fatalf("batch len = %d, want 0", m.exp.batch.Len())
	}
	if !strings.Contains(m.status, "XYZ") {
		t.Errorf("status = %q, want the bad category named", m.status)
	}
}

func TestSubmitFailureKeepsBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/expense/add_bulk", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":"Invalid expense data"}`)
	})
	a := newTestApp(t, mux, testUser)
	m := *a
	m.activeTab = tabExpenses
	m.exp.registry = testRegistry()
	m.exp.batch.Append(model.ExpenseRow{CategoryID: 1, Category: "food", ExpenseDate: "2024-03-01"})

	m, cmd := update(t, m, keyMsg("s"))
	m, _ = update(t, m, cmd())

	if m.exp.batch.Len() != 1 {
		t.Fatalf("batch len = %d, want 1", m.exp.batch.Len())
	}
	if m.status != "Invalid expense data" {
		t.Errorf("status = %q", m.status)
	}
	if m.activeTab != tabExpenses {
		t.Errorf("moved to tab %d after a failed submit", m.activeTab)
	}
}

func TestSameMonthPolicyUsesSnapshot(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.exp.registry = testRegistry()
	m.deps.Config.Import.SameMonthAsEarning = true

	path := writeCSV(t, "category,amount,date\nFood,10,2024-03-01\n")
	m, _ = update(t, m, importCmd(m.exp.batch, m.validator(), path)())
	if m.exp.batch.Len() != 0 {
		t.Fatal("import accepted without an earning snapshot")
	}

	if err := m.deps.Session.SetEarning(model.Earning{UserID: 7, EarningDate: "2024-03-01"}); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, importCmd(m.exp.batch, m.validator(), path)())
	if m.exp.batch.Len() != 1 {
		t.Fatalf("batch len = %d, want 1", m.exp.batch.Len())
	}
}

func TestThemeToggleRecolors(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	if a.palette.Name != "flexoki-dark" {
		t.Fatalf("palette = %s", a.palette.Name)
	}

	m, _ := update(t, *a, keyMsg("T"))
	m, _ = update(t, m, nextEvent(t, a))

	if m.palette.Name != "flexoki-light" {
		t.Errorf("palette = %s, want flexoki-light", m.palette.Name)
	}
}

func TestReviewWithoutEarning(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	m.rev.loading = true

	err := fmt.Errorf("%w: %w", review.ErrNoEarning, &api.APIError{Status: 404, Message: "No earning found"})
	m, _ = update(t, m, reviewMsg{userID: 7, err: err})
	if !m.rev.noData || m.rev.loading {
		t.Fatalf("rev = %+v, want noData", m.rev)
	}
	if m.status != "" {
		t.Errorf("status = %q, missing earning is not an error banner", m.status)
	}

	m, _ = update(t, m, reviewMsg{userID: 7, err: api.ErrConnect})
	if m.rev.noData || m.status != "Failed to connect to server" {
		t.Errorf("rev = %+v status = %q", m.rev, m.status)
	}
}

func TestViewRenders(t *testing.T) {
	a := newTestApp(t, nil, nil)
	m, _ := update(t, *a, tea.WindowSizeMsg{Width: 120, Height: 40})
	if out := m.View(); !strings.Contains(out, "SmartExpense") {
		t.Error("login view missing title")
	}

	b := newTestApp(t, nil, testUser)
	m, _ = update(t, *b, tea.WindowSizeMsg{Width: 120, Height: 40})
	for _, tab := range []int{tabDashboard, tabExpenses, tabReview, tabProfile, tabSettings} {
		m.activeTab = tab
		if out := m.View(); !strings.Contains(out, "Dashboard") {
			t.Errorf("tab %d view missing tab bar", tab)
		}
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := m.View(); !strings.Contains(out, "too narrow") {
		t.Error("narrow terminal not reported")
	}
}

func TestLateEarningForPreviousUserIgnored(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a

	// Signed out, then a response for the old user arrives.
	if err := a.deps.Session.Logout(); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, nextEvent(t, a))
	m, _ = update(t, m, earningMsg{userID: 7, earning: model.Earning{UserID: 7, EarningDate: "2024-03-01"}})
	if _, ok := a.deps.Session.Earning(); ok {
		t.Fatal("earning stored while signed out")
	}

	other := model.User{ID: 8, Username: "bo"}
	if err := a.deps.Session.Login(other); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, nextEvent(t, a))
	m, _ = update(t, m, earningMsg{userID: 7, earning: model.Earning{UserID: 7, EarningDate: "2024-03-01"}})
	if e, ok := a.deps.Session.Earning(); ok {
		t.Fatalf("user 8 got user 7's earning %+v", e)
	}

	m, _ = update(t, m, earningMsg{userID: 8, earning: model.Earning{UserID: 8, EarningDate: "2024-04-01"}})
	if e, ok := a.deps.Session.Earning(); !ok || e.UserID != 8 {
		t.Fatalf("earning = %+v (ok=%v), want user 8's", e, ok)
	}
}

func TestResultsForPreviousUserIgnored(t *testing.T) {
	a := newTestApp(t, nil, testUser)
	m := *a
	oldBatch := m.exp.batch

	if err := a.deps.Session.Login(model.User{ID: 8, Username: "bo"}); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, nextEvent(t, a))
	if m.exp.batch == oldBatch {
		t.Fatal("batch not replaced for the new user")
	}
	m.activeTab = tabExpenses
	m.exp.submitting = true

	m, cmd := update(t, m, submitDoneMsg{batch: oldBatch, n: 3})
	if cmd != nil || m.activeTab != tabExpenses || !m.exp.submitting {
		t.Fatalf("stale submit result applied: tab=%d submitting=%v", m.activeTab, m.exp.submitting)
	}
	m, _ = update(t, m, importDoneMsg{batch: oldBatch, path: "old.csv", n: 2})
	if strings.Contains(m.status, "old.csv") {
		t.Errorf("stale import reported: %q", m.status)
	}
	m, _ = update(t, m, reviewMsg{userID: 7, err: api.ErrConnect})
	if m.status == "Failed to connect to server" {
		t.Error("stale review result applied")
	}
	m, _ = update(t, m, profileMsg{userID: 7, user: *testUser})
	if m.prof.user != nil {
		t.Errorf("profile of user 7 shown to user 8")
	}
}
