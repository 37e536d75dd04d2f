package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/ingest"
	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/tui/components"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type expMode int

const (
	expModeList expMode = iota
	expModePath
	expModeManual
)

type expensesState struct {
	registry        *ingest.Registry
	registryErr     error
	loadingRegistry bool

	batch     *ingest.Batch
	submitter *ingest.Submitter
	cursor    int
	offset    int

	mode      expMode
	pathIn    textinput.Model
	form      *huh.Form
	entry     *ingest.ManualEntry
	formErr   string
	importing bool

	submitting bool
}

type registryMsg struct {
	reg *ingest.Registry
	err error
}

// importDoneMsg and submitDoneMsg carry the batch they ran against; a
// result for a batch the app no longer holds is dropped.
type importDoneMsg struct {
	batch *ingest.Batch
	path  string
	n    int
	err  error
}

type submitDoneMsg struct {
	batch *ingest.Batch
	n     int
	err   error
}

func newExpensesState() expensesState {
	ti := textinput.New()
	ti.Placeholder = "~/Downloads/expenses.xlsx"
	ti.CharLimit = 512
	ti.Width = 50
	ti.Prompt = "File: "

	return expensesState{
		batch:  &ingest.Batch{},
		pathIn: ti,
		entry:  &ingest.ManualEntry{},
	}
}

func (a *App) loadRegistry() tea.Cmd {
	if a.exp.registry != nil || a.exp.loadingRegistry {
		return nil
	}
	a.exp.loadingRegistry = true
	a.exp.registryErr = nil
	client := a.deps.Client
	return func() tea.Msg {
		reg, err := ingest.LoadRegistry(context.Background(), client)
		return registryMsg{reg: reg, err: err}
	}
}

func (a App) handleRegistry(msg registryMsg) (tea.Model, tea.Cmd) {
	a.exp.loadingRegistry = false
	if msg.err != nil {
		a.exp.registryErr = msg.err
		a.setError(msg.err)
		return a, nil
	}
	a.exp.registry = msg.reg
	return a, nil
}

// validator builds a Validator for the current registry and policy.
func (a App) validator() *ingest.Validator {
	var opts []ingest.ValidatorOption
	if a.deps.Config.Import.SameMonthAsEarning {
		var snap *model.Earning
		if e, ok := a.deps.Session.Earning(); ok {
			snap = &e
		}
		opts = append(opts, ingest.RequireSameMonth(snap))
	}
	return ingest.NewValidator(a.exp.registry, opts...)
}

func importCmd(batch *ingest.Batch, v *ingest.Validator, path string) tea.Cmd {
	return func() tea.Msg {
		n, err := batch.ImportFile(v, path)
		return importDoneMsg{batch: batch, path: path, n: n, err: err}
	}
}

func submitCmd(s *ingest.Submitter, batch *ingest.Batch) tea.Cmd {
	return func() tea.Msg {
		n, err := s.Submit(context.Background())
		return submitDoneMsg{batch: batch, n: n, err: err}
	}
}

func (a App) expensesContext() string {
	n := a.exp.batch.Len()
	if n == 0 {
		return "Pending batch is empty"
	}
	return fmt.Sprintf("%d pending · %s", n, cli.FormatAmount(a.exp.batch.Total()))
}

func (a App) updateExpensesKey(key string) (tea.Model, tea.Cmd, bool) {
	ready := a.exp.registry != nil && !a.exp.importing && !a.exp.submitting

	switch key {
	case "R":
		if a.exp.registry == nil && !a.exp.loadingRegistry {
			cmd := a.loadRegistry()
			return a, cmd, true
		}
		return a, nil, true

	case "i":
		if !ready {
			return a, nil, true
		}
		a.exp.mode = expModePath
		a.exp.pathIn.SetValue("")
		cmd := a.exp.pathIn.Focus()
		return a, cmd, true

	case "a":
		if !ready {
			return a, nil, true
		}
		a.openManualForm()
		return a, a.exp.form.Init(), true

	case "j", "down":
		if a.exp.cursor < a.exp.batch.Len()-1 {
			a.exp.cursor++
		}
		return a, nil, true

	case "k", "up":
		if a.exp.cursor > 0 {
			a.exp.cursor--
		}
		return a, nil, true

	case "D", "delete":
		if a.exp.submitting {
			return a, nil, true
		}
		if a.exp.batch.Remove(a.exp.cursor) {
			a.exp.cursor = min(a.exp.cursor, max(a.exp.batch.Len()-1, 0))
			a.setStatus(components.StatusInfo, "Removed row")
		}
		return a, nil, true

	case "s":
		// Submitting an empty batch does nothing.
		if a.exp.submitting || a.exp.batch.Len() == 0 || a.exp.submitter == nil {
			return a, nil, true
		}
		a.exp.submitting = true
		a.clearStatus()
		return a, submitCmd(a.exp.submitter, a.exp.batch), true
	}
	return a, nil, false
}

func (a *App) openManualForm() {
	if a.exp.entry.Date == "" {
		a.exp.entry.Date = time.Now().Format(model.DateLayout)
	}
	a.exp.form = newManualForm(a.exp.entry, a.exp.registry.Names())
	a.exp.mode = expModeManual
	a.resizeForms()
}

func newManualForm(entry *ingest.ManualEntry, categories []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD").
				Value(&entry.Date),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(categories...)...).
				Value(&entry.Category),
			huh.NewInput().
				Title("Amount").
				Value(&entry.Amount),
		).Title("Add expense"),
	).WithShowHelp(true)
}

// updateExpensesInput drives the path input and the manual-entry form.
func (a App) updateExpensesInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.exp.mode {
	case expModePath:
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "esc":
				a.exp.mode = expModeList
				a.exp.pathIn.Blur()
				return a, nil
			case "enter":
				path := expandHome(strings.TrimSpace(a.exp.pathIn.Value()))
				a.exp.mode = expModeList
				a.exp.pathIn.Blur()
				if path == "" {
					return a, nil
				}
				a.exp.importing = true
				a.clearStatus()
				return a, importCmd(a.exp.batch, a.validator(), path)
			}
		}
		var cmd tea.Cmd
		a.exp.pathIn, cmd = a.exp.pathIn.Update(msg)
		return a, cmd

	case expModeManual:
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			a.exp.formErr = ""
			a.exp.form = nil
			a.exp.mode = expModeList
			return a, nil
		}
		form, cmd := a.exp.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			a.exp.form = f
		}

		switch a.exp.form.State {
		case huh.StateCompleted:
			cleared, err := a.exp.batch.AddManual(a.validator(), *a.exp.entry)
			if err != nil {
				// Keep what was typed so it can be corrected.
				a.exp.formErr = err.Error()
				a.exp.form = newManualForm(a.exp.entry, a.exp.registry.Names())
				a.resizeForms()
				return a, a.exp.form.Init()
			}
			*a.exp.entry = cleared
			a.exp.formErr = ""
			a.exp.form = nil
			a.exp.mode = expModeList
			a.exp.cursor = a.exp.batch.Len() - 1
			a.setStatus(components.StatusOK, "Added expense")
			return a, nil

		case huh.StateAborted:
			a.exp.formErr = ""
			a.exp.form = nil
			a.exp.mode = expModeList
			return a, nil
		}
		return a, cmd
	}
	return a, nil
}

func (a App) handleImportDone(msg importDoneMsg) (tea.Model, tea.Cmd) {
	if msg.batch != a.exp.batch {
		return a, nil
	}
	a.exp.importing = false
	if msg.err != nil {
		a.setStatus(components.StatusError, "%s", msg.err.Error())
		return a, nil
	}
	a.setStatus(components.StatusOK, "Imported %d rows from %s", msg.n, msg.path)
	return a, nil
}

func (a App) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if msg.batch != a.exp.batch {
		return a, nil
	}
	a.exp.submitting = false
	if msg.err != nil {
		if errors.Is(msg.err, ingest.ErrEmptyBatch) {
			return a, nil
		}
		a.setError(msg.err)
		return a, nil
	}
	a.exp.cursor = 0
	a.exp.offset = 0
	a.setStatus(components.StatusOK, "Submitted %d expenses", msg.n)
	cmd := a.switchTab(tabReview)
	return a, cmd
}

func (a App) renderExpensesTab(cw int) string {
	t := a.palette
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	errStyle := lipgloss.NewStyle().Foreground(t.Red)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Bold(true)

	switch {
	case a.exp.loadingRegistry:
		return "\n  " + a.spinner.View() + dimStyle.Render(" Loading categories...")
	case a.exp.registry == nil:
		msg := "Categories are not loaded."
		if a.exp.registryErr != nil {
			msg = "Could not load categories: " + a.exp.registryErr.Error()
		}
		return "\n  " + errStyle.Render(msg) + "\n\n  " +
			dimStyle.Render("Expenses cannot be validated without them. Press ") +
			keyStyle.Render("R") + dimStyle.Render(" to retry.")
	}

	var b strings.Builder

	switch a.exp.mode {
	case expModePath:
		body := a.exp.pathIn.View() + "\n" +
			dimStyle.Render("CSV, XLS or XLSX with category, amount and date columns. Enter to import, Esc to cancel.")
		b.WriteString(components.ContentCard(t, "Import File", body, cw))
		b.WriteString("\n")
	case expModeManual:
		body := ""
		if a.exp.formErr != "" {
			body = errStyle.Render(a.exp.formErr) + "\n\n"
		}
		body += a.exp.form.View()
		b.WriteString(components.ContentCard(t, "", body, cw))
		b.WriteString("\n")
	}

	b.WriteString(a.renderBatchCard(cw))
	b.WriteString("\n")

	hints := []string{"[i]mport", "[a]dd", "[D]elete"}
	if a.exp.batch.Len() > 0 && !a.exp.submitting {
		hints = append(hints, "[s]ubmit")
	}
	b.WriteString(dimStyle.Render("  " + strings.Join(hints, "  ")))

	return b.String()
}

func (a App) renderBatchCard(cw int) string {
	t := a.palette
	rows := a.exp.batch.Rows()
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	title := fmt.Sprintf("Pending Expenses [%d]", len(rows))
	if len(rows) == 0 {
		return components.ContentCard(t, title,
			dimStyle.Render("Import a file or add an expense to start a batch."), cw)
	}

	catW := max(innerW-12-16-4, 10)
	line := func(date, cat, amount string) string {
		return fmt.Sprintf("%-12s%-*s%16s", date, catW, truncStr(cat, catW), amount)
	}

	// Keep the cursor visible in a window of rows.
	visible := max(a.height-16, 5)
	offset := a.exp.offset
	if a.exp.cursor < offset {
		offset = a.exp.cursor
	}
	if a.exp.cursor >= offset+visible {
		offset = a.exp.cursor - visible + 1
	}
	end := min(offset+visible, len(rows))

	var body strings.Builder
	body.WriteString(headerStyle.Render(line("Date", "Category", "Amount")))
	for i := offset; i < end; i++ {
		r := rows[i]
		text := line(r.ExpenseDate, r.Category, cli.FormatAmount(r.Amount))
		body.WriteString("\n")
		if i == a.exp.cursor {
			body.WriteString(selStyle.Render(fmt.Sprintf("%-*s", innerW, text)))
		} else {
			body.WriteString(rowStyle.Render(text))
		}
	}
	body.WriteString("\n")
	body.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(line("", "Total", cli.FormatAmount(a.exp.batch.Total()))))

	return components.ContentCard(t, title, body.String(), cw)
}

// expandHome resolves a leading ~ in a typed path.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
