package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/ingest"
	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/review"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagManual    []string
	flagDryRun    bool
	flagSameMonth bool
)

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Validate expense files and submit them as one batch",
	Long: "Each file is a CSV or Excel sheet with Category, Amount and Date columns.\n" +
		"A file with any invalid row is rejected whole. If any input is rejected\n" +
		"nothing is submitted.",
	Example: "  smartexpense import march.csv\n" +
		"  smartexpense import receipts.xlsx --manual \"2026-03-14,Food,12.50\"",
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringArrayVar(&flagManual, "manual", nil, "Add one expense as \"date,category,amount\" (repeatable)")
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Validate only, do not submit")
	importCmd.Flags().BoolVar(&flagSameMonth, "same-month", false, "Reject expenses outside the latest earning's month (overrides config)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(flagManual) == 0 {
		return errors.New("nothing to import: pass a file or --manual")
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.requireUser()
	if err != nil {
		return err
	}

	progress("Loading categories...")
	reg, err := ingest.LoadRegistry(cmd.Context(), e.client)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}

	sameMonth := e.cfg.Import.SameMonthAsEarning
	if cmd.Flags().Changed("same-month") {
		sameMonth = flagSameMonth
	}
	var opts []ingest.ValidatorOption
	if sameMonth {
		opts = append(opts, ingest.RequireSameMonth(e.earningSnapshot(cmd, u.ID)))
	}
	v := ingest.NewValidator(reg, opts...)

	batch := &ingest.Batch{}
	rejected := 0
	for _, path := range args {
		n, err := batch.ImportFile(v, path)
		if err != nil {
			rejected++
			fmt.Println("  " + cli.RenderError(fmt.Sprintf("%s: %s", path, err)))
			continue
		}
		fmt.Println("  " + cli.RenderOK(fmt.Sprintf("%s: %d rows", path, n)))
	}
	for _, spec := range flagManual {
		entry, err := parseManual(spec)
		if err == nil {
			_, err = batch.AddManual(v, entry)
		}
		if err != nil {
			rejected++
			fmt.Println("  " + cli.RenderError(fmt.Sprintf("--manual %q: %s", spec, err)))
			continue
		}
		fmt.Println("  " + cli.RenderOK(fmt.Sprintf("--manual %q", spec)))
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d inputs rejected, nothing submitted", rejected, len(args)+len(flagManual))
	}
	if batch.Len() == 0 {
		return errors.New("no expense rows found")
	}

	fmt.Println()
	fmt.Print(renderBatch(batch))

	if flagDryRun {
		fmt.Println("  Dry run: nothing submitted.")
		return nil
	}

	progress("Submitting %d expenses...", batch.Len())
	sub := ingest.NewSubmitter(e.client, batch, u.ID, 0, e.log)
	n, err := sub.Submit(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println("  " + cli.RenderOK(fmt.Sprintf("Submitted %d expenses", n)))

	s, err := review.Build(cmd.Context(), e.client, u.ID)
	if errors.Is(err, review.ErrNoEarning) {
		fmt.Println("  Add this month's earning with `smartexpense earning add` to see the review.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading review: %w", err)
	}
	printReview(s)
	return nil
}

// earningSnapshot returns the stored earning, fetching it when the session
// has none. A nil result makes every same-month check fail.
func (e *env) earningSnapshot(cmd *cobra.Command, userID int) *model.Earning {
	if earning, ok := e.session.Earning(); ok {
		return &earning
	}
	earning, err := e.client.LatestEarning(cmd.Context(), userID)
	if err != nil {
		e.log.Debug("no earning for same-month check", zap.Error(err))
		return nil
	}
	if err := e.session.SetEarning(earning); err != nil {
		e.log.Warn("saving earning snapshot", zap.Error(err))
	}
	return &earning
}

// parseManual splits "date,category,amount". The category may itself
// contain commas.
func parseManual(s string) (ingest.ManualEntry, error) {
	first := strings.Index(s, ",")
	last := strings.LastIndex(s, ",")
	if first < 0 || first == last {
		return ingest.ManualEntry{}, errors.New(`expected "date,category,amount"`)
	}
	return ingest.ManualEntry{
		Date:     strings.TrimSpace(s[:first]),
		Category: strings.TrimSpace(s[first+1 : last]),
		Amount:   strings.TrimSpace(s[last+1:]),
	}, nil
}

func renderBatch(b *ingest.Batch) string {
	rows := b.Rows()
	out := make([][]string, 0, len(rows))
	for i, r := range rows {
		out = append(out, []string{
			fmt.Sprintf("%d", i+1),
			r.ExpenseDate,
			r.Category,
			cli.FormatAmount(r.Amount),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:      "Pending Expenses",
		Headers:    []string{"#", "Date", "Category", "Amount"},
		Rows:       out,
		Footer:     []string{"", "", "Total", cli.FormatAmount(b.Total())},
		RightAlign: []int{1, 4},
	})
}
