package cmd

import (
	"fmt"
	"time"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/dashboard"

	"github.com/spf13/cobra"
)

var (
	flagMonth int
	flagYear  int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Monthly totals, category breakdown and trends",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().IntVarP(&flagMonth, "month", "m", 0, "Month 1-12 (default current)")
	dashboardCmd.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default current)")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	sel := dashboard.SelectionOf(time.Now())
	if flagMonth != 0 {
		if flagMonth < 1 || flagMonth > 12 {
			return fmt.Errorf("month %d: must be 1-12", flagMonth)
		}
		sel.Month = flagMonth
	}
	if flagYear != 0 {
		sel.Year = flagYear
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

	progress("Loading dashboard for %s...", cli.FormatMonth(sel.Month, sel.Year))
	v, err := dashboard.Load(cmd.Context(), e.client, u.ID, sel)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("DASHBOARD  " + cli.FormatMonth(sel.Month, sel.Year)))
	fmt.Println()

	spent := "-"
	if v.TotalEarning > 0 {
		spent = cli.FormatPercent(v.TotalExpense / v.TotalEarning)
	}
	fmt.Print(cli.RenderKV([][2]string{
		{"Earning", cli.FormatMoney(v.TotalEarning)},
		{"Expenses", cli.FormatMoney(v.TotalExpense)},
		{"Remaining", cli.FormatMoney(v.Remaining())},
		{"Spent", spent},
	}))
	fmt.Println()

	if v.Empty() {
		fmt.Println("  Nothing recorded for this month.")
		return nil
	}

	printCategoryBars(v)
	printTrends(v)
	printCumulative(v)
	return nil
}

func printCategoryBars(v dashboard.View) {
	if len(v.CategoryBars) == 0 {
		return
	}
	peak, labelW := 0.0, 8
	for _, p := range v.CategoryBars {
		peak = max(peak, p.Value)
		labelW = max(labelW, len(p.Label))
	}
	fmt.Println("  Expenses by Category")
	for _, p := range v.CategoryBars {
		fmt.Println(cli.RenderHorizontalBar(p.Label, p.Value, peak, labelW, 40))
	}
	fmt.Println()

	rows := make([][]string, 0, len(v.CategoryPie))
	for _, s := range v.CategoryPie {
		rows = append(rows, []string{s.Label, cli.FormatMoney(s.Value), cli.FormatPercent(s.Share)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:      "Share of Spend",
		Headers:    []string{"Category", "Amount", "Share"},
		Rows:       rows,
		RightAlign: []int{2, 3},
	}))
	fmt.Println()
}

func printTrends(v dashboard.View) {
	line := func(name string, pts []dashboard.Point) {
		if len(pts) == 0 {
			fmt.Printf("  %-8s no entries\n", name)
			return
		}
		vals := make([]float64, len(pts))
		total := 0.0
		for i, p := range pts {
			vals[i] = p.Value
			total += p.Value
		}
		fmt.Printf("  %-8s %s  %s → %s  total %s\n", name, cli.RenderSparkline(vals),
			pts[0].Label, pts[len(pts)-1].Label, cli.FormatCompact(total))
	}
	fmt.Println("  Trends")
	line("Expense", v.ExpenseTrend)
	line("Earning", v.EarningTrend)
	fmt.Println()
}

func printCumulative(v dashboard.View) {
	if len(v.Cumulative) == 0 {
		return
	}
	rows := make([][]string, 0, len(v.Cumulative))
	for _, m := range v.Cumulative {
		label := m.Label
		if label == "" {
			label = "start"
		}
		rows = append(rows, []string{label, cli.FormatMoney(m.Earning), cli.FormatMoney(m.Expense)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:      "Cumulative Earning vs Expense",
		Headers:    []string{"Month", "Earning", "Expense"},
		Rows:       rows,
		RightAlign: []int{2, 3},
	}))
}
