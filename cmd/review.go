package cmd

import (
	"fmt"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/review"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Compare the latest earning with that month's expenses",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.requireUser()
	if err != nil {
		return err
	}

	progress("Loading review...")
	s, err := review.Build(cmd.Context(), e.client, u.ID)
	if err != nil {
		return err
	}
	printReview(s)
	return nil
}

func printReview(s review.Summary) {
	month := s.Month.Format("January 2006")

	fmt.Println()
	fmt.Println(cli.RenderTitle("REVIEW  " + month))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Earning", cli.FormatAmount(s.Earning.Amount)},
		{"Expenses", fmt.Sprintf("%s (%d)", cli.FormatAmount(s.Total), s.Count())},
		{"Remaining", cli.FormatRemaining(s.Remaining)},
	}))
	fmt.Println()

	if s.Count() == 0 {
		fmt.Println("  No expenses recorded in " + month + ".")
		return
	}

	rows := make([][]string, 0, s.Count())
	for _, x := range s.Expenses {
		date := x.ExpenseDate
		if d, ok := x.Date(); ok {
			date = d.Format("2006-01-02")
		}
		rows = append(rows, []string{date, x.CategoryName, cli.FormatAmount(x.Amount)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:      "Expenses in " + month,
		Headers:    []string{"Date", "Category", "Amount"},
		Rows:       rows,
		Footer:     []string{"", "Total", cli.FormatAmount(s.Total)},
		RightAlign: []int{3},
	}))
}
