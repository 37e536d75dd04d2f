package cmd

import (
	"fmt"
	"strconv"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/ingest"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the expense categories the importer accepts",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	progress("Loading categories from %s...", e.client.BaseURL())
	reg, err := ingest.LoadRegistry(cmd.Context(), e.client)
	if err != nil {
		return err
	}

	names := reg.Names()
	rows := make([][]string, 0, len(names))
	for i, name := range names {
		rows = append(rows, []string{strconv.Itoa(i + 1), name})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:      fmt.Sprintf("Categories (%d)", reg.Len()),
		Headers:    []string{"ID", "Name"},
		Rows:       rows,
		RightAlign: []int{1},
	}))
	fmt.Println("  Category names match case-insensitively.")
	return nil
}
