package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/ingest"
	"github.com/smartexpense/smartexpense/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagEarningAmount string
	flagEarningDate   string
)

var earningCmd = &cobra.Command{
	Use:   "earning",
	Short: "Record or show the monthly earning",
}

var earningAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record the earning for a month (replaces that month's record)",
	RunE:  runEarningAdd,
}

var earningLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent earning",
	RunE:  runEarningLatest,
}

func init() {
	earningAddCmd.Flags().StringVar(&flagEarningAmount, "amount", "", "Earning amount (required)")
	earningAddCmd.Flags().StringVar(&flagEarningDate, "date", "", "Earning date, defaults to today")
	_ = earningAddCmd.MarkFlagRequired("amount")

	earningCmd.AddCommand(earningAddCmd, earningLatestCmd)
	rootCmd.AddCommand(earningCmd)
}

func runEarningAdd(cmd *cobra.Command, _ []string) error {
	amount, err := decimal.NewFromString(flagEarningAmount)
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("amount %q: must be a number greater than 0", flagEarningAmount)
	}

	day := time.Now()
	if flagEarningDate != "" {
		if day, err = ingest.ParseDate(flagEarningDate); err != nil {
			return fmt.Errorf("date %q: %w", flagEarningDate, err)
		}
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

	saved, err := e.client.AddEarning(cmd.Context(), model.Earning{
		UserID:      u.ID,
		Amount:      amount,
		EarningDate: day.Format(model.DateLayout),
	})
	if err != nil {
		return err
	}
	if err := e.session.SetEarning(saved); err != nil {
		e.log.Warn("saving earning snapshot", zap.Error(err))
	}

	fmt.Println("  " + cli.RenderOK(fmt.Sprintf("Earning of %s recorded for %s",
		cli.FormatAmount(saved.Amount), day.Format("January 2006"))))
	return nil
}

func runEarningLatest(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.requireUser()
	if err != nil {
		return err
	}

	earning, err := e.client.LatestEarning(cmd.Context(), u.ID)
	if err != nil {
		var apiErr *api.APIError
		cached, ok := e.session.Earning()
		if !ok || errors.As(err, &apiErr) {
			return err
		}
		progress("Showing stored earning: %s", api.UserMessage(err))
		earning = cached
	} else if err := e.session.SetEarning(earning); err != nil {
		e.log.Warn("saving earning snapshot", zap.Error(err))
	}

	month := earning.EarningDate
	if d, ok := earning.Date(); ok {
		month = d.Format("January 2006")
	}
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Amount", cli.FormatAmount(earning.Amount)},
		{"Date", earning.EarningDate},
		{"Month", month},
	}))
	fmt.Println()
	return nil
}
