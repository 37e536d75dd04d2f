package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/config"
	"github.com/smartexpense/smartexpense/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to SmartExpense!")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Where the SmartExpense API is served.").
				Value(&cfg.API.BaseURL).
				Validate(validateBaseURL),
			huh.NewConfirm().
				Title("Only accept expenses in the month of your latest earning?").
				Value(&cfg.Import.SameMonthAsEarning),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Start in dark mode?").
				Affirmative("Dark").
				Negative("Light").
				Value(&cfg.Appearance.Dark),
			huh.NewSelect[string]().
				Title("Dark theme").
				Options(huh.NewOptions(theme.Names(theme.Dark)...)...).
				Value(&cfg.Appearance.DarkTheme),
			huh.NewSelect[string]().
				Title("Light theme").
				Options(huh.NewOptions(theme.Names(theme.Light)...)...).
				Value(&cfg.Appearance.LightTheme),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Println("  " + cli.RenderOK("Saved to "+config.Path()))
	fmt.Println("  Run `smartexpense login` or `smartexpense signup` next.")
	fmt.Println()
	return nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL")
	}
	return nil
}
