package cmd

import (
	"fmt"
	"strconv"

	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Local store: %s\n", config.StorePath())
	fmt.Println()

	section := func(name string, pairs [][2]string) {
		fmt.Printf("  [%s]\n", name)
		fmt.Print(cli.RenderKV(pairs))
		fmt.Println()
	}

	section("API", [][2]string{
		{"Base URL", cfg.API.BaseURL},
		{"Timeout", cfg.Timeout().String()},
	})
	section("Import", [][2]string{
		{"Same month as earning", strconv.FormatBool(cfg.Import.SameMonthAsEarning)},
		{"Review delay", cfg.ReviewDelay().String()},
	})
	section("Dashboard", [][2]string{
		{"Debounce", cfg.Debounce().String()},
	})
	section("Appearance", [][2]string{
		{"Dark mode", strconv.FormatBool(cfg.Appearance.Dark)},
		{"Dark theme", cfg.Appearance.DarkTheme},
		{"Light theme", cfg.Appearance.LightTheme},
	})
	section("Log", [][2]string{
		{"Level", cfg.Log.Level},
		{"File", cfg.LogPath()},
	})

	fmt.Println("  Run `smartexpense setup` to reconfigure.")
	return nil
}
