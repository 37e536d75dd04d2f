package cmd

import (
	"fmt"

	"github.com/smartexpense/smartexpense/internal/cli"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the stored color mode",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dark", "light", "toggle"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(_ *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if len(args) == 1 {
		switch args[0] {
		case "dark":
			err = e.theme.Set(true)
		case "light":
			err = e.theme.Set(false)
		case "toggle":
			_, err = e.theme.Toggle()
		}
		if err != nil {
			return err
		}
	}

	mode, name := "light", e.cfg.Appearance.LightTheme
	if e.theme.Dark() {
		mode, name = "dark", e.cfg.Appearance.DarkTheme
	}
	msg := fmt.Sprintf("Color mode: %s (%s)", mode, name)
	if len(args) == 1 {
		msg = cli.RenderOK(msg)
	}
	fmt.Println("  " + msg)
	return nil
}
