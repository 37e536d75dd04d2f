// Package cmd implements the smartexpense CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/config"
	"github.com/smartexpense/smartexpense/internal/logging"
	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/state"
	"github.com/smartexpense/smartexpense/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagAPIURL   string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "smartexpense",
	Short: "SmartExpense terminal client",
	Long: "Import expenses from CSV and Excel files, review them against your earning,\n" +
		"and explore the monthly dashboard. Run without a command for the interactive UI.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "  "+cli.RenderError(api.UserMessage(err)))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides config and SMARTEXPENSE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

var errNotLoggedIn = errors.New("not logged in, run `smartexpense login` first")

// env is the wiring every command shares: config, logger, the local store
// and the session state restored from it, and the API client.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	store   *store.Store
	client  *api.Client
	session *state.Session
	theme   *state.Theme
}

// openEnv loads configuration (.env, file, environment, flags in rising
// precedence) and opens the services. Callers must Close it.
func openEnv() (*env, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	log := logging.NewOrNop(cfg.Log.Level, cfg.LogPath())

	st, err := store.Open(config.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.Timeout(),
		Logger:  log,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &env{
		cfg:     cfg,
		log:     log,
		store:   st,
		client:  client,
		session: state.NewSession(st),
		theme:   state.NewTheme(st, cfg.Appearance.Dark),
	}, nil
}

// Close flushes the logger and closes the store.
func (e *env) Close() {
	_ = e.log.Sync()
	_ = e.store.Close()
}

// requireUser returns the session user or errNotLoggedIn.
func (e *env) requireUser() (model.User, error) {
	u, ok := e.session.User()
	if !ok {
		return model.User{}, errNotLoggedIn
	}
	return u, nil
}

// progress writes a status line to stderr unless --quiet is set.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
