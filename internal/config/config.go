// Package config loads and saves the smartexpense TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is the hosted SmartExpense API.
const DefaultAPIURL = "https://smartexpense-28.onrender.com"

// Config holds all smartexpense configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Import     ImportConfig     `toml:"import"`
	Dashboard  DashboardConfig  `toml:"dashboard"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ImportConfig controls expense import validation and submission.
type ImportConfig struct {
	// SameMonthAsEarning rejects rows dated outside the month of the latest earning.
	SameMonthAsEarning bool `toml:"same_month_as_earning"`
	ReviewDelayMs      int  `toml:"review_delay_ms"`
}

// DashboardConfig holds dashboard refresh settings.
type DashboardConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	DarkTheme  string `toml:"dark_theme"`
	LightTheme string `toml:"light_theme"`
	Dark       bool   `toml:"dark"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    DefaultAPIURL,
			TimeoutSec: 15,
		},
		Import: ImportConfig{
			ReviewDelayMs: 2000,
		},
		Dashboard: DashboardConfig{
			DebounceMs: 300,
		},
		Appearance: AppearanceConfig{
			DarkTheme:  "flexoki-dark",
			LightTheme: "flexoki-light",
			Dark:       true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "smartexpense")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "smartexpense")
}

// StateDir returns the XDG state directory used for the local store and logs.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "smartexpense")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "smartexpense")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// StorePath returns the path of the local SQLite store.
func StorePath() string {
	return filepath.Join(StateDir(), "storage.db")
}

// LogPath returns the configured log file, or the default under StateDir.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(StateDir(), "smartexpense.log")
}

// Timeout returns the per-request API timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// ReviewDelay returns the pause between a successful submission and the review step.
func (c Config) ReviewDelay() time.Duration {
	if c.Import.ReviewDelayMs < 0 {
		return 0
	}
	return time.Duration(c.Import.ReviewDelayMs) * time.Millisecond
}

// Debounce returns the dashboard selector debounce.
func (c Config) Debounce() time.Duration {
	if c.Dashboard.DebounceMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Dashboard.DebounceMs) * time.Millisecond
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path. A missing file yields defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config location
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment are left alone.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SMARTEXPENSE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SMARTEXPENSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
