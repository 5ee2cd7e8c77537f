package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the plangate configuration
type Config struct {
	// Enabled gates the whole hook suite. When false every hook allows
	// unconditionally. Also settable via PLANGATE_ENABLED=true.
	Enabled bool `mapstructure:"enabled"`

	// MaxStopAttempts is the loop-prevention ceiling: after this many
	// consecutive blocked stops, the next attempt is allowed anyway.
	MaxStopAttempts int `mapstructure:"max_stop_attempts"`

	// MatchThreshold is the minimum fuzzy-match score for a reported todo
	// to complete an existing plan item.
	MatchThreshold float64 `mapstructure:"match_threshold"`

	// AutoValidate runs the validation commands when a plan completes.
	AutoValidate bool `mapstructure:"auto_validate"`

	// ValidationCommands are run on plan completion when AutoValidate is set.
	ValidationCommands []ValidationCommand `mapstructure:"validation_commands"`

	ArchiveKeep      int `mapstructure:"archive_keep"`
	HistoryKeep      int `mapstructure:"history_keep"`
	StaleSessionDays int `mapstructure:"stale_session_days"`
}

// ValidationCommand is one external check run against the project.
type ValidationCommand struct {
	Name     string `mapstructure:"name"`
	Command  string `mapstructure:"command"`
	Timeout  int    `mapstructure:"timeout"` // seconds
	Required bool   `mapstructure:"required"`
}

// DataDir returns the root directory for all persisted state. It honors
// PLANGATE_DIR, otherwise uses .plangate under the working directory.
func DataDir() string {
	if dir := os.Getenv("PLANGATE_DIR"); dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ".plangate"
	}
	return filepath.Join(cwd, ".plangate")
}

// Load reads config.yaml from the data directory. A missing file yields
// the defaults; only a present-but-unreadable file is an error.
func Load(dataDir string) (*Config, error) {
	configPath := filepath.Join(dataDir, "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnv(cfg)
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Enabled:          false,
		MaxStopAttempts:  5,
		MatchThreshold:   0.3,
		AutoValidate:     false,
		ArchiveKeep:      50,
		HistoryKeep:      100,
		StaleSessionDays: 7,
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.MaxStopAttempts == 0 {
		cfg.MaxStopAttempts = defaults.MaxStopAttempts
	}
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = defaults.MatchThreshold
	}
	if cfg.ArchiveKeep == 0 {
		cfg.ArchiveKeep = defaults.ArchiveKeep
	}
	if cfg.HistoryKeep == 0 {
		cfg.HistoryKeep = defaults.HistoryKeep
	}
	if cfg.StaleSessionDays == 0 {
		cfg.StaleSessionDays = defaults.StaleSessionDays
	}
}

func applyEnv(cfg *Config) {
	if strings.EqualFold(os.Getenv("PLANGATE_ENABLED"), "true") {
		cfg.Enabled = true
	}
}
