package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the remote REST collaborator.
type APIConfig struct {
	// BaseURL is the root URL of the API (e.g. http://localhost:5000/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is the number of retries on HTTP 429.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// StorageConfig holds settings for the local durable store.
type StorageConfig struct {
	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// SaveDebounceMs coalesces snapshot writes arriving within this
	// window into a single write.
	SaveDebounceMs int `mapstructure:"save_debounce_ms" yaml:"save_debounce_ms"`
}

// SyncConfig holds settings for queue replay and background refresh.
type SyncConfig struct {
	// StatsIntervalSec is how often the daily metrics are re-fetched.
	StatsIntervalSec int `mapstructure:"stats_interval_sec" yaml:"stats_interval_sec"`

	// ReplayMaxAttempts caps how many drain passes may retry a queued
	// mutation before it is abandoned and surfaced as a terminal failure.
	ReplayMaxAttempts int `mapstructure:"replay_max_attempts" yaml:"replay_max_attempts"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/zenfocus/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "zenfocus", "config.yaml")
}

// DefaultDBPath returns the default SQLite database location,
// ~/.local/share/zenfocus/zenfocus.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "zenfocus.db")
	}
	return filepath.Join(home, ".local", "share", "zenfocus", "zenfocus.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:5000/api",
			TimeoutSec: 30,
			MaxRetries: 3,
		},
		Storage: StorageConfig{
			DBPath:         DefaultDBPath(),
			SaveDebounceMs: 1000,
		},
		Sync: SyncConfig{
			StatsIntervalSec:  30,
			ReplayMaxAttempts: 5,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("storage.db_path", DefaultDBPath())
	v.SetDefault("storage.save_debounce_ms", 1000)
	v.SetDefault("sync.stats_interval_sec", 30)
	v.SetDefault("sync.replay_max_attempts", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("storage", cfg.Storage)
	v.Set("sync", cfg.Sync)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
