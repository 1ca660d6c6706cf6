// Package config loads budget-forecast settings from a TOML file, then
// applies environment overrides. Command-line flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds all budget-forecast configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Forecast ForecastConfig `toml:"forecast"`
	Monitor  MonitorConfig  `toml:"monitor"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// StoreConfig holds persistence settings. ":memory:" keeps nothing on disk.
type StoreConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logrus settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "text"
}

// ForecastConfig holds defaults for forecast requests.
type ForecastConfig struct {
	HorizonMonths int `toml:"horizon_months"`
}

// MonitorConfig holds shortfall monitor settings.
type MonitorConfig struct {
	Enabled       bool   `toml:"enabled"`
	Schedule      string `toml:"schedule"`
	HorizonMonths int    `toml:"horizon_months"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Store: StoreConfig{
			DBPath: "budget.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Forecast: ForecastConfig{
			HorizonMonths: 12,
		},
		Monitor: MonitorConfig{
			Enabled:       true,
			Schedule:      "@hourly",
			HorizonMonths: 6,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budget-forecast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budget-forecast")
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path (ConfigPath when empty), returning
// defaults if it doesn't exist, and applies environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Save writes the config to path (ConfigPath when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log.format %q (use json or text)", c.Log.Format)
	}
	if c.Forecast.HorizonMonths <= 0 {
		return fmt.Errorf("forecast.horizon_months must be positive")
	}
	if c.Monitor.Enabled && c.Monitor.HorizonMonths <= 0 {
		return fmt.Errorf("monitor.horizon_months must be positive")
	}
	return nil
}

// NewLogger builds the process logger.
func (c LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if strings.EqualFold(c.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) error {
	cfg.Store.DBPath = getEnv("BUDGET_FORECAST_DB", cfg.Store.DBPath)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Monitor.Schedule = getEnv("BUDGET_FORECAST_MONITOR_SCHEDULE", cfg.Monitor.Schedule)

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
