// Package common provides shared utilities for sipfolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for sipfolio
type Config struct {
	Environment string        `toml:"environment"`
	History     HistoryConfig `toml:"history"`
	Funds       FundsConfig   `toml:"funds"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Goal        GoalConfig    `toml:"goal"`
	Output      OutputConfig  `toml:"output"`
	Logging     LoggingConfig `toml:"logging"`
}

// HistoryConfig points at the directory of transaction history CSV exports.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// FundsConfig points at the fund registry file. An empty path selects the
// built-in registry.
type FundsConfig struct {
	Path string `toml:"path"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	File FileConfig `toml:"file"`
}

// FileConfig holds the path for the file-based artifact store.
type FileConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AMFI AMFIConfig `toml:"amfi"`
}

// AMFIConfig holds AMFI NAV source configuration
type AMFIConfig struct {
	BaseURL       string `toml:"base_url"`
	Timeout       string `toml:"timeout"`
	RateLimit     int    `toml:"rate_limit"`
	MaxConcurrent int    `toml:"max_concurrent"`
	LookupTimeout string `toml:"lookup_timeout"`
}

// GetTimeout parses and returns the HTTP timeout duration
func (c *AMFIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetLookupTimeout parses and returns the per-lookup timeout duration
func (c *AMFIConfig) GetLookupTimeout() time.Duration {
	d, err := time.ParseDuration(c.LookupTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetMaxConcurrent returns the lookup worker pool size, at least 1.
func (c *AMFIConfig) GetMaxConcurrent() int {
	if c.MaxConcurrent < 1 {
		return 1
	}
	return c.MaxConcurrent
}

// GoalConfig holds the savings goal used for progress and projection.
// Amounts are in the display currency; zero target disables the goal block.
type GoalConfig struct {
	TargetAmount        float64 `toml:"target_amount"`
	MonthlyContribution float64 `toml:"monthly_contribution"`
	Currency            string  `toml:"currency"`
}

// OutputConfig holds optional output artifact toggles
type OutputConfig struct {
	Chart bool `toml:"chart"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		History: HistoryConfig{
			Path: "data/history",
		},
		Funds: FundsConfig{
			Path: "",
		},
		Storage: StorageConfig{
			File: FileConfig{Path: "data"},
		},
		Clients: ClientsConfig{
			AMFI: AMFIConfig{
				BaseURL:       "https://www.amfiindia.com",
				Timeout:       "30s",
				RateLimit:     2,
				MaxConcurrent: 4,
				LookupTimeout: "30s",
			},
		},
		Goal: GoalConfig{
			Currency: "INR",
		},
		Output: OutputConfig{
			Chart: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file next to the process is honoured before reading the environment.
func LoadConfig(paths ...string) (*Config, error) {
	godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SIPFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("SIPFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("SIPFOLIO_HISTORY_PATH"); path != "" {
		config.History.Path = path
	}

	if path := os.Getenv("SIPFOLIO_FUNDS_PATH"); path != "" {
		config.Funds.Path = path
	}

	if path := os.Getenv("SIPFOLIO_DATA_PATH"); path != "" {
		config.Storage.File.Path = path
	}

	if url := os.Getenv("SIPFOLIO_AMFI_BASE_URL"); url != "" {
		config.Clients.AMFI.BaseURL = url
	}

	if rl := os.Getenv("SIPFOLIO_AMFI_RATE_LIMIT"); rl != "" {
		if n, err := strconv.Atoi(rl); err == nil {
			config.Clients.AMFI.RateLimit = n
		}
	}

	if mc := os.Getenv("SIPFOLIO_AMFI_MAX_CONCURRENT"); mc != "" {
		if n, err := strconv.Atoi(mc); err == nil {
			config.Clients.AMFI.MaxConcurrent = n
		}
	}

	if target := os.Getenv("SIPFOLIO_GOAL_TARGET"); target != "" {
		if f, err := strconv.ParseFloat(target, 64); err == nil {
			config.Goal.TargetAmount = f
		}
	}

	if monthly := os.Getenv("SIPFOLIO_GOAL_MONTHLY"); monthly != "" {
		if f, err := strconv.ParseFloat(monthly, 64); err == nil {
			config.Goal.MonthlyContribution = f
		}
	}

	if chart := os.Getenv("SIPFOLIO_CHART"); chart != "" {
		if b, err := strconv.ParseBool(chart); err == nil {
			config.Output.Chart = b
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
