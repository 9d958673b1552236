package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultHistoryPath(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.History.Path != "data/history" {
		t.Errorf("History.Path default = %q, want %q", cfg.History.Path, "data/history")
	}
}

func TestConfig_DefaultAMFI(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Clients.AMFI.BaseURL != "https://www.amfiindia.com" {
		t.Errorf("AMFI.BaseURL default = %q", cfg.Clients.AMFI.BaseURL)
	}
	if cfg.Clients.AMFI.RateLimit != 2 {
		t.Errorf("AMFI.RateLimit default = %d, want 2", cfg.Clients.AMFI.RateLimit)
	}
	if cfg.Clients.AMFI.GetMaxConcurrent() != 4 {
		t.Errorf("AMFI.GetMaxConcurrent() = %d, want 4", cfg.Clients.AMFI.GetMaxConcurrent())
	}
}

func TestAMFIConfig_GetTimeout_InvalidFallsBack(t *testing.T) {
	cfg := &AMFIConfig{Timeout: "not-a-duration"}
	if d := cfg.GetTimeout(); d != 30*time.Second {
		t.Errorf("GetTimeout() = %v, want 30s (fallback for invalid)", d)
	}
}

func TestAMFIConfig_GetLookupTimeout_Configured(t *testing.T) {
	cfg := &AMFIConfig{LookupTimeout: "5s"}
	if d := cfg.GetLookupTimeout(); d != 5*time.Second {
		t.Errorf("GetLookupTimeout() = %v, want 5s", d)
	}
}

func TestAMFIConfig_GetMaxConcurrent_ZeroFallsBack(t *testing.T) {
	cfg := &AMFIConfig{}
	if n := cfg.GetMaxConcurrent(); n != 1 {
		t.Errorf("GetMaxConcurrent() = %d, want 1 (floor for zero)", n)
	}
}

func TestConfig_LogLevelEnvOverride(t *testing.T) {
	t.Setenv("SIPFOLIO_LOG_LEVEL", "debug")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q after env override, want %q", cfg.Logging.Level, "debug")
	}
}

func TestConfig_PathEnvOverrides(t *testing.T) {
	t.Setenv("SIPFOLIO_HISTORY_PATH", "/srv/history")
	t.Setenv("SIPFOLIO_FUNDS_PATH", "/srv/funds.toml")
	t.Setenv("SIPFOLIO_DATA_PATH", "/srv/data")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.History.Path != "/srv/history" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/srv/history")
	}
	if cfg.Funds.Path != "/srv/funds.toml" {
		t.Errorf("Funds.Path = %q, want %q", cfg.Funds.Path, "/srv/funds.toml")
	}
	if cfg.Storage.File.Path != "/srv/data" {
		t.Errorf("Storage.File.Path = %q, want %q", cfg.Storage.File.Path, "/srv/data")
	}
}

func TestConfig_GoalEnvOverrides(t *testing.T) {
	t.Setenv("SIPFOLIO_GOAL_TARGET", "2500000")
	t.Setenv("SIPFOLIO_GOAL_MONTHLY", "40000")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Goal.TargetAmount != 2500000 {
		t.Errorf("Goal.TargetAmount = %v, want 2500000", cfg.Goal.TargetAmount)
	}
	if cfg.Goal.MonthlyContribution != 40000 {
		t.Errorf("Goal.MonthlyContribution = %v, want 40000", cfg.Goal.MonthlyContribution)
	}
}

func TestConfig_ChartEnvOverride(t *testing.T) {
	t.Setenv("SIPFOLIO_CHART", "false")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Output.Chart {
		t.Error("Output.Chart = true after SIPFOLIO_CHART=false")
	}
}

func TestLoadConfig_FileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sipfolio.toml")
	content := `
environment = "production"

[history]
path = "exports"

[goal]
target_amount = 5000000.0
monthly_contribution = 50000.0

[clients.amfi]
rate_limit = 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "production")
	}
	if cfg.History.Path != "exports" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "exports")
	}
	if cfg.Goal.TargetAmount != 5000000 {
		t.Errorf("Goal.TargetAmount = %v, want 5000000", cfg.Goal.TargetAmount)
	}
	if cfg.Clients.AMFI.RateLimit != 5 {
		t.Errorf("AMFI.RateLimit = %d, want 5", cfg.Clients.AMFI.RateLimit)
	}
	// Untouched sections keep defaults
	if cfg.Storage.File.Path != "data" {
		t.Errorf("Storage.File.Path = %q, want default %q", cfg.Storage.File.Path, "data")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.History.Path != "data/history" {
		t.Errorf("History.Path = %q, want default", cfg.History.Path)
	}
}

func TestLoadConfig_MalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("history = {{{"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() with malformed TOML did not error")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Environment: "PRODUCTION"}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for PRODUCTION")
	}
	cfg.Environment = "development"
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development")
	}
}
