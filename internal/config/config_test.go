package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes content to a temporary YAML file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "riskreport.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// clearEnv unsets every variable applyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RISK_FREE_RATE", "PERIODS_PER_YEAR", "RETURNS_CSV", "DATA_DIR", "SQLITE_PATH",
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_DATA_URL", "LOG_LEVEL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
report:
  risk_free_rate: 0.02
  periods_per_year: 4
  csv_path: "/tmp/returns.csv"
storage:
  data_dir: "/tmp/riskreport/data"
  sqlite_path: "/tmp/riskreport/reports.db"
server:
  host: "127.0.0.1"
  port: 8081
  grpc_port: 9091
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  feed: "iex"
  rate_limit_per_min: 100
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Report --
	if cfg.Report.RiskFreeRate != 0.02 {
		t.Errorf("Report.RiskFreeRate = %v, want %v", cfg.Report.RiskFreeRate, 0.02)
	}
	if cfg.Report.PeriodsPerYear != 4 {
		t.Errorf("Report.PeriodsPerYear = %d, want %d", cfg.Report.PeriodsPerYear, 4)
	}
	if cfg.Report.CSVPath != "/tmp/returns.csv" {
		t.Errorf("Report.CSVPath = %q, want %q", cfg.Report.CSVPath, "/tmp/returns.csv")
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/riskreport/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/riskreport/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/riskreport/reports.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/riskreport/reports.db")
	}

	// -- Server --
	if cfg.Server.Port != 8081 || cfg.Server.GRPCPort != 9091 {
		t.Errorf("Server ports = %d/%d, want 8081/9091", cfg.Server.Port, cfg.Server.GRPCPort)
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Alpaca.Feed != "iex" || cfg.Alpaca.RateLimitPerMin != 100 {
		t.Errorf("Alpaca feed/limit = %q/%d, want iex/100", cfg.Alpaca.Feed, cfg.Alpaca.RateLimitPerMin)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  data_dir: "/srv/data"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Report.RiskFreeRate != 0.01 {
		t.Errorf("Report.RiskFreeRate = %v, want default 0.01", cfg.Report.RiskFreeRate)
	}
	if cfg.Report.PeriodsPerYear != 12 {
		t.Errorf("Report.PeriodsPerYear = %d, want default 12", cfg.Report.PeriodsPerYear)
	}
	if cfg.Storage.DataDir != "/srv/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/srv/data")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
report:
  risk_free_rate: 0.01
`)

	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("RISK_FREE_RATE", "0.035")
	t.Setenv("PERIODS_PER_YEAR", "52")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Report.RiskFreeRate != 0.035 {
		t.Errorf("Report.RiskFreeRate = %v, want 0.035 (env override)", cfg.Report.RiskFreeRate)
	}
	if cfg.Report.PeriodsPerYear != 52 {
		t.Errorf("Report.PeriodsPerYear = %d, want 52 (env override)", cfg.Report.PeriodsPerYear)
	}
}

func TestLoadBadEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "report:\n  periods_per_year: 12\n")
	t.Setenv("PERIODS_PER_YEAR", "monthly")

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on a non-numeric PERIODS_PER_YEAR")
	}
}

func TestLoadOrDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETURNS_CSV", "/data/monthly.csv")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() returned error: %v", err)
	}
	if cfg.Report.CSVPath != "/data/monthly.csv" {
		t.Errorf("Report.CSVPath = %q, want %q", cfg.Report.CSVPath, "/data/monthly.csv")
	}
	if cfg.Report.PeriodsPerYear != 12 {
		t.Errorf("Report.PeriodsPerYear = %d, want 12", cfg.Report.PeriodsPerYear)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() returned error: %v", err)
	}

	cfg.Report.PeriodsPerYear = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject periods_per_year = 0")
	}

	cfg = Default()
	cfg.Report.RiskFreeRate = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject risk_free_rate = -1")
	}
}

func TestLoadShippedConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join("..", "..", "config", "riskreport.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := Default()
	if cfg.Report != want.Report {
		t.Errorf("Report = %+v, want %+v", cfg.Report, want.Report)
	}
	if cfg.Server != want.Server {
		t.Errorf("Server = %+v, want %+v", cfg.Server, want.Server)
	}
	if cfg.Alpaca.Feed != "sip" || cfg.Alpaca.RateLimitPerMin != 200 {
		t.Errorf("Alpaca = %+v", cfg.Alpaca)
	}
}
