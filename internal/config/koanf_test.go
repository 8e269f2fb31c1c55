// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment for a valid configuration.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("QBO_CLIENT_ID", "client-abc")
	t.Setenv("QBO_CLIENT_SECRET", "secret-abc")
	t.Setenv("QBO_REFRESH_TOKEN", "AB11refresh")
	t.Setenv("QBO_REALM_ID", "9130349")
	t.Setenv("SYNC_START_DATE", "2021-01-01T00:00:00Z")
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.QuickBooks.TokenURL != DefaultTokenURL {
		t.Errorf("QuickBooks.TokenURL = %q, want %q", cfg.QuickBooks.TokenURL, DefaultTokenURL)
	}
	if cfg.QuickBooks.ReportMinorVersion != 40 {
		t.Errorf("QuickBooks.ReportMinorVersion = %d, want 40", cfg.QuickBooks.ReportMinorVersion)
	}
	if cfg.QuickBooks.QueryMinorVersion != 75 {
		t.Errorf("QuickBooks.QueryMinorVersion = %d, want 75", cfg.QuickBooks.QueryMinorVersion)
	}
	if cfg.QuickBooks.RefreshInterval != 15*time.Minute {
		t.Errorf("QuickBooks.RefreshInterval = %v, want 15m", cfg.QuickBooks.RefreshInterval)
	}
	if cfg.Quota.PercentTotal != 80 || cfg.Quota.PercentPerRun != 25 {
		t.Errorf("Quota = %+v, want total 80, per run 25", cfg.Quota)
	}
	if cfg.Sync.PartitionWorkers != 10 {
		t.Errorf("Sync.PartitionWorkers = %d, want 10", cfg.Sync.PartitionWorkers)
	}
	if cfg.Sync.ColumnBatchSize != 10 {
		t.Errorf("Sync.ColumnBatchSize = %d, want 10", cfg.Sync.ColumnBatchSize)
	}
	if cfg.Sync.ReportPeriods != 3 {
		t.Errorf("Sync.ReportPeriods = %d, want 3", cfg.Sync.ReportPeriods)
	}
	if cfg.HTTP.RateLimitCooldown != time.Minute {
		t.Errorf("HTTP.RateLimitCooldown = %v, want 1m", cfg.HTTP.RateLimitCooldown)
	}
	if cfg.HTTP.MaxRetries != 5 {
		t.Errorf("HTTP.MaxRetries = %d, want 5", cfg.HTTP.MaxRetries)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false by default")
	}
	if cfg.Sink.NATSEnabled {
		t.Error("Sink.NATSEnabled should be false by default")
	}
	if cfg.Supervisor.FailureThreshold != 5 {
		t.Errorf("Supervisor.FailureThreshold = %v, want 5", cfg.Supervisor.FailureThreshold)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"QBO_CLIENT_ID", "quickbooks.client_id"},
		{"QBO_REALM_ID", "quickbooks.realm_id"},
		{"SYNC_START_DATE", "sync.start_date"},
		{"SYNC_STREAMS", "sync.streams"},
		{"GL_BASIC_FIELDS", "sync.gl_basic_fields"},
		{"QUOTA_PERCENT_TOTAL", "quota.percent_total"},
		{"API_USAGE_LOG", "http.api_usage_log"},
		{"LOG_LEVEL", "logging.level"},
		{"NATS_URL", "sink.nats_url"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: debug\n")

	t.Run("env var wins", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, path)
		if got := findConfigFile(); got != path {
			t.Errorf("findConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("missing env file falls through", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "nope.yaml"))
		if got := findConfigFile(); got == path {
			t.Errorf("findConfigFile() returned the unrelated file %q", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_STREAMS", "GeneralLedgerAccrualReport, ProfitAndLossReport")
	t.Setenv("QUOTA_PERCENT_TOTAL", "90")
	t.Setenv("HTTP_RATE_LIMIT_COOLDOWN", "30s")
	t.Setenv("QBO_IS_SANDBOX", "true")

	cfg, err := LoadWithKoanf("")
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.QuickBooks.RealmID != "9130349" {
		t.Errorf("QuickBooks.RealmID = %q, want 9130349", cfg.QuickBooks.RealmID)
	}
	if !cfg.QuickBooks.IsSandbox {
		t.Error("QuickBooks.IsSandbox = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Sync.Streams) != 2 || cfg.Sync.Streams[1] != "ProfitAndLossReport" {
		t.Errorf("Sync.Streams = %v, want 2 trimmed names", cfg.Sync.Streams)
	}
	if cfg.Quota.PercentTotal != 90 {
		t.Errorf("Quota.PercentTotal = %v, want 90", cfg.Quota.PercentTotal)
	}
	if cfg.HTTP.RateLimitCooldown != 30*time.Second {
		t.Errorf("HTTP.RateLimitCooldown = %v, want 30s", cfg.HTTP.RateLimitCooldown)
	}

	// Defaults still apply for unset values
	if cfg.Quota.PercentPerRun != 25 {
		t.Errorf("Quota.PercentPerRun = %v, want 25 (default)", cfg.Quota.PercentPerRun)
	}
	if cfg.QuickBooks.InstanceURL() != SandboxBaseURL+"9130349" {
		t.Errorf("InstanceURL() = %q", cfg.QuickBooks.InstanceURL())
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `
quickbooks:
  realm_id: "111"
sync:
  streams:
    - TransactionListReport
  gl_weekly: true
  ar_aging_report_dates:
    - "2024-03-31T00:00:00Z"
    - "2024-06-30"
logging:
  level: warn
`)
	t.Setenv("QBO_REALM_ID", "")
	os.Unsetenv("QBO_REALM_ID")

	cfg, err := LoadWithKoanf(path)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.QuickBooks.RealmID != "111" {
		t.Errorf("QuickBooks.RealmID = %q, want 111", cfg.QuickBooks.RealmID)
	}
	if len(cfg.Sync.Streams) != 1 || cfg.Sync.Streams[0] != "TransactionListReport" {
		t.Errorf("Sync.Streams = %v", cfg.Sync.Streams)
	}
	if !cfg.Sync.GLWeekly {
		t.Error("Sync.GLWeekly = false, want true")
	}
	if got := strings.Join(cfg.Sync.AgingReportDates(), ","); got != "2024-03-31,2024-06-30" {
		t.Errorf("AgingReportDates() = %q", got)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, "logging:\n  level: warn\nquota:\n  percent_per_run: 10\n")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf(path)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env overrides file)", cfg.Logging.Level)
	}
	if cfg.Quota.PercentPerRun != 10 {
		t.Errorf("Quota.PercentPerRun = %v, want 10 (from file)", cfg.Quota.PercentPerRun)
	}
}

func TestLoadWithKoanfExplicitMissingFile(t *testing.T) {
	setRequiredEnv(t)
	if _, err := LoadWithKoanf(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadWithKoanf() expected error for a missing explicit config file")
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing realm", map[string]string{"QBO_REALM_ID": ""}, "realm id is missing"},
		{"missing client id", map[string]string{"QBO_CLIENT_ID": ""}, "ClientID is required"},
		{"bad start date", map[string]string{"SYNC_START_DATE": "yesterday"}, "StartDate"},
		{"quota above 100", map[string]string{"QUOTA_PERCENT_TOTAL": "120"}, "PercentTotal"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"placeholder secret", map[string]string{"QBO_CLIENT_SECRET": "CHANGEME"}, "placeholder"},
		{"exclusive gl modes", map[string]string{"GL_WEEKLY": "true", "GL_DAILY": "true"}, "mutually exclusive"},
		{"bad aging date", map[string]string{"AR_AGING_REPORT_DATE": "31/03/2024"}, "AR_AGING_REPORT_DATES"},
		{"nats url scheme", map[string]string{"NATS_ENABLED": "true", "NATS_URL": "http://localhost:4222"}, "NATS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf("")
			if err == nil {
				t.Fatalf("LoadWithKoanf() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadWithKoanf() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
