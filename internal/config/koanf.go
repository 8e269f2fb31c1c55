// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ledgerline/config.yaml",
	"/etc/ledgerline/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "LEDGERLINE_CONFIG"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		QuickBooks: QuickBooksConfig{
			TokenURL:           DefaultTokenURL,
			ReportMinorVersion: 40,
			QueryMinorVersion:  75,
			RefreshInterval:    900 * time.Second,
		},
		Sync: SyncConfig{
			ReportPeriods:    3,
			PartitionWorkers: 10,
			ColumnBatchSize:  10,
		},
		Quota: QuotaConfig{
			PercentTotal:  80,
			PercentPerRun: 25,
		},
		HTTP: HTTPConfig{
			Timeout:           60 * time.Second,
			RequestsPerSecond: 8, // upstream allows 500 requests per minute per realm
			Burst:             10,
			MaxRetries:        5,
			RateLimitCooldown: 60 * time.Second,
			RetryBaseDelay:    time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled:         false,
			Addr:            "127.0.0.1:9464",
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Sink: SinkConfig{
			NATSEnabled:   false,
			NATSURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "ledgerline",
			JetStream:     true,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Struct defaults
//  2. Config file (optional): path if non-empty, else LEDGERLINE_CONFIG, else DefaultConfigPaths
//  3. Environment variables (highest priority)
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless explicitly requested)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// QBO_REALM_ID -> quickbooks.realm_id
	// SYNC_START_DATE -> sync.start_date
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default locations.
// Returns the path if found, empty string otherwise.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are koanf keys that accept comma-separated env values.
var sliceConfigPaths = []string{
	"sync.streams",
	"sync.ar_aging_report_dates",
}

// processSliceFields converts comma-separated string values to slices.
// Environment variables are always strings, so "a,b" must become ["a", "b"].
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// QuickBooks
		"qbo_client_id":        "quickbooks.client_id",
		"qbo_client_secret":    "quickbooks.client_secret",
		"qbo_refresh_token":    "quickbooks.refresh_token",
		"qbo_access_token":     "quickbooks.access_token",
		"qbo_realm_id":         "quickbooks.realm_id",
		"qbo_is_sandbox":       "quickbooks.is_sandbox",
		"qbo_token_url":        "quickbooks.token_url",
		"qbo_base_url":         "quickbooks.base_url",
		"qbo_token_file":       "quickbooks.token_file",
		"qbo_refresh_interval": "quickbooks.refresh_interval",

		// Sync
		"sync_start_date":           "sync.start_date",
		"sync_streams":              "sync.streams",
		"reports_full_sync":         "sync.reports_full_sync",
		"report_period_days":        "sync.report_period_days",
		"report_periods":            "sync.report_periods",
		"gl_full_sync":              "sync.gl_full_sync",
		"gl_weekly":                 "sync.gl_weekly",
		"gl_daily":                  "sync.gl_daily",
		"gl_basic_fields":           "sync.gl_basic_fields",
		"include_deleted":           "sync.include_deleted",
		"ar_aging_report_date":      "sync.ar_aging_report_date",
		"ar_aging_report_dates":     "sync.ar_aging_report_dates",
		"pnl_adjusted_gain_loss":    "sync.pnl_adjusted_gain_loss",
		"fetch_future_transactions": "sync.fetch_future_transactions",
		"partition_workers":         "sync.partition_workers",
		"column_batch_size":         "sync.column_batch_size",

		// Quota
		"quota_percent_total":   "quota.percent_total",
		"quota_percent_per_run": "quota.percent_per_run",

		// HTTP client
		"http_timeout":             "http.timeout",
		"http_requests_per_second": "http.requests_per_second",
		"http_burst":               "http.burst",
		"http_max_retries":         "http.max_retries",
		"http_rate_limit_cooldown": "http.rate_limit_cooldown",
		"http_retry_base_delay":    "http.retry_base_delay",
		"api_usage_log":            "http.api_usage_log",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Metrics
		"metrics_enabled":           "metrics.enabled",
		"metrics_addr":              "metrics.addr",
		"metrics_rate_limit_reqs":   "metrics.rate_limit_reqs",
		"metrics_rate_limit_window": "metrics.rate_limit_window",

		// NATS sink
		"nats_enabled":        "sink.nats_enabled",
		"nats_url":            "sink.nats_url",
		"nats_subject_prefix": "sink.subject_prefix",
		"nats_jetstream":      "sink.jetstream",

		// Supervisor
		"supervisor_failure_threshold": "supervisor.failure_threshold",
		"supervisor_failure_decay":     "supervisor.failure_decay",
		"supervisor_failure_backoff":   "supervisor.failure_backoff",
		"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
