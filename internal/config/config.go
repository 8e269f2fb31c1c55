// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package config

import (
	"fmt"
	"strings"
	"time"
)

// Upstream endpoints.
const (
	ProductionBaseURL = "https://quickbooks.api.intuit.com/v3/company/"
	SandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com/v3/company/"
	DefaultTokenURL   = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
)

// Config holds all connector configuration.
//
// Thread Safety:
// Config is immutable after LoadWithKoanf() and safe for concurrent read access.
type Config struct {
	QuickBooks QuickBooksConfig `koanf:"quickbooks"`
	Sync       SyncConfig       `koanf:"sync"`
	Quota      QuotaConfig      `koanf:"quota"`
	HTTP       HTTPConfig       `koanf:"http"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Sink       SinkConfig       `koanf:"sink"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// QuickBooksConfig holds API credentials and endpoint settings.
//
// Environment Variables:
//   - QBO_CLIENT_ID, QBO_CLIENT_SECRET: OAuth2 application credentials
//   - QBO_REFRESH_TOKEN: long-lived refresh token
//   - QBO_ACCESS_TOKEN: optional access token to start with
//   - QBO_REALM_ID: company id
//   - QBO_IS_SANDBOX: target the sandbox host (default: false)
//   - QBO_TOKEN_URL: OAuth2 token endpoint
//   - QBO_BASE_URL: API base URL override (tests, proxies)
//   - QBO_TOKEN_FILE: persist rotated refresh tokens here
//   - QBO_REFRESH_INTERVAL: background token refresh period (default: 15m)
type QuickBooksConfig struct {
	ClientID     string `koanf:"client_id" validate:"required"`
	ClientSecret string `koanf:"client_secret" validate:"required"`
	RefreshToken string `koanf:"refresh_token" validate:"required"`
	AccessToken  string `koanf:"access_token"`
	RealmID      string `koanf:"realm_id"`
	IsSandbox    bool   `koanf:"is_sandbox"`
	TokenURL     string `koanf:"token_url"`

	// BaseURL overrides the production/sandbox host. The realm id is appended.
	BaseURL string `koanf:"base_url"`

	// ReportMinorVersion and QueryMinorVersion are sent as minorversion.
	ReportMinorVersion int `koanf:"report_minor_version" validate:"min=1"`
	QueryMinorVersion  int `koanf:"query_minor_version" validate:"min=1"`

	TokenFile       string        `koanf:"token_file"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// InstanceURL returns the company-scoped API root.
func (c *QuickBooksConfig) InstanceURL() string {
	base := c.BaseURL
	if base == "" {
		base = ProductionBaseURL
		if c.IsSandbox {
			base = SandboxBaseURL
		}
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + c.RealmID
}

// SyncConfig controls which streams are extracted and how reports are ranged.
//
// Environment Variables:
//   - SYNC_START_DATE: RFC 3339 timestamp or YYYY-MM-DD (required)
//   - SYNC_STREAMS: comma-separated stream names (default: all)
//   - REPORTS_FULL_SYNC: ignore state for report streams
//   - REPORT_PERIOD_DAYS: daily cash flow lookback override
//   - REPORT_PERIODS: months re-read when resuming a report (default: 3)
//   - GL_FULL_SYNC, GL_WEEKLY, GL_DAILY, GL_BASIC_FIELDS: general ledger tuning
//   - INCLUDE_DELETED: also query inactive entities
//   - AR_AGING_REPORT_DATE, AR_AGING_REPORT_DATES: aging as-of dates
//   - PNL_ADJUSTED_GAIN_LOSS, FETCH_FUTURE_TRANSACTIONS: P&L options
//   - PARTITION_WORKERS: concurrent window requests (default: 10)
//   - COLUMN_BATCH_SIZE: columns per request when batching (default: 10)
type SyncConfig struct {
	StartDate               string   `koanf:"start_date" validate:"required,isodate"`
	Streams                 []string `koanf:"streams"`
	ReportsFullSync         bool     `koanf:"reports_full_sync"`
	ReportPeriodDays        int      `koanf:"report_period_days" validate:"min=0"`
	ReportPeriods           int      `koanf:"report_periods" validate:"min=1"`
	GLFullSync              bool     `koanf:"gl_full_sync"`
	GLWeekly                bool     `koanf:"gl_weekly"`
	GLDaily                 bool     `koanf:"gl_daily"`
	GLBasicFields           bool     `koanf:"gl_basic_fields"`
	IncludeDeleted          bool     `koanf:"include_deleted"`
	ARAgingReportDate       string   `koanf:"ar_aging_report_date"`
	ARAgingReportDates      []string `koanf:"ar_aging_report_dates"`
	PNLAdjustedGainLoss     bool     `koanf:"pnl_adjusted_gain_loss"`
	FetchFutureTransactions bool     `koanf:"fetch_future_transactions"`
	PartitionWorkers        int      `koanf:"partition_workers" validate:"min=1,max=50"`
	ColumnBatchSize         int      `koanf:"column_batch_size" validate:"min=2"`
}

// StartTime parses StartDate as RFC 3339 or as a plain date (UTC midnight).
func (c *SyncConfig) StartTime() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, c.StartDate); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_date %q is neither RFC 3339 nor YYYY-MM-DD", c.StartDate)
	}
	return t, nil
}

// AgingReportDates returns the configured as-of dates (date part only).
// The list form wins over the single date.
func (c *SyncConfig) AgingReportDates() []string {
	raw := c.ARAgingReportDates
	if len(raw) == 0 && c.ARAgingReportDate != "" {
		raw = []string{c.ARAgingReportDate}
	}
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		d, _, _ = strings.Cut(strings.TrimSpace(d), "T")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// QuotaConfig bounds API quota consumption.
//
// Environment Variables:
//   - QUOTA_PERCENT_TOTAL: account-wide usage ceiling in percent (default: 80)
//   - QUOTA_PERCENT_PER_RUN: share of the quota one run may use (default: 25)
type QuotaConfig struct {
	PercentTotal  float64 `koanf:"percent_total" validate:"gt=0,lte=100"`
	PercentPerRun float64 `koanf:"percent_per_run" validate:"gt=0,lte=100"`
}

// HTTPConfig controls the upstream HTTP client.
//
// Environment Variables:
//   - HTTP_TIMEOUT: per-request timeout (default: 60s)
//   - HTTP_REQUESTS_PER_SECOND: client-side pacing (default: 8)
//   - HTTP_BURST: pacing burst (default: 10)
//   - HTTP_MAX_RETRIES: attempts for retriable failures (default: 5)
//   - HTTP_RATE_LIMIT_COOLDOWN: wait after HTTP 429 (default: 60s)
//   - API_USAGE_LOG: append one JSON line per request to this file
type HTTPConfig struct {
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"min=1"`
	MaxRetries        int           `koanf:"max_retries" validate:"min=1,max=20"`
	RateLimitCooldown time.Duration `koanf:"rate_limit_cooldown"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	APIUsageLog       string        `koanf:"api_usage_log"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// MetricsConfig controls the Prometheus endpoint served while a sync runs.
//
// Environment Variables:
//   - METRICS_ENABLED: serve /metrics and /healthz (default: false)
//   - METRICS_ADDR: listen address (default: 127.0.0.1:9464)
type MetricsConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Addr            string        `koanf:"addr"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// SinkConfig configures the optional NATS record sink (requires -tags=nats).
//
// Environment Variables:
//   - NATS_ENABLED: publish records to NATS in addition to stdout
//   - NATS_URL: server URL (default: nats://127.0.0.1:4222)
//   - NATS_SUBJECT_PREFIX: subject prefix (default: ledgerline)
//   - NATS_JETSTREAM: publish through JetStream (default: true)
type SinkConfig struct {
	NATSEnabled   bool   `koanf:"nats_enabled"`
	NATSURL       string `koanf:"nats_url"`
	SubjectPrefix string `koanf:"subject_prefix"`
	JetStream     bool   `koanf:"jetstream"`
}

// SupervisorConfig tunes the suture tree that runs background services.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
