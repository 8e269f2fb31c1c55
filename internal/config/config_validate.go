// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/ledgerline/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateQuickBooks(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateHTTP(); err != nil {
		return err
	}

	if err := c.validateSink(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateQuickBooks validates credentials and endpoints
func (c *Config) validateQuickBooks() error {
	if c.QuickBooks.RealmID == "" {
		return fmt.Errorf("QBO_REALM_ID is required: the realm id is missing from the configuration")
	}

	for _, v := range []string{c.QuickBooks.ClientID, c.QuickBooks.ClientSecret, c.QuickBooks.RefreshToken} {
		if containsPlaceholder(v) {
			return fmt.Errorf("QuickBooks credentials contain a placeholder value, set real credentials")
		}
	}

	if err := validateHTTPURL(c.QuickBooks.TokenURL, "QBO_TOKEN_URL", true); err != nil {
		return err
	}
	if c.QuickBooks.BaseURL != "" {
		if err := validateHTTPURL(c.QuickBooks.BaseURL, "QBO_BASE_URL", true); err != nil {
			return err
		}
	}

	if c.QuickBooks.RefreshInterval < time.Minute {
		return fmt.Errorf("QBO_REFRESH_INTERVAL must be at least 1m, got %v", c.QuickBooks.RefreshInterval)
	}
	return nil
}

// validateSync validates date settings
func (c *Config) validateSync() error {
	if _, err := c.Sync.StartTime(); err != nil {
		return fmt.Errorf("SYNC_START_DATE: %w", err)
	}

	for _, d := range c.Sync.AgingReportDates() {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return fmt.Errorf("AR_AGING_REPORT_DATES: %q is not a date", d)
		}
	}

	if c.Sync.GLWeekly && c.Sync.GLDaily {
		return fmt.Errorf("GL_WEEKLY and GL_DAILY are mutually exclusive")
	}
	return nil
}

// validateHTTP validates client timing
func (c *Config) validateHTTP() error {
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.HTTP.Timeout)
	}
	if c.HTTP.RateLimitCooldown < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT_COOLDOWN must not be negative, got %v", c.HTTP.RateLimitCooldown)
	}
	return nil
}

// validateSink validates the NATS sink (only if enabled)
func (c *Config) validateSink() error {
	if !c.Sink.NATSEnabled {
		return nil
	}
	if err := validateNATSURL(c.Sink.NATSURL); err != nil {
		return err
	}
	if c.Sink.SubjectPrefix == "" || strings.ContainsAny(c.Sink.SubjectPrefix, " *>") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must be a non-empty literal subject token, got %q", c.Sink.SubjectPrefix)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns indicate the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_CLIENT",
	"YOUR_SECRET",
	"PLACEHOLDER",
}

// containsPlaceholder checks if a value contains common placeholder patterns
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
