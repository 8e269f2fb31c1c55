// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package logging

import (
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// CredentialEvent describes an OAuth2 credential operation.
type CredentialEvent struct {
	// Event is the operation: "token_refresh", "token_rotated", "token_persisted".
	Event string
	// RealmID is the company the credentials belong to.
	RealmID string
	// Reason names why the operation ran ("scheduled", "unauthorized", "startup").
	Reason string
	// Success indicates if the operation succeeded.
	Success bool
	// Error is the error message if the operation failed.
	Error string
	// Details contains additional values; sensitive keys are masked.
	Details map[string]string
}

// CredentialLogger logs credential events without leaking secrets.
type CredentialLogger struct {
	logger zerolog.Logger
}

// NewCredentialLogger creates a credential logger on the global logger.
func NewCredentialLogger() *CredentialLogger {
	return &CredentialLogger{logger: WithComponent("auth")}
}

// NewCredentialLoggerWithLogger creates a credential logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCredentialLoggerWithLogger(logger zerolog.Logger) *CredentialLogger {
	return &CredentialLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogEvent logs a credential event with automatic sanitization.
func (l *CredentialLogger) LogEvent(event *CredentialEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}
	if event.RealmID != "" {
		e = e.Str("realm_id", event.RealmID)
	}
	if event.Reason != "" {
		e = e.Str("reason", event.Reason)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}

	keys := make([]string, 0, len(event.Details))
	for k := range event.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e = e.Str(k, SanitizeValue(k, event.Details[k]))
	}

	e.Msg("")
}

// LogTokenRefresh logs an access token refresh.
func (l *CredentialLogger) LogTokenRefresh(realmID, reason string, err error) {
	ev := &CredentialEvent{Event: "token_refresh", RealmID: realmID, Reason: reason, Success: err == nil}
	if err != nil {
		ev.Error = err.Error()
	}
	l.LogEvent(ev)
}

// LogTokenRotated logs that the server issued a new refresh token.
func (l *CredentialLogger) LogTokenRotated(realmID, newToken string) {
	l.LogEvent(&CredentialEvent{
		Event:   "token_rotated",
		RealmID: realmID,
		Success: true,
		Details: map[string]string{"refresh_token": newToken},
	})
}

// LogTokenPersisted logs the outcome of writing the rotated token to disk.
func (l *CredentialLogger) LogTokenPersisted(realmID, path string, err error) {
	ev := &CredentialEvent{
		Event:   "token_persisted",
		RealmID: realmID,
		Success: err == nil,
		Details: map[string]string{"path": path},
	}
	if err != nil {
		ev.Error = err.Error()
	}
	l.LogEvent(ev)
}

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "AB11727394...x9Qz" stays recognizable without being usable.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// sensitivePatterns mark error messages that may echo credentials.
var sensitivePatterns = []string{
	"secret",
	"bearer",
	"authorization:",
	"refresh_token=",
	"access_token=",
	"client_secret",
}

// SanitizeError replaces error messages that may contain credentials and
// truncates long ones.
func SanitizeError(err string) string {
	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "credential error (details withheld)"
		}
	}
	return truncateString(err, 200)
}

// sensitiveKeys are parameter and field names whose values are masked.
var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
	"client_secret": true,
	"secret":        true,
	"password":      true,
	"authorization": true,
	"code":          true,
}

// IsSensitiveKey reports whether values under key must be masked.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	if IsSensitiveKey(key) {
		return SanitizeToken(value)
	}
	return value
}

// SanitizeQuery returns a copy of q with sensitive parameters masked.
func SanitizeQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		masked := make([]string, len(vs))
		for i, v := range vs {
			masked[i] = SanitizeValue(k, v)
		}
		out[k] = masked
	}
	return out
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
