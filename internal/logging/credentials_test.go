// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package logging

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "***"},
		{"AB11700000000000000000xyzQ", "AB11...xyzQ"},
	}

	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError("oauth2: cannot fetch token: client_secret rejected"); strings.Contains(got, "client_secret") {
		t.Errorf("SanitizeError() leaked message: %q", got)
	}
	if got := SanitizeError("connection refused"); got != "connection refused" {
		t.Errorf("SanitizeError() = %q, want unchanged", got)
	}
	if got := SanitizeError(strings.Repeat("x", 300)); len(got) != 203 {
		t.Errorf("SanitizeError() length = %d, want 203", len(got))
	}
}

func TestSanitizeQuery(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"start_date":    {"2024-01-01"},
		"refresh_token": {"AB11700000000000000000xyzQ"},
	}
	got := SanitizeQuery(q)

	if got.Get("start_date") != "2024-01-01" {
		t.Errorf("start_date = %q, want unchanged", got.Get("start_date"))
	}
	if got.Get("refresh_token") != "AB11...xyzQ" {
		t.Errorf("refresh_token = %q, want masked", got.Get("refresh_token"))
	}
	if q.Get("refresh_token") != "AB11700000000000000000xyzQ" {
		t.Error("SanitizeQuery() modified its input")
	}
}

func TestCredentialLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewCredentialLoggerWithLogger(zerolog.New(&buf))

	logger.LogTokenRefresh("123", "scheduled", nil)
	logger.LogTokenRotated("123", "AB11700000000000000000xyzQ")
	logger.LogTokenPersisted("123", "/tmp/token.json", errors.New("permission denied"))

	output := buf.String()
	for _, want := range []string{
		`"event":"token_refresh"`,
		`"reason":"scheduled"`,
		`"refresh_token":"AB11...xyzQ"`,
		`"event":"token_persisted"`,
		`"status":"failed"`,
		`"component":"auth"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output = %s, want it to contain %s", output, want)
		}
	}
	if strings.Contains(output, "AB11700000000000000000xyzQ") {
		t.Error("refresh token written verbatim")
	}
}
