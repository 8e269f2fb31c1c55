// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ledgerline/internal/quickbooks"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	quota := &quickbooks.QuotaExceededError{Limit: quickbooks.QuotaLimitTotal, Used: 900, Allotted: 1000, Percent: 80}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"quota", quota, exitQuota},
		{"wrapped quota", fmt.Errorf("error syncing Invoice: %w", quota), exitQuota},
		{"joined quota", errors.Join(errors.New("error syncing A: boom"), quota), exitQuota},
		{"auth", &quickbooks.AuthError{Err: errors.New("invalid_grant")}, exitAuth},
		{"wrapped auth", fmt.Errorf("report ProfitAndLoss: %w", &quickbooks.AuthError{StatusCode: 400}), exitAuth},
		{"quota wins over auth", errors.Join(&quickbooks.AuthError{}, quota), exitQuota},
		{"api error", &quickbooks.APIError{StatusCode: 400, Body: "bad column"}, exitError},
		{"other", errors.New("config"), exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDiscoverCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"discover"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("discover error = %v", err)
	}

	var got catalog
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("discover output is not JSON: %v", err)
	}

	byName := make(map[string]catalogEntry, len(got.Streams))
	for _, s := range got.Streams {
		byName[s.Stream] = s
	}

	invoice, ok := byName["Invoice"]
	if !ok {
		t.Fatal("Invoice missing from catalog")
	}
	if invoice.ReplicationMethod != "INCREMENTAL" || invoice.ReplicationKey != "MetaData.LastUpdatedTime" {
		t.Errorf("Invoice = %+v, want incremental on MetaData.LastUpdatedTime", invoice)
	}

	gl, ok := byName["GeneralLedgerCashReport"]
	if !ok {
		t.Fatal("GeneralLedgerCashReport missing from catalog")
	}
	if gl.ReplicationMethod != "FULL_TABLE" || gl.KeyProperties == nil || len(gl.KeyProperties) != 0 {
		t.Errorf("GeneralLedgerCashReport = %+v, want full table with no key properties", gl)
	}
	if !strings.Contains(out.String(), `"key_properties": []`) {
		t.Error("report key_properties not encoded as an empty list")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "ledgerline "+Version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestSyncCommand_MissingConfigFile(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"sync", "--config", t.TempDir() + "/missing.yaml"})
	if err := cmd.Execute(); err == nil {
		t.Error("sync with a missing config file succeeded")
	}
}
