// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

// Package main is the ledgerline command.
//
// Ledgerline extracts accounting reports and entities from QuickBooks Online
// and writes them to stdout as a stream of JSON messages (SCHEMA, RECORD,
// STATE, ACTIVATE_VERSION). Logs go to stderr.
//
// # Commands
//
//	ledgerline sync      extract the selected streams
//	ledgerline discover  list the available streams
//	ledgerline version   print build information
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (QBO_CLIENT_ID, QBO_REFRESH_TOKEN, SYNC_START_DATE, ...)
//   - Config file (--config, LEDGERLINE_CONFIG, ./config.yaml)
//   - Built-in defaults
//
// # Build Tags
//
//	go build -tags nats ./cmd/ledgerline   # enable the NATS record sink
//
// # Exit Codes
//
//   - 0: every selected stream synced
//   - 1: configuration or stream failure
//   - 2: the QuickBooks API quota ceiling was reached
//   - 3: QuickBooks rejected the credentials even after a fresh login
//
// # Example Usage
//
//	export QBO_CLIENT_ID=... QBO_CLIENT_SECRET=... QBO_REFRESH_TOKEN=... QBO_REALM_ID=...
//	export SYNC_START_DATE=2023-01-01
//	ledgerline sync --state state.json --streams BalanceSheetReport,Invoice > out.jsonl
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/quickbooks"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitQuota = 2
	exitAuth  = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	if code != exitOK {
		logging.Error().Err(err).Int("exit_code", code).Msg("Ledgerline failed")
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case quickbooks.IsQuotaExceeded(err):
		return exitQuota
	case quickbooks.IsAuthFailure(err):
		return exitAuth
	default:
		return exitError
	}
}
