// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package config provides centralized configuration management for Ledgerline.

Configuration is loaded with Koanf v2 in three layers, each overriding the
previous one:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file
 3. Environment variables

# Configuration File

The file is taken from, in order: the path passed to LoadWithKoanf (the
--config flag), the LEDGERLINE_CONFIG environment variable, then the first of
DefaultConfigPaths that exists.

	quickbooks:
	  client_id: ABc123
	  client_secret: s3cret
	  refresh_token: AB11...
	  realm_id: "9130349"
	  is_sandbox: true
	sync:
	  start_date: "2021-01-01T00:00:00Z"
	  streams: [GeneralLedgerAccrualReport, ProfitAndLossReport]
	quota:
	  percent_total: 80
	  percent_per_run: 25

# Environment Variables

Only mapped names are read; unrelated variables are ignored (see
envTransformFunc). Common ones:

QuickBooks:
  - QBO_CLIENT_ID, QBO_CLIENT_SECRET, QBO_REFRESH_TOKEN: OAuth2 credentials
  - QBO_REALM_ID: company id (required)
  - QBO_IS_SANDBOX: use the sandbox API host (default: false)
  - QBO_TOKEN_FILE: file where a rotated refresh token is written

Sync:
  - SYNC_START_DATE: first date for full syncs (required)
  - SYNC_STREAMS: comma-separated stream selection (default: all)
  - REPORTS_FULL_SYNC: ignore prior state for reports (default: false)
  - INCLUDE_DELETED: also query inactive entities (default: false)

Quota:
  - QUOTA_PERCENT_TOTAL: abort above this share of the account quota (default: 80)
  - QUOTA_PERCENT_PER_RUN: abort after this share of the quota in one run (default: 25)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Validate combines go-playground/validator struct tags (through the
internal/validation package) with per-section checks. Config is immutable
after loading and safe for concurrent reads.
*/
package config
