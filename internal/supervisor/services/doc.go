// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package services provides the suture.Service implementations that run
alongside a sync.

  - TokenRefresherService renews the QuickBooks access token on a fixed
    period (15 minutes by default).
  - HTTPServerService runs an *http.Server and shuts it down when the
    supervisor stops it.
  - NewTelemetryServer builds the chi router behind HTTPServerService:
    /metrics (Prometheus) and /healthz, rate limited per IP with httprate.

Each service returns ctx.Err() on shutdown so the supervisor does not
restart it, and implements fmt.Stringer for suture's event log.
*/
package services
