// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package metrics provides Prometheus metrics for sync runs.

All collectors are registered on the default registry through promauto and
are exposed by the telemetry server at /metrics when metrics.enabled is set:

	curl http://127.0.0.1:9464/metrics

# Available Metrics

Upstream API:
  - ledgerline_api_requests_total: requests (counter)
    Labels: endpoint, status_code
  - ledgerline_api_request_duration_seconds: request latency (histogram)
    Labels: endpoint
  - ledgerline_api_retries_total: retried requests (counter)
    Labels: endpoint, reason
  - ledgerline_api_rate_limit_hits_total: HTTP 429 responses (counter)

Quota:
  - ledgerline_quota_used_percent: account-wide usage (gauge)
  - ledgerline_quota_requests_this_run: metered requests in this run (gauge)
  - ledgerline_quota_aborts_total: runs stopped by a ceiling (counter)
    Labels: limit (total, per_run)

Partitioning:
  - ledgerline_partition_windows_fetched_total (counter)
    Labels: report, granularity
  - ledgerline_partition_escalations_total (counter)
    Labels: report, from, to

Streams:
  - ledgerline_stream_records_emitted_total (counter)
  - ledgerline_stream_sync_duration_seconds (histogram)
  - ledgerline_stream_sync_errors_total (counter)
  - ledgerline_sync_last_success_timestamp_seconds (gauge)

Circuit breaker:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_consecutive_failures,
    circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	resp, err := doRequest(req)
	metrics.RecordAPIRequest("reports/GeneralLedger", strconv.Itoa(resp.StatusCode), time.Since(start))

# Thread Safety

All functions are safe for concurrent use; Prometheus collectors handle
their own synchronization.
*/
package metrics
