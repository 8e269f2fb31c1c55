// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package quickbooks is the HTTP client for the QuickBooks Online accounting API.

Every request goes through one retry loop (Client.get) that:

  - paces requests with a token bucket (golang.org/x/time/rate)
  - re-reads the shared OAuth2 access token right before sending
  - observes the Sforce-Limit-Info usage header and aborts the run with a
    QuotaExceededError once the account-wide or per-run ceiling is crossed
  - sleeps a fixed cooldown after HTTP 429
  - forces one re-login after HTTP 401 or an "Authorization Failure" body
  - backs off exponentially after 5xx responses and network errors
  - fails fast on any other 4xx (APIError)

A gobreaker circuit breaker sits around the loop. Data volume ceilings and
client errors do not count against it.

# Error Categories

	*RetriableError       retried inside the loop, returned once attempts run out
	*QuotaExceededError   aborts the whole sync (exit code 2)
	*AuthError            re-login did not help; aborts the whole sync (exit code 3)
	*APIError             non-retriable upstream rejection
	report.ErrDataVolumeCeiling  narrowed by the partitioner, never retried here

# Session

Session owns the OAuth2 refresh-token grant. Rotated refresh tokens are
written to the configured token file so the next run can start. A
TokenRefresher service refreshes on a fixed period while a sync runs.
*/
package quickbooks
