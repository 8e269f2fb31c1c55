// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package quickbooks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Quota limits reported by QuotaExceededError.Limit.
const (
	QuotaLimitTotal  = "total"
	QuotaLimitPerRun = "per_run"
)

// QuotaExceededError aborts the entire sync.
type QuotaExceededError struct {
	Limit     string
	Used      int
	Allotted  int
	Attempted int
	Percent   float64 // configured ceiling that was crossed
}

func (e *QuotaExceededError) Error() string {
	if e.Limit == QuotaLimitTotal {
		return fmt.Sprintf("QuickBooks has reported %d/%d (%3.2f%%) total REST quota used across all QuickBooks applications. "+
			"Terminating replication to not continue past configured percentage of %g%% total quota.",
			e.Used, e.Allotted, float64(e.Used)/float64(e.Allotted)*100, e.Percent)
	}
	return fmt.Sprintf("This replication job has made %d REST requests (%3.2f%% of total quota). "+
		"Terminating replication due to allotted quota of %g%% per replication.",
		e.Attempted, float64(e.Attempted)/float64(e.Allotted)*100, e.Percent)
}

// AuthError means the credentials were rejected even after a fresh login.
type AuthError struct {
	StatusCode int
	IntuitTID  string
	Err        error
}

func (e *AuthError) Error() string {
	detail := "no response"
	if e.StatusCode != 0 {
		detail = fmt.Sprintf("status %d, intuit_tid %s", e.StatusCode, tidOrNA(e.IntuitTID))
	}
	return fmt.Sprintf("QuickBooks rejected the credentials after a fresh login (%s). %s %s Cause: %v",
		detail, credentialsHint, sandboxHint, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

const (
	credentialsHint = "Check client_id, client_secret, refresh_token and realm_id."
	sandboxHint     = "Please check if you are using sandbox credentials to access production data and try again."
)

// invalidCredentialsMessage is shown for 403 faults.
const invalidCredentialsMessage = "[403] Your credentials are invalid. " + sandboxHint

// IsAuthFailure reports whether err means the credentials were rejected:
// an AuthError, or a 403 fault from the API.
func IsAuthFailure(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 403 && faultStatus([]byte(apiErr.Body)) == "403"
}

// APIError is a non-retriable upstream rejection.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
	IntuitTID  string
}

func (e *APIError) Error() string {
	if e.StatusCode == 403 && faultStatus([]byte(e.Body)) == "403" {
		return invalidCredentialsMessage
	}
	return fmt.Sprintf("%s: status %d (intuit_tid %s): %s", e.Endpoint, e.StatusCode, tidOrNA(e.IntuitTID), truncate(e.Body, 512))
}

// RetriableError is a transient failure. The client retries these and
// returns the last one when attempts run out.
type RetriableError struct {
	Reason     string // rate_limit, server_error, network, auth, invalid_body
	StatusCode int
	IntuitTID  string
	Err        error
}

func (e *RetriableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retriable %s error (status %d): %v", e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("retriable %s error: %v", e.Reason, e.Err)
}

func (e *RetriableError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// QueryTimeoutError is returned when the query endpoint gives up on a range.
// The entity pager narrows the range and tries again.
type QueryTimeoutError struct {
	Body string
}

func (e *QueryTimeoutError) Error() string {
	return "query timed out upstream (QUERY_TIMEOUT)"
}

// isQueryTimeout reports whether an error body is the QUERY_TIMEOUT list form.
func isQueryTimeout(body []byte) bool {
	var list []struct {
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &list); err != nil || len(list) == 0 {
		return false
	}
	return list[0].ErrorCode == "QUERY_TIMEOUT"
}

// faultBody is the error envelope returned for authentication faults.
type faultBody struct {
	Fault struct {
		Error []struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
			Code    string `json:"code"`
		} `json:"error"`
		Type string `json:"type"`
	} `json:"fault"`
}

// parseFaultMessage splits a fault message of the form "k=v; k=v".
// Malformed pairs are skipped.
func parseFaultMessage(msg string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(msg, "; ") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// faultStatus returns the statusCode embedded in a fault body, or "".
func faultStatus(body []byte) string {
	var f faultBody
	if err := json.Unmarshal(body, &f); err != nil || len(f.Fault.Error) == 0 {
		return ""
	}
	return parseFaultMessage(f.Fault.Error[0].Message)["statusCode"]
}

func tidOrNA(tid string) string {
	if tid == "" {
		return "N/A"
	}
	return tid
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
