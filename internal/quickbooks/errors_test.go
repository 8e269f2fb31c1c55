// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package quickbooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tomtom215/ledgerline/internal/report"
)

func TestAPIError_Message(t *testing.T) {
	t.Parallel()

	forbidden := &APIError{
		StatusCode: 403,
		Endpoint:   "reports/BalanceSheet",
		Body:       `{"fault":{"error":[{"message":"message=ApplicationAuthorizationFailed; errorCode=003100; statusCode=403"}]}}`,
	}
	if got := forbidden.Error(); got != invalidCredentialsMessage {
		t.Errorf("Error() = %q, want credentials message", got)
	}

	other := &APIError{StatusCode: 403, Endpoint: "query", Body: "denied", IntuitTID: "tid-1"}
	if got := other.Error(); !strings.Contains(got, "status 403") || !strings.Contains(got, "tid-1") {
		t.Errorf("Error() = %q, want status and intuit_tid", got)
	}
}

func TestParseFaultMessage(t *testing.T) {
	t.Parallel()

	got := parseFaultMessage("message=AuthenticationFailed; errorCode=003200; statusCode=401; broken")
	want := map[string]string{"message": "AuthenticationFailed", "errorCode": "003200", "statusCode": "401"}
	if len(got) != len(want) {
		t.Fatalf("parseFaultMessage() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("stream: %w", &RetriableError{Reason: reasonNetwork, Err: errors.New("reset")})
	if IsAuthFailure(wrapped) {
		t.Error("IsAuthFailure() = true for RetriableError")
	}
	if IsQuotaExceeded(wrapped) {
		t.Error("IsQuotaExceeded() = true for RetriableError")
	}
	if !IsQuotaExceeded(fmt.Errorf("x: %w", &QuotaExceededError{Limit: QuotaLimitTotal, Allotted: 1})) {
		t.Error("IsQuotaExceeded() = false for wrapped QuotaExceededError")
	}
}

func TestBreakerSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{report.ErrDataVolumeCeiling, true},
		{fmt.Errorf("report x: %w", report.ErrDataVolumeCeiling), true},
		{context.Canceled, true},
		{&APIError{StatusCode: 400}, true},
		{&QuotaExceededError{}, true},
		{&AuthError{}, true},
		{&QueryTimeoutError{}, true},
		{&RetriableError{Reason: reasonServerError}, false},
		{errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := breakerSuccess(tt.err); got != tt.want {
			t.Errorf("breakerSuccess(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsAuthFailure(t *testing.T) {
	t.Parallel()

	forbidden := &APIError{
		StatusCode: 403,
		Body:       `{"fault":{"error":[{"message":"message=ApplicationAuthorizationFailed; errorCode=003100; statusCode=403"}]}}`,
	}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"auth", &AuthError{StatusCode: 401}, true},
		{"wrapped auth", fmt.Errorf("error syncing Invoice: %w", &AuthError{Err: errors.New("invalid_grant")}), true},
		{"403 fault", forbidden, true},
		{"plain 403", &APIError{StatusCode: 403, Body: "denied"}, false},
		{"bad request", &APIError{StatusCode: 400}, false},
		{"quota", &QuotaExceededError{Limit: QuotaLimitTotal, Allotted: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsAuthFailure(tt.err); got != tt.want {
				t.Errorf("IsAuthFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAuthError_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *AuthError
		want []string
	}{
		{
			name: "rejected request",
			err:  &AuthError{StatusCode: 400, IntuitTID: "tid-9", Err: errors.New("Authorization Failure")},
			want: []string{"status 400", "tid-9", credentialsHint, sandboxHint, "Authorization Failure"},
		},
		{
			name: "failed grant",
			err:  &AuthError{Err: errors.New("no refresh token configured")},
			want: []string{"no response", credentialsHint, sandboxHint, "no refresh token configured"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Error() = %q, want it to contain %q", got, w)
				}
			}
		})
	}
}
