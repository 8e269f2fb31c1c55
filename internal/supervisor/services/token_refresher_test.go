// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/ledgerline/internal/quickbooks"
)

type countingSession struct {
	mu      sync.Mutex
	reasons []string
	calls   atomic.Int32
	err     error
}

func (s *countingSession) Login(_ context.Context, reason string) error {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons = append(s.reasons, reason)
	return s.err
}

func TestTokenRefresherService_Implements(t *testing.T) {
	var _ suture.Service = (*TokenRefresherService)(nil)
	var _ Refresher = (*quickbooks.Session)(nil)
}

func TestNewTokenRefresherService_DefaultInterval(t *testing.T) {
	t.Parallel()

	svc := NewTokenRefresherService(&countingSession{}, 0)
	if svc.interval != DefaultRefreshInterval {
		t.Errorf("interval = %v, want %v", svc.interval, DefaultRefreshInterval)
	}
	if svc.String() != "token-refresher" {
		t.Errorf("String() = %q, want token-refresher", svc.String())
	}
}

func TestTokenRefresherService_RefreshesOnEachTick(t *testing.T) {
	t.Parallel()

	session := &countingSession{}
	svc := NewTokenRefresherService(session, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()
	err := svc.Serve(ctx)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
	}
	if session.calls.Load() < 2 {
		t.Errorf("Login calls = %d, want at least 2", session.calls.Load())
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	for _, r := range session.reasons {
		if r != quickbooks.ReasonScheduled {
			t.Errorf("reason = %q, want %q", r, quickbooks.ReasonScheduled)
		}
	}
}

func TestTokenRefresherService_KeepsRunningAfterFailure(t *testing.T) {
	t.Parallel()

	session := &countingSession{err: errors.New("invalid_grant")}
	svc := NewTokenRefresherService(session, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if session.calls.Load() < 2 {
		t.Errorf("Login calls = %d, want the refresher to retry on later ticks", session.calls.Load())
	}
}

func TestTokenRefresherService_StopsWithoutRefreshing(t *testing.T) {
	t.Parallel()

	session := &countingSession{}
	svc := NewTokenRefresherService(session, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if session.calls.Load() != 0 {
		t.Errorf("Login calls = %d, want 0", session.calls.Load())
	}
}
