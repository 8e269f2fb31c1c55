// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package services

import (
	"context"
	"time"

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/quickbooks"
)

// DefaultRefreshInterval is the access token refresh period.
const DefaultRefreshInterval = 15 * time.Minute

// Refresher is satisfied by *quickbooks.Session.
type Refresher interface {
	Login(ctx context.Context, reason string) error
}

// TokenRefresherService renews the access token on a fixed period while a
// sync runs. A failed refresh is logged and retried on the next tick; the
// client re-logs in on its own when a request is rejected.
type TokenRefresherService struct {
	session  Refresher
	interval time.Duration
	name     string
}

// NewTokenRefresherService creates the refresher. A non-positive interval
// uses DefaultRefreshInterval.
func NewTokenRefresherService(session Refresher, interval time.Duration) *TokenRefresherService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &TokenRefresherService{
		session:  session,
		interval: interval,
		name:     "token-refresher",
	}
}

// Serve implements suture.Service.
func (s *TokenRefresherService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.session.Login(ctx, quickbooks.ReasonScheduled); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Warn().Err(err).Dur("retry_in", s.interval).Msg("Scheduled token refresh failed")
				continue
			}
			logging.Debug().Msg("Access token refreshed")
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *TokenRefresherService) String() string {
	return s.name
}
