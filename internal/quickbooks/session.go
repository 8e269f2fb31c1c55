// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
session.go - OAuth2 Session

Session holds the access token shared by every request and the refresh
token used to renew it. Access to both goes through a RWMutex: the client
reads the access token immediately before each attempt while a login may
replace it concurrently.

Logins are coalesced with singleflight, so a burst of 401 responses from a
worker pool produces one refresh-token grant. The token endpoint receives
client_id and client_secret in the form body (AuthStyleInParams).

When the server rotates the refresh token, the new value is written to the
configured token file (mode 0600, written to a temp file and renamed). On
start the token file wins over the configured refresh token.
*/

//nolint:staticcheck // File documentation, not package doc
package quickbooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/ledgerline/internal/config"
	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
)

// Login reasons.
const (
	ReasonStartup      = "startup"
	ReasonScheduled    = "scheduled"
	ReasonUnauthorized = "unauthorized"
)

// Session manages OAuth2 credentials for one realm.
type Session struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	realmID    string
	tokenFile  string
	credLog    *logging.CredentialLogger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiry       time.Time

	group singleflight.Group
}

// tokenFileContents is the on-disk token file format.
type tokenFileContents struct {
	RealmID      string    `json:"realm_id"`
	RefreshToken string    `json:"refresh_token"`
	AccessToken  string    `json:"access_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSession creates a session from configuration. A nil httpClient uses
// http.DefaultClient for the token endpoint.
func NewSession(cfg *config.QuickBooksConfig, httpClient *http.Client) (*Session, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	s := &Session{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient:   httpClient,
		realmID:      cfg.RealmID,
		tokenFile:    cfg.TokenFile,
		credLog:      logging.NewCredentialLogger(),
		accessToken:  cfg.AccessToken,
		refreshToken: cfg.RefreshToken,
	}

	if s.tokenFile != "" {
		stored, err := readTokenFile(s.tokenFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read token file: %w", err)
		case stored.RefreshToken != "" && (stored.RealmID == "" || stored.RealmID == s.realmID):
			s.refreshToken = stored.RefreshToken
			logging.Info().Str("path", s.tokenFile).Msg("Using refresh token from token file")
		}
	}

	return s, nil
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Expiry returns when the current access token expires (zero if unknown).
func (s *Session) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry
}

// EnsureToken logs in unless an access token is already held.
func (s *Session) EnsureToken(ctx context.Context) error {
	if s.AccessToken() != "" {
		return nil
	}
	return s.Login(ctx, ReasonStartup)
}

// Relogin refreshes the access token after the server rejected stale.
// If another caller already replaced stale, it returns without a new grant.
func (s *Session) Relogin(ctx context.Context, stale string) error {
	if current := s.AccessToken(); current != "" && current != stale {
		return nil
	}
	return s.Login(ctx, ReasonUnauthorized)
}

// Login runs the refresh-token grant. Concurrent calls share one grant.
func (s *Session) Login(ctx context.Context, reason string) error {
	_, err, _ := s.group.Do("login", func() (interface{}, error) {
		return nil, s.login(ctx, reason)
	})
	return err
}

func (s *Session) login(ctx context.Context, reason string) error {
	refresh := s.RefreshToken()
	if refresh == "" {
		return &AuthError{Err: errors.New("no refresh token configured")}
	}

	logging.Info().Str("reason", reason).Msg("Attempting login via OAuth2")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
	metrics.RecordTokenRefresh(err)
	s.credLog.LogTokenRefresh(s.realmID, reason, err)
	if err != nil {
		authErr := &AuthError{Err: err}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			authErr.StatusCode = re.Response.StatusCode
			authErr.IntuitTID = re.Response.Header.Get("intuit_tid")
		}
		return authErr
	}

	s.mu.Lock()
	s.accessToken = tok.AccessToken
	s.expiry = tok.Expiry
	rotated := tok.RefreshToken != "" && tok.RefreshToken != s.refreshToken
	if rotated {
		s.refreshToken = tok.RefreshToken
	}
	s.mu.Unlock()

	if rotated {
		s.credLog.LogTokenRotated(s.realmID, tok.RefreshToken)
	}
	if s.tokenFile != "" {
		err := writeTokenFile(s.tokenFile, &tokenFileContents{
			RealmID:      s.realmID,
			RefreshToken: s.RefreshToken(),
			AccessToken:  tok.AccessToken,
			Expiry:       tok.Expiry,
			UpdatedAt:    time.Now().UTC(),
		})
		s.credLog.LogTokenPersisted(s.realmID, s.tokenFile, err)
		if err != nil && rotated {
			// The old refresh token is no longer valid; the next run would fail.
			return fmt.Errorf("persist rotated refresh token: %w", err)
		}
	}
	return nil
}

func readTokenFile(path string) (*tokenFileContents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out tokenFileContents
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &out, nil
}

func writeTokenFile(path string, contents *tokenFileContents) error {
	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
