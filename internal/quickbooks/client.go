// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
client.go - QuickBooks REST Client

Client Features:
  - Token bucket pacing shared by every worker (x/time/rate)
  - Bearer token re-read from the Session before each attempt
  - Quota accounting from the Sforce-Limit-Info header
  - Circuit breaker protection (gobreaker)
  - Optional JSONL API usage log

Retry Policy (per request, max http.max_retries attempts):
  - HTTP 429: fixed cooldown (http.rate_limit_cooldown, default 60s)
  - HTTP 401, or 400/500 with "Authorization Failure": one forced re-login,
    retried at once; a second rejection is an AuthError
  - HTTP 5xx and network errors: exponential backoff from http.retry_base_delay
  - 200 with an empty or undecodable body: exponential backoff
  - Any other status: APIError, not retried

Related Files:
  - errors.go: error categories
  - quota.go: quota ceilings
  - session.go: OAuth2 refresh-token grant
  - breaker.go: circuit breaker wrapper
  - query.go: entity query pagination
*/

//nolint:staticcheck // File documentation, not package doc
package quickbooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ledgerline/internal/config"
	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
	"github.com/tomtom215/ledgerline/internal/report"
)

// Retry reasons, used as metric labels.
const (
	reasonRateLimit   = "rate_limit"
	reasonServerError = "server_error"
	reasonNetwork     = "network"
	reasonAuth        = "auth"
	reasonInvalidBody = "invalid_body"
)

// authFailureMarker in a 400/500 body means the access token was rejected.
var authFailureMarker = []byte("Authorization Failure")

// maxErrorBodySize limits the maximum amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// maxBackoff caps the exponential retry delay.
const maxBackoff = 5 * time.Minute

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Client calls the QuickBooks API for one realm. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	session     *Session
	instanceURL string
	reportMinor int
	queryMinor  int

	limiter *rate.Limiter
	quota   *QuotaTracker
	usage   *UsageLog
	breaker *gobreaker.CircuitBreaker[[]byte]

	maxRetries int
	cooldown   time.Duration
	baseDelay  time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithUsageLog records every request to u.
func WithUsageLog(u *UsageLog) Option {
	return func(c *Client) { c.usage = u }
}

// WithSleep replaces the cancellable wait used between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithClock replaces the wall clock used for query ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client from configuration.
func NewClient(cfg *config.Config, session *Session, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.HTTP.Timeout},
		session:     session,
		instanceURL: cfg.QuickBooks.InstanceURL(),
		reportMinor: cfg.QuickBooks.ReportMinorVersion,
		queryMinor:  cfg.QuickBooks.QueryMinorVersion,
		limiter:     rate.NewLimiter(rate.Limit(cfg.HTTP.RequestsPerSecond), cfg.HTTP.Burst),
		quota:       NewQuotaTracker(cfg.Quota.PercentTotal, cfg.Quota.PercentPerRun),
		breaker:     newBreaker(),
		maxRetries:  cfg.HTTP.MaxRetries,
		cooldown:    cfg.HTTP.RateLimitCooldown,
		baseDelay:   cfg.HTTP.RetryBaseDelay,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	if c.baseDelay <= 0 {
		c.baseDelay = time.Second
	}
	return c
}

// Quota returns the quota tracker.
func (c *Client) Quota() *QuotaTracker { return c.quota }

// Session returns the OAuth2 session.
func (c *Client) Session() *Session { return c.session }

// GetReport fetches one report. params must not include minorversion.
// A ceiling-bound response returns report.ErrDataVolumeCeiling.
func (c *Client) GetReport(ctx context.Context, name string, params url.Values) (*report.Response, error) {
	q := cloneValues(params)
	q.Set("minorversion", strconv.Itoa(c.reportMinor))

	var parsed *report.Response
	_, err := c.get(ctx, "reports/"+name, q, func(body []byte) error {
		if err := report.Classify(body); err != nil {
			return err
		}
		resp, err := report.Parse(body)
		if err != nil {
			return &RetriableError{Reason: reasonInvalidBody, StatusCode: http.StatusOK, Err: err}
		}
		parsed = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", name, err)
	}
	return parsed, nil
}

// get runs one logical request through the breaker and the retry loop.
// check validates a 200 body; returning a RetriableError retries the request.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, check func([]byte) error) ([]byte, error) {
	return c.execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, endpoint, params, check)
	})
}

// doWithRetry implements the retry policy described in the file header.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, params url.Values, check func([]byte) error) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.Multiplier = 2
	bo.MaxInterval = maxBackoff
	bo.Reset()

	relogged := false
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, token, err := c.attempt(ctx, endpoint, params)
		if err == nil && check != nil {
			err = check(body)
		}
		if err == nil {
			return body, nil
		}

		var re *RetriableError
		if !errors.As(err, &re) {
			return nil, err
		}
		lastErr = err
		metrics.RecordAPIRetry(endpoint, re.Reason)

		if re.Reason == reasonAuth {
			if relogged {
				return nil, &AuthError{StatusCode: re.StatusCode, IntuitTID: re.IntuitTID, Err: re}
			}
			relogged = true
			logging.Ctx(ctx).Warn().Str("endpoint", endpoint).Int("status", re.StatusCode).Msg("Access token rejected, logging in again")
			if err := c.session.Relogin(ctx, token); err != nil {
				return nil, err
			}
			continue
		}

		if attempt == c.maxRetries-1 {
			break
		}

		delay := bo.NextBackOff()
		if re.Reason == reasonRateLimit {
			delay = c.cooldown
		}
		logging.Ctx(ctx).Warn().
			Str("endpoint", endpoint).
			Str("reason", re.Reason).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(re.Err).
			Msg("Retrying request")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%s: giving up after %d attempts: %w", endpoint, c.maxRetries, lastErr)
}

// attempt sends one request and classifies the response. It returns the
// access token it sent so a re-login can tell whether it is stale.
func (c *Client) attempt(ctx context.Context, endpoint string, params url.Values) ([]byte, string, error) {
	token := c.session.AccessToken()
	reqURL := c.instanceURL + "/" + endpoint

	fullURL := reqURL
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, token, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, token, ctxErr
		}
		metrics.RecordAPIRequest(endpoint, "error", time.Since(start))
		return nil, token, &RetriableError{Reason: reasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	metrics.RecordAPIRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.usage.Record(logging.StreamFromContext(ctx), http.MethodGet, reqURL, params, resp.StatusCode)

	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, token, &RetriableError{Reason: reasonNetwork, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
		}
		if err := c.quota.Observe(resp.Header.Get(QuotaHeader)); err != nil {
			return nil, token, err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, token, &RetriableError{Reason: reasonInvalidBody, StatusCode: resp.StatusCode, Err: errors.New("empty response body")}
		}
		return body, token, nil
	}

	tid := resp.Header.Get("intuit_tid")
	body := readBodyForError(resp.Body)
	logging.Ctx(ctx).Error().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Str("intuit_tid", tidOrNA(tid)).
		Str("response", truncate(string(body), 1024)).
		Msg("Request failed")

	return nil, token, classifyStatus(endpoint, resp.StatusCode, tid, body)
}

// classifyStatus maps a non-200 response to an error category.
func classifyStatus(endpoint string, status int, tid string, body []byte) error {
	bodyErr := errors.New(truncate(string(body), 512))
	switch {
	case status == http.StatusTooManyRequests:
		return &RetriableError{Reason: reasonRateLimit, StatusCode: status, IntuitTID: tid, Err: bodyErr}
	case status == http.StatusUnauthorized:
		return &RetriableError{Reason: reasonAuth, StatusCode: status, IntuitTID: tid, Err: bodyErr}
	case (status == http.StatusBadRequest || status == http.StatusInternalServerError) && bytes.Contains(body, authFailureMarker):
		return &RetriableError{Reason: reasonAuth, StatusCode: status, IntuitTID: tid, Err: bodyErr}
	case isQueryTimeout(body):
		return &QueryTimeoutError{Body: string(body)}
	case status >= 500:
		return &RetriableError{Reason: reasonServerError, StatusCode: status, IntuitTID: tid, Err: bodyErr}
	default:
		return &APIError{StatusCode: status, Endpoint: endpoint, Body: string(body), IntuitTID: tid}
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
