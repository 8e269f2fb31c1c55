// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package quickbooks

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ledgerline/internal/logging"
)

// UsageEntry is one line of the API usage log.
type UsageEntry struct {
	Timestamp      string       `json:"timestamp"`
	Stream         string       `json:"stream,omitempty"`
	Request        UsageRequest `json:"request"`
	ResponseStatus int          `json:"response_status"`
}

// UsageRequest describes the logged request. Sensitive parameters are masked.
type UsageRequest struct {
	Method string              `json:"method"`
	URL    string              `json:"url"`
	Params map[string][]string `json:"params,omitempty"`
}

// UsageLog appends one JSON object per request.
type UsageLog struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	now func() time.Time
}

// OpenUsageLog opens path for appending.
func OpenUsageLog(path string) (*UsageLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open api usage log: %w", err)
	}
	return &UsageLog{w: f, c: f, now: time.Now}, nil
}

// NewUsageLog writes entries to w.
func NewUsageLog(w io.Writer) *UsageLog {
	return &UsageLog{w: w, now: time.Now}
}

// Record writes one entry. Failures are logged, never returned: the usage
// log must not fail a sync.
func (u *UsageLog) Record(stream, method, rawURL string, params url.Values, status int) {
	if u == nil {
		return
	}
	entry := UsageEntry{
		Timestamp: u.now().UTC().Format(time.RFC3339),
		Stream:    stream,
		Request: UsageRequest{
			Method: method,
			URL:    rawURL,
		},
		ResponseStatus: status,
	}
	if len(params) > 0 {
		entry.Request.Params = logging.SanitizeQuery(params)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		logging.Err(err).Msg("Error encoding API usage entry")
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, err := u.w.Write(append(line, '\n')); err != nil {
		logging.Err(err).Msg("Error saving API usage")
	}
}

// Close closes the underlying file, if any.
func (u *UsageLog) Close() error {
	if u == nil || u.c == nil {
		return nil
	}
	return u.c.Close()
}
