// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package quickbooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ledgerline/internal/logging"
)

const (
	// QueryPageSize is the MAXRESULTS sent with every page.
	QueryPageSize = 100

	// queryTimeoutRetries bounds how often one range may be narrowed.
	queryTimeoutRetries = 4

	// queryTimeLayout is the literal format of replication key bounds.
	queryTimeLayout = "2006-01-02T15:04:05Z07:00"
)

// noActiveFlag lists entities that cannot be filtered on Active.
var noActiveFlag = map[string]bool{
	"Bill":         true,
	"Payment":      true,
	"Transfer":     true,
	"CompanyInfo":  true,
	"CreditMemo":   true,
	"Invoice":      true,
	"JournalEntry": true,
	"Preferences":  true,
	"Purchase":     true,
	"SalesReceipt": true,
	"TimeActivity": true,
	"BillPayment":  true,
	"Estimate":     true,
	"Attachable":   true,
}

// EntityQuery describes one entity extraction.
type EntityQuery struct {
	Entity string

	// ReplicationKey is the field compared against Start, for example
	// MetaData.LastUpdatedTime. Empty means a full table query.
	ReplicationKey string
	Start          time.Time

	// IncludeDeleted adds a second query for inactive rows where the
	// entity supports the Active flag.
	IncludeDeleted bool
}

// Record is one decoded entity row.
type Record map[string]any

// BuildQuery returns the base query for entity between start (exclusive)
// and end (inclusive). A zero end leaves the range open.
func BuildQuery(entity, key string, start, end time.Time) string {
	q := "SELECT * FROM " + entity
	if key == "" {
		return q
	}
	q += fmt.Sprintf(" WHERE %s > '%s'", key, start.UTC().Format(queryTimeLayout))
	if !end.IsZero() {
		q += fmt.Sprintf(" AND %s <= '%s'", key, end.UTC().Format(queryTimeLayout))
	}
	return q
}

// deletedQuery narrows q to inactive rows.
func deletedQuery(q string) string {
	if strings.Contains(q, "WHERE") {
		return strings.Replace(q, "WHERE", "WHERE Active = false AND", 1)
	}
	return q + " WHERE Active = false"
}

// QueryEntities pages through q and calls emit for every row. When the
// server times out on a range, the range end is moved halfway back toward
// the start and the narrower range is retried; once it succeeds the rest of
// the range up to the sync start is queried.
func (c *Client) QueryEntities(ctx context.Context, q EntityQuery, emit func(Record) error) error {
	syncStart := c.now().UTC()
	start := q.Start
	var end time.Time // zero: open range
	retries := queryTimeoutRetries

	for {
		base := BuildQuery(q.Entity, q.ReplicationKey, start, end)
		err := c.pageQuery(ctx, q, base, emit)

		var timeout *QueryTimeoutError
		switch {
		case err == nil:
			if end.IsZero() {
				return nil
			}
			start, end = end, time.Time{}
		case errors.As(err, &timeout) && q.ReplicationKey != "":
			retries--
			if retries == 0 {
				return fmt.Errorf("ran out of retries attempting to query QuickBooks object %s", q.Entity)
			}
			if end.IsZero() {
				end = syncStart
			}
			half := end.Sub(start) / 2
			if half < 24*time.Hour {
				return fmt.Errorf("attempting to query %s by a 0 day range from %s to %s",
					q.Entity, start.Format(queryTimeLayout), end.Format(queryTimeLayout))
			}
			end = end.Add(-half)
			logging.Ctx(ctx).Warn().
				Str("entity", q.Entity).
				Time("start", start).
				Time("end", end).
				Msg("Query timed out, narrowing the range")
		default:
			return err
		}
	}
}

// pageQuery walks STARTPOSITION pages of base until a short or empty page.
func (c *Client) pageQuery(ctx context.Context, q EntityQuery, base string, emit func(Record) error) error {
	withDeleted := q.IncludeDeleted && !noActiveFlag[q.Entity]

	for position := 1; ; position += QueryPageSize {
		var deleted []json.RawMessage
		if withDeleted {
			resp, err := c.Query(ctx, pageClause(deletedQuery(base), position))
			if err != nil {
				return err
			}
			deleted = resp.Entities(q.Entity)
		}

		resp, err := c.Query(ctx, pageClause(base, position))
		if err != nil {
			return err
		}
		if resp.MaxResults == 0 {
			return nil
		}

		rows := append(resp.Entities(q.Entity), deleted...)
		for _, raw := range rows {
			rec, err := decodeRecord(raw)
			if err != nil {
				return fmt.Errorf("decode %s row: %w", q.Entity, err)
			}
			if err := emit(rec); err != nil {
				return err
			}
		}

		if resp.MaxResults < QueryPageSize {
			return nil
		}
	}
}

func pageClause(q string, position int) string {
	return fmt.Sprintf("%s STARTPOSITION %d MAXRESULTS %d", q, position, QueryPageSize)
}

// QueryResponse is the decoded QueryResponse envelope.
type QueryResponse struct {
	MaxResults    int
	StartPosition int
	fields        map[string]json.RawMessage
}

// Entities returns the rows listed under entity.
func (r *QueryResponse) Entities(entity string) []json.RawMessage {
	raw, ok := r.fields[entity]
	if !ok {
		return nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}
	return rows
}

// Query runs one query statement.
func (c *Client) Query(ctx context.Context, statement string) (*QueryResponse, error) {
	params := url.Values{}
	params.Set("query", statement)
	params.Set("minorversion", strconv.Itoa(c.queryMinor))

	var out *QueryResponse
	_, err := c.get(ctx, "query", params, func(body []byte) error {
		resp, err := parseQueryResponse(body)
		if err != nil {
			return &RetriableError{Reason: reasonInvalidBody, StatusCode: 200, Err: err}
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseQueryResponse(body []byte) (*QueryResponse, error) {
	var envelope struct {
		QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if envelope.QueryResponse == nil {
		return nil, errors.New("response has no QueryResponse")
	}
	resp := &QueryResponse{fields: envelope.QueryResponse}
	if raw, ok := envelope.QueryResponse["maxResults"]; ok {
		if err := json.Unmarshal(raw, &resp.MaxResults); err != nil {
			return nil, fmt.Errorf("decode maxResults: %w", err)
		}
	}
	if raw, ok := envelope.QueryResponse["startPosition"]; ok {
		_ = json.Unmarshal(raw, &resp.StartPosition)
	}
	return resp, nil
}

func decodeRecord(raw json.RawMessage) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}
