// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/ledgerline/internal/config"
	"github.com/tomtom215/ledgerline/internal/quickbooks"
	"github.com/tomtom215/ledgerline/internal/report"
	"github.com/tomtom215/ledgerline/internal/state"
)

// EntityReplicationKey is the replication key of every entity stream.
const EntityReplicationKey = "MetaData.LastUpdatedTime"

// Kind separates report streams from entity streams.
type Kind int

const (
	KindReport Kind = iota
	KindEntity
)

func (k Kind) String() string {
	if k == KindEntity {
		return "entity"
	}
	return "report"
}

// Descriptor describes one extractable stream.
type Descriptor struct {
	Name           string
	Kind           Kind
	ReplicationKey string
	KeyProperties  []string
}

// Stream returns the view of the descriptor used by the state manager.
func (d Descriptor) Stream() state.Stream {
	return state.Stream{ID: d.Name, ReplicationKey: d.ReplicationKey}
}

// ReplicationMethod is INCREMENTAL for streams with a replication key and
// FULL_TABLE otherwise.
func (d Descriptor) ReplicationMethod() string {
	return d.Stream().Method()
}

// Reader produces the records of one stream.
type Reader interface {
	Read(ctx context.Context, emit func(report.Record) error) error
}

// Client is the upstream API surface readers depend on. *quickbooks.Client
// implements it.
type Client interface {
	GetReport(ctx context.Context, name string, params url.Values) (*report.Response, error)
	QueryEntities(ctx context.Context, q quickbooks.EntityQuery, emit func(quickbooks.Record) error) error
}

// Options are the per-run knobs that change what a reader requests.
type Options struct {
	// ReportPeriods is the number of months re-read when a report resumes.
	ReportPeriods int

	// ReportPeriodDays replaces the start date of the daily cash flow with
	// today minus this many days. Zero disables it.
	ReportPeriodDays int

	GLFullSync    bool
	GLWeekly      bool
	GLDaily       bool
	GLBasicFields bool

	IncludeDeleted bool

	// AgingReportDates are as-of dates (YYYY-MM-DD) for aging reports.
	AgingReportDates []string

	AdjustedGainLoss        bool
	FetchFutureTransactions bool

	PartitionWorkers int
	ColumnBatchSize  int
}

// OptionsFromConfig copies the reader options out of the sync configuration.
func OptionsFromConfig(c *config.SyncConfig) Options {
	return Options{
		ReportPeriods:           c.ReportPeriods,
		ReportPeriodDays:        c.ReportPeriodDays,
		GLFullSync:              c.GLFullSync,
		GLWeekly:                c.GLWeekly,
		GLDaily:                 c.GLDaily,
		GLBasicFields:           c.GLBasicFields,
		IncludeDeleted:          c.IncludeDeleted,
		AgingReportDates:        c.AgingReportDates(),
		AdjustedGainLoss:        c.PNLAdjustedGainLoss,
		FetchFutureTransactions: c.FetchFutureTransactions,
		PartitionWorkers:        c.PartitionWorkers,
		ColumnBatchSize:         c.ColumnBatchSize,
	}
}

func (o Options) reportPeriods() int {
	if o.ReportPeriods < 1 {
		return 3
	}
	return o.ReportPeriods
}

// Deps carries everything a reader needs for one run.
type Deps struct {
	Client Client

	// StartDate is the resolved start: the stream bookmark when present,
	// otherwise the configured start date.
	StartDate time.Time

	// Resumed is true when prior state was supplied for this run. Report
	// readers then re-read only the most recent periods.
	Resumed bool

	Options Options

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// BookmarkValue returns the string at a dotted path such as
// MetaData.LastUpdatedTime.
func BookmarkValue(rec report.Record, path string) (string, bool) {
	var cur any = map[string]any(rec)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok && s != ""
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case report.Record:
		return m, true
	case quickbooks.Record:
		return m, true
	}
	return nil, false
}
