// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
	"github.com/tomtom215/ledgerline/internal/partition"
	"github.com/tomtom215/ledgerline/internal/report"
)

// Accounting methods.
const (
	Accrual = "Accrual"
	Cash    = "Cash"
)

// FieldReportDate tags records of aging reports with their as-of date.
const FieldReportDate = "report_date"

// futureEnd is the end date used when future-dated transactions are requested.
var futureEnd = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// windowPolicy returns the windows one run requests.
type windowPolicy func(d Deps, today time.Time) []partition.Window

// decorator adds derived fields to a finalized record.
type decorator func(rec report.Record, columns []string, w partition.Window)

// reportVariant is the static description of one report stream.
type reportVariant struct {
	name      string
	entity    string // upstream report name
	method    string
	summarize string
	columns   []string
	schema    report.Schema
	windows   windowPolicy

	// aging runs one pass per configured report date.
	aging bool

	// gainLoss sends adjusted_gain_loss when Options.AdjustedGainLoss is set.
	gainLoss bool

	decorate []decorator
}

func (v *reportVariant) descriptor() Descriptor {
	return Descriptor{Name: v.name, Kind: KindReport, KeyProperties: []string{}}
}

func (v *reportVariant) params(w partition.Window, reportDate string, o Options) url.Values {
	p := url.Values{}
	p.Set("start_date", w.Start.Format(time.DateOnly))
	p.Set("end_date", w.End.Format(time.DateOnly))
	p.Set("accounting_method", v.method)
	if v.summarize != "" {
		p.Set("summarize_column_by", v.summarize)
	}
	if len(v.columns) > 0 {
		p.Set("columns", strings.Join(v.columns, ","))
	}
	if v.gainLoss && o.AdjustedGainLoss {
		p.Set("adjusted_gain_loss", "true")
	}
	if reportDate != "" {
		p.Set("aging_method", "Report_Date")
		p.Set("report_date", reportDate)
	}
	return p
}

// reportReader reads a report variant window by window.
type reportReader struct {
	v    *reportVariant
	deps Deps
}

func (r *reportReader) Read(ctx context.Context, emit func(report.Record) error) error {
	now := r.deps.now()
	windows := r.v.windows(r.deps, now)

	dates := []string{""}
	if r.v.aging && len(r.deps.Options.AgingReportDates) > 0 {
		dates = r.deps.Options.AgingReportDates
	}

	for _, w := range windows {
		for _, date := range dates {
			if err := r.readWindow(ctx, w, date, now, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *reportReader) readWindow(ctx context.Context, w partition.Window, reportDate string, now time.Time, emit func(report.Record) error) error {
	event := logging.Ctx(ctx).Info().
		Str("report", r.v.entity).
		Str("window", w.String())
	if reportDate != "" {
		event = event.Str("report_date", reportDate)
	}
	event.Msg("Fetching report")

	resp, err := r.deps.Client.GetReport(ctx, r.v.entity, r.v.params(w, reportDate, r.deps.Options))
	if err != nil {
		return err
	}
	metrics.RecordWindowFetched(r.v.name, w.Granularity.String())

	columns := report.ColumnNames(resp.Columns)
	for rec := range report.Flatten(resp, r.v.schema, now) {
		if r.v.aging {
			rec[FieldReportDate] = reportDate
			if reportDate == "" {
				rec[FieldReportDate] = w.End.Format(time.DateOnly)
			}
		}
		for _, d := range r.v.decorate {
			d(rec, columns, w)
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}

// Window policies.

// snapshot requests [start, today] in one window.
func snapshot(d Deps, today time.Time) []partition.Window {
	return single(d.StartDate, today)
}

// snapshotFuture is snapshot with the end moved to 2099-12-31 when future
// transactions are requested.
func snapshotFuture(d Deps, today time.Time) []partition.Window {
	if d.Options.FetchFutureTransactions {
		return single(d.StartDate, futureEnd)
	}
	return single(d.StartDate, today)
}

func lastPeriods(d Deps, today time.Time) []partition.Window {
	return partition.LastPeriods(today, d.Options.reportPeriods())
}

// chunked covers [start, today] with windows of days days. With future
// transactions the last window is stretched to 2099-12-31.
func chunked(days int) windowPolicy {
	return func(d Deps, today time.Time) []partition.Window {
		windows := partition.Chunks(d.StartDate, today, days)
		if d.Options.FetchFutureTransactions && len(windows) > 0 {
			windows[len(windows)-1].End = futureEnd
		}
		return windows
	}
}

// rollingDaily covers [start, yesterday] in windows of at most 33 months.
// A positive ReportPeriodDays replaces the start with today minus that many
// days and applies on resume as well.
func rollingDaily(d Deps, today time.Time) []partition.Window {
	start := d.StartDate
	if n := d.Options.ReportPeriodDays; n > 0 {
		start = partition.Day(today).AddDate(0, 0, -n)
	} else if d.Resumed {
		return lastPeriods(d, today)
	}
	return partition.RollingWindows(start, today, partition.MaxLookbackMonths)
}

// resumable uses full on a fresh run and resume when state was supplied.
func resumable(full, resume windowPolicy) windowPolicy {
	return func(d Deps, today time.Time) []partition.Window {
		if d.Resumed {
			return resume(d, today)
		}
		return full(d, today)
	}
}

func single(start, end time.Time) []partition.Window {
	start, end = partition.Day(start), partition.Day(end)
	if start.After(end) {
		return nil
	}
	return []partition.Window{{Start: start, End: end, Granularity: partition.Monthly}}
}

// Decorators.

// periodBounds adds StartDate and EndDate of the requested window.
func periodBounds(rec report.Record, _ []string, w partition.Window) {
	rec["StartDate"] = w.Start.Format(time.DateOnly)
	rec["EndDate"] = w.End.Format(time.DateOnly)
}

// periodTotals collects the per-period columns of a summarized report into
// field as a list of single-entry objects, in column order.
func periodTotals(field string, exclude ...string) decorator {
	return func(rec report.Record, columns []string, _ partition.Window) {
		totals := make([]map[string]any, 0, len(columns))
		for _, c := range columns {
			if c == report.FieldAccount || slices.Contains(exclude, c) {
				continue
			}
			if v, ok := rec[c]; ok {
				totals = append(totals, map[string]any{c: v})
			}
		}
		rec[field] = totals
	}
}
