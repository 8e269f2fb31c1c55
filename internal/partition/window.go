// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package partition

import (
	"fmt"
	"time"
)

// Granularity is the size of the windows a run is currently issuing.
type Granularity int

const (
	Monthly Granularity = iota
	Weekly
	Daily
	ColumnBatched
	Failed
)

func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Weekly:
		return "weekly"
	case Daily:
		return "daily"
	case ColumnBatched:
		return "column_batched"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Next returns the next finer granularity. Failed is terminal.
func (g Granularity) Next() Granularity {
	if g >= Failed {
		return Failed
	}
	return g + 1
}

// Window is an inclusive date range issued as one upstream request.
// Start and End are calendar dates at UTC midnight.
type Window struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

func (w Window) String() string {
	return w.Start.Format(time.DateOnly) + ".." + w.End.Format(time.DateOnly)
}

// Days returns the number of calendar days in the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Split partitions the inclusive range [start, end] into windows of the given
// granularity. Monthly windows follow calendar months; the first and last may
// be partial. Weekly windows are consecutive 7-day chunks from start. Daily
// and ColumnBatched windows are single days. An empty slice is returned when
// end is before start.
func Split(start, end time.Time, g Granularity) []Window {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}

	var out []Window
	for cur := start; !cur.After(end); {
		var last time.Time
		switch g {
		case Monthly:
			last = time.Date(cur.Year(), cur.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		case Weekly:
			last = cur.AddDate(0, 0, 6)
		default:
			last = cur
		}
		if last.After(end) {
			last = end
		}
		out = append(out, Window{Start: cur, End: last, Granularity: g})
		cur = last.AddDate(0, 0, 1)
	}
	return out
}

// LastPeriods returns the current month to date followed by the n-1 preceding
// calendar months, newest first. It is the resume window of incremental reports.
func LastPeriods(today time.Time, n int) []Window {
	today = Day(today)
	out := make([]Window, 0, n)
	end := today
	for i := 0; i < n; i++ {
		start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, Window{Start: start, End: end, Granularity: Monthly})
		end = start.AddDate(0, 0, -1)
	}
	return out
}

// Chunks splits [start, end] into consecutive windows of at most days days.
func Chunks(start, end time.Time, days int) []Window {
	start, end = Day(start), Day(end)
	if days < 1 {
		days = 1
	}
	var out []Window
	for cur := start; !cur.After(end); {
		last := cur.AddDate(0, 0, days-1)
		if last.After(end) {
			last = end
		}
		out = append(out, Window{Start: cur, End: last, Granularity: Monthly})
		cur = last.AddDate(0, 0, 1)
	}
	return out
}

// MaxLookbackMonths is the longest span a rolling daily report may request.
const MaxLookbackMonths = 33

// RollingWindows covers [start, yesterday] with windows of at most months
// calendar months each. No window ends after yesterday and no window ends
// before it starts. Used by daily summarized reports whose upstream response
// grows with the number of days.
func RollingWindows(start, now time.Time, months int) []Window {
	if months < 1 || months > MaxLookbackMonths {
		months = MaxLookbackMonths
	}
	start = Day(start)
	yesterday := Day(now).AddDate(0, 0, -1)

	var out []Window
	for cur := start; !cur.After(yesterday); {
		end := cur.AddDate(0, months, -1)
		if end.After(yesterday) {
			end = yesterday
		}
		if end.Before(cur) {
			end = cur
		}
		out = append(out, Window{Start: cur, End: end, Granularity: Monthly})
		cur = end.AddDate(0, 0, 1)
	}
	return out
}
