// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package partition

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
	"github.com/tomtom215/ledgerline/internal/report"
)

// Defaults for Config.
const (
	DefaultWorkers         = 10
	DefaultColumnBatchSize = 10
)

// Fetcher requests one window of a report restricted to columns and returns
// the extracted (unfiltered) lines. A response truncated by the upstream data
// volume ceiling must be reported as an error wrapping report.ErrDataVolumeCeiling.
type Fetcher func(ctx context.Context, w Window, columns []string) ([]report.Line, error)

// Config holds partitioner configuration.
type Config struct {
	// Report names the report in logs, metrics and errors.
	Report string

	// Workers bounds concurrent requests. Default: 10
	Workers int

	// ColumnBatchSize is the number of columns per request once a single day
	// still exceeds the ceiling, including the date column. Default: 10
	ColumnBatchSize int

	// DateColumn is added to every column batch so rows stay aligned.
	DateColumn string

	// Initial is the granularity a run starts (and resets) at. Default: Monthly
	Initial Granularity
}

// Result is the output of one successfully fetched window.
type Result struct {
	Window Window
	Lines  []report.Line
}

// EscalationError is returned when a window could not be fetched at any
// granularity.
type EscalationError struct {
	Report string
	Window Window
	Err    error
}

func (e *EscalationError) Error() string {
	return fmt.Sprintf("%s: window %s exceeded the data volume ceiling at every granularity: %v", e.Report, e.Window, e.Err)
}

func (e *EscalationError) Unwrap() error {
	return e.Err
}

// Partitioner runs the adaptive window state machine for one report.
// A Partitioner is not safe for concurrent Runs.
type Partitioner struct {
	cfg   Config
	fetch Fetcher
	state Granularity
}

// New creates a Partitioner. Zero config values are replaced by defaults.
func New(cfg Config, fetch Fetcher) *Partitioner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ColumnBatchSize <= 1 {
		cfg.ColumnBatchSize = DefaultColumnBatchSize
	}
	if cfg.Initial > Daily {
		cfg.Initial = Daily
	}
	return &Partitioner{cfg: cfg, fetch: fetch, state: cfg.Initial}
}

// State returns the granularity of the most recent window decision.
func (p *Partitioner) State() Granularity {
	return p.state
}

// Run fetches [start, end] and calls emit once per successful window in issue
// order. Windows are fetched in batches of at most Workers concurrent
// requests. Errors other than the data volume ceiling abort the run.
func (p *Partitioner) Run(ctx context.Context, start, end time.Time, columns []string, emit func(Result) error) error {
	p.state = p.cfg.Initial
	windows := Split(start, end, p.cfg.Initial)

	logging.Ctx(ctx).Debug().
		Str("report", p.cfg.Report).
		Str("span", Window{Start: Day(start), End: Day(end)}.String()).
		Int("windows", len(windows)).
		Str("granularity", p.cfg.Initial.String()).
		Msg("Partitioned report range")

	return p.runWindows(ctx, windows, columns, emit)
}

func (p *Partitioner) runWindows(ctx context.Context, windows []Window, columns []string, emit func(Result) error) error {
	for batch := range slices.Chunk(windows, p.cfg.Workers) {
		jobs := make([]fetchJob, len(batch))
		for i, w := range batch {
			jobs[i] = fetchJob{window: w, columns: columns}
		}

		// The pool is joined before any outcome is evaluated.
		outcomes := p.fetchAll(ctx, jobs)

		for _, o := range outcomes {
			switch {
			case o.err == nil:
				metrics.RecordWindowFetched(p.cfg.Report, o.window.Granularity.String())
				p.state = p.cfg.Initial
				if err := emit(Result{Window: o.window, Lines: o.lines}); err != nil {
					return err
				}
			case errors.Is(o.err, report.ErrDataVolumeCeiling):
				if err := p.escalate(ctx, o.window, columns, emit); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%s: fetch window %s: %w", p.cfg.Report, o.window, o.err)
			}
		}
	}
	return nil
}

// escalate re-issues a ceiling-bound window at the next finer granularity.
func (p *Partitioner) escalate(ctx context.Context, w Window, columns []string, emit func(Result) error) error {
	next := w.Granularity.Next()
	// A single day cannot be narrowed by date any further.
	if next < ColumnBatched && w.Days() == 1 {
		next = ColumnBatched
	}

	logging.Ctx(ctx).Info().
		Str("report", p.cfg.Report).
		Str("window", w.String()).
		Str("from", w.Granularity.String()).
		Str("to", next.String()).
		Msg("Data volume ceiling hit, narrowing window")
	metrics.RecordPartitionEscalation(p.cfg.Report, w.Granularity.String(), next.String())
	p.state = next

	if next == ColumnBatched {
		return p.columnBatched(ctx, Window{Start: w.Start, End: w.End, Granularity: ColumnBatched}, columns, emit)
	}
	return p.runWindows(ctx, Split(w.Start, w.End, next), columns, emit)
}

// columnBatched fetches one day once per column batch and stitches the
// batches back together by row index. This is the last degradation.
func (p *Partitioner) columnBatched(ctx context.Context, w Window, columns []string, emit func(Result) error) error {
	fail := func(err error) error {
		p.state = Failed
		metrics.RecordPartitionEscalation(p.cfg.Report, ColumnBatched.String(), Failed.String())
		logging.Ctx(ctx).Error().Err(err).
			Str("report", p.cfg.Report).
			Str("window", w.String()).
			Msg("Column batched fetch failed")
		return &EscalationError{Report: p.cfg.Report, Window: w, Err: err}
	}

	batches := ColumnBatches(columns, p.cfg.DateColumn, p.cfg.ColumnBatchSize)
	if len(batches) < 2 {
		return fail(fmt.Errorf("%d columns cannot be split further: %w", len(columns), report.ErrDataVolumeCeiling))
	}

	jobs := make([]fetchJob, len(batches))
	for i, cols := range batches {
		jobs[i] = fetchJob{window: w, columns: cols}
	}
	outcomes := p.fetchAll(ctx, jobs)

	parts := make([][]report.Line, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			return fail(fmt.Errorf("column batch %d: %w", i, o.err))
		}
		parts[i] = o.lines
	}

	lines, err := report.Stitch(parts)
	if err != nil {
		return fail(err)
	}

	metrics.RecordWindowFetched(p.cfg.Report, ColumnBatched.String())
	p.state = p.cfg.Initial
	return emit(Result{Window: w, Lines: lines})
}

type fetchJob struct {
	index   int
	window  Window
	columns []string
}

type fetchOutcome struct {
	window Window
	lines  []report.Line
	err    error
}

// fetchAll runs jobs on a bounded worker pool and returns outcomes in job order.
func (p *Partitioner) fetchAll(ctx context.Context, jobs []fetchJob) []fetchOutcome {
	type indexed struct {
		index   int
		outcome fetchOutcome
	}

	results := make(chan indexed, len(jobs))
	jobChan := make(chan fetchJob, len(jobs))
	var wg sync.WaitGroup

	workerCount := p.cfg.Workers
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				out := fetchOutcome{window: job.window}
				if err := ctx.Err(); err != nil {
					out.err = err
				} else {
					out.lines, out.err = p.fetch(ctx, job.window, job.columns)
				}
				results <- indexed{index: job.index, outcome: out}
			}
		}()
	}

	for i, job := range jobs {
		job.index = i
		jobChan <- job
	}
	close(jobChan)

	wg.Wait()
	close(results)

	outcomes := make([]fetchOutcome, len(jobs))
	for r := range results {
		outcomes[r.index] = r.outcome
	}
	return outcomes
}

// ColumnBatches splits columns into groups of at most size entries. dateColumn,
// when set, leads every group so that batches share a row key.
func ColumnBatches(columns []string, dateColumn string, size int) [][]string {
	if size < 2 {
		size = 2
	}

	rest := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != dateColumn {
			rest = append(rest, c)
		}
	}

	per := size
	if dateColumn != "" {
		per = size - 1
	}

	var out [][]string
	for chunk := range slices.Chunk(rest, per) {
		batch := make([]string, 0, size)
		if dateColumn != "" {
			batch = append(batch, dateColumn)
		}
		batch = append(batch, chunk...)
		out = append(out, batch)
	}
	return out
}
