// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package partition splits a report date range into windows small enough for the
upstream report endpoint to answer without truncation.

Reports such as the general ledger are rejected with a data volume ceiling when
a single response would carry too many rows. The only signal is a text sentinel
inside an otherwise successful body (see report.ErrDataVolumeCeiling). The
Partitioner reacts by narrowing the offending window:

	Monthly -> Weekly -> Daily -> ColumnBatched -> Failed

Windows are fetched by a short-lived worker pool that is joined before any
escalation decision is taken, so the granularity state is only ever touched by
the coordinating goroutine. A window that succeeds resets the run back to the
initial granularity; only the window that hit the ceiling is re-issued at the
finer level.

At Daily granularity a window that still hits the ceiling is fetched once per
column batch (the date column is included in every batch) and the batches are
stitched back together by row index with report.Stitch. If that fails the run
is Failed and an *EscalationError naming the window is returned.

# Coverage

For any span and any escalation path the windows handed to the emit callback
cover [start, end] exactly once, with no gaps and no overlaps. Emission follows
window issue order.

# Usage

	p := partition.New(partition.Config{Report: "GeneralLedger"}, fetch)
	err := p.Run(ctx, start, end, columns, func(r partition.Result) error {
	    for rec := range report.Finalize(r.Lines, schema, time.Now()) {
	        ...
	    }
	    return nil
	})
*/
package partition
