// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package streams maps stream names to readers.

Every extractable stream is described by a Descriptor (name, replication key,
key properties) and produced by a Reader. Two families are registered by
NewRegistry:

  - Report streams (BalanceSheetReport, GeneralLedgerAccrualReport, ...):
    full-table snapshots of upstream pivot-table reports, flattened with
    package report.
  - Entity streams (Invoice, Customer, ...): incremental queries on
    MetaData.LastUpdatedTime through quickbooks.Client.QueryEntities.

# Report Variants

A report variant fixes the upstream report name, accounting method, display
columns and a window policy:

	snapshot      one request from the start date to today
	last periods  current month to date plus the preceding months (resume)
	chunks        consecutive fixed-length windows (profit and loss)
	rolling       33-month windows ending yesterday (daily cash flow)
	partitioned   adaptive windows from package partition (general ledger)

Aging variants run once per configured report date and tag every record with
report_date.

# Dispatch

	reg := streams.NewRegistry()
	r, err := reg.Reader("ProfitAndLossReport", streams.Deps{
	    Client:    client,
	    StartDate: start,
	    Resumed:   resumed,
	    Options:   streams.OptionsFromConfig(&cfg.Sync),
	})
	err = r.Read(ctx, func(rec report.Record) error { ... })

Reader construction is a pure mapping. Readers do no I/O until Read.
*/
package streams
