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

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/partition"
	"github.com/tomtom215/ledgerline/internal/report"
)

const (
	generalLedgerEntity = "GeneralLedger"

	// generalLedgerDateColumn is kept in every column batch so stitched
	// rows stay aligned.
	generalLedgerDateColumn = "tx_date"
)

// GeneralLedgerColumns are the 42 display columns of the general ledger.
var GeneralLedgerColumns = []string{
	"account_name", "chk_print_state", "create_by", "create_date",
	"cust_name", "doc_num", "emp_name", "inv_date", "is_adj", "is_ap_paid",
	"is_ar_paid", "is_cleared", "item_name", "last_mod_by", "last_mod_date",
	"memo", "name", "quantity", "rate", "split_acc", "tx_date", "txn_type",
	"vend_name", "net_amount", "tax_amount", "tax_code", "account_num",
	"klass_name", "dept_name", "debt_amt", "credit_amt", "nat_open_bal",
	"subt_nat_amount", "subt_nat_amount_nt", "debt_home_amt",
	"credit_home_amt", "currency", "exch_rate", "nat_home_open_bal",
	"nat_foreign_open_bal", "subt_nat_home_amount", "subt_nat_amount_home_nt",
}

// GeneralLedgerBasicColumns is the reduced column set used with gl_basic_fields.
var GeneralLedgerBasicColumns = []string{
	"tx_date", "txn_type", "doc_num", "name", "memo", "account_name",
	"split_acc", "subt_nat_amount", "debt_amt", "credit_amt",
}

var generalLedgerSchema = report.Schema{
	AmountField:   "Amount",
	NumericFields: []string{"Amount", "Debit", "Credit", "Balance"},
}

// ledgerReader reads the general ledger through the adaptive partitioner.
type ledgerReader struct {
	name   string
	method string
	deps   Deps
}

func ledgerDescriptor(name string) Descriptor {
	return Descriptor{Name: name, Kind: KindReport, KeyProperties: []string{}}
}

func (r *ledgerReader) columns() []string {
	if r.deps.Options.GLBasicFields {
		return GeneralLedgerBasicColumns
	}
	return GeneralLedgerColumns
}

func (r *ledgerReader) initial() partition.Granularity {
	switch {
	case r.deps.Options.GLDaily:
		return partition.Daily
	case r.deps.Options.GLWeekly:
		return partition.Weekly
	default:
		return partition.Monthly
	}
}

// start returns the first day to request. A resumed run re-reads the
// current month and the ReportPeriods-1 months before it unless a full
// ledger sync is forced.
func (r *ledgerReader) start(today time.Time) time.Time {
	if !r.deps.Resumed || r.deps.Options.GLFullSync {
		return r.deps.StartDate
	}
	n := r.deps.Options.reportPeriods()
	return time.Date(today.Year(), today.Month()-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)
}

func (r *ledgerReader) Read(ctx context.Context, emit func(report.Record) error) error {
	now := r.deps.now()
	start := r.start(now)

	p := partition.New(partition.Config{
		Report:          r.name,
		Workers:         r.deps.Options.PartitionWorkers,
		ColumnBatchSize: r.deps.Options.ColumnBatchSize,
		DateColumn:      generalLedgerDateColumn,
		Initial:         r.initial(),
	}, r.fetch)

	logging.Ctx(ctx).Info().
		Str("report", generalLedgerEntity).
		Str("accounting_method", r.method).
		Str("span", partition.Window{Start: partition.Day(start), End: partition.Day(now)}.String()).
		Msg("Fetching general ledger")

	err := p.Run(ctx, start, now, r.columns(), func(res partition.Result) error {
		for rec := range report.Finalize(res.Lines, generalLedgerSchema, now) {
			if err := emit(rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("report", generalLedgerEntity).
		Stringer("granularity", p.State()).
		Msg("General ledger fetched")
	return nil
}

func (r *ledgerReader) fetch(ctx context.Context, w partition.Window, columns []string) ([]report.Line, error) {
	params := url.Values{}
	params.Set("start_date", w.Start.Format(time.DateOnly))
	params.Set("end_date", w.End.Format(time.DateOnly))
	params.Set("accounting_method", r.method)
	params.Set("columns", strings.Join(columns, ","))

	resp, err := r.deps.Client.GetReport(ctx, generalLedgerEntity, params)
	if err != nil {
		return nil, err
	}
	return report.Extract(resp, generalLedgerSchema), nil
}
