// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import "github.com/tomtom215/ledgerline/internal/report"

// Chunk lengths of full profit and loss syncs, in days.
const (
	profitAndLossChunkDays       = 31
	profitAndLossDetailChunkDays = 365
)

// ProfitAndLossDetailColumns are the display columns requested for the
// profit and loss detail report.
var ProfitAndLossDetailColumns = []string{
	"create_by", "create_date", "doc_num", "last_mod_by", "last_mod_date",
	"memo", "name", "pmt_mthd", "split_acc", "tx_date", "txn_type",
	"tax_code", "klass_name", "dept_name", "debt_amt", "debt_home_amt",
	"credit_amt", "credit_home_amt", "currency", "exch_rate",
	"nat_open_bal", "nat_home_open_bal", "nat_foreign_open_bal",
	"subt_nat_amount", "subt_nat_home_amount", "subt_nat_amount_nt",
	"subt_nat_amount_home_nt", "rbal_nat_amount", "rbal_nat_home_amount",
	"rbal_nat_amount_nt", "rbal_nat_amount_home_nt", "tax_amount",
	"home_tax_amount", "net_amount", "home_net_amount",
}

// TransactionListColumns are the display columns requested for the
// transaction list report.
var TransactionListColumns = []string{
	"account_name", "create_by", "create_date", "cust_msg", "due_date",
	"doc_num", "inv_date", "is_ap_paid", "is_cleared", "is_no_post",
	"last_mod_by", "memo", "name", "other_account", "pmt_mthd", "printed",
	"sales_cust1", "sales_cust2", "sales_cust3", "term_name",
	"tracking_num", "tx_date", "txn_type", "dept_name", "subt_nat_amount",
}

// reportVariants returns the report catalogue in registration order.
func reportVariants() []*reportVariant {
	return []*reportVariant{
		{
			name:     "BalanceSheetReport",
			entity:   "BalanceSheet",
			method:   Accrual,
			schema:   report.Schema{AmountField: "Total", NumericFields: []string{"Total"}},
			windows:  resumable(snapshot, lastPeriods),
			gainLoss: true,
		},
		{
			name:      "MonthlyBalanceSheetReport",
			entity:    "BalanceSheet",
			method:    Accrual,
			summarize: "Month",
			windows:   resumable(snapshot, lastPeriods),
			decorate:  []decorator{periodTotals("MonthlyTotal"), periodBounds},
		},
		{
			name:    "CashFlowReport",
			entity:  "CashFlow",
			method:  Accrual,
			schema:  report.Schema{AmountField: "Total", NumericFields: []string{"Total"}},
			windows: resumable(snapshotFuture, lastPeriods),
		},
		{
			name:      "DailyCashFlowReport",
			entity:    "CashFlow",
			method:    Accrual,
			summarize: "Days",
			schema:    report.Schema{AmountField: "Total", NumericFields: []string{"Total"}},
			windows:   rollingDaily,
			decorate:  []decorator{periodTotals("DailyTotal", "Total")},
		},
		{
			name:      "MonthlyCashFlowReport",
			entity:    "CashFlow",
			method:    Accrual,
			summarize: "Month",
			schema:    report.Schema{AmountField: "Total", NumericFields: []string{"Total"}},
			windows:   resumable(snapshot, lastPeriods),
			decorate:  []decorator{periodTotals("MonthlyTotal", "Total"), periodBounds},
		},
		{
			name:     "ARAgingSummaryReport",
			entity:   "AgedReceivables",
			method:   Accrual,
			schema:   report.Schema{AmountField: "Total", Flat: true},
			windows:  snapshot,
			decorate: []decorator{periodBounds},
		},
		{
			name:    "APAgingSummaryReport",
			entity:  "AgedPayables",
			method:  Accrual,
			schema:  report.Schema{AmountField: "Total", Flat: true},
			windows: snapshot,
			aging:   true,
		},
		{
			name:    "ARAgingDetailReport",
			entity:  "AgedReceivableDetail",
			method:  Accrual,
			schema:  report.Schema{Flat: true},
			windows: snapshot,
			aging:   true,
		},
		{
			name:    "TransactionListReport",
			entity:  "TransactionList",
			method:  Accrual,
			columns: TransactionListColumns,
			schema:  report.Schema{AmountField: "Amount", NumericFields: []string{"Amount"}},
			windows: resumable(snapshot, lastPeriods),
		},
		{
			name:   "ProfitAndLossReport",
			entity: "ProfitAndLoss",
			method: Accrual,
			schema: report.Schema{
				AmountField:   "Total",
				NumericFields: []string{"Total"},
				TrackAccount:  true,
			},
			windows: resumable(chunked(profitAndLossChunkDays), lastPeriods),
		},
		{
			name:    "ProfitAndLossDetailReport",
			entity:  "ProfitAndLossDetail",
			method:  Accrual,
			columns: ProfitAndLossDetailColumns,
			schema: report.Schema{
				AmountField:   "Amount",
				NumericFields: []string{"Amount", "Balance"},
				DateFields:    []string{"Date"},
				TrackAccount:  true,
			},
			windows: resumable(chunked(profitAndLossDetailChunkDays), lastPeriods),
		},
	}
}

// Entities lists the entity streams queried through the query endpoint.
var Entities = []string{
	"Account", "Attachable", "Bill", "BillPayment", "Budget", "Class",
	"CompanyInfo", "CreditMemo", "Customer", "Department", "Deposit",
	"Employee", "Estimate", "Invoice", "Item", "JournalEntry", "Payment",
	"PaymentMethod", "Preferences", "Purchase", "PurchaseOrder",
	"RefundReceipt", "SalesReceipt", "TaxAgency", "TaxCode", "TaxRate",
	"Term", "TimeActivity", "Transfer", "Vendor", "VendorCredit",
}
