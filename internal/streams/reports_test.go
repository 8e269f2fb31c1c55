// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBalanceSheet_FullSync(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: balanceSheetBody}
	got := readAll(t, "BalanceSheetReport", Deps{Client: client, StartDate: date("2021-01-01")})

	assertSpans(t, client.calls, "2021-01-01..2024-03-15")
	call := client.calls[0]
	if call.name != "BalanceSheet" {
		t.Errorf("report = %s, want BalanceSheet", call.name)
	}
	if m := call.params.Get("accounting_method"); m != Accrual {
		t.Errorf("accounting_method = %q, want %q", m, Accrual)
	}
	if call.params.Has("adjusted_gain_loss") {
		t.Error("adjusted_gain_loss sent without pnl_adjusted_gain_loss")
	}

	if len(got) != 2 {
		t.Fatalf("emitted %d records, want 2 (leaf and summary)", len(got))
	}
	leaf := got[0]
	if leaf["Account"] != "Checking" || leaf["AccountId"] != "35" {
		t.Errorf("leaf account = %v/%v, want Checking/35", leaf["Account"], leaf["AccountId"])
	}
	if leaf["Total"] != 1201.0 {
		t.Errorf("Total = %#v, want float64 1201", leaf["Total"])
	}
	if cats, _ := leaf["Categories"].([]string); !reflect.DeepEqual(cats, []string{"ASSETS"}) {
		t.Errorf("Categories = %v, want [ASSETS]", leaf["Categories"])
	}
	if got[1]["Account"] != "TotalASSETS" {
		t.Errorf("summary Account = %v, want TotalASSETS", got[1]["Account"])
	}
	if ts := leaf["SyncTimestampUtc"]; ts != "2024-03-15T10:00:00Z" {
		t.Errorf("SyncTimestampUtc = %v", ts)
	}
}

func TestBalanceSheet_AdjustedGainLoss(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: balanceSheetBody}
	readAll(t, "BalanceSheetReport", Deps{
		Client:    client,
		StartDate: date("2021-01-01"),
		Options:   Options{AdjustedGainLoss: true},
	})
	if v := client.calls[0].params.Get("adjusted_gain_loss"); v != "true" {
		t.Errorf("adjusted_gain_loss = %q, want true", v)
	}
}

func TestResumedReports_LastPeriods(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"BalanceSheetReport",
		"MonthlyBalanceSheetReport",
		"CashFlowReport",
		"MonthlyCashFlowReport",
		"TransactionListReport",
		"ProfitAndLossReport",
		"ProfitAndLossDetailReport",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			client := &fakeClient{body: balanceSheetBody}
			readAll(t, name, Deps{Client: client, StartDate: date("2020-01-01"), Resumed: true})
			assertSpans(t, client.calls,
				"2024-03-01..2024-03-15",
				"2024-02-01..2024-02-29",
				"2024-01-01..2024-01-31",
			)
		})
	}
}

func TestResumedReports_ConfiguredPeriods(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: balanceSheetBody}
	readAll(t, "CashFlowReport", Deps{
		Client:    client,
		StartDate: date("2020-01-01"),
		Resumed:   true,
		Options:   Options{ReportPeriods: 1},
	})
	assertSpans(t, client.calls, "2024-03-01..2024-03-15")
}

func TestCashFlow_FutureTransactions(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: balanceSheetBody}
	readAll(t, "CashFlowReport", Deps{
		Client:    client,
		StartDate: date("2023-06-01"),
		Options:   Options{FetchFutureTransactions: true},
	})
	assertSpans(t, client.calls, "2023-06-01..2099-12-31")
}

func TestProfitAndLoss_FullSyncChunks(t *testing.T) {
	t.Parallel()

	t.Run("31 day windows", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: balanceSheetBody}
		readAll(t, "ProfitAndLossReport", Deps{Client: client, StartDate: date("2024-01-01")})
		assertSpans(t, client.calls,
			"2024-01-01..2024-01-31",
			"2024-02-01..2024-03-02",
			"2024-03-03..2024-03-15",
		)
	})

	t.Run("future transactions stretch the last window", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: balanceSheetBody}
		readAll(t, "ProfitAndLossReport", Deps{
			Client:    client,
			StartDate: date("2024-02-20"),
			Options:   Options{FetchFutureTransactions: true},
		})
		assertSpans(t, client.calls, "2024-02-20..2099-12-31")
	})

	t.Run("detail uses year windows", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: balanceSheetBody}
		readAll(t, "ProfitAndLossDetailReport", Deps{Client: client, StartDate: date("2022-06-01")})
		assertSpans(t, client.calls,
			"2022-06-01..2023-05-31",
			"2023-06-01..2024-03-15",
		)
		cols := client.calls[0].params.Get("columns")
		if cols != strings.Join(ProfitAndLossDetailColumns, ",") {
			t.Errorf("columns = %q", cols)
		}
	})
}

func TestProfitAndLoss_AccountContext(t *testing.T) {
	t.Parallel()

	body := `{
		"Columns": {"Column": [{"ColTitle": "", "ColType": "Account"}, {"ColTitle": "Total", "ColType": "Money"}]},
		"Rows": {"Row": [{
			"type": "Section",
			"Header": {"ColData": [{"value": "Income", "id": "79"}, {"value": ""}]},
			"Rows": {"Row": [{"type": "Data", "ColData": [{"value": ""}, {"value": "42.50"}]}]}
		}]}
	}`
	client := &fakeClient{body: body}
	got := readAll(t, "ProfitAndLossReport", Deps{Client: client, StartDate: date("2024-03-01")})
	if len(got) != 1 {
		t.Fatalf("emitted %d records, want 1", len(got))
	}
	if got[0]["Account"] != "Income" || got[0]["AccountId"] != "79" {
		t.Errorf("account = %v/%v, want Income/79", got[0]["Account"], got[0]["AccountId"])
	}
}

func TestMonthlyBalanceSheet_Totals(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: monthlyBody}
	got := readAll(t, "MonthlyBalanceSheetReport", Deps{Client: client, StartDate: date("2024-01-01")})

	if s := client.calls[0].params.Get("summarize_column_by"); s != "Month" {
		t.Errorf("summarize_column_by = %q, want Month", s)
	}
	if len(got) != 1 {
		t.Fatalf("emitted %d records, want 1", len(got))
	}
	rec := got[0]
	want := []map[string]any{{"Jan2024": "10.00"}, {"Total": "10.00"}}
	if !reflect.DeepEqual(rec["MonthlyTotal"], want) {
		t.Errorf("MonthlyTotal = %v, want %v", rec["MonthlyTotal"], want)
	}
	if _, ok := rec["Feb2024"]; ok {
		t.Error("empty Feb2024 cell was not dropped")
	}
	if rec["StartDate"] != "2024-01-01" || rec["EndDate"] != "2024-03-15" {
		t.Errorf("bounds = %v..%v, want 2024-01-01..2024-03-15", rec["StartDate"], rec["EndDate"])
	}
}

func TestDailyCashFlow(t *testing.T) {
	t.Parallel()

	t.Run("report_period_days overrides the start", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: monthlyBody}
		got := readAll(t, "DailyCashFlowReport", Deps{
			Client:    client,
			StartDate: date("2015-01-01"),
			Resumed:   true,
			Options:   Options{ReportPeriodDays: 10},
		})
		assertSpans(t, client.calls, "2024-03-05..2024-03-14")
		if s := client.calls[0].params.Get("summarize_column_by"); s != "Days" {
			t.Errorf("summarize_column_by = %q, want Days", s)
		}
		if len(got) != 1 {
			t.Fatalf("emitted %d records, want 1", len(got))
		}
		want := []map[string]any{{"Jan2024": "10.00"}}
		if !reflect.DeepEqual(got[0]["DailyTotal"], want) {
			t.Errorf("DailyTotal = %v, want %v", got[0]["DailyTotal"], want)
		}
		if got[0]["Total"] != 10.0 {
			t.Errorf("Total = %#v, want 10.0", got[0]["Total"])
		}
	})

	t.Run("full sync rolls in 33 month windows", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: monthlyBody}
		readAll(t, "DailyCashFlowReport", Deps{Client: client, StartDate: date("2015-01-01")})
		if len(client.calls) < 3 {
			t.Fatalf("requested %d windows, want at least 3", len(client.calls))
		}
		if first := client.calls[0].params.Get("start_date"); first != "2015-01-01" {
			t.Errorf("first start_date = %s, want 2015-01-01", first)
		}
		if last := client.calls[len(client.calls)-1].params.Get("end_date"); last != "2024-03-14" {
			t.Errorf("last end_date = %s, want yesterday 2024-03-14", last)
		}
	})
}

func TestAging_ReportDates(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: agingBody}
	got := readAll(t, "APAgingSummaryReport", Deps{
		Client:    client,
		StartDate: date("2024-01-01"),
		Options:   Options{AgingReportDates: []string{"2024-01-31", "2024-02-29"}},
	})

	if len(client.calls) != 2 {
		t.Fatalf("requested %d reports, want one per report date", len(client.calls))
	}
	for i, d := range []string{"2024-01-31", "2024-02-29"} {
		p := client.calls[i].params
		if p.Get("aging_method") != "Report_Date" || p.Get("report_date") != d {
			t.Errorf("call %d aging params = %s/%s, want Report_Date/%s", i, p.Get("aging_method"), p.Get("report_date"), d)
		}
	}
	if client.calls[0].name != "AgedPayables" {
		t.Errorf("report = %s, want AgedPayables", client.calls[0].name)
	}

	if len(got) != 4 {
		t.Fatalf("emitted %d records, want 4", len(got))
	}
	if got[0]["Vendor"] != "Acme" || got[0]["VendorId"] != "7" {
		t.Errorf("vendor = %v/%v, want Acme/7", got[0]["Vendor"], got[0]["VendorId"])
	}
	if got[0][FieldReportDate] != "2024-01-31" || got[3][FieldReportDate] != "2024-02-29" {
		t.Errorf("report_date tags = %v, %v", got[0][FieldReportDate], got[3][FieldReportDate])
	}
	if cats, ok := got[0]["Categories"].([]string); !ok || len(cats) != 0 {
		t.Errorf("Categories = %v, want an empty list on flat aging records", got[0]["Categories"])
	}
}

func TestAging_NoReportDate(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: agingBody}
	got := readAll(t, "ARAgingDetailReport", Deps{Client: client, StartDate: date("2024-01-01")})

	if len(client.calls) != 1 {
		t.Fatalf("requested %d reports, want 1", len(client.calls))
	}
	if client.calls[0].params.Has("aging_method") {
		t.Error("aging_method sent without a report date")
	}
	for _, rec := range got {
		if rec[FieldReportDate] != "2024-03-15" {
			t.Errorf("report_date = %v, want the end date 2024-03-15", rec[FieldReportDate])
		}
	}
}

func TestARAgingSummary_Bounds(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: agingBody}
	got := readAll(t, "ARAgingSummaryReport", Deps{
		Client:    client,
		StartDate: date("2024-01-01"),
		Options:   Options{AgingReportDates: []string{"2024-01-31"}},
	})
	if len(client.calls) != 1 || client.calls[0].name != "AgedReceivables" {
		t.Fatalf("calls = %+v, want one AgedReceivables request", client.calls)
	}
	if client.calls[0].params.Has("report_date") {
		t.Error("AR aging summary sent report_date")
	}
	if got[0]["StartDate"] != "2024-01-01" || got[0]["EndDate"] != "2024-03-15" {
		t.Errorf("bounds = %v..%v", got[0]["StartDate"], got[0]["EndDate"])
	}
}

func TestSnapshot_StartAfterToday(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: balanceSheetBody}
	got := readAll(t, "TransactionListReport", Deps{
		Client:    client,
		StartDate: testNow.Add(48 * time.Hour),
	})
	if len(client.calls) != 0 || len(got) != 0 {
		t.Errorf("requested %d reports for an empty range, want 0", len(client.calls))
	}
}
