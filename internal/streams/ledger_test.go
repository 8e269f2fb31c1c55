// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/ledgerline/internal/partition"
	"github.com/tomtom215/ledgerline/internal/report"
)

func TestGeneralLedger_FullSync(t *testing.T) {
	t.Parallel()

	client := &fakeClient{body: ledgerBody}
	got := readAll(t, "GeneralLedgerAccrualReport", Deps{Client: client, StartDate: date("2024-01-01")})

	calls := client.sortedCalls()
	assertSpans(t, calls,
		"2024-01-01..2024-01-31",
		"2024-02-01..2024-02-29",
		"2024-03-01..2024-03-15",
	)
	for _, c := range calls {
		if c.name != "GeneralLedger" {
			t.Errorf("report = %s, want GeneralLedger", c.name)
		}
		if m := c.params.Get("accounting_method"); m != Accrual {
			t.Errorf("accounting_method = %s, want %s", m, Accrual)
		}
		if cols := strings.Split(c.params.Get("columns"), ","); len(cols) != 42 {
			t.Errorf("requested %d columns, want 42", len(cols))
		}
	}

	if len(got) != 3 {
		t.Fatalf("emitted %d records, want 3", len(got))
	}
	if got[0]["Amount"] != 10.0 {
		t.Errorf("Amount = %#v, want 10.0", got[0]["Amount"])
	}
}

func TestGeneralLedger_Options(t *testing.T) {
	t.Parallel()

	t.Run("basic fields and cash", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: ledgerBody}
		readAll(t, "GeneralLedgerCashReport", Deps{
			Client:    client,
			StartDate: date("2024-03-01"),
			Options:   Options{GLBasicFields: true},
		})
		c := client.sortedCalls()[0]
		if c.params.Get("columns") != strings.Join(GeneralLedgerBasicColumns, ",") {
			t.Errorf("columns = %q, want the basic set", c.params.Get("columns"))
		}
		if c.params.Get("accounting_method") != Cash {
			t.Errorf("accounting_method = %q, want Cash", c.params.Get("accounting_method"))
		}
	})

	t.Run("weekly start", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: ledgerBody}
		readAll(t, "GeneralLedgerAccrualReport", Deps{
			Client:    client,
			StartDate: date("2024-03-01"),
			Options:   Options{GLWeekly: true},
		})
		assertSpans(t, client.sortedCalls(),
			"2024-03-01..2024-03-07",
			"2024-03-08..2024-03-14",
			"2024-03-15..2024-03-15",
		)
	})

	t.Run("resume re-reads recent months", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: ledgerBody}
		readAll(t, "GeneralLedgerAccrualReport", Deps{
			Client:    client,
			StartDate: date("2019-01-01"),
			Resumed:   true,
		})
		calls := client.sortedCalls()
		if len(calls) != 3 || calls[0].params.Get("start_date") != "2024-01-01" {
			t.Errorf("requested %v, want three months from 2024-01-01", spans(calls))
		}
	})

	t.Run("gl_full_sync ignores resume", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{body: ledgerBody}
		readAll(t, "GeneralLedgerAccrualReport", Deps{
			Client:    client,
			StartDate: date("2023-12-01"),
			Resumed:   true,
			Options:   Options{GLFullSync: true},
		})
		if first := client.sortedCalls()[0].params.Get("start_date"); first != "2023-12-01" {
			t.Errorf("first start_date = %s, want 2023-12-01", first)
		}
	})
}

func TestGeneralLedger_CeilingNarrowsWindow(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	client.reportFn = func(_ string, p url.Values) (*report.Response, error) {
		if p.Get("start_date") == "2024-02-01" && p.Get("end_date") == "2024-02-29" {
			return nil, fmt.Errorf("report GeneralLedger: %w", report.ErrDataVolumeCeiling)
		}
		return report.Parse([]byte(ledgerBody))
	}
	got := readAll(t, "GeneralLedgerAccrualReport", Deps{Client: client, StartDate: date("2024-01-01")})

	calls := client.sortedCalls()
	if len(calls) != 8 {
		t.Fatalf("requested %d windows, want 3 monthly + 5 weekly: %v", len(calls), spans(calls))
	}
	if len(got) != 7 {
		t.Errorf("emitted %d records, want 7", len(got))
	}
}

func TestGeneralLedger_ColumnBatchFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	client.reportFn = func(string, url.Values) (*report.Response, error) {
		return nil, fmt.Errorf("report GeneralLedger: %w", report.ErrDataVolumeCeiling)
	}
	r, err := NewRegistry().Reader("GeneralLedgerAccrualReport", Deps{
		Client:    client,
		StartDate: date("2024-03-15"),
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}

	err = r.Read(context.Background(), func(report.Record) error { return nil })
	var esc *partition.EscalationError
	if !errors.As(err, &esc) {
		t.Fatalf("Read() error = %v, want *partition.EscalationError", err)
	}
	if esc.Window.String() != "2024-03-15..2024-03-15" {
		t.Errorf("failed window = %s, want 2024-03-15..2024-03-15", esc.Window)
	}
}
