// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package partition

import (
	"testing"
	"time"
)

func TestSplit_Coverage(t *testing.T) {
	t.Parallel()

	spans := []struct{ start, end string }{
		{"2024-01-01", "2024-01-01"},
		{"2024-01-15", "2024-02-14"},
		{"2023-12-31", "2024-03-01"},
		{"2024-02-29", "2025-02-28"},
		{"2020-06-10", "2024-06-09"},
	}

	for _, g := range []Granularity{Monthly, Weekly, Daily} {
		for _, s := range spans {
			t.Run(g.String()+"/"+s.start+".."+s.end, func(t *testing.T) {
				t.Parallel()
				start, end := date(s.start), date(s.end)
				windows := Split(start, end, g)
				assertCoverage(t, windows, start, end)
				for _, w := range windows {
					if w.Granularity != g {
						t.Errorf("window %s granularity = %s, want %s", w, w.Granularity, g)
					}
				}
			})
		}
	}
}

func TestSplit_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		g     Granularity
		start string
		end   string
		want  []string
	}{
		{
			name: "monthly follows calendar months", g: Monthly,
			start: "2024-01-15", end: "2024-03-10",
			want: []string{"2024-01-15..2024-01-31", "2024-02-01..2024-02-29", "2024-03-01..2024-03-10"},
		},
		{
			name: "weekly chunks from start", g: Weekly,
			start: "2024-03-01", end: "2024-03-16",
			want: []string{"2024-03-01..2024-03-07", "2024-03-08..2024-03-14", "2024-03-15..2024-03-16"},
		},
		{
			name: "daily", g: Daily,
			start: "2024-12-30", end: "2025-01-01",
			want: []string{"2024-12-30..2024-12-30", "2024-12-31..2024-12-31", "2025-01-01..2025-01-01"},
		},
		{
			name: "end before start", g: Monthly,
			start: "2024-02-01", end: "2024-01-01",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Split(date(tt.start), date(tt.end), tt.g)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() returned %d windows, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("window %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplit_TruncatesTimeOfDay(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	got := Split(start, end, Daily)
	if len(got) != 2 {
		t.Fatalf("Split() returned %d windows, want 2", len(got))
	}
}

func TestGranularity_Next(t *testing.T) {
	t.Parallel()

	chain := []Granularity{Monthly, Weekly, Daily, ColumnBatched, Failed, Failed}
	for i := 0; i < len(chain)-1; i++ {
		if got := chain[i].Next(); got != chain[i+1] {
			t.Errorf("%s.Next() = %s, want %s", chain[i], got, chain[i+1])
		}
	}
}

func TestLastPeriods(t *testing.T) {
	t.Parallel()

	got := LastPeriods(time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC), 3)
	want := []string{"2024-03-01..2024-03-12", "2024-02-01..2024-02-29", "2024-01-01..2024-01-31"}
	if len(got) != len(want) {
		t.Fatalf("LastPeriods() returned %d windows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("period %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestChunks(t *testing.T) {
	t.Parallel()

	start, end := date("2023-01-01"), date("2024-06-30")
	got := Chunks(start, end, 364)
	assertCoverage(t, got, start, end)
	for _, w := range got {
		if w.Days() > 364 {
			t.Errorf("chunk %s is %d days, want <= 364", w, w.Days())
		}
	}
	if len(got) != 2 {
		t.Errorf("Chunks() returned %d windows, want 2", len(got))
	}
}

func TestRollingWindows(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 10, 19, 8, 0, 0, 0, time.UTC)
	yesterday := date("2024-10-18")

	t.Run("long history is capped per window", func(t *testing.T) {
		t.Parallel()
		start := date("2018-01-01")
		got := RollingWindows(start, now, MaxLookbackMonths)
		assertCoverage(t, got, start, yesterday)
		for _, w := range got {
			if limit := w.Start.AddDate(0, MaxLookbackMonths, -1); w.End.After(limit) {
				t.Errorf("window %s exceeds %d months", w, MaxLookbackMonths)
			}
			if w.End.After(yesterday) {
				t.Errorf("window %s ends after yesterday", w)
			}
		}
	})

	t.Run("recent start is a single window", func(t *testing.T) {
		t.Parallel()
		got := RollingWindows(date("2024-09-01"), now, 0)
		if len(got) != 1 || got[0].String() != "2024-09-01..2024-10-18" {
			t.Errorf("RollingWindows() = %v, want [2024-09-01..2024-10-18]", got)
		}
	})

	t.Run("start today yields nothing", func(t *testing.T) {
		t.Parallel()
		if got := RollingWindows(now, now, 33); len(got) != 0 {
			t.Errorf("RollingWindows() = %v, want none", got)
		}
	})
}
