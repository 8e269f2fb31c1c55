// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package quickbooks

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
)

// QuotaHeader carries account-wide API usage as "api-usage=USED/ALLOTTED".
const QuotaHeader = "Sforce-Limit-Info"

var quotaPattern = regexp.MustCompile(`^api-usage=(\d+)/(\d+)$`)

// QuotaTracker enforces the total and per-run quota ceilings.
// Only responses that carry the usage header are counted.
type QuotaTracker struct {
	mu            sync.Mutex
	percentTotal  float64
	percentPerRun float64
	attempted     int
}

// NewQuotaTracker creates a tracker with ceilings in percent.
func NewQuotaTracker(percentTotal, percentPerRun float64) *QuotaTracker {
	return &QuotaTracker{percentTotal: percentTotal, percentPerRun: percentPerRun}
}

// Attempted returns the number of metered requests seen so far.
func (q *QuotaTracker) Attempted() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.attempted
}

// Observe counts one metered response and checks both ceilings.
// An empty header is not metered. A header that does not match the usage
// format is counted but not checked.
func (q *QuotaTracker) Observe(header string) error {
	if header == "" {
		return nil
	}

	q.mu.Lock()
	q.attempted++
	attempted := q.attempted
	q.mu.Unlock()

	m := quotaPattern.FindStringSubmatch(header)
	if m == nil {
		return nil
	}
	used, err1 := strconv.Atoi(m[1])
	allotted, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || allotted <= 0 {
		return nil
	}

	logging.Debug().Int("used", used).Int("allotted", allotted).Msg("REST quota usage")
	metrics.RecordQuota(used, allotted, attempted)

	percentUsed := float64(used) / float64(allotted) * 100
	maxForRun := int(q.percentPerRun * float64(allotted) / 100)

	switch {
	case percentUsed > q.percentTotal:
		metrics.RecordQuotaAbort(QuotaLimitTotal)
		return &QuotaExceededError{
			Limit: QuotaLimitTotal, Used: used, Allotted: allotted,
			Attempted: attempted, Percent: q.percentTotal,
		}
	case attempted > maxForRun:
		metrics.RecordQuotaAbort(QuotaLimitPerRun)
		return &QuotaExceededError{
			Limit: QuotaLimitPerRun, Used: used, Allotted: allotted,
			Attempted: attempted, Percent: q.percentPerRun,
		}
	}
	return nil
}
