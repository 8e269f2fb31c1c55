// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package report

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMisaligned is returned by Stitch when column batches disagree on row count.
var ErrMisaligned = errors.New("column batches are not row-aligned")

// Stitch merges the lines of column-batched requests for the same date window
// into unified lines by positional row index. Fields already set by an earlier
// batch win unless blank; categories and reference columns are unioned in
// first-seen order.
func Stitch(batches [][]Line) ([]Line, error) {
	if len(batches) == 0 {
		return nil, nil
	}

	rows := len(batches[0])
	for i, b := range batches[1:] {
		if len(b) != rows {
			return nil, fmt.Errorf("%w: batch %d has %d rows, batch 0 has %d", ErrMisaligned, i+1, len(b), rows)
		}
	}

	out := make([]Line, rows)
	for i := range rows {
		merged := Line{Fields: make(Record)}
		for _, batch := range batches {
			line := batch[i]
			for k, v := range line.Fields {
				if isBlank(merged.Fields[k]) {
					merged.Fields[k] = v
				}
			}
			if line.Categories != nil {
				merged.Categories = unionStrings(merged.Categories, line.Categories)
			}
			if line.References != nil {
				merged.References = unionStrings(merged.References, line.References)
			}
			if merged.Account == nil && line.Account != nil {
				merged.Account = line.Account
			}
		}
		out[i] = merged
	}
	return out, nil
}

func unionStrings(dst, src []string) []string {
	if dst == nil {
		dst = make([]string, 0, len(src))
	}
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
