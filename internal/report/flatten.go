// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package report

import (
	"iter"
	"strconv"
	"time"
)

// Synthesized field names.
const (
	FieldCategories    = "Categories"
	FieldSyncTimestamp = "SyncTimestampUtc"
	FieldAccount       = "Account"
)

// TimestampLayout is the SyncTimestampUtc format.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Record is one flattened report row.
type Record map[string]any

// Schema controls how rows of one report variant are flattened.
type Schema struct {
	// AmountField names the field whose absence marks a separator row.
	// Rows where it is missing or empty are dropped. Empty disables the filter.
	AmountField string

	// NumericFields are converted to float64 when they parse.
	NumericFields []string

	// DateFields are normalized from 2006-01-02 to RFC 3339. A row whose
	// date does not parse is dropped.
	DateFields []string

	// TrackAccount attaches the enclosing account section to every leaf
	// as Account/AccountId, unless the leaf names its own account.
	TrackAccount bool

	// Flat emits header, sub-rows and summary of each top-level section as
	// independent rows without category context (aging reports).
	Flat bool
}

// Line is a zipped row before filtering. Stitch merges Lines from
// column-batched requests.
type Line struct {
	Fields     Record
	Categories []string
	Account    *Cell

	// References names the columns whose cells carried an id. Both halves
	// of a reference survive empty-string stripping.
	References []string
}

// Flatten turns a report into records in document order.
// The returned sequence can be ranged over any number of times.
func Flatten(resp *Response, schema Schema, now time.Time) iter.Seq[Record] {
	return Finalize(Extract(resp, schema), schema, now)
}

// Extract walks the row tree and zips each emitted row with the column names.
// No filtering is applied.
func Extract(resp *Response, schema Schema) []Line {
	if resp == nil || len(resp.Rows) == 0 {
		return nil
	}

	w := &walker{trackAccount: schema.TrackAccount}
	for _, row := range resp.Rows {
		if schema.Flat {
			w.walkFlat(row)
		} else {
			w.walk(row)
		}
	}

	names := ColumnNames(resp.Columns)
	lines := make([]Line, 0, len(w.out))
	for _, raw := range w.out {
		fields, refs := zipCells(names, raw.cells)
		line := Line{
			Fields:     fields,
			Account:    raw.account,
			References: refs,
		}
		if !schema.Flat {
			line.Categories = raw.categories
		}
		lines = append(lines, line)
	}
	return lines
}

// Finalize applies the schema filters and attaches SyncTimestampUtc.
func Finalize(lines []Line, schema Schema, now time.Time) iter.Seq[Record] {
	ts := now.UTC().Format(TimestampLayout)
	return func(yield func(Record) bool) {
		for _, line := range lines {
			rec, ok := finalizeLine(line, schema, ts)
			if !ok {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func finalizeLine(line Line, schema Schema, ts string) (Record, bool) {
	rec := make(Record, len(line.Fields)+3)
	for k, v := range line.Fields {
		rec[k] = v
	}

	if schema.TrackAccount && line.Account != nil && isBlank(rec[FieldAccount]) {
		rec[FieldAccount] = line.Account.Value
		if line.Account.HasID {
			rec[FieldAccount+"Id"] = line.Account.ID
		}
	}

	if schema.AmountField != "" && isBlank(rec[schema.AmountField]) {
		return nil, false
	}

	for k, v := range rec {
		if s, ok := v.(string); ok && s == "" && !isReferenceField(line.References, k) {
			delete(rec, k)
		}
	}

	for _, f := range schema.NumericFields {
		s, ok := rec[f].(string)
		if !ok {
			continue
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			rec[f] = n
		}
	}

	for _, f := range schema.DateFields {
		s, ok := rec[f].(string)
		if !ok {
			continue
		}
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, false
		}
		rec[f] = d.Format(time.RFC3339)
	}

	cats := line.Categories
	if cats == nil {
		cats = []string{}
	}
	rec[FieldCategories] = cats
	rec[FieldSyncTimestamp] = ts
	return rec, true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// isReferenceField reports whether key is the value or the id half of a
// reference column.
func isReferenceField(refs []string, key string) bool {
	for _, name := range refs {
		if key == name || key == name+"Id" {
			return true
		}
	}
	return false
}

func zipCells(names []string, cells []Cell) (Record, []string) {
	rec := make(Record, len(cells))
	var refs []string
	for i, cell := range cells {
		if i >= len(names) {
			break
		}
		name := names[i]
		rec[name] = cell.Value
		if cell.HasID {
			rec[name+"Id"] = cell.ID
			refs = append(refs, name)
		}
	}
	return rec, refs
}

type rawRow struct {
	cells      []Cell
	categories []string
	account    *Cell
}

// walker is the per-call traversal accumulator.
type walker struct {
	out          []rawRow
	categories   []string
	account      *Cell
	trackAccount bool
}

func (w *walker) walk(row Row) {
	switch n := row.(type) {
	case LeafRow:
		w.emit(n.Cells)
	case SectionRow:
		if len(n.Rows) == 0 {
			return
		}

		prevAccount := w.account
		if w.trackAccount && len(n.Header) > 0 && n.Header[0].HasID {
			acct := n.Header[0]
			w.account = &acct
		}

		pushed := len(n.Header) > 0
		if pushed {
			w.categories = append(w.categories, n.Header[0].Value)
		}
		for _, child := range n.Rows {
			w.walk(child)
		}
		if len(n.Summary) > 0 {
			w.emit(summaryCells(n.Summary))
		}
		if pushed {
			w.categories = w.categories[:len(w.categories)-1]
		}
		w.account = prevAccount
	}
}

// walkFlat handles one top-level row of an aging report.
func (w *walker) walkFlat(row Row) {
	switch n := row.(type) {
	case LeafRow:
		w.emit(n.Cells)
	case SectionRow:
		if n.Header != nil {
			w.emit(n.Header)
			for _, child := range n.Rows {
				if leaf, ok := child.(LeafRow); ok {
					w.emit(leaf.Cells)
				}
			}
		}
		if len(n.Summary) > 0 {
			w.emit(n.Summary)
		}
	}
}

func (w *walker) emit(cells []Cell) {
	cats := make([]string, len(w.categories))
	copy(cats, w.categories)

	raw := rawRow{cells: cells, categories: cats}
	if w.account != nil {
		acct := *w.account
		raw.account = &acct
	}
	w.out = append(w.out, raw)
}

// summaryCells copies a summary row with its label collapsed ("Total Income"
// becomes "TotalIncome").
func summaryCells(in []Cell) []Cell {
	cells := make([]Cell, len(in))
	copy(cells, in)
	if len(cells) > 0 {
		cells[0].Value = stripSpace(cells[0].Value)
	}
	return cells
}
