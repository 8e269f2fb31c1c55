// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package report

import "strings"

// Column types that name an unlabeled column.
var typedColumns = map[string]bool{
	"Account":  true,
	"Customer": true,
	"Vendor":   true,
}

// ColumnName returns the flattened field name for a column.
func ColumnName(c Column) string {
	switch {
	case c.Title == "" && typedColumns[c.Type]:
		return c.Type
	case c.Title == "Memo/Description":
		return "Memo"
	default:
		return stripSpace(c.Title)
	}
}

// ColumnNames returns the field names for all columns, in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = ColumnName(c)
	}
	return names
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
