// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package report parses QuickBooks report documents and flattens them into records.

A report is a server-rendered pivot table: a list of columns and a tree of rows.
Rows are parsed at the JSON boundary into two explicit variants:

	LeafRow     - one cell per declared column
	SectionRow  - optional Header, nested child rows, optional Summary

# Flattening

Flatten walks the row tree depth first and keeps a category stack of the open
section headers. Every leaf receives a copy of that stack as its Categories
breadcrumb. A section's Summary row is emitted after its children while the
section's header is still on the stack, so subtotals carry the category of the
section they close.

Rows are then zipped positionally against the column names:

  - reference cells ({"value", "id"}) become two fields, Name and NameId
  - rows without the schema's amount field are dropped (renderer separators)
  - empty-string fields are removed, except both halves of a reference
  - Categories is always present; flat (aging) rows get an empty list
  - SyncTimestampUtc is attached in "2006-01-02T15:04:05Z" form

Flatten is a pure function of its input. All mutable traversal state (the
category stack and the current account context) lives in a walker value
created per call.

# Data Volume Ceiling

When a single report would exceed the upstream row ceiling the API still
answers 200 but embeds a sentinel message in the body. Classify turns that
sentinel into ErrDataVolumeCeiling so callers reason about a typed condition.
*/
package report
