// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrEmptyResponse is returned by Parse for an empty or null body.
var ErrEmptyResponse = errors.New("empty report response")

// Response is a parsed report document.
type Response struct {
	Header  Header
	Columns []Column
	Rows    []Row
}

// Header carries the report metadata block.
type Header struct {
	ReportName  string   `json:"ReportName"`
	StartPeriod string   `json:"StartPeriod"`
	EndPeriod   string   `json:"EndPeriod"`
	Time        string   `json:"Time"`
	Currency    string   `json:"Currency"`
	Options     []Option `json:"Option"`
}

// Option is a name/value pair from the report header.
type Option struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// Column declares one positional column of the report.
type Column struct {
	Title    string
	Type     string
	MetaData []MetaData
}

// MetaData is a name/value annotation on a column.
type MetaData struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// Key returns the upstream column code (the ColKey annotation), if present.
func (c Column) Key() string {
	for _, md := range c.MetaData {
		if md.Name == "ColKey" {
			return md.Value
		}
	}
	return ""
}

// Cell is one value in a row. Cells that carry an id are references to
// another entity (account, customer, vendor...).
type Cell struct {
	Value string
	ID    string
	HasID bool
}

// Row is either a LeafRow or a SectionRow.
type Row interface {
	isRow()
}

// LeafRow holds one cell per column.
type LeafRow struct {
	Cells []Cell
}

// SectionRow groups child rows under an optional header and summary.
// Header and Summary are nil when absent upstream.
type SectionRow struct {
	Type    string
	Header  []Cell
	Rows    []Row
	Summary []Cell
}

func (LeafRow) isRow()    {}
func (SectionRow) isRow() {}

// Wire format. Only used at the decode boundary.
type wireResponse struct {
	Header  Header `json:"Header"`
	Columns struct {
		Column []wireColumn `json:"Column"`
	} `json:"Columns"`
	Rows wireRows `json:"Rows"`
}

type wireColumn struct {
	ColTitle string     `json:"ColTitle"`
	ColType  string     `json:"ColType"`
	MetaData []MetaData `json:"MetaData"`
}

type wireRows struct {
	Row []wireRow `json:"Row"`
}

type wireRow struct {
	Type    string     `json:"type"`
	ColData []wireCell `json:"ColData"`
	Header  *wireCells `json:"Header"`
	Rows    *wireRows  `json:"Rows"`
	Summary *wireCells `json:"Summary"`
}

type wireCells struct {
	ColData []wireCell `json:"ColData"`
}

type wireCell struct {
	Value string  `json:"value"`
	ID    *string `json:"id"`
}

// Parse decodes a report body into typed rows and columns.
func Parse(body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	var w wireResponse
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	resp := &Response{
		Header:  w.Header,
		Columns: make([]Column, 0, len(w.Columns.Column)),
		Rows:    convertRows(w.Rows.Row),
	}
	for _, c := range w.Columns.Column {
		resp.Columns = append(resp.Columns, Column{
			Title:    c.ColTitle,
			Type:     c.ColType,
			MetaData: c.MetaData,
		})
	}
	return resp, nil
}

func convertRows(in []wireRow) []Row {
	if len(in) == 0 {
		return nil
	}
	out := make([]Row, 0, len(in))
	for i := range in {
		out = append(out, convertRow(&in[i]))
	}
	return out
}

func convertRow(w *wireRow) Row {
	if w.ColData != nil {
		return LeafRow{Cells: convertCells(w.ColData)}
	}

	s := SectionRow{Type: w.Type}
	if w.Header != nil {
		s.Header = convertCells(w.Header.ColData)
	}
	if w.Rows != nil {
		s.Rows = convertRows(w.Rows.Row)
	}
	if w.Summary != nil {
		s.Summary = convertCells(w.Summary.ColData)
	}
	return s
}

func convertCells(in []wireCell) []Cell {
	cells := make([]Cell, len(in))
	for i, c := range in {
		cells[i] = Cell{Value: c.Value}
		if c.ID != nil {
			cells[i].ID = *c.ID
			cells[i].HasID = true
		}
	}
	return cells
}
