// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package output

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Message types.
const (
	TypeSchema          = "SCHEMA"
	TypeRecord          = "RECORD"
	TypeState           = "STATE"
	TypeActivateVersion = "ACTIVATE_VERSION"
)

// TimeExtractedLayout formats Record.TimeExtracted.
const TimeExtractedLayout = "2006-01-02T15:04:05.000000Z"

// Message is one line of the output stream.
type Message interface {
	MessageType() string
	// StreamName is empty for STATE.
	StreamName() string
}

// Sink consumes messages. Implementations must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, msg Message) error
	Close() error
}

// Schema announces a stream before its first record.
type Schema struct {
	Stream             string         `json:"stream"`
	Schema             map[string]any `json:"schema"`
	KeyProperties      []string       `json:"key_properties"`
	BookmarkProperties []string       `json:"bookmark_properties,omitempty"`
}

// Record carries one extracted row.
type Record struct {
	Stream        string         `json:"stream"`
	Record        map[string]any `json:"record"`
	Version       *int64         `json:"version,omitempty"`
	TimeExtracted time.Time      `json:"-"`
}

// State carries the bookmark document for the external caller to persist.
type State struct {
	Value any `json:"value"`
}

// ActivateVersion tells the consumer that a full-table version is live.
type ActivateVersion struct {
	Stream  string `json:"stream"`
	Version int64  `json:"version"`
}

func (Schema) MessageType() string          { return TypeSchema }
func (Record) MessageType() string          { return TypeRecord }
func (State) MessageType() string           { return TypeState }
func (ActivateVersion) MessageType() string { return TypeActivateVersion }

func (m Schema) StreamName() string          { return m.Stream }
func (m Record) StreamName() string          { return m.Stream }
func (State) StreamName() string             { return "" }
func (m ActivateVersion) StreamName() string { return m.Stream }

// DefaultSchema is the permissive schema announced for every stream.
func DefaultSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
}

func (m Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	if m.KeyProperties == nil {
		m.KeyProperties = []string{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeSchema, alias(m)})
}

func (m Record) MarshalJSON() ([]byte, error) {
	type alias Record
	out := struct {
		Type string `json:"type"`
		alias
		TimeExtracted string `json:"time_extracted,omitempty"`
	}{Type: TypeRecord, alias: alias(m)}
	if !m.TimeExtracted.IsZero() {
		out.TimeExtracted = m.TimeExtracted.UTC().Format(TimeExtractedLayout)
	}
	return json.Marshal(out)
}

func (m State) MarshalJSON() ([]byte, error) {
	type alias State
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeState, alias(m)})
}

func (m ActivateVersion) MarshalJSON() ([]byte, error) {
	type alias ActivateVersion
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeActivateVersion, alias(m)})
}
