// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package output writes the connector's message stream.

Four message types are produced, one JSON object per line:

	{"type":"SCHEMA","stream":"Invoice","schema":{...},"key_properties":["Id"],"bookmark_properties":["MetaData.LastUpdatedTime"]}
	{"type":"ACTIVATE_VERSION","stream":"CashFlowReport","version":1710496800000}
	{"type":"RECORD","stream":"CashFlowReport","record":{...},"version":1710496800000,"time_extracted":"2024-03-15T10:00:00Z"}
	{"type":"STATE","value":{"bookmarks":{...},"current_stream":null}}

# Sinks

Writer is the primary sink. It encodes with goccy/go-json onto stdout and
flushes on every non-RECORD message, so a STATE line is never visible before
the records it covers.

NATSSink (build tag nats) additionally publishes every message through a
Watermill NATS publisher on "{prefix}.{stream}" (STATE on "{prefix}.state").
With JetStream enabled a stream covering "{prefix}.>" is created or updated
before the first publish and message UUIDs are used for deduplication.
Without the build tag NewNATSSink returns an error.

Tee fans a message out to several sinks.
*/
package output
