// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package output

import "strings"

// Subject returns the NATS subject of msg: "{prefix}.{stream}", or
// "{prefix}.state" for STATE messages.
func Subject(prefix string, msg Message) string {
	if msg.MessageType() == TypeState {
		return prefix + ".state"
	}
	return prefix + "." + sanitizeToken(msg.StreamName())
}

// sanitizeToken makes s usable as a single subject token and stream name.
func sanitizeToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
