// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with the custom rules the
// connector needs and translates field errors into short human-readable
// messages. The config package validates every loaded Config through it.
//
// # Custom Validators
//
//   - isodate: a calendar date (2006-01-02) or an RFC 3339 timestamp
//
// # Quick Start
//
//	type SyncConfig struct {
//	    StartDate string `validate:"required,isodate"`
//	    Workers   int    `validate:"min=1,max=50"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid sync config: %w", err)
//	}
package validation
