// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

// Package logging provides centralized zerolog-based structured logging for Ledgerline.
//
// Standard output carries the Singer message stream, so every log line goes
// to stderr unless a test swaps the writer.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("stream", "GeneralLedgerAccrualReport").Msg("Sync started")
//	logging.Err(err).Msg("Window fetch failed")
//
// # Run Correlation
//
// The sync command tags its context with a run id and each stream sync adds
// the stream name. Ctx picks both up:
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	ctx = logging.ContextWithStream(ctx, "ProfitAndLossReport")
//	logging.Ctx(ctx).Info().Int("records", n).Msg("Stream complete")
//	// {"level":"info","run_id":"...","stream":"ProfitAndLossReport","records":12,...}
//
// # Configuration
//
// Environment Variables (read by internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # slog Adapter
//
// suture (through sutureslog) and watermill take a *slog.Logger.
// NewSlogLogger returns one that writes through zerolog:
//
//	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
//
// # Credentials
//
// CredentialLogger records token refreshes and logins. OAuth2 tokens and
// client secrets never reach the log verbatim: SanitizeToken and
// SanitizeValue mask them, and SanitizeQuery masks sensitive request
// parameters before the API usage log writes them.
//
// # Thread Safety
//
// The global logger is guarded by a RWMutex; all functions are safe for
// concurrent use.
package logging
