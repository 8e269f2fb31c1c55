// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package sync drives one extraction run.

Manager.Run walks the selected streams in registry order. For each stream it:

 1. marks the stream as current and writes STATE
 2. writes SCHEMA
 3. folds an interrupted job's highest bookmark into the replication key
 4. applies the version protocol (ACTIVATE_VERSION before data when due)
 5. reads records from the stream's reader and writes RECORD messages,
    advancing the replication key bookmark as it goes
 6. for full-table streams writes ACTIVATE_VERSION again and clears the
    version, then writes STATE

A run that starts with current_stream set skips every stream before it.

Failure handling:

  - a failing stream is wrapped as "error syncing {stream}: ..." and the run
    continues with the next stream
  - a quota error, rejected credentials or a cancelled context end the run
  - all stream errors are joined into the returned error

Usage Example:

	registry := streams.NewRegistry()
	sink := output.NewWriter(os.Stdout)
	defer sink.Close()

	mgr := sync.NewManager(registry, client, sink, &cfg.Sync)
	final, result, err := mgr.Run(ctx, prior)
*/
package sync
