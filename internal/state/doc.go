// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package state tracks per-stream extraction progress (bookmarks).

The state document is owned by the caller: it is read once at sync start
(Load), advanced while records are emitted, and written back out as STATE
messages. Ledgerline never persists it itself.

	{
	  "bookmarks": {
	    "Invoice": {"MetaData.LastUpdatedTime": "2024-05-01T10:00:00-07:00", "version": 1714580000000},
	    "BalanceSheetReport": {"version": null}
	  },
	  "current_stream": "Invoice"
	}

# Incremental Streams

ResolveStartDate returns the stored replication key value, or the configured
start date when there is none. RecordProgress only moves a bookmark forward
and ignores values later than the sync start, so a record stamped in the
future cannot skip data on the next run.

# Full-Table Streams

Streams without a replication key use a version protocol: a version
(epoch milliseconds) is assigned and announced with ACTIVATE_VERSION before
data, and cleared to null when the stream finishes so the next run starts a
fresh snapshot (see StreamVersion, BeginStream and FinishFullTable).

# Resumable Jobs

A stream interrupted during a long job may carry JobID, BatchIDs and
JobHighestBookmarkSeen. BuildState keeps these; ResolveJob folds the highest
seen bookmark into the replication key and clears the job markers.

# Thread Safety

State is safe for concurrent use.
*/
package state
