// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
	"github.com/tomtom215/ledgerline/internal/output"
	"github.com/tomtom215/ledgerline/internal/report"
	"github.com/tomtom215/ledgerline/internal/state"
	"github.com/tomtom215/ledgerline/internal/streams"
)

// syncStream extracts one stream. It returns the number of records emitted,
// which stand even when an error is returned.
func (m *Manager) syncStream(ctx context.Context, st *state.State, desc streams.Descriptor, defaultStart time.Time, statePassed bool) (int, error) {
	view := desc.Stream()
	started := time.Now()
	syncStart := m.now().UTC()

	st.SetCurrentStream(desc.Name)
	m.current.Store(desc.Name)
	if err := m.writeState(ctx, st); err != nil {
		return 0, fmt.Errorf("error syncing %s: %w", desc.Name, err)
	}

	schema := output.Schema{
		Stream:        desc.Name,
		Schema:        output.DefaultSchema(),
		KeyProperties: desc.KeyProperties,
	}
	if desc.ReplicationKey != "" {
		schema.BookmarkProperties = []string{desc.ReplicationKey}
	}
	if err := m.sink.Write(ctx, schema); err != nil {
		return 0, fmt.Errorf("error syncing %s: %w", desc.Name, err)
	}

	if st.ResolveJob(view) {
		logging.Ctx(ctx).Info().Msg("Resolved interrupted job bookmark")
		if err := m.writeState(ctx, st); err != nil {
			return 0, fmt.Errorf("error syncing %s: %w", desc.Name, err)
		}
	}

	version := st.StreamVersion(view, syncStart)
	if st.BeginStream(view, version) {
		if err := m.sink.Write(ctx, output.ActivateVersion{Stream: desc.Name, Version: version}); err != nil {
			return 0, fmt.Errorf("error syncing %s: %w", desc.Name, err)
		}
	}

	records, err := m.readStream(ctx, st, desc, defaultStart, statePassed, syncStart, version)
	metrics.RecordStreamSync(desc.Name, records, time.Since(started), err)
	if err != nil {
		return records, fmt.Errorf("error syncing %s: %w", desc.Name, err)
	}

	if view.Method() == state.FullTable {
		if err := m.sink.Write(ctx, output.ActivateVersion{Stream: desc.Name, Version: version}); err != nil {
			return records, fmt.Errorf("error syncing %s: %w", desc.Name, err)
		}
		st.FinishFullTable(desc.Name)
	}
	if err := m.writeState(ctx, st); err != nil {
		return records, fmt.Errorf("error syncing %s: %w", desc.Name, err)
	}

	logging.Ctx(ctx).Info().
		Int("records", records).
		Dur("duration", time.Since(started)).
		Msg("Completed stream sync")
	return records, nil
}

func (m *Manager) readStream(ctx context.Context, st *state.State, desc streams.Descriptor, defaultStart time.Time, statePassed bool, syncStart time.Time, version int64) (int, error) {
	view := desc.Stream()
	start, err := st.ResolveStartDate(view, defaultStart)
	if err != nil {
		return 0, err
	}

	reader, err := m.registry.Reader(desc.Name, streams.Deps{
		Client:    m.client,
		StartDate: start,
		Resumed:   statePassed && !m.cfg.ReportsFullSync,
		Options:   streams.OptionsFromConfig(m.cfg),
		Now:       m.now,
	})
	if err != nil {
		return 0, err
	}

	logging.Ctx(ctx).Info().
		Time("start_date", start).
		Str("replication_method", desc.ReplicationMethod()).
		Msg("Syncing stream")

	records := 0
	emit := func(rec report.Record) error {
		msg := output.Record{
			Stream:        desc.Name,
			Record:        rec,
			Version:       &version,
			TimeExtracted: syncStart,
		}
		if err := m.sink.Write(ctx, msg); err != nil {
			return err
		}
		records++

		if desc.ReplicationKey == "" {
			return nil
		}
		value, ok := streams.BookmarkValue(rec, desc.ReplicationKey)
		if !ok {
			return nil
		}
		if _, err := st.RecordProgress(desc.Name, desc.ReplicationKey, value, syncStart); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("value", value).Msg("Ignoring unparseable replication key")
		}
		return nil
	}

	err = reader.Read(ctx, emit)
	return records, err
}
