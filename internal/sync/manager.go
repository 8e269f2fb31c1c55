// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/ledgerline/internal/config"
	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/output"
	"github.com/tomtom215/ledgerline/internal/quickbooks"
	"github.com/tomtom215/ledgerline/internal/state"
	"github.com/tomtom215/ledgerline/internal/streams"
)

// Manager runs one extraction over the selected streams and writes the
// resulting messages to a sink.
type Manager struct {
	registry *streams.Registry
	client   streams.Client
	sink     output.Sink
	cfg      *config.SyncConfig
	now      func() time.Time

	syncMu  sync.Mutex // one Run at a time
	current atomic.Value
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now. Tests use it to pin the sync start.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a sync manager.
func NewManager(registry *streams.Registry, client streams.Client, sink output.Sink, cfg *config.SyncConfig, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		client:   client,
		sink:     sink,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentStream returns the stream being synced, or "" between runs.
func (m *Manager) CurrentStream() string {
	s, _ := m.current.Load().(string)
	return s
}

// Result summarizes a Run.
type Result struct {
	RunID   string
	Synced  []string
	Skipped []string
	Failed  []string
	Records int
}

// Run syncs every selected stream in registry order. raw is the state
// document supplied by the caller, or nil for a first run.
//
// A stream that fails is reported in the returned error and the run moves
// on to the next stream. A quota error or a cancelled context stops the run
// immediately. The returned state is the final checkpoint in either case.
func (m *Manager) Run(ctx context.Context, raw *state.State) (*state.State, Result, error) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	defer m.current.Store("")

	result := Result{RunID: logging.GenerateRunID()}
	ctx = logging.ContextWithRunID(ctx, result.RunID)

	descs, err := m.registry.Select(m.cfg.Streams)
	if err != nil {
		return raw, result, err
	}
	defaultStart, err := m.cfg.StartTime()
	if err != nil {
		return raw, result, err
	}

	statePassed := raw != nil
	st := state.BuildState(raw, streamViews(descs))

	starting := st.CurrentStream()
	if starting != "" {
		logging.Ctx(ctx).Info().Str("stream", starting).Msg("Resuming sync")
	} else {
		logging.Ctx(ctx).Info().Int("streams", len(descs)).Msg("Starting sync")
	}

	var errs []error
	for _, desc := range descs {
		sctx := logging.ContextWithStream(ctx, desc.Name)

		if starting != "" {
			if desc.Name != starting {
				logging.Ctx(sctx).Info().Msg("Skipping stream, already synced")
				result.Skipped = append(result.Skipped, desc.Name)
				continue
			}
			logging.Ctx(sctx).Info().Msg("Resuming stream")
			starting = ""
		}

		records, err := m.syncStream(sctx, st, desc, defaultStart, statePassed)
		result.Records += records
		if err == nil {
			result.Synced = append(result.Synced, desc.Name)
			continue
		}

		result.Failed = append(result.Failed, desc.Name)
		errs = append(errs, err)
		if quickbooks.IsQuotaExceeded(err) || quickbooks.IsAuthFailure(err) || ctx.Err() != nil {
			logging.Ctx(sctx).Error().Err(err).Msg("Aborting sync")
			return st, result, errors.Join(errs...)
		}
		logging.Ctx(sctx).Error().Err(err).Msg("Stream failed, continuing with next stream")
	}

	st.SetCurrentStream("")
	if err := m.writeState(ctx, st); err != nil {
		errs = append(errs, err)
	}

	logging.Ctx(ctx).Info().
		Int("synced", len(result.Synced)).
		Int("failed", len(result.Failed)).
		Int("records", result.Records).
		Msg("Finished sync")
	return st, result, errors.Join(errs...)
}

func (m *Manager) writeState(ctx context.Context, st *state.State) error {
	if err := m.sink.Write(ctx, output.State{Value: st.Clone()}); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func streamViews(descs []streams.Descriptor) []state.Stream {
	out := make([]state.Stream, len(descs))
	for i, d := range descs {
		out[i] = d.Stream()
	}
	return out
}
