// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/ledgerline/internal/config"
	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
	"github.com/tomtom215/ledgerline/internal/output"
	"github.com/tomtom215/ledgerline/internal/quickbooks"
	"github.com/tomtom215/ledgerline/internal/state"
	"github.com/tomtom215/ledgerline/internal/streams"
	"github.com/tomtom215/ledgerline/internal/supervisor"
	"github.com/tomtom215/ledgerline/internal/supervisor/services"
	"github.com/tomtom215/ledgerline/internal/sync"
)

type syncOptions struct {
	*rootOptions
	statePath       string
	stateOutputPath string
	streams         []string
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	opts := &syncOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Extract the selected streams to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.statePath, "state", "", "state document from a previous run")
	cmd.Flags().StringVar(&opts.stateOutputPath, "state-output", "", "also write the final state document to this file")
	cmd.Flags().StringSliceVar(&opts.streams, "streams", nil, "streams to sync (default: sync.streams, or all)")
	return cmd
}

//nolint:gocyclo // sequential setup steps
func runSync(ctx context.Context, opts *syncOptions, stdout io.Writer) error {
	cfg, err := config.LoadWithKoanf(opts.configPath)
	if err != nil {
		return err
	}
	if len(opts.streams) > 0 {
		cfg.Sync.Streams = opts.streams
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	metrics.SetAppInfo(Version)

	var prior *state.State
	if opts.statePath != "" {
		prior, err = state.LoadFile(opts.statePath)
		if err != nil {
			return err
		}
	}

	session, err := quickbooks.NewSession(&cfg.QuickBooks, &http.Client{Timeout: cfg.HTTP.Timeout})
	if err != nil {
		return err
	}
	if err := session.EnsureToken(ctx); err != nil {
		return err
	}

	var clientOpts []quickbooks.Option
	if cfg.HTTP.APIUsageLog != "" {
		usage, err := quickbooks.OpenUsageLog(cfg.HTTP.APIUsageLog)
		if err != nil {
			return err
		}
		defer func() {
			if err := usage.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing API usage log")
			}
		}()
		clientOpts = append(clientOpts, quickbooks.WithUsageLog(usage))
	}
	client := quickbooks.NewClient(cfg, session, clientOpts...)
	defer func() {
		logging.Info().Int("requests", client.Quota().Attempted()).Msg("REST requests counted towards the QuickBooks quota")
	}()

	sink, err := openSink(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing output")
		}
	}()

	mgr := sync.NewManager(streams.NewRegistry(), client, sink, &cfg.Sync)

	tree, err := supervisor.NewSupervisorTree(logging.NewComponentSlogLogger("supervisor"), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddSessionService(services.NewTokenRefresherService(session, cfg.QuickBooks.RefreshInterval))
	if cfg.Metrics.Enabled {
		srv := services.NewTelemetryServer(cfg.Metrics, mgr)
		tree.AddTelemetryService(services.NewHTTPServerService(srv, cfg.Supervisor.ShutdownTimeout))
		logging.Info().Str("addr", cfg.Metrics.Addr).Msg("Metrics endpoint enabled")
	}

	treeCtx, stopTree := context.WithCancel(ctx)
	treeDone := tree.ServeBackground(treeCtx)
	defer func() {
		stopTree()
		<-treeDone
	}()

	final, result, runErr := mgr.Run(ctx, prior)
	if opts.stateOutputPath != "" && final != nil {
		if err := writeStateFile(opts.stateOutputPath, final); err != nil {
			logging.Error().Err(err).Str("path", opts.stateOutputPath).Msg("Failed to write state output")
		}
	}
	logging.Info().
		Str("run_id", result.RunID).
		Strs("failed", result.Failed).
		Int("records", result.Records).
		Msg("Sync complete")
	return runErr
}

// openSink returns stdout, teed to NATS when the sink is enabled.
func openSink(ctx context.Context, cfg *config.Config, stdout io.Writer) (output.Sink, error) {
	w := output.NewWriter(stdout)
	if !cfg.Sink.NATSEnabled {
		return w, nil
	}
	ns, err := output.NewNATSSink(ctx, cfg.Sink)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("open NATS sink: %w", err)
	}
	logging.Info().Str("url", cfg.Sink.NATSURL).Str("prefix", cfg.Sink.SubjectPrefix).Msg("Publishing to NATS")
	return output.Tee{w, ns}, nil
}

func writeStateFile(path string, st *state.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
