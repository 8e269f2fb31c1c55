// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

/*
Package supervisor runs the background services of a sync under suture v4.

	RootSupervisor ("ledgerline")
	├── SessionSupervisor ("session-layer")
	│   └── TokenRefresherService
	└── TelemetrySupervisor ("telemetry-layer")
	    └── HTTPServerService (/metrics, /healthz; if METRICS_ENABLED)

The sync command starts the tree with ServeBackground before the first
request and cancels its context once the sync returns, so the token
refresher never outlives the run. Supervisor events are logged through
sutureslog into the zerolog pipeline.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(
	    logging.NewComponentSlogLogger("supervisor"),
	    supervisor.TreeConfigFromConfig(cfg.Supervisor),
	)
	if err != nil {
	    return err
	}
	tree.AddSessionService(services.NewTokenRefresherService(session, cfg.QuickBooks.RefreshInterval))

	treeCtx, stop := context.WithCancel(ctx)
	done := tree.ServeBackground(treeCtx)
	defer func() {
	    stop()
	    <-done
	}()
*/
package supervisor
