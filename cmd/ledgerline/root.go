// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package main

import (
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgerline",
		Short: "Extract QuickBooks Online reports and entities as a JSON message stream",
		Long: `Ledgerline extracts accounting reports (balance sheet, profit and loss,
general ledger, cash flow, aging, transaction list) and entities from
QuickBooks Online. Records, schemas and checkpoints are written to stdout as
JSON lines; logs are written to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default: LEDGERLINE_CONFIG or ./config.yaml)")

	cmd.AddCommand(
		newSyncCmd(opts),
		newDiscoverCmd(),
		newVersionCmd(),
	)
	return cmd
}
