// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/ledgerline/internal/streams"
)

type catalogEntry struct {
	Stream            string   `json:"stream"`
	TapStreamID       string   `json:"tap_stream_id"`
	Kind              string   `json:"kind"`
	ReplicationMethod string   `json:"replication_method"`
	ReplicationKey    string   `json:"replication_key,omitempty"`
	KeyProperties     []string `json:"key_properties"`
}

type catalog struct {
	Streams []catalogEntry `json:"streams"`
}

func buildCatalog(r *streams.Registry) catalog {
	descs := r.Descriptors()
	out := catalog{Streams: make([]catalogEntry, 0, len(descs))}
	for _, d := range descs {
		keys := d.KeyProperties
		if keys == nil {
			keys = []string{}
		}
		out.Streams = append(out.Streams, catalogEntry{
			Stream:            d.Name,
			TapStreamID:       d.Name,
			Kind:              d.Kind.String(),
			ReplicationMethod: d.ReplicationMethod(),
			ReplicationKey:    d.ReplicationKey,
			KeyProperties:     keys,
		})
	}
	return out
}

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Print the available streams as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(buildCatalog(streams.NewRegistry()), "", "    ")
			if err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
