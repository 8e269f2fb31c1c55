// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import (
	"context"

	"github.com/tomtom215/ledgerline/internal/quickbooks"
	"github.com/tomtom215/ledgerline/internal/report"
)

func entityDescriptor(entity string) Descriptor {
	return Descriptor{
		Name:           entity,
		Kind:           KindEntity,
		ReplicationKey: EntityReplicationKey,
		KeyProperties:  []string{"Id"},
	}
}

// entityReader pages through one entity, newer than the start date.
type entityReader struct {
	desc Descriptor
	deps Deps
}

func (r *entityReader) Read(ctx context.Context, emit func(report.Record) error) error {
	q := quickbooks.EntityQuery{
		Entity:         r.desc.Name,
		ReplicationKey: r.desc.ReplicationKey,
		Start:          r.deps.StartDate,
		IncludeDeleted: r.deps.Options.IncludeDeleted,
	}
	return r.deps.Client.QueryEntities(ctx, q, func(rec quickbooks.Record) error {
		return emit(report.Record(rec))
	})
}
