// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

//go:build !nats

package output

import (
	"context"
	"errors"

	"github.com/tomtom215/ledgerline/internal/config"
)

// ErrNATSUnavailable is returned when the binary was built without -tags=nats.
var ErrNATSUnavailable = errors.New("NATS sink not available: build with -tags=nats")

// NATSSink is a stub when NATS dependencies are not compiled in.
type NATSSink struct{}

// NewNATSSink returns ErrNATSUnavailable.
func NewNATSSink(_ context.Context, _ config.SinkConfig) (*NATSSink, error) {
	return nil, ErrNATSUnavailable
}

func (*NATSSink) Write(context.Context, Message) error { return ErrNATSUnavailable }

func (*NATSSink) Close() error { return nil }
