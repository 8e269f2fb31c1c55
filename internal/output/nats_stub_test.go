// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

//go:build !nats

package output

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/ledgerline/internal/config"
)

func TestNewNATSSink_Stub(t *testing.T) {
	t.Parallel()

	sink, err := NewNATSSink(context.Background(), config.SinkConfig{NATSEnabled: true})
	if !errors.Is(err, ErrNATSUnavailable) {
		t.Errorf("NewNATSSink() error = %v, want ErrNATSUnavailable", err)
	}
	if sink != nil {
		t.Error("NewNATSSink() returned a sink without NATS support")
	}

	var stub *NATSSink
	if err := stub.Write(context.Background(), State{}); !errors.Is(err, ErrNATSUnavailable) {
		t.Errorf("Write() error = %v, want ErrNATSUnavailable", err)
	}
}
