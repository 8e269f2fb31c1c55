// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ledgerline/internal/metrics"
)

const writerSinkName = "stdout"

// Writer encodes messages as JSON lines.
type Writer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closed bool
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriterSize(w, 64*1024)}
}

// Write encodes msg and appends a newline. Every message other than RECORD
// flushes the buffer.
func (w *Writer) Write(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		metrics.RecordSinkPublish(writerSinkName, msg.MessageType(), err)
		return fmt.Errorf("encode %s message: %w", msg.MessageType(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("writer is closed")
	}
	_, err = w.buf.Write(data)
	if err == nil {
		err = w.buf.WriteByte('\n')
	}
	if err == nil && msg.MessageType() != TypeRecord {
		err = w.buf.Flush()
	}
	metrics.RecordSinkPublish(writerSinkName, msg.MessageType(), err)
	if err != nil {
		return fmt.Errorf("write %s message: %w", msg.MessageType(), err)
	}
	return nil
}

// Flush writes any buffered records.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

// Close flushes the buffer. The underlying writer is not closed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.buf.Flush()
}

// Tee writes every message to all sinks. A failing sink does not stop the
// others; the errors are joined.
type Tee []Sink

func (t Tee) Write(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range t {
		if err := s.Write(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t Tee) Close() error {
	var errs []error
	for _, s := range t {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
