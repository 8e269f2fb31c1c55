// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

//go:build nats

package output

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ledgerline/internal/config"
	"github.com/tomtom215/ledgerline/internal/logging"
	"github.com/tomtom215/ledgerline/internal/metrics"
)

const natsSinkName = "nats"

// NATSSink publishes messages through a Watermill NATS publisher.
type NATSSink struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]
	prefix    string
	mu        sync.RWMutex
	closed    bool
}

// NewNATSSink connects to cfg.NATSURL. With JetStream enabled the backing
// stream is created or updated first.
func NewNATSSink(ctx context.Context, cfg config.SinkConfig) (*NATSSink, error) {
	logger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("nats-sink"))

	natsOpts := []natsgo.Option{
		natsgo.Name("ledgerline"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(10),
		natsgo.ReconnectWait(time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	if cfg.JetStream {
		if err := ensureStream(ctx, cfg); err != nil {
			return nil, err
		}
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: false, // created by ensureStream
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "nats-sink",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &NATSSink{publisher: pub, breaker: breaker, prefix: cfg.SubjectPrefix}, nil
}

// streamName derives the JetStream stream name from the subject prefix.
func streamName(prefix string) string {
	return sanitizeToken(prefix) + "_RECORDS"
}

func ensureStream(ctx context.Context, cfg config.SinkConfig) error {
	nc, err := natsgo.Connect(cfg.NATSURL, natsgo.Name("ledgerline-provision"))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	name := streamName(cfg.SubjectPrefix)
	streamCfg := jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{cfg.SubjectPrefix + ".>"},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		Duplicates: 2 * time.Minute,
		Discard:    jetstream.DiscardOld,
	}

	_, err = js.Stream(ctx, name)
	switch {
	case err == nil:
		if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream %s: %w", name, err)
		}
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := js.CreateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("create stream %s: %w", name, err)
		}
	default:
		return fmt.Errorf("check stream %s: %w", name, err)
	}
	return nil
}

// Write publishes msg on its subject.
func (s *NATSSink) Write(_ context.Context, msg Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("nats sink is closed")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msg.MessageType(), err)
	}

	wm := message.NewMessage(uuid.NewString(), data)
	wm.Metadata.Set("type", msg.MessageType())
	if name := msg.StreamName(); name != "" {
		wm.Metadata.Set("stream", name)
	}
	wm.Metadata.Set(natsgo.MsgIdHdr, wm.UUID)

	subject := Subject(s.prefix, msg)
	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.publisher.Publish(subject, wm)
	})
	metrics.RecordSinkPublish(natsSinkName, msg.MessageType(), err)
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", msg.MessageType(), subject, err)
	}
	return nil
}

// Close shuts the publisher down.
func (s *NATSSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.publisher.Close()
}
