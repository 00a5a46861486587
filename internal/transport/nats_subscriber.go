package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for the NATS subscriber.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "brainring.sessions"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS subscriber configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "brainring.sessions",
		MaxReconnects: -1, // infinite, the client library backs off internally
		ReconnectWait: 2 * time.Second,
	}
}

// NATSSubscriber receives round status snapshots from the game event bus,
// for deployments that expose it to trusted clients directly.
type NATSSubscriber struct {
	config NATSConfig
	nc     *nats.Conn
}

// NewNATSSubscriber connects to NATS and returns a subscriber.
func NewNATSSubscriber(config NATSConfig) (*NATSSubscriber, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSSubscriber{config: config, nc: nc}, nil
}

// Subscribe listens on the round's state subject and yields decoded
// snapshots until the context ends.
//
// Deliveries land in an internal inbox that is never closed, so a message
// arriving while teardown runs cannot hit a closed channel; the forwarding
// goroutine is the sole sender and closer of the returned channel.
func (s *NATSSubscriber) Subscribe(ctx context.Context, sessionID, roundID uuid.UUID) (<-chan RoundStatus, error) {
	subject := fmt.Sprintf("%s.%s.rounds.%s.state", s.config.SubjectPrefix, sessionID, roundID)
	inbox := make(chan RoundStatus, 16)

	sub, err := s.nc.Subscribe(subject, statusHandler(inbox))
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	updates := make(chan RoundStatus, 16)
	go forwardStatuses(ctx, inbox, updates, func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("failed to unsubscribe")
		}
	})

	log.Info().Str("subject", subject).Msg("subscribed to round updates")
	return updates, nil
}

// statusHandler decodes round status messages into the inbox. Runs on the
// client library's delivery goroutine, so it must never block.
func statusHandler(inbox chan<- RoundStatus) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var status RoundStatus
		if err := json.Unmarshal(msg.Data, &status); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("failed to decode round status message")
			return
		}
		select {
		case inbox <- status:
		default:
			log.Debug().Str("subject", msg.Subject).Msg("dropping round status message, consumer busy")
		}
	}
}

// forwardStatuses moves statuses from the inbox to the consumer channel
// until the context ends, then unsubscribes and closes updates.
func forwardStatuses(ctx context.Context, inbox <-chan RoundStatus, updates chan<- RoundStatus, unsubscribe func()) {
	defer close(updates)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case status := <-inbox:
			select {
			case updates <- status:
			case <-ctx.Done():
				return
			default:
				log.Debug().Msg("dropping round status message, consumer busy")
			}
		}
	}
}

// Close releases the NATS connection.
func (s *NATSSubscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
