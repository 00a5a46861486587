package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// StatusSubscriber is a push-delivery alternative to polling: it yields
// server round snapshots as the server publishes them. The returned channel
// is closed when the subscription ends (context cancelled or reconnect
// attempts exhausted).
type StatusSubscriber interface {
	Subscribe(ctx context.Context, sessionID, roundID uuid.UUID) (<-chan RoundStatus, error)
}

// WebSocketConfig holds configuration for the WebSocket subscriber.
type WebSocketConfig struct {
	URL              string // e.g. wss://game.example.com/ws/rounds
	HandshakeTimeout time.Duration
	MaxMessageSize   int64
	MaxReconnects    int           // attempts per outage before giving up
	ReconnectWait    time.Duration // initial backoff, doubled per attempt
	MaxReconnectWait time.Duration // backoff cap
}

// DefaultWebSocketConfig returns default WebSocket subscriber configuration.
func DefaultWebSocketConfig(url string) WebSocketConfig {
	return WebSocketConfig{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   4096,
		MaxReconnects:    5,
		ReconnectWait:    time.Second,
		MaxReconnectWait: 30 * time.Second,
	}
}

// WebSocketSubscriber receives round status frames over a WebSocket
// connection, reconnecting with capped exponential backoff when the
// connection drops.
type WebSocketSubscriber struct {
	config WebSocketConfig
	dialer *websocket.Dialer
}

// NewWebSocketSubscriber creates a WebSocket subscriber.
func NewWebSocketSubscriber(config WebSocketConfig) *WebSocketSubscriber {
	return &WebSocketSubscriber{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Subscribe dials the server and starts the read loop. The initial dial is
// synchronous so a bad endpoint fails fast; later drops are retried in the
// background.
func (s *WebSocketSubscriber) Subscribe(ctx context.Context, sessionID, roundID uuid.UUID) (<-chan RoundStatus, error) {
	conn, err := s.dial(ctx, sessionID, roundID)
	if err != nil {
		return nil, fmt.Errorf("subscribe to round updates: %w", err)
	}

	updates := make(chan RoundStatus, 16)
	go s.readLoop(ctx, conn, sessionID, roundID, updates)
	return updates, nil
}

func (s *WebSocketSubscriber) dial(ctx context.Context, sessionID, roundID uuid.UUID) (*websocket.Conn, error) {
	url := fmt.Sprintf("%s?session_id=%s&round_id=%s", s.config.URL, sessionID, roundID)
	conn, _, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.config.URL, err)
	}
	conn.SetReadLimit(s.config.MaxMessageSize)
	return conn, nil
}

func (s *WebSocketSubscriber) readLoop(ctx context.Context, conn *websocket.Conn, sessionID, roundID uuid.UUID, updates chan<- RoundStatus) {
	defer close(updates)

	for {
		s.readConn(ctx, conn, updates)
		conn.Close()

		if ctx.Err() != nil {
			log.Debug().Msg("round update subscription closed")
			return
		}
		log.Warn().Msg("round update connection dropped")

		conn = s.reconnect(ctx, sessionID, roundID)
		if conn == nil {
			return
		}
	}
}

// readConn reads frames from one connection until it fails or the context
// ends. A watcher closes the connection on cancellation so ReadMessage
// unblocks.
func (s *WebSocketSubscriber) readConn(ctx context.Context, conn *websocket.Conn, updates chan<- RoundStatus) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var status RoundStatus
		if err := json.Unmarshal(data, &status); err != nil {
			log.Error().Err(err).Msg("failed to decode round status frame")
			continue
		}

		select {
		case updates <- status:
		case <-ctx.Done():
			return
		default:
			// Consumer is behind; a newer snapshot supersedes this one anyway.
			log.Debug().Msg("dropping round status frame, consumer busy")
		}
	}
}

// reconnect retries the dial with exponential backoff up to MaxReconnects
// attempts. Returns nil when the context ends or attempts are exhausted.
func (s *WebSocketSubscriber) reconnect(ctx context.Context, sessionID, roundID uuid.UUID) *websocket.Conn {
	wait := s.config.ReconnectWait
	for attempt := 1; attempt <= s.config.MaxReconnects; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		conn, err := s.dial(ctx, sessionID, roundID)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("round update connection restored")
			return conn
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")

		wait *= 2
		if wait > s.config.MaxReconnectWait {
			wait = s.config.MaxReconnectWait
		}
	}
	log.Error().Int("attempts", s.config.MaxReconnects).Msg("giving up on round update connection")
	return nil
}
