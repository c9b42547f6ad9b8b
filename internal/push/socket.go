// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package push provides the persistent push-event channel between the
// client and the backend.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// SOCKET CONFIGURATION
// =============================================================================

// SocketConfig holds configuration options for the websocket channel.
type SocketConfig struct {
	// URL is the websocket endpoint (e.g. ws://127.0.0.1:5000/ws)
	URL string

	// DialTimeout bounds each connection attempt (default: 10s)
	DialTimeout time.Duration

	// ReconnectMin and ReconnectMax bound the backoff between reconnect
	// attempts (defaults: 500ms, 30s)
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

func (c *SocketConfig) withDefaults() *SocketConfig {
	cfg := *c
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ReconnectMin == 0 {
		cfg.ReconnectMin = 500 * time.Millisecond
	}
	if cfg.ReconnectMax == 0 {
		cfg.ReconnectMax = 30 * time.Second
	}
	return &cfg
}

// =============================================================================
// SOCKET CHANNEL
// =============================================================================

// Socket is the websocket-backed Channel. It reconnects with capped
// backoff and re-joins previously joined rooms after a reconnect, so
// consumers never observe the transport's connection state.
type Socket struct {
	config *SocketConfig

	mu     sync.Mutex
	conn   *websocket.Conn
	reg    *registry
	joined map[string]bool
	closed bool
	onConn func(bool)

	cancel context.CancelFunc
	done   chan struct{}
}

// ErrChannelClosed is returned by Emit after Close.
var ErrChannelClosed = errors.New("push channel is closed")

// Dial connects the websocket channel and starts its delivery loop.
func Dial(ctx context.Context, config *SocketConfig) (*Socket, error) {
	cfg := config.withDefaults()

	conn, err := dialOnce(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &Socket{
		config: cfg,
		conn:   conn,
		reg:    newRegistry(),
		joined: make(map[string]bool),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.deliveryLoop(loopCtx)
	return s, nil
}

func dialOnce(ctx context.Context, cfg *SocketConfig) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// SetOnConnectionChange registers a callback fired with false when the
// connection drops and true when it is back. Callers that only consume
// Channel never need it: emitted intents and memberships survive the
// reconnect on their own.
func (s *Socket) SetOnConnectionChange(fn func(connected bool)) {
	s.mu.Lock()
	s.onConn = fn
	s.mu.Unlock()
}

func (s *Socket) notifyConn(connected bool) {
	s.mu.Lock()
	fn := s.onConn
	s.mu.Unlock()
	if fn != nil {
		fn(connected)
	}
}

// On registers a handler. See Channel.
func (s *Socket) On(event Event, handler Handler) func() {
	s.mu.Lock()
	id := s.reg.add(event, handler)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.reg.remove(event, id)
		s.mu.Unlock()
	}
}

// Emit sends an event to the server. Join/leave events additionally update
// the membership set replayed after a reconnect.
func (s *Socket) Emit(event Event, roomID string, data any) error {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = encoded
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrChannelClosed
	}

	switch event {
	case EventJoinRoom:
		s.joined[roomID] = true
	case EventLeaveRoom:
		delete(s.joined, roomID)
	}

	if s.conn == nil {
		// Between reconnect attempts. Join/leave intent is replayed on
		// reconnect; anything else is reported so the caller can leave
		// its state unchanged.
		if event == EventJoinRoom || event == EventLeaveRoom {
			return nil
		}
		return ErrChannelClosed
	}
	return s.conn.WriteJSON(Envelope{Event: event, RoomID: roomID, Data: raw})
}

// Close tears the channel down.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.cancel()
	if conn != nil {
		conn.Close()
	}
	<-s.done
	return nil
}

// =============================================================================
// DELIVERY LOOP
// =============================================================================

// deliveryLoop reads envelopes and dispatches them to handlers in arrival
// order. On read failure it reconnects with capped backoff and re-joins
// the rooms this connection was a member of.
func (s *Socket) deliveryLoop(ctx context.Context) {
	defer close(s.done)

	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return
			}
			if !s.reconnect(ctx) {
				return
			}
			continue
		}

		s.dispatch(env)
	}
}

func (s *Socket) dispatch(env Envelope) {
	s.mu.Lock()
	handlers := s.reg.snapshot(env.Event)
	s.mu.Unlock()

	for _, h := range handlers {
		h(env.Data, env.RoomID)
	}
}

func (s *Socket) reconnect(ctx context.Context) bool {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
	s.notifyConn(false)

	backoff := s.config.ReconnectMin
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		conn, err := dialOnce(ctx, s.config)
		if err != nil {
			backoff *= 2
			if backoff > s.config.ReconnectMax {
				backoff = s.config.ReconnectMax
			}
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return false
		}
		s.conn = conn
		// The membership replay stays under the lock: the connection allows
		// one writer at a time and Emit writes under the same lock.
		for roomID := range s.joined {
			conn.WriteJSON(Envelope{Event: EventJoinRoom, RoomID: roomID})
		}
		s.mu.Unlock()

		s.notifyConn(true)
		return true
	}
}
