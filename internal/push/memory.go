// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package push provides the persistent push-event channel between the
// client and the backend.
package push

import (
	"encoding/json"
	"sync"
)

// =============================================================================
// IN-MEMORY CHANNEL
// =============================================================================

// Memory is an in-process Channel. Inbound events are injected with
// Deliver; outbound Emit calls are recorded for inspection. It backs the
// component tests and offline development.
type Memory struct {
	mu      sync.Mutex
	reg     *registry
	sent    []Envelope
	emitErr map[Event]error
}

// NewMemory creates an in-memory channel.
func NewMemory() *Memory {
	return &Memory{reg: newRegistry()}
}

// On registers a handler. See Channel.
func (m *Memory) On(event Event, handler Handler) func() {
	m.mu.Lock()
	id := m.reg.add(event, handler)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.reg.remove(event, id)
		m.mu.Unlock()
	}
}

// Emit records the outbound envelope, or fails if FailEmit armed the
// event.
func (m *Memory) Emit(event Event, roomID string, data any) error {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = encoded
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.emitErr[event]; err != nil {
		return err
	}
	m.sent = append(m.sent, Envelope{Event: event, RoomID: roomID, Data: raw})
	return nil
}

// FailEmit makes subsequent Emit calls for event return err, simulating a
// transport between reconnect attempts. A nil err clears the failure.
func (m *Memory) FailEmit(event Event, err error) {
	m.mu.Lock()
	if m.emitErr == nil {
		m.emitErr = make(map[Event]error)
	}
	if err == nil {
		delete(m.emitErr, event)
	} else {
		m.emitErr[event] = err
	}
	m.mu.Unlock()
}

// Close releases all handlers.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.reg = newRegistry()
	m.mu.Unlock()
	return nil
}

// Deliver dispatches an inbound event to the registered handlers, exactly
// as the socket's delivery loop would. The payload is marshaled for the
// handlers' benefit.
func (m *Memory) Deliver(event Event, roomID string, data any) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return
		}
		raw = encoded
	}

	m.mu.Lock()
	handlers := m.reg.snapshot(event)
	m.mu.Unlock()

	for _, h := range handlers {
		h(raw, roomID)
	}
}

// Sent returns a copy of the outbound envelopes recorded so far.
func (m *Memory) Sent() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Envelope(nil), m.sent...)
}

// LastSent returns the most recent outbound envelope, or nil.
func (m *Memory) LastSent() *Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	env := m.sent[len(m.sent)-1]
	return &env
}
