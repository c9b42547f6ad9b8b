// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package push provides the persistent push-event channel between the
// client and the backend.
package push

import (
	"encoding/json"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event names an event kind carried on the channel.
type Event string

const (
	// EventRoomsList delivers the full authoritative room-set snapshot.
	// It targets no particular room.
	EventRoomsList Event = "rooms_list"

	// EventMessage delivers a chat message for a target room. Inbound it
	// carries confirmed (or optimistic-echo) messages; outbound it carries
	// a generation request.
	EventMessage Event = "message"

	// EventProgress delivers a generation progress update for a target room.
	EventProgress Event = "progress"

	// EventJoinRoom and EventLeaveRoom manage the server-side room
	// membership of this connection. Outbound only.
	EventJoinRoom  Event = "join_room"
	EventLeaveRoom Event = "leave_room"

	// EventRemoveRoom asks the server to remove a room. Outbound only;
	// the confirmation is the next rooms_list snapshot.
	EventRemoveRoom Event = "remove_room"
)

// Handler receives an event's raw payload and, for room-targeted events,
// the target room id. Process-wide events carry an empty room id.
type Handler func(data json.RawMessage, roomID string)

// =============================================================================
// CHANNEL INTERFACE
// =============================================================================

// Channel is the opaque subscribe/emit surface the synchronization core
// consumes. Transport details (protocol, reconnection) live behind it.
type Channel interface {
	// On registers a handler for an event kind and returns a function
	// that unsubscribes it. Multiple handlers per event are allowed.
	On(event Event, handler Handler) (off func())

	// Emit sends an event to the server. The room id may be empty for
	// events that target no room.
	Emit(event Event, roomID string, data any) error

	// Close tears the channel down. Registered handlers are released and
	// no further events are delivered.
	Close() error
}

// Envelope is the wire format: one JSON object per event.
type Envelope struct {
	Event  Event           `json:"event"`
	RoomID string          `json:"room_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// =============================================================================
// HANDLER REGISTRY
// =============================================================================

// registry is the shared subscription table used by both implementations.
// Handler invocation order within an event follows registration order.
type registry struct {
	nextID   int
	handlers map[Event][]registration
}

type registration struct {
	id      int
	handler Handler
}

func newRegistry() *registry {
	return &registry{handlers: make(map[Event][]registration)}
}

func (r *registry) add(event Event, h Handler) int {
	r.nextID++
	id := r.nextID
	r.handlers[event] = append(r.handlers[event], registration{id: id, handler: h})
	return id
}

func (r *registry) remove(event Event, id int) {
	regs := r.handlers[event]
	kept := regs[:0]
	for _, reg := range regs {
		if reg.id != id {
			kept = append(kept, reg)
		}
	}
	r.handlers[event] = kept
}

// snapshot returns the handlers for an event so dispatch can happen
// outside any lock.
func (r *registry) snapshot(event Event) []Handler {
	regs := r.handlers[event]
	out := make([]Handler, len(regs))
	for i, reg := range regs {
		out[i] = reg.handler
	}
	return out
}
