// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rooms maintains the client's view of the room set.
package rooms

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
)

// ShortIDLen is the length of the id fragment appended to a display name
// when another room shares the same name.
const ShortIDLen = 5

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Backend is the slice of the REST API the directory needs.
type Backend interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	CreateRoom(ctx context.Context, name string) (*model.Room, error)
	RenameRoom(ctx context.Context, roomID, name string) error
}

// ConfirmFunc asks the user an are-you-sure question and reports the
// answer. Removal intents are gated behind it.
type ConfirmFunc func(message string) bool

// =============================================================================
// DIRECTORY
// =============================================================================

// Directory synchronizes the ordered room set against server snapshots.
type Directory struct {
	backend Backend
	channel push.Channel
	confirm ConfirmFunc

	mu       sync.Mutex
	rooms    []model.Room
	nameFreq map[string]int
	onChange func([]model.Room)

	offRoomsList func()
}

// NewDirectory creates a directory subscribed to room-set snapshots on
// the given channel. Close releases the subscription.
func NewDirectory(backend Backend, channel push.Channel, confirm ConfirmFunc) *Directory {
	d := &Directory{
		backend:  backend,
		channel:  channel,
		confirm:  confirm,
		nameFreq: map[string]int{},
	}
	d.offRoomsList = channel.On(push.EventRoomsList, func(data json.RawMessage, _ string) {
		var snapshot []model.Room
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return
		}
		d.ApplySnapshot(snapshot)
	})
	return d
}

// Close unsubscribes the directory from the push channel.
func (d *Directory) Close() {
	if d.offRoomsList != nil {
		d.offRoomsList()
		d.offRoomsList = nil
	}
}

// SetOnChange registers a callback invoked with the new room set after
// every snapshot application.
func (d *Directory) SetOnChange(fn func([]model.Room)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// =============================================================================
// SNAPSHOT APPLICATION
// =============================================================================

// Refresh fetches the current room set once and applies it. Used at
// startup, before the first push snapshot arrives. On failure the set is
// left unchanged.
func (d *Directory) Refresh(ctx context.Context) error {
	rooms, err := d.backend.ListRooms(ctx)
	if err != nil {
		return err
	}
	d.ApplySnapshot(rooms)
	return nil
}

// ApplySnapshot replaces the authoritative room set. Application is total:
// the previous set and its name-frequency table are discarded wholesale,
// never partially updated. Applying the same snapshot twice is a no-op in
// effect.
func (d *Directory) ApplySnapshot(snapshot []model.Room) {
	rooms := append([]model.Room(nil), snapshot...)

	freq := make(map[string]int, len(rooms))
	for _, room := range rooms {
		freq[room.Name]++
	}

	d.mu.Lock()
	d.rooms = rooms
	d.nameFreq = freq
	onChange := d.onChange
	d.mu.Unlock()

	if onChange != nil {
		onChange(rooms)
	}
}

// Rooms returns a copy of the current room set in snapshot order.
func (d *Directory) Rooms() []model.Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Room(nil), d.rooms...)
}

// Room looks a room up by id in the current snapshot.
func (d *Directory) Room(id string) (model.Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, room := range d.rooms {
		if room.ID == id {
			return room, true
		}
	}
	return model.Room{}, false
}

// =============================================================================
// DISPLAY NAMES
// =============================================================================

// DisplayName returns the label for a room: its name, suffixed with a
// short id fragment only when another room in the current snapshot shares
// the name.
func (d *Directory) DisplayName(room model.Room) string {
	d.mu.Lock()
	freq := d.nameFreq[room.Name]
	d.mu.Unlock()

	if freq > 1 {
		return room.Name + " @" + shortID(room.ID)
	}
	return room.Name
}

func shortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// =============================================================================
// USER INTENTS
// =============================================================================

// RequestCreate asks the server to create a room. No local state changes:
// membership truth arrives with the next snapshot. An empty name after
// trimming is a no-op.
func (d *Directory) RequestCreate(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	_, err := d.backend.CreateRoom(ctx, name)
	return err
}

// RequestRename asks the server to rename a room. An empty name after
// trimming is a no-op.
func (d *Directory) RequestRename(ctx context.Context, roomID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return d.backend.RenameRoom(ctx, roomID, name)
}

// RequestRemove asks the user for confirmation, then sends the removal
// intent over the push channel. Declining leaves everything untouched.
func (d *Directory) RequestRemove(roomID string) error {
	room, ok := d.Room(roomID)
	if !ok {
		return nil
	}

	label := d.DisplayName(room)
	if d.confirm != nil && !d.confirm("Are you sure you want to delete - "+label+"?") {
		return nil
	}

	return d.channel.Emit(push.EventRemoveRoom, roomID, map[string]string{"room_id": roomID})
}
