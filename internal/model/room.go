// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for rooms, messages, and
// generation progress.
package model

// =============================================================================
// ROOM TYPE
// =============================================================================

// Room represents a chat room as delivered by the server.
//
// Names are user-chosen and not unique; the id is the identity. Rooms are
// created, renamed, and removed server-side only — the client never
// fabricates room ids.
type Room struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Created string `json:"created"`
	Active  bool   `json:"active,omitempty"`
}

// IsZero reports whether the room carries no server data. The server
// answers an unknown or removed room id with an empty object.
func (r Room) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// RoomDefaults holds the server-configured fallback model and knowledge
// base used when a room constrains neither.
type RoomDefaults struct {
	Model         string `json:"model"`
	KnowledgeBase string `json:"knowledge_base"`
}
