// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for rooms, messages, and
// generation progress.
package model

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a room's history.
//
// The server assigns numeric ids. A message appended locally at send time,
// before the server has confirmed the turn, carries a nil ID; within one
// room's history at most one such message exists at a time.
type Message struct {
	// Identity. Nil means optimistic (not yet confirmed by the server).
	ID     *int64 `json:"id"`
	RoomID string `json:"room_id"`

	// Author display name. For assistant messages the server fills this
	// with the model identity that generated the reply.
	Username string `json:"username"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// RagSources is the JSON-encoded retrieval-reference payload as it
	// arrives on the wire. Use RagSourceList to decode it.
	RagSources string `json:"rag_sources,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
}

// NewOptimisticMessage creates a locally appended user message awaiting
// server confirmation.
func NewOptimisticMessage(roomID, username, content string) Message {
	return Message{
		RoomID:   roomID,
		Username: username,
		Role:     RoleUser,
		Content:  content,
	}
}

// IsOptimistic reports whether the message has not yet been confirmed by
// the server.
func (m Message) IsOptimistic() bool {
	return m.ID == nil
}

// RagSourceList decodes the attached retrieval references.
// Malformed or absent payloads yield nil; this mirrors the tolerant
// handling of the rest of the reconciliation path.
func (m Message) RagSourceList() []RagSource {
	payload := strings.TrimSpace(m.RagSources)
	if payload == "" || payload == "null" {
		return nil
	}
	var sources []RagSource
	if err := json.Unmarshal([]byte(payload), &sources); err != nil {
		return nil
	}
	return sources
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// RAG SOURCE TYPE
// =============================================================================

// RagSource is one retrieval reference attached to a message.
type RagSource struct {
	ID              string            `json:"id"`
	Content         string            `json:"content"`
	SimilarityScore float64           `json:"similarity_score"`
	KnowledgeBase   string            `json:"knowledge_base,omitempty"`
	Metadata        RagSourceMetadata `json:"metadata"`
}

// RagSourceMetadata locates a reference inside its source document.
type RagSourceMetadata struct {
	DocumentPath   string `json:"document_path"`
	DocumentNumber int    `json:"document_number"`
	DocumentCount  int    `json:"document_count"`
	PageNumber     int    `json:"page_number"`
	PageCount      int    `json:"page_count"`
	ChunkNumber    int    `json:"chunk_number"`
	ChunkCount     int    `json:"chunk_count"`
}
