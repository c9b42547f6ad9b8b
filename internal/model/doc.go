// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for rooms, messages, and
// generation progress.
//
// This package defines the core domain types used throughout the application
// for representing chat rooms, their message histories, attached retrieval
// references, and the live state of an in-flight generation.
//
// # Key Types
//
//   - Room: A chat room as delivered by the server (id, name, created)
//   - Message: Single message with role, author, content, and rag sources
//   - RagSource: One retrieval reference attached to a message
//   - Progress: Live generation state for a room (status, token counters)
//   - Role: Message role enumeration (user, assistant, system)
//
// # Optimistic Messages
//
// A message appended locally before server confirmation carries a nil ID.
// The server assigns numeric ids; a confirmed message always has one:
//
//	msg := model.NewOptimisticMessage(roomID, username, "Hello!")
//	msg.IsOptimistic() // true until replaced by the confirmed copy
package model
