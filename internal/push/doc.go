// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package push provides the persistent push-event channel between the
// client and the backend.
//
// One connection is shared process-wide: the room directory and every chat
// session subscribe to the same channel and filter by room id themselves —
// the transport does no room-based filtering. The channel is constructed
// explicitly and injected into its consumers; its lifecycle (connect,
// teardown) belongs to the process entry point, never to the components
// that use it.
//
// # Delivery Model
//
// Handlers registered with On are invoked sequentially, in arrival order,
// from a single delivery goroutine. Consumers that own view state forward
// events into their event loop rather than mutating state in the handler.
//
// # Implementations
//
//   - Socket: websocket transport with automatic reconnect
//   - Memory: in-process loopback for tests and offline development
package push
