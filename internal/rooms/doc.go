// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rooms maintains the client's view of the room set.
//
// The server is the sole authority over set membership: user intents
// (create, rename, remove) are sent to the backend and the resulting
// room-set snapshot arrives on the push channel. The directory never
// inserts optimistically and never fabricates room ids — a failed request
// simply leaves the set unchanged.
//
// Display names disambiguate rooms that share a name by appending a short
// fragment of the room id. The frequency table behind this is recomputed
// from the full snapshot on every application, so suffixes from a previous
// snapshot can never leak.
package rooms
