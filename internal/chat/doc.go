// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a single open room: its message history, the live
// generation progress, and the model / knowledge-base selection that the
// next turn will be sent with.
//
// The controller owns one room at a time. Opening a room discards the
// previous room's state entirely, joins the room on the push channel, and
// resumes from the server: history, any in-flight generation, and the
// room's defaults. Outbound turns are appended locally right away and
// reconciled when the server echoes the confirmed message back.
package chat
