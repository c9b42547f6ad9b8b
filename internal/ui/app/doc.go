// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the Bubble Tea program for the client.
//
// The layout is a room sidebar on the left and the open room on the
// right: message history in a viewport, a progress line while the server
// is generating, a text area for the next turn, and a status bar showing
// the indexing service. Room create, rename, and remove run through a
// small prompt overlay; removal additionally asks for confirmation.
//
// The program never mutates conversation state itself. Every keystroke
// turns into a call on the rooms directory or the chat controller, and
// every repaint reads back whatever they currently hold.
package app
