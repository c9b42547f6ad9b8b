// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver provides an in-memory stand-in for the ausma.ai
// backend: the full REST surface plus the websocket push channel, with a
// canned assistant that echoes questions back. It exists for local
// development and end-to-end tests of the client; nothing it stores
// survives a restart.
package devserver
