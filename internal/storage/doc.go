// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists local client state: the user's preferences,
// per-room input drafts, and the last open room. State lives in a SQLite
// database under the data directory; the server never sees any of it.
package storage
