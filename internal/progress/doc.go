// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress reduces the stream of generation progress events into
// a user-facing phase and a throughput line.
//
// The reducer is a pure function: it holds no state of its own and
// performs no I/O. Status transitions are monotonic within a generation
// turn (started, generating, then a terminal state); a new turn always
// resets to started. Out-of-order leftovers from a finished turn are
// dropped rather than rewinding the display.
package progress
