// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides display-width-aware string helpers for terminal
// rendering. Widths are measured with go-runewidth so CJK and other
// wide scripts truncate and pad correctly.
package util
