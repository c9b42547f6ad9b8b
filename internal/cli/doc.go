// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and runs the non-interactive
// subcommands (status, rooms, config, version). The default command
// launches the TUI; that wiring lives in main.
package cli
