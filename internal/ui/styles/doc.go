// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the adaptive color palette and the Theme of
// lipgloss styles the TUI renders with. Colors adapt to the detected
// terminal background and color profile.
package styles
