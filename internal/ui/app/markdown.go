// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/glamour"
)

// markdown renders assistant replies for the terminal. The renderer is
// rebuilt when the viewport width changes.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

// Render returns the content rendered for the given width. On any
// renderer failure the raw content comes back unchanged.
func (m *markdown) Render(content string, width int) string {
	if width < 10 {
		return content
	}
	if m.renderer == nil || m.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.renderer = renderer
		m.width = width
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
