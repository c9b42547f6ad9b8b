// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserAuthor      lipgloss.Style
	AssistantAuthor lipgloss.Style
	MessageBody     lipgloss.Style
	FailedNote      lipgloss.Style
	SourceNote      lipgloss.Style
	PendingMark     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style

	// ==========================================================================
	// PROGRESS AND STATUS STYLES
	// ==========================================================================

	ProgressLine lipgloss.Style
	ErrorLine    lipgloss.Style
	StatusBar    lipgloss.Style
	StatusOK     lipgloss.Style
	StatusBad    lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	PromptBox   lipgloss.Style
	PromptTitle lipgloss.Style
	PromptHint  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(Overlay)

	// Messages
	t.UserAuthor = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.AssistantAuthor = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FailedNote = lipgloss.NewStyle().
		Foreground(Rose).
		Italic(true)

	t.SourceNote = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.PendingMark = lipgloss.NewStyle().
		Foreground(Amber)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Progress and status
	t.ProgressLine = lipgloss.NewStyle().
		Foreground(Amber)

	t.ErrorLine = lipgloss.NewStyle().
		Foreground(Rose)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StatusBad = lipgloss.NewStyle().
		Foreground(Rose)

	// Overlays
	t.PromptBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(1, 2)

	t.PromptTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.PromptHint = lipgloss.NewStyle().
		Foreground(TextMuted)
}
