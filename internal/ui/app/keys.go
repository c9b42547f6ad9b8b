// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keyboard bindings for the client.
type KeyMap struct {
	FocusNext  key.Binding
	Up         key.Binding
	Down       key.Binding
	OpenRoom   key.Binding
	NewRoom    key.Binding
	RenameRoom key.Binding
	RemoveRoom key.Binding
	PickModel  key.Binding
	PickKB     key.Binding
	EditUser   key.Binding
	Send       key.Binding
	Stop       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch focus"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous room"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next room"),
		),
		OpenRoom: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open room"),
		),
		NewRoom: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new room"),
		),
		RenameRoom: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "rename room"),
		),
		RemoveRoom: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete room"),
		),
		PickModel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "choose model"),
		),
		PickKB: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "choose knowledge base"),
		),
		EditUser: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "change username"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "stop generation"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}
