// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 30 * time.Second

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RoomsChangedMsg:
		list := m.deps.Directory.Rooms()
		if m.selected >= len(list) {
			m.selected = len(list) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, nil

	case ChatChangedMsg:
		m.refreshViewport()
		return m, nil

	case ServiceStatusMsg:
		m.serviceStatus = msg.Status
		return m, nil

	case ConnectionMsg:
		m.connected = msg.Connected
		return m, nil

	case roomOpenedMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			m.lastErr = ""
		}
		m.restoreDraft(msg.roomID)
		m.refreshViewport()
		return m, nil

	case requestFailedMsg:
		m.lastErr = msg.err.Error()
		return m, nil

	case catalogMsg:
		if msg.err == nil {
			m.models = msg.models
			m.kbs = msg.kbs
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.saveDraft()
		return m, tea.Quit
	}

	switch m.mode {
	case modePromptCreate, modePromptRename, modePromptUsername:
		return m.handlePromptKey(msg)
	case modeConfirmRemove:
		return m.handleConfirmKey(msg)
	case modePickModel, modePickKB:
		return m.handlePickerKey(msg)
	}

	// Room management works from either pane.
	switch {
	case key.Matches(msg, m.keyMap.NewRoom):
		m.mode = modePromptCreate
		m.prompt.Placeholder = "Room name"
		m.prompt.SetValue("")
		m.prompt.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.RenameRoom):
		if _, ok := m.selectedRoom(); ok {
			m.mode = modePromptRename
			m.prompt.Placeholder = "New name"
			m.prompt.SetValue("")
			m.prompt.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.RemoveRoom):
		return m.beginRemove()

	case key.Matches(msg, m.keyMap.PickModel):
		// A room that already produced an assistant reply keeps its model.
		if m.deps.Controller.RoomID() == "" || m.deps.Controller.ModelLocked() {
			return m, nil
		}
		m.mode = modePickModel
		m.pickerItems = append([]string{"(default)"}, m.models...)
		m.pickerIndex = 0
		return m, nil

	case key.Matches(msg, m.keyMap.PickKB):
		if m.deps.Controller.RoomID() == "" {
			return m, nil
		}
		m.mode = modePickKB
		m.pickerItems = append([]string{"(default)"}, m.kbs...)
		m.pickerIndex = 0
		return m, nil

	case key.Matches(msg, m.keyMap.EditUser):
		m.mode = modePromptUsername
		m.prompt.Placeholder = "Username"
		m.prompt.SetValue(m.deps.Controller.Username())
		m.prompt.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.FocusNext):
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		} else {
			m.focus = focusSidebar
			m.input.Blur()
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.deps.Directory.Rooms()

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.selected < len(list)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.OpenRoom):
		roomID, ok := m.selectedRoom()
		if !ok || roomID == m.deps.Controller.RoomID() {
			return m, nil
		}
		m.saveDraft()
		return m, m.openRoomCmd(roomID)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Stop):
		return m, m.stopCmd()

	case key.Matches(msg, m.keyMap.Send) && !msg.Alt:
		text := m.input.Value()
		if strings.TrimSpace(text) == "" || m.deps.Controller.InputDisabled() {
			return m, nil
		}
		if err := m.deps.Controller.Send(text); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.input.SetValue("")
		m.clearDraft()
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.prompt.Blur()
		return m, nil

	case tea.KeyEnter:
		name := m.prompt.Value()
		mode := m.mode
		m.mode = modeNormal
		m.prompt.Blur()

		switch mode {
		case modePromptCreate:
			return m, m.createRoomCmd(name)
		case modePromptRename:
			if roomID, ok := m.selectedRoom(); ok {
				return m, m.renameRoomCmd(roomID, name)
			}
		case modePromptUsername:
			if strings.TrimSpace(name) != "" {
				m.deps.Controller.SetUsername(name)
				if m.deps.Store != nil {
					_ = m.deps.Store.SetUsername(strings.TrimSpace(name))
				}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) beginRemove() (tea.Model, tea.Cmd) {
	roomID, ok := m.selectedRoom()
	if !ok {
		return m, nil
	}
	room, ok := m.deps.Directory.Room(roomID)
	if !ok {
		return m, nil
	}
	m.mode = modeConfirmRemove
	m.removingRoomID = roomID
	m.removingLabel = m.deps.Directory.DisplayName(room)
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		roomID := m.removingRoomID
		m.mode = modeNormal
		m.removingRoomID = ""
		return m, m.removeRoomCmd(roomID)
	case "n", "esc":
		m.mode = modeNormal
		m.removingRoomID = ""
		return m, nil
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.pickerIndex < len(m.pickerItems)-1 {
			m.pickerIndex++
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		choice := ""
		if m.pickerIndex > 0 && m.pickerIndex < len(m.pickerItems) {
			choice = m.pickerItems[m.pickerIndex]
		}
		mode := m.mode
		m.mode = modeNormal
		m.pickerItems = nil

		switch mode {
		case modePickModel:
			m.deps.Controller.SetModelOverride(choice)
		case modePickKB:
			m.deps.Controller.SetKnowledgeBaseOverride(choice)
		}
		return m, nil

	case msg.Type == tea.KeyEsc:
		m.mode = modeNormal
		m.pickerItems = nil
		return m, nil
	}
	return m, nil
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) openRoomCmd(roomID string) tea.Cmd {
	controller := m.deps.Controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return roomOpenedMsg{roomID: roomID, err: controller.Open(ctx, roomID)}
	}
}

func (m Model) createRoomCmd(name string) tea.Cmd {
	directory := m.deps.Directory
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := directory.RequestCreate(ctx, name); err != nil {
			return requestFailedMsg{err: err}
		}
		return nil
	}
}

func (m Model) renameRoomCmd(roomID, name string) tea.Cmd {
	directory := m.deps.Directory
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := directory.RequestRename(ctx, roomID, name); err != nil {
			return requestFailedMsg{err: err}
		}
		return nil
	}
}

func (m Model) removeRoomCmd(roomID string) tea.Cmd {
	directory := m.deps.Directory
	return func() tea.Msg {
		// The overlay already asked; the directory's own gate passes.
		if err := directory.RequestRemove(roomID); err != nil {
			return requestFailedMsg{err: err}
		}
		return nil
	}
}

func (m Model) fetchCatalogCmd() tea.Cmd {
	catalog := m.deps.Catalog
	if catalog == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		models, err := catalog.ListModels(ctx)
		if err != nil {
			return catalogMsg{err: err}
		}
		kbs, err := catalog.ListKnowledgeBases(ctx)
		if err != nil {
			return catalogMsg{err: err}
		}
		names := make([]string, 0, len(kbs))
		for _, kb := range kbs {
			names = append(names, kb.Name)
		}
		return catalogMsg{models: models, kbs: names}
	}
}

func (m Model) stopCmd() tea.Cmd {
	controller := m.deps.Controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := controller.Stop(ctx); err != nil {
			return requestFailedMsg{err: err}
		}
		return nil
	}
}

// =============================================================================
// DRAFTS
// =============================================================================

func (m *Model) saveDraft() {
	if m.deps.Store == nil {
		return
	}
	roomID := m.deps.Controller.RoomID()
	if roomID == "" {
		return
	}
	_ = m.deps.Store.SaveDraft(roomID, m.input.Value())
	_ = m.deps.Store.SetLastRoom(roomID)
}

func (m *Model) restoreDraft(roomID string) {
	m.input.SetValue("")
	if m.deps.Store == nil {
		return
	}
	if draft, err := m.deps.Store.Draft(roomID); err == nil && draft != "" {
		m.input.SetValue(draft)
	}
}

func (m *Model) clearDraft() {
	if m.deps.Store == nil {
		return
	}
	if roomID := m.deps.Controller.RoomID(); roomID != "" {
		_ = m.deps.Store.DeleteDraft(roomID)
	}
}
