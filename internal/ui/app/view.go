// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/progress"
	"github.com/v-industries-lv/ausma-ai-documents/internal/util"
)

const (
	sidebarWidth    = 28
	inputHeight     = 3
	statusBarHeight = 1
	progressHeight  = 1
)

// layout recomputes component dimensions after a resize.
func (m *Model) layout() {
	chatWidth := m.width - sidebarWidth - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	chatHeight := m.height - inputHeight - statusBarHeight - progressHeight - 3
	if chatHeight < 3 {
		chatHeight = 3
	}

	m.viewport.Width = chatWidth
	m.viewport.Height = chatHeight
	m.input.SetWidth(chatWidth - 2)
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.mode != modeNormal {
		return m.renderOverlay()
	}

	sidebar := m.renderSidebar()
	chatPane := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		m.renderProgressLine(),
		m.renderInput(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chatPane)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Rooms"))
	b.WriteString("\n\n")

	list := m.deps.Directory.Rooms()
	openID := m.deps.Controller.RoomID()

	for i, room := range list {
		label := util.TruncateWidth(m.deps.Directory.DisplayName(room), sidebarWidth-4)

		marker := "  "
		if room.ID == openID {
			marker = "* "
		}

		line := marker + label
		if i == m.selected && m.focus == focusSidebar {
			line = m.theme.SidebarSelected.Render(line)
		} else {
			line = m.theme.SidebarItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(list) == 0 {
		b.WriteString(m.theme.SidebarItem.Render("  (no rooms)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.PromptHint.Render("C-n new  C-r rename\nC-x delete\nC-o model  C-g kb\nF2 username"))

	return m.theme.Sidebar.
		Width(sidebarWidth).
		Height(m.height - statusBarHeight - 1).
		Render(b.String())
}

// =============================================================================
// MESSAGES
// =============================================================================

// refreshViewport rebuilds the history pane from the controller state and
// follows the newest message.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages() string {
	history := m.deps.Controller.History()
	if len(history) == 0 {
		return m.theme.SourceNote.Render("No messages yet. Ask something about your documents.")
	}

	width := m.viewport.Width
	var parts []string
	for _, msg := range history {
		parts = append(parts, m.renderMessage(msg, width))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	var b strings.Builder

	author := msg.Username
	style := m.theme.UserAuthor
	if msg.Role == model.RoleAssistant {
		style = m.theme.AssistantAuthor
	}
	b.WriteString(style.Render(author))
	if msg.IsOptimistic() {
		b.WriteString(" ")
		b.WriteString(m.theme.PendingMark.Render("(sending...)"))
	}
	if msg.Timestamp != "" {
		b.WriteString(" ")
		b.WriteString(m.theme.SourceNote.Render(msg.Timestamp))
	}
	b.WriteString("\n")

	if msg.Role == model.RoleAssistant {
		b.WriteString(strings.TrimRight(m.md.Render(msg.Content, width), "\n"))
	} else {
		b.WriteString(m.theme.MessageBody.Render(msg.Content))
	}
	b.WriteString("\n")

	if msg.Failed {
		b.WriteString(m.theme.FailedNote.Render("This turn failed. Try again."))
		b.WriteString("\n")
	}

	if sources := msg.RagSourceList(); len(sources) > 0 {
		b.WriteString(m.theme.SourceNote.Render(renderSources(sources)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderSources(sources []model.RagSource) string {
	var b strings.Builder
	b.WriteString("Sources:")
	for _, src := range sources {
		b.WriteString("\n  ")
		b.WriteString(src.Metadata.DocumentPath)
		if src.Metadata.PageNumber > 0 {
			b.WriteString(" p.")
			b.WriteString(strconv.Itoa(src.Metadata.PageNumber))
		}
	}
	return b.String()
}

// =============================================================================
// PROGRESS, INPUT, STATUS
// =============================================================================

func (m Model) renderProgressLine() string {
	if m.lastErr != "" {
		return m.theme.ErrorLine.Render(util.TruncateWidth(m.lastErr, m.viewport.Width))
	}

	p := m.deps.Controller.Progress()
	switch progress.PhaseOf(p) {
	case progress.PhaseStarted, progress.PhaseGenerating:
		return m.spinner.View() + m.theme.ProgressLine.Render(progress.StatusMessage(p))
	case progress.PhaseError:
		return m.theme.ErrorLine.Render(progress.StatusMessage(p))
	}
	return ""
}

func (m Model) renderInput() string {
	if m.deps.Controller.RoomID() == "" {
		return m.theme.InputContainer.Render(m.theme.InputDisabled.Render("Open a room to start chatting."))
	}
	if m.deps.Controller.InputDisabled() {
		reason := "Waiting for the reply... Esc stops generation."
		if m.deps.Controller.EffectiveModel() == "" {
			reason = "No model available for this room."
		}
		return m.theme.InputContainer.Render(m.theme.InputDisabled.Render(reason))
	}
	return m.theme.InputContainer.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.connected {
		parts = append(parts, m.theme.StatusOK.Render("online"))
	} else {
		parts = append(parts, m.theme.StatusBad.Render("offline"))
	}

	if roomID := m.deps.Controller.RoomID(); roomID != "" {
		parts = append(parts, "model: "+orDash(m.deps.Controller.EffectiveModel()))
		parts = append(parts, "kb: "+m.deps.Controller.EffectiveKnowledgeBase())
	}

	if m.serviceStatus != nil {
		parts = append(parts, util.TruncateWidth(m.serviceStatus.String(), m.width/2))
	} else {
		parts = append(parts, m.theme.StatusBad.Render("indexer unreachable"))
	}

	bar := strings.Join(parts, "  |  ")
	return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(bar, m.width-2))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderOverlay() string {
	var box string
	switch m.mode {
	case modePromptCreate:
		box = m.theme.PromptBox.Render(
			m.theme.PromptTitle.Render("Create room") + "\n\n" +
				m.prompt.View() + "\n\n" +
				m.theme.PromptHint.Render("Enter confirms, Esc cancels"),
		)
	case modePromptRename:
		box = m.theme.PromptBox.Render(
			m.theme.PromptTitle.Render("Rename room") + "\n\n" +
				m.prompt.View() + "\n\n" +
				m.theme.PromptHint.Render("Enter confirms, Esc cancels"),
		)
	case modePromptUsername:
		box = m.theme.PromptBox.Render(
			m.theme.PromptTitle.Render("Change username") + "\n\n" +
				m.prompt.View() + "\n\n" +
				m.theme.PromptHint.Render("Enter confirms, Esc cancels"),
		)
	case modeConfirmRemove:
		box = m.theme.PromptBox.Render(
			m.theme.PromptTitle.Render("Are you sure you want to delete - "+m.removingLabel+"?") + "\n\n" +
				m.theme.PromptHint.Render("y deletes, n cancels"),
		)
	case modePickModel:
		box = m.renderPicker("Choose model")
	case modePickKB:
		box = m.renderPicker("Choose knowledge base")
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderPicker(title string) string {
	var b strings.Builder
	b.WriteString(m.theme.PromptTitle.Render(title))
	b.WriteString("\n\n")
	for i, item := range m.pickerItems {
		line := "  " + item
		if i == m.pickerIndex {
			line = m.theme.SidebarSelected.Render("> " + item)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.pickerItems) <= 1 {
		b.WriteString(m.theme.SourceNote.Render("  (nothing to choose yet)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.PromptHint.Render("Enter selects, Esc cancels"))
	return m.theme.PromptBox.Render(b.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
