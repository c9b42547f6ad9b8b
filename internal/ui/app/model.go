// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
	"github.com/v-industries-lv/ausma-ai-documents/internal/chat"
	"github.com/v-industries-lv/ausma-ai-documents/internal/rooms"
	"github.com/v-industries-lv/ausma-ai-documents/internal/storage"
	"github.com/v-industries-lv/ausma-ai-documents/internal/ui/styles"
)

// =============================================================================
// FOCUS AND MODE
// =============================================================================

type focus int

const (
	focusSidebar focus = iota
	focusInput
)

type mode int

const (
	modeNormal mode = iota
	modePromptCreate
	modePromptRename
	modePromptUsername
	modeConfirmRemove
	modePickModel
	modePickKB
)

// =============================================================================
// APP MODEL
// =============================================================================

// Catalog lists the server's selectable models and knowledge bases.
// *api.Client satisfies it.
type Catalog interface {
	ListModels(ctx context.Context) ([]string, error)
	ListKnowledgeBases(ctx context.Context) ([]api.KnowledgeBase, error)
}

// Deps are the collaborators the program operates on.
type Deps struct {
	Directory  *rooms.Directory
	Controller *chat.Controller
	Store      *storage.Store
	Catalog    Catalog
	Theme      *styles.Theme
}

// Model is the Bubble Tea model for the client.
type Model struct {
	deps   Deps
	theme  *styles.Theme
	keyMap KeyMap

	// Dimensions
	width  int
	height int

	// Layout state
	focus    focus
	mode     mode
	selected int

	// Components
	viewport viewport.Model
	input    textarea.Model
	prompt   textinput.Model
	spinner  spinner.Model
	md       markdown

	// Removal pending confirmation
	removingRoomID string
	removingLabel  string

	// Catalogs and the active picker
	models      []string
	kbs         []string
	pickerItems []string
	pickerIndex int

	// Ambient state
	connected     bool
	serviceStatus *api.ServiceStatus
	lastErr       string
}

// New creates the program model.
func New(deps Deps) Model {
	theme := deps.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	input := textarea.New()
	input.Placeholder = "Ask about your documents..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.CharLimit = 0

	prompt := textinput.New()
	prompt.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.ProgressLine

	return Model{
		deps:      deps,
		theme:     theme,
		keyMap:    DefaultKeyMap(),
		focus:     focusSidebar,
		viewport:  viewport.New(0, 0),
		input:     input,
		prompt:    prompt,
		spinner:   sp,
		connected: true,
	}
}

// Init starts the spinner tick and fetches the selector catalogs.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCatalogCmd())
}

// selectedRoom returns the sidebar's highlighted room, if any.
func (m Model) selectedRoom() (roomID string, ok bool) {
	list := m.deps.Directory.Rooms()
	if m.selected < 0 || m.selected >= len(list) {
		return "", false
	}
	return list[m.selected].ID, true
}
