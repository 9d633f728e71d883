// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/docqa-tui/internal/conversation"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/markdown"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// EmptyHint is shown when the transcript is empty.
const EmptyHint = "Ask a question about your documents..."

// Conversation is the part of the state machine the panel drives.
// *conversation.Machine satisfies it.
type Conversation interface {
	Submit(question string) bool
	Clear() bool
	Phase() conversation.Phase
	Transcript() []model.Turn
	Revealing() (int, bool)
}

// =============================================================================
// CHAT PANEL
// =============================================================================

// Model is the Bubble Tea model for the chat panel.
type Model struct {
	conv     Conversation
	theme    *styles.Theme
	markdown *markdown.Renderer
	keyMap   KeyMap

	// Dimensions
	width   int
	height  int
	focused bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	optimizer *ViewportOptimizer
	phase     conversation.Phase
	turns     []model.Turn
	status    *StatusMsg

	// rendered caches glamour output of finished assistant turns by index.
	rendered map[int]renderedTurn
}

type renderedTurn struct {
	content string
	width   int
	out     string
}

// New creates a chat panel for conv.
func New(conv Conversation, theme *styles.Theme, md *markdown.Renderer) Model {
	in := textinput.New()
	in.Placeholder = EmptyHint
	in.Prompt = "> "
	in.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Bubble()
	sp.Style = theme.Spinner

	return Model{
		conv:      conv,
		theme:     theme,
		markdown:  md,
		keyMap:    DefaultKeyMap(),
		viewport:  viewport.New(0, 0),
		input:     in,
		spinner:   sp,
		optimizer: NewViewportOptimizer(),
		rendered:  make(map[int]renderedTurn),
	}
}

// SetSize sets the outer panel size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inner := calculateContentWidth(width, 4)
	m.input.Width = inner - 3
	// title, status line, input line and the border
	vh := height - 5
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = inner
	m.viewport.Height = vh
	m.optimizer.ForceUpdate()
	m.refresh()
}

// Focus gives the panel keyboard input.
func (m *Model) Focus() {
	m.focused = true
	m.input.Focus()
}

// Blur removes keyboard input.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the panel has keyboard input.
func (m Model) Focused() bool {
	return m.focused
}

// Phase returns the phase seen at the last refresh.
func (m Model) Phase() conversation.Phase {
	return m.phase
}

// InputValue returns the text being typed.
func (m Model) InputValue() string {
	return m.input.Value()
}

// KeyMap returns the panel bindings.
func (m Model) KeyMap() KeyMap {
	return m.keyMap
}
