// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docqa-tui/internal/documents"
)

// Init loads the list.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

// Update handles messages for the documents panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		if m.busy {
			return m, nil
		}
		return m.begin(m.refreshCmd())

	case ChangedMsg:
		m.sync()
		return m, nil

	case refreshedMsg:
		m.busy = false
		m.sync()
		if msg.err != nil {
			m.setStatus(statusError, userMessage(msg.err, documents.LoadFailedMessage))
		}
		return m, nil

	case uploadedMsg:
		m.busy = false
		m.sync()
		switch {
		case msg.err != nil:
			m.setStatus(statusError, userMessage(msg.err, documents.UploadFailedMessage))
		case msg.result.Warning:
			m.setStatus(statusWarning, msg.result.Message)
		default:
			m.selected = 0
			m.setStatus(statusSuccess, msg.result.Message)
		}
		return m, nil

	case deletedMsg:
		m.busy = false
		m.sync()
		if msg.err != nil {
			m.setStatus(statusError, userMessage(msg.err, documents.DeleteFailedMessage))
		} else {
			m.setStatus(statusSuccess, "Document deleted")
		}
		return m, nil

	case resetMsg:
		m.busy = false
		m.sync()
		if msg.err != nil {
			m.setStatus(statusError, userMessage(msg.err, documents.ResetFailedMessage))
		} else {
			m.setStatus(statusSuccess, "Knowledge base reset")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeConfirmDelete:
		return m.handleConfirm(msg, func(m Model) (Model, tea.Cmd) {
			id := m.pending
			m.pending = ""
			return m.begin(m.deleteCmd(id))
		})
	case modeConfirmReset:
		return m.handleConfirm(msg, func(m Model) (Model, tea.Cmd) {
			return m.begin(m.resetCmd())
		})
	case modeUpload:
		return m.handleUploadKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.selected < len(m.docs)-1 {
			m.selected++
		}
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Refresh):
		return m.begin(m.refreshCmd())

	case key.Matches(msg, m.keyMap.Upload):
		m.mode = modeUpload
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keyMap.Delete):
		doc, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.pending = doc.ID
		return m, nil

	case key.Matches(msg, m.keyMap.Reset):
		m.mode = modeConfirmReset
		return m, nil
	}

	return m, nil
}

func (m Model) handleConfirm(msg tea.KeyMsg, run func(Model) (Model, tea.Cmd)) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Confirm):
		m.mode = modeList
		return run(m)
	case key.Matches(msg, m.keyMap.Cancel):
		m.mode = modeList
		m.pending = ""
	}
	return m, nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		paths := parsePaths(m.input.Value())
		m.mode = modeList
		m.input.Blur()
		m.input.Reset()

		files := make([]documents.File, 0, len(paths))
		for _, p := range paths {
			files = append(files, documents.FileFromPath(p))
		}
		return m.begin(m.uploadCmd(files))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// begin marks the panel busy and runs cmd alongside the spinner.
func (m Model) begin(cmd tea.Cmd) (Model, tea.Cmd) {
	m.busy = true
	m.status = ""
	m.statusKind = statusNone
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// sync re-reads the registry and keeps the selection in range.
func (m *Model) sync() {
	m.docs = m.registry.Documents()
	if m.selected >= len(m.docs) {
		m.selected = len(m.docs) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = strings.TrimSpace(text)
}
