// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docqa-tui/internal/conversation"
)

// Init starts nothing; the spinner runs only while sending.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chat panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		return m.handleChanged()

	case StatusMsg:
		m.status = &msg
		return m, nil

	case spinner.TickMsg:
		if m.phase != conversation.PhaseSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleChanged() (Model, tea.Cmd) {
	prev := m.phase
	m.refresh()

	if m.phase == conversation.PhaseSending && prev != conversation.PhaseSending {
		return m, m.spinner.Tick
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.Clear):
		return m.clear()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.conv.Phase() != conversation.PhaseIdle {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if isCommand(text) {
		return m.command(text)
	}

	if !m.conv.Submit(text) {
		return m, nil
	}
	m.input.Reset()
	m.status = nil
	return m.handleChanged()
}

// commands are the slash commands the panel handles itself. Any other input,
// including text that starts with "/", is asked as a question.
var commands = map[string]bool{"/clear": true}

func isCommand(text string) bool {
	return commands[strings.ToLower(text)]
}

func (m Model) command(text string) (Model, tea.Cmd) {
	switch strings.ToLower(text) {
	case "/clear":
		m.input.Reset()
		return m.clear()
	}
	return m, nil
}

func (m Model) clear() (Model, tea.Cmd) {
	if !m.conv.Clear() {
		m.status = &StatusMsg{Text: "Wait for the answer to finish before clearing", Error: true}
		return m, nil
	}
	m.rendered = make(map[int]renderedTurn)
	m.status = nil
	m.refresh()
	return m, nil
}
