// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/conversation"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// refresh re-reads the conversation and updates the viewport.
func (m *Model) refresh() {
	m.phase = m.conv.Phase()
	m.turns = m.conv.Transcript()

	content := m.renderTranscript()
	if !m.optimizer.ShouldUpdate(content) {
		return
	}

	atBottom := m.viewport.AtBottom() || m.viewport.TotalLineCount() <= m.viewport.Height
	m.viewport.SetContent(content)
	if atBottom || m.phase != conversation.PhaseIdle {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	if len(m.turns) == 0 {
		return m.theme.EmptyHint.Render(EmptyHint)
	}

	revealing, isRevealing := m.conv.Revealing()

	var b strings.Builder
	for i, turn := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderTurn(i, turn, width, isRevealing && i == revealing))
	}

	if m.phase == conversation.PhaseSending {
		b.WriteString("\n\n")
		b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.Spinner.Render(m.spinner.View() + " Thinking..."))
	}
	return b.String()
}

func (m *Model) renderTurn(index int, turn model.Turn, width int, revealing bool) string {
	textWidth := calculateContentWidth(width, 2)

	if turn.IsUser() {
		label := m.theme.UserLabel.Render(turn.Role.DisplayName())
		return label + "\n" + m.theme.UserTurn.Render(wrapText(turn.Content, textWidth))
	}

	label := m.theme.AssistantLabel.Render(turn.Role.DisplayName())
	if revealing {
		body := wrapText(turn.Content, textWidth-1) + m.theme.Cursor.Render(styles.RevealCursor)
		return label + "\n" + m.theme.AssistantTurn.Render(body)
	}
	return label + "\n" + m.theme.AssistantTurn.Render(m.renderMarkdown(index, turn.Content, textWidth))
}

// renderMarkdown renders a finished assistant turn, reusing earlier output
// for unchanged turns.
func (m *Model) renderMarkdown(index int, content string, width int) string {
	if cached, ok := m.rendered[index]; ok && cached.content == content && cached.width == width {
		return cached.out
	}

	out, ok := m.markdown.Render(content, width)
	if !ok {
		out = wrapText(content, width)
	}
	m.rendered[index] = renderedTurn{content: content, width: width, out: out}
	return out
}

// View renders the panel.
func (m Model) View() string {
	panel := m.theme.Panel
	if m.focused {
		panel = m.theme.PanelFocused
	}

	title := m.theme.PanelTitle.Render("Chat")

	var status string
	switch {
	case m.status != nil && m.status.Error:
		status = m.theme.ErrorStyle.Render(m.status.Text)
	case m.status != nil:
		status = m.theme.InfoStyle.Render(m.status.Text)
	case m.phase == conversation.PhaseSending:
		status = m.theme.ShortcutDesc.Render("Waiting for the answer...")
	case m.phase == conversation.PhaseRevealing:
		status = m.theme.ShortcutDesc.Render("Answering...")
	default:
		status = m.theme.ShortcutDesc.Render("Enter to ask, /clear to start over")
	}

	input := m.input.View()
	if m.phase != conversation.PhaseIdle {
		input = m.theme.ShortcutDesc.Render("> " + m.input.Value())
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		status,
		input,
	)

	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return panel.Width(w).Render(body)
}
