// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/documents"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/util"
)

// EmptyList is shown when there are no documents.
const EmptyList = "No documents yet. Press u to upload."

const dateLayout = "2006-01-02 15:04"

// View renders the panel.
func (m Model) View() string {
	panel := m.theme.Panel
	if m.focused {
		panel = m.theme.PanelFocused
	}

	title := m.theme.PanelTitle.Render(fmt.Sprintf("Documents (%d)", len(m.docs)))

	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}

	var sections []string
	sections = append(sections, title)

	switch m.mode {
	case modeConfirmDelete:
		name := m.pending
		for _, d := range m.docs {
			if d.ID == m.pending {
				name = d.Filename
				break
			}
		}
		prompt := documents.ConfirmDeletePrompt + "\n" + util.TruncateWidth(name, inner-6) + "\n\n[y] yes  [n] no"
		sections = append(sections, m.theme.ConfirmBox.Width(inner-2).Render(prompt))
	case modeConfirmReset:
		prompt := documents.ConfirmResetPrompt + "\n\n[y] yes  [n] no"
		sections = append(sections, m.theme.ConfirmBox.Width(inner-2).Render(prompt))
	}

	sections = append(sections, m.renderList(inner))

	if m.mode == modeUpload {
		sections = append(sections, m.input.View())
		sections = append(sections, m.theme.ShortcutDesc.Render(
			"Allowed: "+strings.Join(documents.DefaultExtensions, " ")))
	}

	sections = append(sections, m.renderStatus())

	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderList(width int) string {
	if len(m.docs) == 0 {
		return m.theme.EmptyHint.Render(EmptyList)
	}

	rows := m.visibleRows()
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := start + rows
	if end > len(m.docs) {
		end = len(m.docs)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(m.docs[i], width, i == m.selected))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(doc model.Document, width int, selected bool) string {
	date := "-"
	if doc.HasCreatedAt() {
		date = doc.CreatedAt.Local().Format(dateLayout)
	}

	nameWidth := width - util.StringWidth(date) - 3
	if nameWidth < 4 {
		nameWidth = 4
	}
	name := util.PadWidth(util.TruncateWidth(doc.Filename, nameWidth), nameWidth)

	marker := "  "
	style := m.theme.DocItem
	if selected && m.focused {
		marker = "> "
		style = m.theme.DocItemSelected
	}
	return style.Render(marker+name) + " " + m.theme.DocMeta.Render(date)
}

// visibleRows is the number of list rows that fit beside the title, status
// and any prompt.
func (m Model) visibleRows() int {
	reserved := 4
	switch m.mode {
	case modeConfirmDelete:
		reserved += 6
	case modeConfirmReset:
		reserved += 5
	case modeUpload:
		reserved += 2
	}
	rows := m.height - reserved
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) renderStatus() string {
	if m.busy {
		return m.theme.Spinner.Render(m.spinner.View() + " Working...")
	}
	switch m.statusKind {
	case statusSuccess:
		return m.theme.SuccessStyle.Render(m.status)
	case statusWarning:
		return m.theme.WarningStyle.Render(m.status)
	case statusError:
		return m.theme.ErrorStyle.Render(m.status)
	}
	return m.theme.ShortcutDesc.Render("u upload  d delete  R reset  r refresh")
}
