// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs provides the documents panel of the docqa dashboard.
//
// The panel lists the cached documents and runs registry calls as Bubble Tea
// commands. Delete and reset ask for confirmation first.
package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docqa-tui/internal/documents"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// Registry is the part of the document registry the panel uses.
// *documents.Registry satisfies it.
type Registry interface {
	Documents() []model.Document
	Refresh(ctx context.Context) error
	Upload(ctx context.Context, files []documents.File) (documents.UploadResult, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type mode int

const (
	modeList mode = iota
	modeConfirmDelete
	modeConfirmReset
	modeUpload
)

type statusKind int

const (
	statusNone statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// Model is the Bubble Tea model for the documents panel.
type Model struct {
	registry Registry
	theme    *styles.Theme
	keyMap   KeyMap
	timeout  time.Duration

	width   int
	height  int
	focused bool

	docs     []model.Document
	selected int
	mode     mode
	pending  string // id awaiting delete confirmation
	busy     bool

	status     string
	statusKind statusKind

	input   textinput.Model
	spinner spinner.Model
}

// New creates a documents panel. timeout bounds each registry call.
func New(registry Registry, theme *styles.Theme, timeout time.Duration) Model {
	in := textinput.New()
	in.Placeholder = "path/to/file.pdf, other.txt"
	in.Prompt = "Upload: "
	in.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Bubble()
	sp.Style = theme.Spinner

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return Model{
		registry: registry,
		theme:    theme,
		keyMap:   DefaultKeyMap(),
		timeout:  timeout,
		input:    in,
		spinner:  sp,
		docs:     registry.Documents(),
	}
}

// SetSize sets the outer panel size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 14
}

// Focus gives the panel keyboard input.
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes keyboard input and abandons any prompt.
func (m *Model) Blur() {
	m.focused = false
	if m.mode != modeList {
		m.mode = modeList
		m.pending = ""
		m.input.Blur()
		m.input.Reset()
	}
}

// Focused reports whether the panel has keyboard input.
func (m Model) Focused() bool {
	return m.focused
}

// Capturing reports whether the panel is in a prompt that should receive
// keys the dashboard would otherwise handle (tab, q).
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Busy reports whether a registry call is running.
func (m Model) Busy() bool {
	return m.busy
}

// Selected returns the highlighted document.
func (m Model) Selected() (model.Document, bool) {
	if m.selected < 0 || m.selected >= len(m.docs) {
		return model.Document{}, false
	}
	return m.docs[m.selected], true
}

// KeyMap returns the panel bindings.
func (m Model) KeyMap() KeyMap {
	return m.keyMap
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) refreshCmd() tea.Cmd {
	reg, timeout := m.registry, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshedMsg{err: reg.Refresh(ctx)}
	}
}

func (m Model) uploadCmd(files []documents.File) tea.Cmd {
	reg, timeout := m.registry, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := reg.Upload(ctx, files)
		return uploadedMsg{result: res, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	reg, timeout := m.registry, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deletedMsg{id: id, err: reg.Delete(ctx, id)}
	}
}

func (m Model) resetCmd() tea.Cmd {
	reg, timeout := m.registry, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return resetMsg{err: reg.DeleteAll(ctx)}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// parsePaths splits a comma-separated list of paths and expands a leading ~.
func parsePaths(input string) []string {
	var paths []string
	for _, part := range strings.Split(input, ",") {
		p := strings.Trim(strings.TrimSpace(part), `"'`)
		if p == "" {
			continue
		}
		if p == "~" || strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, strings.TrimPrefix(p, "~"))
			}
		}
		paths = append(paths, p)
	}
	return paths
}

// userMessage extracts the user-facing text of a registry error.
func userMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return fallback
}
