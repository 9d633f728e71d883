// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell is the root Bubble Tea model. It shows the login screen while
// logged out and the dashboard (documents and chat panels) while logged in.
//
// Components outside the Bubble Tea loop report changes by sending the
// payload-free messages below; every panel re-reads state on receipt.
package shell

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/ui/chat"
	"github.com/jeranaias/docqa-tui/internal/ui/docs"
	"github.com/jeranaias/docqa-tui/internal/ui/login"
	"github.com/jeranaias/docqa-tui/internal/ui/markdown"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// SessionChangedMsg reports a login, logout or restore.
type SessionChangedMsg struct {
	LoggedIn bool
}

// Session is the part of the session store the shell uses.
type Session interface {
	LoggedIn() bool
	Logout() error
}

// Conversation is a chat conversation the shell can discard.
type Conversation interface {
	chat.Conversation
	Close()
}

// Options holds the collaborators of the shell.
type Options struct {
	Session  Session
	Auth     login.Authenticator
	Registry docs.Registry
	// NewConversation is called on every login.
	NewConversation func() Conversation
	// Forget drops per-user cached state on logout.
	Forget func()

	Theme    *styles.Theme
	Markdown *markdown.Renderer
	BaseURL  string
	Version  string
}

type screen int

const (
	screenLogin screen = iota
	screenDashboard
)

type pane int

const (
	paneChat pane = iota
	paneDocs
)

// KeyMap defines the global bindings.
type KeyMap struct {
	Quit   key.Binding
	Switch key.Binding
	Logout key.Binding
}

// DefaultKeyMap returns the global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Switch: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
		Logout: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
	}
}

// Model is the root model.
type Model struct {
	opts   Options
	theme  *styles.Theme
	keyMap KeyMap

	screen screen
	focus  pane
	width  int
	height int

	login login.Model
	docs  docs.Model
	chat  chat.Model
	conv  Conversation

	notice string
}

// New creates the shell. It starts on the dashboard when the session is
// already logged in.
func New(opts Options) Model {
	m := Model{
		opts:   opts,
		theme:  opts.Theme,
		keyMap: DefaultKeyMap(),
		login:  login.New(opts.Auth, opts.Theme, opts.BaseURL, 0),
		docs:   docs.New(opts.Registry, opts.Theme, 0),
	}
	if opts.Session.LoggedIn() {
		m.enterDashboard()
	}
	return m
}

// Init starts the current screen.
func (m Model) Init() tea.Cmd {
	if m.screen == screenDashboard {
		return tea.Batch(m.docs.Init(), m.chat.Init())
	}
	return m.login.Init()
}

// LoggedIn reports whether the dashboard is showing.
func (m Model) LoggedIn() bool {
	return m.screen == screenDashboard
}

// Update handles messages for the whole application.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case SessionChangedMsg:
		return m.sessionChanged(msg.LoggedIn)

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			m.closeConversation()
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		return m.dashboardKey(msg)

	case chat.ChangedMsg, chat.StatusMsg:
		if m.screen != screenDashboard {
			return m, nil
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	// Everything else goes to the active screen's children. Spinner ticks and
	// async results are tagged, so a child ignores messages that are not its own.
	if m.screen == screenLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.docs, cmd = m.docs.Update(msg)
	cmds = append(cmds, cmd)
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) dashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	capturing := m.focus == paneDocs && m.docs.Capturing()

	switch {
	case key.Matches(msg, m.keyMap.Logout):
		m.closeConversation()
		if err := m.opts.Session.Logout(); err != nil {
			m.notice = "Logged out, but the saved session could not be removed"
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Switch) && !capturing:
		m.toggleFocus()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == paneDocs {
		m.docs, cmd = m.docs.Update(msg)
	} else {
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

func (m Model) sessionChanged(loggedIn bool) (tea.Model, tea.Cmd) {
	switch {
	case loggedIn && m.screen != screenDashboard:
		m.enterDashboard()
		m.layout()
		return m, tea.Batch(m.docs.Init(), m.chat.Init())

	case !loggedIn && m.screen != screenLogin:
		m.closeConversation()
		if m.opts.Forget != nil {
			m.opts.Forget()
		}
		m.screen = screenLogin
		m.docs.Blur()
		m.chat.Blur()
		m.login.Reset()
		m.layout()
		return m, m.login.Init()
	}
	return m, nil
}

func (m *Model) enterDashboard() {
	m.screen = screenDashboard
	m.notice = ""
	m.conv = m.opts.NewConversation()
	m.chat = chat.New(m.conv, m.theme, m.opts.Markdown)
	m.focus = paneChat
	m.chat.Focus()
	m.docs.Blur()
}

func (m *Model) closeConversation() {
	if m.conv != nil {
		m.conv.Close()
		m.conv = nil
	}
}

func (m *Model) toggleFocus() {
	if m.focus == paneChat {
		m.focus = paneDocs
		m.chat.Blur()
		m.docs.Focus()
		return
	}
	m.focus = paneChat
	m.docs.Blur()
	m.chat.Focus()
}

// layout sizes the panels for the current window.
func (m *Model) layout() {
	m.login.SetSize(m.width, m.height)
	if m.screen != screenDashboard || m.width == 0 {
		return
	}

	// header and status bar
	body := m.height - 2
	if body < 6 {
		body = 6
	}

	if m.theme.GetLayoutMode() == styles.LayoutStacked {
		docsHeight := body / 3
		if docsHeight < 6 {
			docsHeight = 6
		}
		m.docs.SetSize(m.width, docsHeight)
		m.chat.SetSize(m.width, body-docsHeight)
		return
	}

	dw := m.theme.DocumentsWidth()
	m.docs.SetSize(dw, body)
	m.chat.SetSize(m.width-dw, body)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen.
func (m Model) View() string {
	if m.screen == screenLogin {
		return m.login.View()
	}

	header := m.renderHeader()
	status := m.renderStatusBar()

	var body string
	if m.theme.GetLayoutMode() == styles.LayoutStacked {
		body = lipgloss.JoinVertical(lipgloss.Left, m.docs.View(), m.chat.View())
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.docs.View(), m.chat.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("DocQA")
	info := m.theme.HeaderInfo.Render(" " + m.opts.BaseURL)
	if m.opts.Version != "" {
		info += m.theme.HeaderInfo.Render("  v" + m.opts.Version)
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	return m.theme.Header.Width(w).Render(brand + info)
}

func (m Model) renderStatusBar() string {
	bindings := []key.Binding{m.keyMap.Switch, m.keyMap.Logout, m.keyMap.Quit}
	if m.focus == paneDocs {
		bindings = append(m.docs.KeyMap().ShortHelp(), bindings...)
	}

	parts := make([]string, 0, len(bindings)+1)
	if m.notice != "" {
		parts = append(parts, m.theme.WarningStyle.Render(m.notice))
	}
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}

	w := m.width
	if w < 1 {
		w = 1
	}
	return m.theme.StatusBar.Width(w).Render(strings.Join(parts, "  "))
}
