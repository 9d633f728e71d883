// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in and sign-up screen.
//
// A successful login is observed through the session store subscription, not
// through this model, so the screen only reports failures and signup results.
package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// SignupSucceeded is shown after an account is created.
const SignupSucceeded = "Account created. Please log in."

// Authenticator is the part of the session store the screen drives.
// *session.Store satisfies it.
type Authenticator interface {
	Login(ctx context.Context, identifier, secret string) error
	Signup(ctx context.Context, profile model.Profile) error
}

type field int

const (
	fieldEmail field = iota
	fieldPassword
	fieldName
)

// KeyMap defines the login screen bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Toggle key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Toggle: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "login/sign up")),
	}
}

type resultMsg struct {
	signup bool
	err    error
}

// Model is the Bubble Tea model for the login screen.
type Model struct {
	auth    Authenticator
	theme   *styles.Theme
	keyMap  KeyMap
	timeout time.Duration
	baseURL string

	signup  bool
	focus   field
	inputs  []textinput.Model
	spinner spinner.Model
	busy    bool

	message string
	isError bool

	width  int
	height int
}

// New creates the login screen. baseURL is shown for orientation only.
func New(auth Authenticator, theme *styles.Theme, baseURL string, timeout time.Duration) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	name := textinput.New()
	name.Placeholder = "Full name (optional)"
	name.Prompt = ""
	name.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Bubble()
	sp.Style = theme.Spinner

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	m := Model{
		auth:    auth,
		theme:   theme,
		keyMap:  DefaultKeyMap(),
		timeout: timeout,
		baseURL: baseURL,
		inputs:  []textinput.Model{email, password, name},
		spinner: sp,
	}
	m.inputs[fieldEmail].Focus()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize sets the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := width / 2
	if w < 24 {
		w = 24
	}
	if w > 48 {
		w = 48
	}
	for i := range m.inputs {
		m.inputs[i].Width = w
	}
}

// Reset clears the password and any message, e.g. after logout.
func (m *Model) Reset() {
	m.inputs[fieldPassword].Reset()
	m.message = ""
	m.isError = false
	m.busy = false
	m.setFocus(fieldEmail)
}

// SignupMode reports whether the screen is in sign-up mode.
func (m Model) SignupMode() bool {
	return m.signup
}

// Busy reports whether a request is running.
func (m Model) Busy() bool {
	return m.busy
}

// Message returns the status message and whether it is an error.
func (m Model) Message() (string, bool) {
	return m.message, m.isError
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.message = errorText(msg.err, msg.signup)
			m.isError = true
			return m, nil
		}
		if msg.signup {
			m.signup = false
			m.inputs[fieldPassword].Reset()
			m.inputs[fieldName].Reset()
			m.message = SignupSucceeded
			m.isError = false
			m.setFocus(fieldPassword)
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
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Toggle):
		m.signup = !m.signup
		m.message = ""
		if !m.signup && m.focus == fieldName {
			m.setFocus(fieldEmail)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Next):
		m.setFocus((m.focus + 1) % field(m.fieldCount()))
		return m, nil

	case key.Matches(msg, m.keyMap.Prev):
		n := field(m.fieldCount())
		m.setFocus((m.focus + n - 1) % n)
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if int(m.focus) < m.fieldCount()-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	if !m.signup {
		if email == "" || password == "" {
			m.message = "Please enter your email and password"
			m.isError = true
			return m, nil
		}
	}

	m.busy = true
	m.message = ""
	m.isError = false

	auth, timeout := m.auth, m.timeout
	var run tea.Cmd
	if m.signup {
		profile := model.Profile{
			Email:    email,
			Password: password,
			FullName: strings.TrimSpace(m.inputs[fieldName].Value()),
		}
		run = func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return resultMsg{signup: true, err: auth.Signup(ctx, profile)}
		}
	} else {
		run = func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return resultMsg{err: auth.Login(ctx, email, password)}
		}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) fieldCount() int {
	if m.signup {
		return 3
	}
	return 2
}

func (m *Model) setFocus(f field) {
	m.focus = f
	for i := range m.inputs {
		if field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func errorText(err error, signup bool) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if signup {
		return session.SignupFailedMessage
	}
	return session.LoginFailedMessage
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen centred in the terminal.
func (m Model) View() string {
	title := "Sign in to DocQA"
	if m.signup {
		title = "Create an account"
	}

	rows := []string{
		m.theme.FormTitle.Render(title),
		m.theme.FormLabel.Render("Email"),
		m.inputs[fieldEmail].View(),
		"",
		m.theme.FormLabel.Render("Password"),
		m.inputs[fieldPassword].View(),
	}
	if m.signup {
		rows = append(rows, "",
			m.theme.FormLabel.Render("Full name"),
			m.inputs[fieldName].View(),
		)
	}

	rows = append(rows, "")
	switch {
	case m.busy:
		rows = append(rows, m.theme.Spinner.Render(m.spinner.View()+" Please wait..."))
	case m.message != "" && m.isError:
		rows = append(rows, m.theme.ErrorStyle.Render(m.message))
	case m.message != "":
		rows = append(rows, m.theme.SuccessStyle.Render(m.message))
	default:
		rows = append(rows, "")
	}

	toggle := "ctrl+s create an account"
	if m.signup {
		toggle = "ctrl+s back to sign in"
	}
	rows = append(rows,
		m.theme.ShortcutDesc.Render("enter submit  tab next  "+toggle),
		m.theme.DocMeta.Render(m.baseURL),
	)

	box := m.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
