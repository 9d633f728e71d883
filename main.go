// docqa - terminal client for a document question-answering backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/docqa-tui/internal/app"
	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/cli"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/conversation"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/session"
	"github.com/jeranaias/docqa-tui/internal/ui/chat"
	"github.com/jeranaias/docqa-tui/internal/ui/docs"
	"github.com/jeranaias/docqa-tui/internal/ui/markdown"
	"github.com/jeranaias/docqa-tui/internal/ui/shell"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for messages sent from service goroutines
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()
	if cmd != cli.CmdTUI {
		os.Exit(cli.Run(cmd, args))
	}
	os.Exit(runTUI(args))
}

// send delivers msg to the running program without blocking the caller. Only
// for payload-free refresh messages, whose relative order does not matter.
func send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args cli.Args) int {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		cli.DisplayError(err, false)
		return cli.GetExitCode(err)
	}

	logger, err := logging.FromConfig(cfg, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logging: %v\n", err)
		return cli.ExitConfigError
	}
	defer func() { _ = logger.Sync() }()

	svc, err := app.New(cfg, logger,
		app.WithClientOptions(backend.WithUserAgent("docqa/"+Version)))
	if err != nil {
		cli.DisplayError(err, false)
		return cli.GetExitCode(err)
	}
	svc.Restore()

	theme := styles.NewTheme(cfg.UI.Theme)
	md := markdown.New(theme.GlamourStyle(), cfg.UI.RenderMarkdown)

	m := shell.New(shell.Options{
		Session:  svc.Session,
		Auth:     svc.Session,
		Registry: svc.Documents,
		NewConversation: func() shell.Conversation {
			return newLiveConversation(svc)
		},
		Forget:   svc.Documents.Forget,
		Theme:    theme,
		Markdown: md,
		BaseURL:  svc.Client.BaseURL(),
		Version:  Version,
	})

	// Session changes must reach the shell in order, so they share one
	// forwarder instead of a goroutine per message.
	sessionMsgs := shell.NewForwarder()
	defer sessionMsgs.Close()

	unsubSession := svc.Session.Subscribe(func(c session.Change) {
		if c.Reason == session.ChangeRestore {
			return
		}
		sessionMsgs.Queue(shell.SessionChangedMsg{LoggedIn: c.LoggedIn})
	})
	defer unsubSession()

	unsubDocs := svc.Documents.Subscribe(func() {
		send(docs.ChangedMsg{})
	})
	defer unsubDocs()

	if w := watchConfig(svc, logger); w != nil {
		defer w.Close()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	programMu.Lock()
	programRef = p
	programMu.Unlock()
	go sessionMsgs.Run(p)

	logger.Info("tui started",
		zap.String("version", Version),
		zap.String("backend", svc.Client.BaseURL()),
		zap.Bool("logged_in", svc.Session.LoggedIn()),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running docqa: %v\n", err)
		return cli.ExitGeneralError
	}
	return cli.ExitSuccess
}

// watchConfig reloads the live-adjustable settings when the config file
// changes. A missing watcher is logged and otherwise ignored.
func watchConfig(svc *app.Services, logger *zap.Logger) *config.Watcher {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}
	w, err := config.NewWatcher(path, 0, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		svc.ApplyConfig(cfg)
	})
	if err != nil {
		logger.Debug("config watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Watch(); err != nil {
		logger.Debug("config watcher unavailable", zap.Error(err))
		_ = w.Close()
		return nil
	}
	return w
}

// =============================================================================
// CONVERSATION
// =============================================================================

// liveConversation forwards machine changes to the chat panel and detaches
// on Close.
type liveConversation struct {
	*conversation.Machine
	unsubscribe func()
}

func newLiveConversation(svc *app.Services) *liveConversation {
	m := svc.NewConversation()
	unsub := m.Subscribe(func(conversation.Event) {
		send(chat.ChangedMsg{})
	})
	return &liveConversation{Machine: m, unsubscribe: unsub}
}

// Close stops listening, then closes the machine.
func (c *liveConversation) Close() {
	c.unsubscribe()
	c.Machine.Close()
}
