// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/docqa-tui/internal/app"
	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/logging"
)

// Env is everything a command handler touches: the wired services and the
// process streams. Tests build one around fakes with the same fields.
type Env struct {
	Services *app.Services

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when stdin is a terminal and prompts are allowed.
	Interactive bool
	// ReadPassword reads a secret without echo.
	ReadPassword func() (string, error)

	reader *bufio.Reader
	logger *zap.Logger
}

// LoadConfig loads the configuration and applies the global flags.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if cfg == nil {
		return nil, WrapError(err, "config")
	}
	if err != nil && !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", WarningStyle.Render("[WARN]"), err)
	}

	ApplyFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		return nil, WrapError(err, "config")
	}
	return cfg, nil
}

// ApplyFlags copies global flags over the loaded configuration.
func ApplyFlags(cfg *config.Config, args Args) {
	if args.URL != "" {
		cfg.Backend.URL = args.URL
	}
	if args.IntervalMs > 0 {
		cfg.Reveal.IntervalMs = args.IntervalMs
	}
	if args.Ephemeral {
		cfg.Session.Ephemeral = true
	}
	if args.TopK > 0 {
		cfg.Chat.TopK = args.TopK
	}
}

// NewEnv loads config, builds the logger and services and restores any
// saved session.
func NewEnv(args Args) (*Env, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	logger, err := logging.FromConfig(cfg, args.Verbose)
	if err != nil {
		return nil, WrapError(err, "logging")
	}

	svc, err := app.New(cfg, logger,
		app.WithClientOptions(backend.WithUserAgent("docqa/"+Version)))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	svc.Restore()

	interactive := IsTTY()
	return &Env{
		Services:     svc,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Interactive:  interactive,
		ReadPassword: readPasswordTTY,
		logger:       logger,
	}, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// Context returns a context cancelled on Ctrl+C or SIGTERM.
func (e *Env) Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ReadLine prompts on stdout and reads one line from stdin.
func (e *Env) ReadLine(prompt string) (string, error) {
	if e.reader == nil {
		e.reader = bufio.NewReader(e.Stdin)
	}
	fmt.Fprint(e.Stdout, prompt)
	line, err := e.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Printf writes to stdout.
func (e *Env) Printf(format string, a ...any) {
	fmt.Fprintf(e.Stdout, format, a...)
}

func readPasswordTTY() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
