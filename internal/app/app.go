// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the backend client, session store, document registry and
// reveal engine from a loaded configuration. The TUI and the CLI commands
// share it.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/conversation"
	"github.com/jeranaias/docqa-tui/internal/documents"
	"github.com/jeranaias/docqa-tui/internal/reveal"
	"github.com/jeranaias/docqa-tui/internal/session"
)

// Services holds the application components built from one Config.
type Services struct {
	Config    *config.Config
	Logger    *zap.Logger
	Client    *backend.Client
	Session   *session.Store
	Documents *documents.Registry
	Reveal    *reveal.Engine
}

// Option adjusts how Services are built.
type Option func(*buildOptions)

type buildOptions struct {
	clientOpts []backend.Option
	persister  session.Persister
	scheduler  reveal.Scheduler
}

// WithClientOptions appends options to the backend client.
func WithClientOptions(opts ...backend.Option) Option {
	return func(b *buildOptions) {
		b.clientOpts = append(b.clientOpts, opts...)
	}
}

// WithPersister overrides where the credential is kept.
func WithPersister(p session.Persister) Option {
	return func(b *buildOptions) {
		b.persister = p
	}
}

// WithScheduler overrides the reveal clock.
func WithScheduler(s reveal.Scheduler) Option {
	return func(b *buildOptions) {
		b.scheduler = s
	}
}

// New builds Services from cfg. The backend client reads the credential from
// the session store on every request.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var b buildOptions
	for _, opt := range opts {
		opt(&b)
	}

	persister := b.persister
	if persister == nil {
		if cfg.Session.Ephemeral {
			persister = session.NewMemoryStore()
		} else {
			path, err := cfg.SessionFile()
			if err != nil {
				return nil, fmt.Errorf("session file: %w", err)
			}
			persister = session.NewFileStore(path)
		}
	}

	var store *session.Store
	clientOpts := []backend.Option{
		backend.WithTimeout(cfg.Backend.Timeout()),
		backend.WithRateLimit(cfg.Backend.RateLimitRPS, cfg.Backend.RateBurst),
		backend.WithLogger(logger),
		backend.WithCredentials(func() (string, bool) {
			return store.Credential()
		}),
	}
	client := backend.New(cfg.Backend.URL, append(clientOpts, b.clientOpts...)...)
	store = session.New(client, persister, logger)

	registry := documents.New(client, documents.Options{
		AllowedExtensions: cfg.Documents.AllowedExtensions,
		CacheTTL:          cfg.Documents.CacheTTL(),
		Logger:            logger,
	})

	engine := reveal.New(reveal.Options{
		Interval:  cfg.Reveal.Interval(),
		Scheduler: b.scheduler,
		Logger:    logger,
	})

	return &Services{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Session:   store,
		Documents: registry,
		Reveal:    engine,
	}, nil
}

// Restore loads a saved credential. Failures are logged and leave the user
// logged out.
func (s *Services) Restore() bool {
	ok, err := s.Session.Restore()
	if err != nil {
		s.Logger.Warn("could not restore session", zap.Error(err))
		return false
	}
	return ok
}

// NewConversation creates a conversation bound to the shared reveal engine.
func (s *Services) NewConversation() *conversation.Machine {
	return conversation.New(s.Client, s.Reveal, conversation.Options{
		TopK:    s.Config.Chat.TopK,
		Timeout: s.Config.Backend.Timeout(),
		Logger:  s.Logger,
	})
}

// ApplyConfig applies the settings that can change while running. Only the
// reveal interval is live; everything else needs a restart.
func (s *Services) ApplyConfig(cfg *config.Config) {
	s.Reveal.SetInterval(cfg.Reveal.Interval())
	s.Logger.Info("configuration reloaded",
		zap.Duration("reveal_interval", cfg.Reveal.Interval()),
	)
}
