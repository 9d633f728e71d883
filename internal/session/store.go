// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/model"
)

// Authenticator is the part of the backend the store talks to.
// *backend.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, profile model.Profile) error
}

// ChangeReason says why the credential changed.
type ChangeReason int

const (
	ChangeLogin ChangeReason = iota
	ChangeLogout
	ChangeRestore
)

// String returns the reason name for logs.
func (r ChangeReason) String() string {
	switch r {
	case ChangeLogin:
		return "login"
	case ChangeLogout:
		return "logout"
	case ChangeRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after the credential changed.
type Change struct {
	Reason   ChangeReason
	LoggedIn bool
}

// =============================================================================
// STORE
// =============================================================================

// Store is the single source of truth for the credential.
type Store struct {
	auth    Authenticator
	persist Persister
	logger  *zap.Logger
	valid   *validator.Validate

	mu        sync.RWMutex
	token     string
	listeners map[int]func(Change)
	nextID    int

	// notifyMu keeps listener calls in mutation order.
	notifyMu sync.Mutex
}

// New creates a Store. A nil persister keeps the credential in memory only.
func New(auth Authenticator, persist Persister, logger *zap.Logger) *Store {
	if persist == nil {
		persist = NewMemoryStore()
	}
	return &Store{
		auth:      auth,
		persist:   persist,
		logger:    logging.Module(logger, "session"),
		valid:     validator.New(),
		listeners: make(map[int]func(Change)),
	}
}

// Credential returns the current bearer token. It matches
// backend.CredentialFunc so the client can read it per request.
func (s *Store) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// LoggedIn reports whether a credential is held.
func (s *Store) LoggedIn() bool {
	_, ok := s.Credential()
	return ok
}

// RequireCredential returns the token or ErrNotLoggedIn.
func (s *Store) RequireCredential() (string, error) {
	token, ok := s.Credential()
	if !ok {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// Restore loads a stored credential at startup. It reports whether a
// session was restored. An unreadable store leaves the user logged out.
func (s *Store) Restore() (bool, error) {
	token, err := s.persist.Load()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	s.set(token, ChangeRestore)
	s.logger.Info("session restored")
	return true, nil
}

// Login exchanges credentials for a token and stores it. The token is
// visible to Credential before Login returns.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	token, err := s.auth.Login(ctx, strings.TrimSpace(identifier), secret)
	if err != nil {
		s.logger.Info("login rejected", zap.Error(err))
		return authError("login", LoginFailedMessage, err)
	}

	if err := s.persist.Save(token); err != nil {
		// The in-memory session is still valid for this run.
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
	s.set(token, ChangeLogin)
	s.logger.Info("logged in")
	return nil
}

// Signup validates profile locally, then registers it. It does not log in.
func (s *Store) Signup(ctx context.Context, profile model.Profile) error {
	profile.Email = strings.TrimSpace(profile.Email)
	profile.FullName = strings.TrimSpace(profile.FullName)

	if err := s.validate(profile); err != nil {
		return err
	}

	if err := s.auth.Signup(ctx, profile); err != nil {
		s.logger.Info("signup rejected", zap.Error(err))
		return authError("signup", SignupFailedMessage, err)
	}
	s.logger.Info("signed up")
	return nil
}

// Logout clears the credential from memory and durable storage. Memory is
// cleared even when the store cannot be cleared.
func (s *Store) Logout() error {
	s.set("", ChangeLogout)
	s.logger.Info("logged out")
	return s.persist.Clear()
}

// Subscribe registers fn for credential changes. fn runs after the new
// value is visible to Credential. The returned func unregisters it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) set(token string, reason ChangeReason) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.token = token
	fns := make([]func(Change), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	change := Change{Reason: reason, LoggedIn: token != ""}
	for _, fn := range fns {
		fn(change)
	}
}

func (s *Store) validate(profile model.Profile) error {
	err := s.valid.Struct(profile)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "profile", Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch {
	case fe.Field() == "Email" && fe.Tag() == "email":
		return &ValidationError{Field: field, Message: "Please enter a valid email address"}
	case fe.Tag() == "required":
		return &ValidationError{Field: field, Message: fe.Field() + " is required"}
	default:
		return &ValidationError{Field: field, Message: fe.Error()}
	}
}

func authError(op, fallback string, err error) *AuthError {
	msg := fallback
	if detail, ok := backend.Detail(err); ok {
		msg = detail
	}
	return &AuthError{Op: op, Message: msg, Err: err}
}
