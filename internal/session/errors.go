// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
)

// Fallback messages used when the backend gives no detail.
const (
	LoginFailedMessage  = "Login failed"
	SignupFailedMessage = "Signup failed"
)

// ErrNotLoggedIn is returned by helpers that need a credential when none is held.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthError is a login or signup the backend rejected or could not complete.
type AuthError struct {
	// Op is "login" or "signup"
	Op string
	// Message is the backend detail or the fallback for Op
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the user.
func (e *AuthError) UserMessage() string {
	return e.Message
}

// ValidationError is a signup profile rejected before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UserMessage returns the text shown to the user.
func (e *ValidationError) UserMessage() string {
	return e.Message
}
