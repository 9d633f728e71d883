// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for docqa CLI commands.
//
// Handlers always return errors; Run displays them once and maps them to an
// exit code.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/documents"
	"github.com/jeranaias/docqa-tui/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a rejected login or a missing credential
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitCancelled indicates the user declined or interrupted
	ExitCancelled = 130
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "docs"
	Action  string // e.g. "delete"
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid command-line input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// =============================================================================
// DISPLAY
// =============================================================================

// UserMessage returns the text to show for err. Domain errors carry their
// own user-facing message.
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if errors.Is(err, session.ErrNotLoggedIn) {
		return "Not logged in. Run 'docqa login' first."
	}
	return err.Error()
}

// DisplayError displays an error on stderr in a consistent format.
func DisplayError(err error, jsonMode bool) {
	displayError(os.Stderr, err, jsonMode)
}

func displayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrCancelled) {
		fmt.Fprintln(w, DimStyle.Render("Cancelled."))
		return
	}

	if jsonMode {
		out := map[string]any{
			"success":    false,
			"error":      UserMessage(err),
			"error_type": errorType(err),
			"exit_code":  GetExitCode(err),
		}
		if detail, ok := backend.Detail(err); ok {
			out["detail"] = detail
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), UserMessage(err))
}

func errorType(err error) string {
	var (
		authErr   *session.AuthError
		sessVal   *session.ValidationError
		docReq    *documents.RequestError
		docVal    *documents.ValidationError
		cliVal    *ValidationError
		cmdErr    *CommandError
		apiErr    *backend.APIError
		configErr config.ValidateErrors
	)
	switch {
	case errors.As(err, &authErr):
		return "auth_error"
	case errors.As(err, &sessVal), errors.As(err, &docVal), errors.As(err, &cliVal):
		return "validation_error"
	case errors.As(err, &docReq), errors.As(err, &apiErr):
		return "request_error"
	case errors.As(err, &configErr):
		return "config_error"
	case errors.As(err, &cmdErr):
		return "command_error"
	}
	return "generic_error"
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var (
		authErr   *session.AuthError
		sessVal   *session.ValidationError
		docVal    *documents.ValidationError
		cliVal    *ValidationError
		configErr config.ValidateErrors
		apiErr    *backend.APIError
		netErr    net.Error
	)
	switch {
	case errors.Is(err, session.ErrNotLoggedIn), errors.As(err, &authErr), backend.IsUnauthorized(err):
		return ExitAuthError
	case errors.As(err, &sessVal), errors.As(err, &docVal), errors.As(err, &cliVal):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.As(err, &apiErr) && apiErr.Status == 404:
		return ExitNotFoundError
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return ExitTimeoutError
		}
		return ExitNetworkError
	}
	return ExitGeneralError
}
