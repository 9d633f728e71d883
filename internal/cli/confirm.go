// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation for destructive commands.
//
//  1. --yes proceeds without prompting
//  2. --json requires --yes (no prompts in JSON mode)
//  3. a non-terminal stdin requires --yes
//  4. otherwise the user is asked and must answer y or yes
package cli

import (
	"strings"
)

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// Yes is set by --yes
	Yes bool
	// JSONMode is set by --json
	JSONMode bool
}

// RequireConfirmation asks prompt and returns ErrCancelled unless the user
// agrees.
func RequireConfirmation(env *Env, prompt string, opts ConfirmationOptions) error {
	if opts.Yes {
		return nil
	}
	if opts.JSONMode {
		return &ValidationError{
			Field:   "--yes",
			Reason:  "confirmation required in JSON mode",
			Example: "add --yes",
		}
	}
	if !env.Interactive {
		return &TTYRequiredError{Operation: "confirm (use --yes)"}
	}

	answer, err := env.ReadLine(WarningStyle.Render(prompt) + " [y/N]: ")
	if err != nil {
		return ErrCancelled
	}
	if !IsAffirmative(answer) {
		return ErrCancelled
	}
	return nil
}

// IsAffirmative reports whether answer means yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
