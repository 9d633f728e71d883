// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, signup and logout commands.
package cli

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/docqa-tui/internal/model"
)

// HandleLogin prompts for anything missing and logs in. The credential is
// stored by the session store.
func HandleLogin(env *Env, args Args) error {
	email := normalizeInput(args.User)
	if email == "" {
		if !env.Interactive {
			return ErrMissingArgument("--user", "docqa login --user you@example.com")
		}
		line, err := env.ReadLine("Email: ")
		if err != nil {
			return ErrCancelled
		}
		email = normalizeInput(line)
	}

	password, err := readSecret(env, "Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := env.Context()
	defer cancel()

	if err := env.Services.Session.Login(ctx, email, password); err != nil {
		return err
	}
	env.Printf("%s Logged in as %s\n", SuccessStyle.Render("[OK]"), email)
	return nil
}

// HandleSignup creates an account. It does not log in.
func HandleSignup(env *Env, args Args) error {
	email := normalizeInput(args.Email)
	if email == "" {
		if !env.Interactive {
			return ErrMissingArgument("--email", "docqa signup --email you@example.com --name \"Your Name\"")
		}
		line, err := env.ReadLine("Email: ")
		if err != nil {
			return ErrCancelled
		}
		email = normalizeInput(line)
	}

	password, err := readSecret(env, "Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := env.Context()
	defer cancel()

	profile := model.Profile{
		Email:    email,
		Password: password,
		FullName: normalizeInput(args.Name),
	}
	if err := env.Services.Session.Signup(ctx, profile); err != nil {
		return err
	}
	env.Printf("%s Account created. Run 'docqa login --user %s' to log in.\n",
		SuccessStyle.Render("[OK]"), email)
	return nil
}

// HandleLogout forgets the credential.
func HandleLogout(env *Env, args Args) error {
	wasLoggedIn := env.Services.Session.LoggedIn()
	if err := env.Services.Session.Logout(); err != nil {
		return WrapError(err, "remove saved session")
	}
	if args.Quiet {
		return nil
	}
	if wasLoggedIn {
		env.Printf("%s Logged out\n", SuccessStyle.Render("[OK]"))
	} else {
		env.Printf("%s\n", DimStyle.Render("Not logged in."))
	}
	return nil
}

// readSecret reads a password without echo on a terminal, or one line from
// stdin otherwise so scripts can pipe it in.
func readSecret(env *Env, prompt string) (string, error) {
	if env.Interactive && env.ReadPassword != nil {
		env.Printf("%s", prompt)
		secret, err := env.ReadPassword()
		if err != nil {
			return "", ErrCancelled
		}
		return secret, nil
	}
	line, err := env.ReadLine("")
	if err != nil {
		return "", ErrMissingArgument("password", "echo \"$PASSWORD\" | docqa login --user you@example.com")
	}
	return line, nil
}

// normalizeInput trims and NFC-normalizes typed text so that visually equal
// input sends the same bytes.
func normalizeInput(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
