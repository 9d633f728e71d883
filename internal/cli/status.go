// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - status command.
package cli

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusData is the JSON form of `docqa status`.
type StatusData struct {
	Version        string `json:"version"`
	BackendURL     string `json:"backend_url"`
	LoggedIn       bool   `json:"logged_in"`
	Ephemeral      bool   `json:"ephemeral"`
	SessionFile    string `json:"session_file,omitempty"`
	RevealInterval string `json:"reveal_interval"`
	TopK           int    `json:"top_k"`
}

// HandleStatus shows the backend URL and whether a credential is held.
// It never calls the backend. With --check it fails when logged out.
func HandleStatus(env *Env, args Args) error {
	if args.Check {
		if _, err := env.Services.Session.RequireCredential(); err != nil {
			return err
		}
	}

	svc := env.Services
	cfg := svc.Config

	data := StatusData{
		Version:        Version,
		BackendURL:     svc.Client.BaseURL(),
		LoggedIn:       svc.Session.LoggedIn(),
		Ephemeral:      cfg.Session.Ephemeral,
		RevealInterval: svc.Reveal.Interval().Round(time.Millisecond).String(),
		TopK:           cfg.Chat.TopK,
	}
	if !cfg.Session.Ephemeral {
		if path, err := cfg.SessionFile(); err == nil {
			data.SessionFile = path
		}
	}

	if args.JSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	fmt.Fprintln(env.Stdout, TitleStyle.Render("docqa status"))
	row := func(label, value string) {
		fmt.Fprintf(env.Stdout, "%s %s\n", RenderLabel(label), ValueStyle.Render(value))
	}
	row("Backend", data.BackendURL)
	if data.LoggedIn {
		row("Session", "logged in "+RenderStatus("ok"))
	} else {
		row("Session", "logged out "+RenderStatus("no"))
	}
	if data.Ephemeral {
		row("Credential", "memory only")
	} else {
		row("Credential", data.SessionFile)
	}
	row("Reveal", data.RevealInterval+" per word")
	row("Top K", fmt.Sprint(data.TopK))
	return nil
}
