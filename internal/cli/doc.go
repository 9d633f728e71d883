// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive commands
// of docqa.
//
// Running docqa with no arguments starts the TUI; main handles that case.
// Every other command is parsed by ParseArgs and executed by Run, which
// builds the shared services through NewEnv and maps errors to exit codes.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	if cmd != cli.CmdTUI {
//	    os.Exit(cli.Run(cmd, args))
//	}
//
// # Commands
//
//   - login, signup, logout: account and credential management
//   - status: backend URL and login state, --check for scripts
//   - docs: list, upload, delete and reset documents
//   - ask: one question, revealed word by word on a terminal
//   - chat: a question loop with /clear, /history and /exit
//   - config: print the effective configuration or its path
//
// # Exit Codes
//
//	0    success
//	1    general error
//	2    usage or validation error
//	3    configuration error
//	4    not logged in or rejected credential
//	5    network error
//	7    not found
//	8    timeout
//	130  cancelled
package cli
