// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// ChangedMsg tells the panel that the conversation changed. It carries no
// payload; the panel re-reads the machine.
type ChangedMsg struct{}

// StatusMsg is a one-line notice for the panel's status line.
type StatusMsg struct {
	Text  string
	Error bool
}
