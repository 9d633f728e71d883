// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat panel of the docqa dashboard.

The panel renders the transcript of a conversation state machine and feeds
questions into it. It holds no conversation state of its own: every
ChangedMsg re-reads the transcript snapshot and phase.

# Key Components

## Panel (model.go)

Viewport for the transcript, a single-line input and a spinner shown while
a question is being sent. Input is refused unless the machine is idle.

## Rendering (view.go, render.go)

User turns are plain text. Assistant turns are rendered as markdown with
glamour once their reveal has finished; the turn being revealed is shown
as plain text with a cursor.

## Slash commands

  - /clear - empty the transcript
*/
package chat
