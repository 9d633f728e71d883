// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation runs the question and answer lifecycle.
//
// A Machine appends the user's turn immediately, sends the question in the
// background and, once the answer arrives, reveals it word by word into a new
// assistant turn. Failures become a single assistant turn and never enter the
// revealing phase.
//
//	m := conversation.New(client, reveal.New(reveal.Options{}), conversation.Options{TopK: 3})
//	defer m.Close()
//	m.Subscribe(func(ev conversation.Event) { ... })
//	m.Submit("What is the refund policy?")
package conversation
