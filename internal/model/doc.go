// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the docqa client.
//
// This package defines the domain types used throughout the application
// for representing the chat transcript and the user's uploaded documents.
//
// # Key Types
//
//   - Turn: One message in the transcript, authored by the user or the assistant
//   - Transcript: Ordered turns with a single optional revealing tail
//   - Document: A document owned by the backend, cached for display
//   - Profile: Signup payload for a new account
//
// # Usage
//
// Build a transcript and reveal an answer into it:
//
//	var t model.Transcript
//	t.Append(model.NewUserTurn("What is the refund policy?"))
//	idx := t.BeginReveal()
//	_ = t.Reveal(idx, "Refunds")
//	_ = t.Reveal(idx, "Refunds are")
//	t.EndReveal(idx)
package model
