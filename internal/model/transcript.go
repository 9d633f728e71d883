// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
)

// noReveal marks a transcript with no turn in the revealing sub-state.
const noReveal = -1

var (
	// ErrNotRevealing is returned when a reveal update targets a turn that is
	// not the active reveal target.
	ErrNotRevealing = errors.New("turn is not being revealed")

	// ErrContentShrink is returned when a reveal update would remove text
	// that is already visible.
	ErrContentShrink = errors.New("revealed content cannot shrink")
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered list of turns shown in the chat panel.
//
// It is append-only, except that the turn returned by BeginReveal may grow
// in place until EndReveal is called for it. At most one turn is revealing
// at a time. The zero value is an empty transcript ready to use.
//
// Transcript is not safe for concurrent use; the owner serialises access.
type Transcript struct {
	turns     []Turn
	revealing int
	started   bool
}

// Append adds a completed turn and returns its index.
// A pending reveal is left untouched; the appended turn is not revealing.
func (t *Transcript) Append(turn Turn) int {
	t.init()
	t.turns = append(t.turns, turn)
	return len(t.turns) - 1
}

// BeginReveal appends an empty assistant turn and marks it as the single
// revealing turn. Any previous reveal target is frozen at its current content.
func (t *Transcript) BeginReveal() int {
	t.init()
	t.turns = append(t.turns, NewAssistantTurn(""))
	t.revealing = len(t.turns) - 1
	return t.revealing
}

// Reveal replaces the content of the revealing turn at index.
// The new content must extend the visible content.
func (t *Transcript) Reveal(index int, content string) error {
	t.init()
	if index != t.revealing || index < 0 || index >= len(t.turns) {
		return fmt.Errorf("%w: index %d", ErrNotRevealing, index)
	}
	if !strings.HasPrefix(content, t.turns[index].Content) {
		return ErrContentShrink
	}
	t.turns[index].Content = content
	return nil
}

// EndReveal freezes the turn at index. Calls for a turn that is not the
// active reveal target are ignored.
func (t *Transcript) EndReveal(index int) {
	t.init()
	if index == t.revealing {
		t.revealing = noReveal
	}
}

// Revealing returns the index of the revealing turn, if any.
func (t *Transcript) Revealing() (int, bool) {
	t.init()
	return t.revealing, t.revealing != noReveal
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Last returns the final turn, if any.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Turns returns a copy of all turns.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Reset removes every turn and any pending reveal.
func (t *Transcript) Reset() {
	t.turns = nil
	t.revealing = noReveal
	t.started = true
}

func (t *Transcript) init() {
	if !t.started {
		t.revealing = noReveal
		t.started = true
	}
}
