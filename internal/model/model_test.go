// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			require.Equal(t, tc.want, tc.role.DisplayName())
		})
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_RevealGrowsTail(t *testing.T) {
	var tr Transcript
	tr.Append(NewUserTurn("What is the refund policy?"))

	idx := tr.BeginReveal()
	require.Equal(t, 1, idx)

	got, ok := tr.Revealing()
	require.True(t, ok)
	require.Equal(t, idx, got)

	require.NoError(t, tr.Reveal(idx, "Refunds"))
	require.NoError(t, tr.Reveal(idx, "Refunds are"))
	tr.EndReveal(idx)

	_, ok = tr.Revealing()
	require.False(t, ok)

	last, ok := tr.Last()
	require.True(t, ok)
	require.Equal(t, NewAssistantTurn("Refunds are"), last)
}

func TestTranscript_RevealRejectsShrinkAndStaleIndex(t *testing.T) {
	var tr Transcript
	idx := tr.BeginReveal()
	require.NoError(t, tr.Reveal(idx, "one two"))

	require.ErrorIs(t, tr.Reveal(idx, "one"), ErrContentShrink)
	require.ErrorIs(t, tr.Reveal(idx+1, "x"), ErrNotRevealing)

	tr.EndReveal(idx)
	require.ErrorIs(t, tr.Reveal(idx, "one two three"), ErrNotRevealing)
}

func TestTranscript_SecondRevealFreezesFirst(t *testing.T) {
	var tr Transcript
	first := tr.BeginReveal()
	require.NoError(t, tr.Reveal(first, "partial"))

	second := tr.BeginReveal()
	require.ErrorIs(t, tr.Reveal(first, "partial answer"), ErrNotRevealing)
	require.NoError(t, tr.Reveal(second, "fresh"))

	// A late EndReveal for the first turn must not end the second.
	tr.EndReveal(first)
	got, ok := tr.Revealing()
	require.True(t, ok)
	require.Equal(t, second, got)
}

func TestTranscript_TurnsReturnsCopy(t *testing.T) {
	var tr Transcript
	tr.Append(NewUserTurn("hello"))

	turns := tr.Turns()
	turns[0].Content = "mutated"

	require.Equal(t, "hello", tr.Turns()[0].Content)
}

func TestTranscript_Reset(t *testing.T) {
	var tr Transcript
	tr.Append(NewUserTurn("a"))
	tr.BeginReveal()
	tr.Reset()

	require.Equal(t, 0, tr.Len())
	_, ok := tr.Revealing()
	require.False(t, ok)
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantID   string
		wantTime time.Time
	}{
		{
			name:     "numeric id and naive timestamp",
			input:    `{"id": 42, "filename": "policy.pdf", "created_at": "2024-05-01T10:30:00.123456"}`,
			wantID:   "42",
			wantTime: time.Date(2024, 5, 1, 10, 30, 0, 123456000, time.UTC),
		},
		{
			name:     "string id and RFC3339 timestamp",
			input:    `{"id": "a1b2", "filename": "notes.txt", "created_at": "2024-05-01T10:30:00Z"}`,
			wantID:   "a1b2",
			wantTime: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:   "missing timestamp",
			input:  `{"id": 7, "filename": "x.docx"}`,
			wantID: "7",
		},
		{
			name:   "unparseable timestamp",
			input:  `{"id": 7, "filename": "x.docx", "created_at": "yesterday"}`,
			wantID: "7",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var doc Document
			require.NoError(t, json.Unmarshal([]byte(tc.input), &doc))
			require.Equal(t, tc.wantID, doc.ID)
			require.True(t, tc.wantTime.Equal(doc.CreatedAt), "created_at = %v", doc.CreatedAt)
			require.Equal(t, !tc.wantTime.IsZero(), doc.HasCreatedAt())
		})
	}
}

func TestDocument_UnmarshalJSON_InvalidID(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"id": {"nested": true}}`), &doc)
	require.Error(t, err)
}
