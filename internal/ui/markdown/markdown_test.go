// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderer_Disabled(t *testing.T) {
	r := New("notty", false)
	out, ok := r.Render("**bold**", 40)
	require.False(t, ok)
	require.Equal(t, "**bold**", out)

	var nilRenderer *Renderer
	require.False(t, nilRenderer.Enabled())
}

func TestRenderer_RendersMarkdown(t *testing.T) {
	r := New("notty", true)
	out, ok := r.Render("# Refunds\n\nProcessed within **14** days.", 40)
	require.True(t, ok)
	require.Contains(t, out, "Refunds")
	require.Contains(t, out, "14")
}

func TestRenderer_EmptyContent(t *testing.T) {
	r := New("notty", true)
	out, ok := r.Render("  ", 40)
	require.False(t, ok)
	require.Equal(t, "  ", out)
}
