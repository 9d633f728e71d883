// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders completed answers for the terminal with glamour.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderer wraps a glamour renderer per word-wrap width. A Renderer whose
// glamour setup failed, or that is disabled, returns content unchanged.
type Renderer struct {
	style   string
	enabled bool

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// New returns a Renderer using the glamour standard style name ("dark",
// "light", "notty", ...). An empty style selects glamour's auto style.
func New(style string, enabled bool) *Renderer {
	return &Renderer{
		style:     style,
		enabled:   enabled,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Enabled reports whether markdown is rendered.
func (r *Renderer) Enabled() bool {
	return r != nil && r.enabled
}

// Render renders content wrapped at width. On any failure it returns
// content as is and false.
func (r *Renderer) Render(content string, width int) (string, bool) {
	if !r.Enabled() || strings.TrimSpace(content) == "" {
		return content, false
	}

	tr := r.renderer(width)
	if tr == nil {
		return content, false
	}

	out, err := tr.Render(content)
	if err != nil {
		return content, false
	}
	return strings.Trim(out, "\n"), true
}

func (r *Renderer) renderer(width int) *glamour.TermRenderer {
	if width < 10 {
		width = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.renderers[width]; ok {
		return tr
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		tr = nil
	}
	r.renderers[width] = tr
	return tr
}
