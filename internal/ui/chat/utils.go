// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// calculateContentWidth returns the usable text width inside a panel.
// Returns a minimum of 3 for extremely narrow widths.
func calculateContentWidth(totalWidth, margin int) int {
	contentWidth := totalWidth - margin
	if contentWidth < 3 {
		contentWidth = 3
	}
	return contentWidth
}

// wrapText wraps text to maxWidth display columns. Existing line breaks are
// kept and long lines break at the last space that fits.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}

		for runewidth.StringWidth(line) > maxWidth {
			runes := []rune(line)
			cut, width, lastSpace := 0, 0, -1
			for j, r := range runes {
				w := runewidth.RuneWidth(r)
				if width+w > maxWidth {
					break
				}
				width += w
				cut = j + 1
				if r == ' ' {
					lastSpace = j
				}
			}
			if lastSpace > 0 {
				cut = lastSpace
			}
			if cut == 0 {
				cut = 1
			}

			result.WriteString(strings.TrimRight(string(runes[:cut]), " "))
			result.WriteString("\n")
			line = strings.TrimLeft(string(runes[cut:]), " ")
		}
		result.WriteString(line)
	}

	return result.String()
}
