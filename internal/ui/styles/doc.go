// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docqa TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The [ui] theme setting can force one side.

# Color System (colors.go)

  - Purple - assistant turns and focused panel borders
  - Cyan - brand color, user turns, key hints
  - Emerald - success messages
  - Amber - warnings and confirmation prompts
  - Rose - errors

Status helpers (RenderSuccess, RenderError, RenderWarning, RenderInfo) add
ASCII shape indicators so states are readable without color.

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	header := theme.Header.Render("docqa")

# Animations (animations.go)

Spinner frame sets for the sending indicator and the reveal cursor.
*/
package styles
