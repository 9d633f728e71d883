// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - "did you mean" hints for mistyped commands.
package cli

import (
	"strings"
)

// validCommands lists top-level commands and their aliases.
var validCommands = []string{
	"tui", "login", "signup", "register", "logout", "status",
	"docs", "documents", "ask", "chat", "config", "version", "help",
}

// docsSubcommands lists `docqa docs` subcommands and their aliases.
var docsSubcommands = []string{"list", "upload", "delete", "reset", "remove"}

// SuggestCommand returns the command closest to input, or "" when nothing
// is close enough.
func SuggestCommand(input string) string {
	return suggest(input, validCommands)
}

func suggest(input string, candidates []string) string {
	input = strings.ToLower(input)
	n := len([]rune(input))
	if n < 2 {
		return ""
	}

	maxDistance := 1
	if n >= 4 {
		maxDistance = 2
	}

	best, bestDistance := "", -1
	for _, c := range candidates {
		d := levenshteinDistance(input, c)
		if d == 0 {
			return ""
		}
		if d <= maxDistance && (bestDistance == -1 || d < bestDistance) {
			best, bestDistance = c, d
		}
	}
	return best
}

// levenshteinDistance is the edit distance between s1 and s2 in runes.
func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
