// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"crypto/sha256"
	"encoding/hex"
)

// =============================================================================
// VIEWPORT OPTIMIZER
// =============================================================================

// ViewportOptimizer skips viewport updates whose content did not change.
// A reveal tick re-renders the whole transcript, so most of it is identical
// between ticks. Used only from the Bubble Tea update loop.
type ViewportOptimizer struct {
	lastContentHash string
	updateCount     uint64
	skipCount       uint64
}

// NewViewportOptimizer creates a new viewport optimizer.
func NewViewportOptimizer() *ViewportOptimizer {
	return &ViewportOptimizer{}
}

// ShouldUpdate reports whether newContent differs from the last content.
func (vo *ViewportOptimizer) ShouldUpdate(newContent string) bool {
	vo.updateCount++
	newHash := hashContent(newContent)
	if vo.updateCount > 1 && newHash == vo.lastContentHash {
		vo.skipCount++
		return false
	}
	vo.lastContentHash = newHash
	return true
}

// ForceUpdate makes the next ShouldUpdate return true, e.g. after a resize.
func (vo *ViewportOptimizer) ForceUpdate() {
	vo.lastContentHash = ""
}

// GetStats returns (totalUpdates, skippedUpdates).
func (vo *ViewportOptimizer) GetStats() (total, skipped uint64) {
	return vo.updateCount, vo.skipCount
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
