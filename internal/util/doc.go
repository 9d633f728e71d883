// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and string helpers shared by docqa packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - RemoveIfExists: Delete a file, ignoring one that is already gone
//
// String Utilities:
//   - TruncateWidth: Column-aware truncation with ellipsis
//   - PadWidth: Column-aware padding for aligned lists
//
// # Usage
//
//	// Fit a filename into a 24-column list cell
//	cell := util.PadWidth(doc.Filename, 24)
//
//	// Write the credential file atomically
//	err := util.AtomicWriteFile(path, data, 0600)
package util
