// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import "github.com/jeranaias/docqa-tui/internal/documents"

// RefreshMsg asks the panel to reload the list, e.g. after login.
type RefreshMsg struct{}

// ChangedMsg tells the panel the registry cache changed.
type ChangedMsg struct{}

type refreshedMsg struct{ err error }

type uploadedMsg struct {
	result documents.UploadResult
	err    error
}

type deletedMsg struct {
	id  string
	err error
}

type resetMsg struct{ err error }
