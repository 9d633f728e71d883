// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package documents

import "fmt"

// User-facing messages.
const (
	LoadFailedMessage   = "Failed to load documents"
	UploadFailedMessage = "Upload failed. Please try again."
	DeleteFailedMessage = "Failed to delete document. Please try again."
	ResetFailedMessage  = "Failed to reset knowledge base. Please try again."
	NoFilesMessage      = "Please select at least one file"
	NothingUploaded     = "No files were uploaded. Please try again."

	ConfirmDeletePrompt = "Are you sure you want to delete this document?"
	ConfirmResetPrompt  = "This will remove all your documents and their knowledge from the bot. Continue?"
)

// RequestError is a registry call that failed at the backend or transport.
// The cache is unchanged when one is returned.
type RequestError struct {
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the user.
func (e *RequestError) UserMessage() string {
	return e.Message
}

// ValidationError is a local input problem. Nothing was sent.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// UserMessage returns the text shown to the user.
func (e *ValidationError) UserMessage() string {
	return e.Message
}
