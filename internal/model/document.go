// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// createdAtLayouts are the timestamp formats accepted for created_at.
// The backend may omit the zone and may use a space separator.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// Document is an uploaded source document. The backend owns it; the client
// only caches it for display.
type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalJSON accepts numeric or string ids and lenient timestamps.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Filename  string          `json:"filename"`
		CreatedAt *string         `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}

	d.ID = id
	d.Filename = raw.Filename
	d.CreatedAt = time.Time{}
	if raw.CreatedAt != nil {
		d.CreatedAt = parseCreatedAt(*raw.CreatedAt)
	}
	return nil
}

// HasCreatedAt reports whether the backend supplied a usable timestamp.
func (d Document) HasCreatedAt() bool {
	return !d.CreatedAt.IsZero()
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid document id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid document id: %w", err)
	}
	return n.String(), nil
}

func parseCreatedAt(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Profile is the signup payload for a new account.
type Profile struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name,omitempty"`
}
