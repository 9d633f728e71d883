// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jeranaias/docqa-tui/internal/util"
)

// Persister stores the credential between runs. Load returns "" when
// nothing is stored.
type Persister interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// =============================================================================
// FILE STORE
// =============================================================================

// storedSession is the on-disk shape. "token" is the fixed storage key.
type storedSession struct {
	Token string `json:"token"`
}

// FileStore keeps the credential in a 0600 JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the stored credential. A missing file is not an error.
func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("failed to parse session file: %w", err)
	}
	return strings.TrimSpace(s.Token), nil
}

// Save writes token atomically with owner-only permissions.
func (f *FileStore) Save(token string) error {
	data, err := json.Marshal(storedSession{Token: token})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (f *FileStore) Clear() error {
	if err := util.RemoveIfExists(f.path); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps the credential for the life of the process only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
