// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package documents

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jeranaias/docqa-tui/internal/model"
)

// loadedKey marks when the list was last fetched. It is the only entry
// that expires.
const loadedKey = "\x00loaded"

// Cache is the local id -> Document mapping shown in the documents panel,
// kept newest first.
//
// Merge rules:
//   - Replace: a successful list replaces everything and marks the cache fresh.
//   - Prepend: a successful upload puts the new documents first, in upload order.
//   - Remove: a successful delete drops one id.
//   - Clear: a successful reset empties the cache.
//
// Failed calls never reach a mutator, and earlier mutations are never rolled
// back by a later failure.
type Cache struct {
	mu    sync.RWMutex
	items *cache.Cache
	order []string
	ttl   time.Duration
}

// NewCache returns an empty cache. A positive ttl makes the list go stale
// that long after the last Replace; zero means it never goes stale.
func NewCache(ttl time.Duration) *Cache {
	cleanup := time.Duration(0)
	if ttl > 0 {
		cleanup = ttl
	}
	return &Cache{
		items: cache.New(cache.NoExpiration, cleanup),
		ttl:   ttl,
	}
}

// Replace swaps in docs as the complete list.
func (c *Cache) Replace(docs []model.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Flush()
	c.order = make([]string, 0, len(docs))
	for _, d := range docs {
		if _, dup := c.items.Get(itemKey(d.ID)); !dup {
			c.order = append(c.order, d.ID)
		}
		c.putLocked(d)
	}

	expiry := cache.NoExpiration
	if c.ttl > 0 {
		expiry = c.ttl
	}
	c.items.Set(loadedKey, time.Now(), expiry)
}

// Prepend inserts docs before the existing entries, keeping their order.
// An id already present moves to the front.
func (c *Cache) Prepend(docs []model.Document) {
	if len(docs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	front := make([]string, 0, len(docs)+len(c.order))
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		c.putLocked(d)
		if !seen[d.ID] {
			front = append(front, d.ID)
			seen[d.ID] = true
		}
	}
	for _, id := range c.order {
		if !seen[id] {
			front = append(front, id)
		}
	}
	c.order = front
}

// Remove drops id. It reports whether id was present.
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items.Get(itemKey(id)); !ok {
		return false
	}
	c.items.Delete(itemKey(id))
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every document. The cache stays fresh: an empty list is
// the known state after a reset.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	loaded, expires, hasLoaded := c.items.GetWithExpiration(loadedKey)
	c.items.Flush()
	c.order = nil
	if hasLoaded {
		remaining := cache.NoExpiration
		if !expires.IsZero() {
			remaining = time.Until(expires)
		}
		if remaining == cache.NoExpiration || remaining > 0 {
			c.items.Set(loadedKey, loaded, remaining)
		}
	}
}

// Invalidate empties the cache and marks it stale.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Flush()
	c.order = nil
}

// Documents returns the documents newest first.
func (c *Cache) Documents() []model.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Document, 0, len(c.order))
	for _, id := range c.order {
		if v, ok := c.items.Get(itemKey(id)); ok {
			out = append(out, v.(model.Document))
		}
	}
	return out
}

// Get looks up one document.
func (c *Cache) Get(id string) (model.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.items.Get(itemKey(id)); ok {
		return v.(model.Document), true
	}
	return model.Document{}, false
}

// Len returns the number of documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Fresh reports whether a list was loaded and has not gone stale.
func (c *Cache) Fresh() bool {
	_, ok := c.items.Get(loadedKey)
	return ok
}

// LoadedAt returns when the list was last fetched.
func (c *Cache) LoadedAt() (time.Time, bool) {
	v, ok := c.items.Get(loadedKey)
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

func (c *Cache) putLocked(d model.Document) {
	c.items.Set(itemKey(d.ID), d, cache.NoExpiration)
}

func itemKey(id string) string {
	return "doc:" + id
}
