// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the authentication credential.
//
// A Store is the single writer of the bearer token. Every other component
// reads it through Store.Credential at the moment a request is built, so a
// completed Login or Logout is always visible to the next request.
//
// # Key Types
//
//   - Store: login, signup, logout and change notification
//   - Persister: durable storage for the credential (FileStore, MemoryStore)
//   - AuthError: the backend rejected a login or signup
//   - ValidationError: the signup profile is incomplete, nothing was sent
//
// # Usage
//
//	store := session.New(client, session.NewFileStore(path), logger)
//	if _, err := store.Restore(); err != nil {
//	    logger.Warn("stored session unreadable", zap.Error(err))
//	}
//	unsubscribe := store.Subscribe(func(c session.Change) {
//	    // switch screens on c.LoggedIn
//	})
//	defer unsubscribe()
package session
