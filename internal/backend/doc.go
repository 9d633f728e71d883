// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document-question-answering
// service.
//
// The client is a thin request wrapper: it builds the exact request shapes the
// service expects, attaches the current bearer credential, and turns non-2xx
// responses into *APIError values carrying the service's "detail" message.
// It never retries.
//
// # Endpoints
//
//   - POST   /auth/login            form username/password -> {access_token}
//   - POST   /users/signup          JSON profile
//   - GET    /documents             -> [Document]
//   - POST   /documents/upload      multipart "file" -> {document}
//   - DELETE /documents/{id}
//   - DELETE /documents/reset/all
//   - POST   /rag/query             JSON {question, top_k} -> {answer}
//
// # Usage
//
//	client := backend.New(cfg.Backend.URL,
//	    backend.WithCredentials(store.Credential),
//	    backend.WithRateLimit(cfg.Backend.RateLimitRPS, cfg.Backend.RateBurst),
//	)
//	resp, err := client.Query(ctx, backend.QueryRequest{Question: "...", TopK: 3})
package backend
