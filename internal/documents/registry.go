// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package documents manages the user's uploaded documents.
//
// The Registry wraps the backend document endpoints and keeps a local Cache
// for display. Every call turns failures into one user-facing message and
// leaves the cache as it was.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/model"
)

// DefaultExtensions are the file types the backend accepts.
var DefaultExtensions = []string{".pdf", ".docx", ".txt", ".doc"}

// Client is the part of the backend the registry uses.
// *backend.Client satisfies it.
type Client interface {
	ListDocuments(ctx context.Context) ([]model.Document, error)
	UploadDocument(ctx context.Context, filename string, content io.Reader) (*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ResetDocuments(ctx context.Context) error
}

// =============================================================================
// FILES
// =============================================================================

// File is one file selected for upload.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileFromPath returns a File read from disk when uploaded.
func FileFromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FileFromBytes returns an in-memory File.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UploadResult summarises an upload that did not fail.
type UploadResult struct {
	// Uploaded holds the documents the backend returned, in upload order.
	Uploaded []model.Document
	// Skipped counts responses that carried no document.
	Skipped int
	Message string
	// Warning is set when nothing was uploaded.
	Warning bool
}

// =============================================================================
// REGISTRY
// =============================================================================

// Options configures a Registry.
type Options struct {
	// AllowedExtensions restricts uploads. Empty means DefaultExtensions.
	AllowedExtensions []string
	// CacheTTL makes the list go stale after a refresh. Zero disables it.
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Registry lists, uploads and deletes documents.
type Registry struct {
	client  Client
	cache   *Cache
	allowed map[string]bool
	exts    []string
	logger  *zap.Logger

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

// New creates a Registry with an empty cache.
func New(client Client, opts Options) *Registry {
	exts := opts.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}
	return &Registry{
		client:    client,
		cache:     NewCache(opts.CacheTTL),
		allowed:   allowed,
		exts:      exts,
		logger:    logging.Module(opts.Logger, "documents"),
		listeners: make(map[int]func()),
	}
}

// Documents returns the cached documents, newest first.
func (r *Registry) Documents() []model.Document {
	return r.cache.Documents()
}

// Get looks up a cached document.
func (r *Registry) Get(id string) (model.Document, bool) {
	return r.cache.Get(id)
}

// Len returns the number of cached documents.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Fresh reports whether the cached list is loaded and not stale.
func (r *Registry) Fresh() bool {
	return r.cache.Fresh()
}

// AllowedExtensions returns the accepted file extensions.
func (r *Registry) AllowedExtensions() []string {
	out := make([]string, len(r.exts))
	copy(out, r.exts)
	return out
}

// Subscribe registers fn to run after every cache mutation.
func (r *Registry) Subscribe(fn func()) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Refresh fetches the list and replaces the cache.
func (r *Registry) Refresh(ctx context.Context) error {
	docs, err := r.client.ListDocuments(ctx)
	if err != nil {
		r.logger.Warn("list failed", zap.Error(err))
		return &RequestError{Op: "list", Message: LoadFailedMessage, Err: err}
	}
	r.cache.Replace(docs)
	r.logger.Debug("documents loaded", zap.Int("count", len(docs)))
	r.notify()
	return nil
}

// EnsureFresh refreshes only when the cache is empty-unloaded or stale.
func (r *Registry) EnsureFresh(ctx context.Context) error {
	if r.cache.Fresh() {
		return nil
	}
	return r.Refresh(ctx)
}

// Upload sends files one at a time, in order. The first failure aborts the
// remaining files and nothing is added to the cache.
func (r *Registry) Upload(ctx context.Context, files []File) (UploadResult, error) {
	if len(files) == 0 {
		return UploadResult{}, &ValidationError{Message: NoFilesMessage}
	}
	for _, f := range files {
		if err := r.checkExtension(f.Name); err != nil {
			return UploadResult{}, err
		}
	}

	var res UploadResult
	for _, f := range files {
		doc, err := r.uploadOne(ctx, f)
		if err != nil {
			r.logger.Warn("upload failed", zap.String("file", f.Name), zap.Error(err))
			return UploadResult{}, err
		}
		if doc == nil {
			res.Skipped++
			continue
		}
		res.Uploaded = append(res.Uploaded, *doc)
	}

	if len(res.Uploaded) == 0 {
		res.Message = NothingUploaded
		res.Warning = true
		return res, nil
	}

	r.cache.Prepend(res.Uploaded)
	res.Message = fmt.Sprintf("Successfully uploaded %d file(s)!", len(res.Uploaded))
	r.logger.Info("documents uploaded",
		zap.Int("uploaded", len(res.Uploaded)),
		zap.Int("skipped", res.Skipped),
	)
	r.notify()
	return res, nil
}

func (r *Registry) uploadOne(ctx context.Context, f File) (*model.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &RequestError{
			Op:      "upload",
			Message: fmt.Sprintf("Could not read %s", f.Name),
			Err:     err,
		}
	}
	defer rc.Close()

	doc, err := r.client.UploadDocument(ctx, f.Name, rc)
	if err != nil {
		msg := UploadFailedMessage
		if detail, ok := backend.Detail(err); ok {
			msg = detail
		}
		return nil, &RequestError{Op: "upload", Message: msg, Err: err}
	}
	return doc, nil
}

func (r *Registry) checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if r.allowed[ext] {
		return nil
	}
	return &ValidationError{Message: fmt.Sprintf(
		"%s is not a supported file type (allowed: %s)", name, strings.Join(r.exts, ", "),
	)}
}

// Delete removes one document.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.client.DeleteDocument(ctx, id); err != nil {
		r.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return &RequestError{Op: "delete", Message: DeleteFailedMessage, Err: err}
	}
	r.cache.Remove(id)
	r.logger.Info("document deleted", zap.String("id", id))
	r.notify()
	return nil
}

// DeleteAll removes every document of the user.
func (r *Registry) DeleteAll(ctx context.Context) error {
	if err := r.client.ResetDocuments(ctx); err != nil {
		r.logger.Warn("reset failed", zap.Error(err))
		return &RequestError{Op: "reset", Message: ResetFailedMessage, Err: err}
	}
	r.cache.Clear()
	r.logger.Info("knowledge base reset")
	r.notify()
	return nil
}

// Forget drops the cached list without calling the backend. Used on logout
// so the next user never sees the previous list.
func (r *Registry) Forget() {
	r.cache.Invalidate()
	r.notify()
}

func (r *Registry) notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for i := 0; i < r.nextID; i++ {
		if fn, ok := r.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
