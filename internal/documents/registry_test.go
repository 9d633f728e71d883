// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package documents

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/model"
)

// fakeClient scripts backend responses per call.
type fakeClient struct {
	mu sync.Mutex

	list      []model.Document
	listErr   error
	uploads   []uploadReply
	uploaded  []string
	bodies    []string
	deleteErr error
	resetErr  error
	deleted   []string
	resets    int
}

type uploadReply struct {
	doc *model.Document
	err error
}

func (f *fakeClient) ListDocuments(context.Context) ([]model.Document, error) {
	return f.list, f.listErr
}

func (f *fakeClient) UploadDocument(_ context.Context, name string, r io.Reader) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(r)
	f.uploaded = append(f.uploaded, name)
	f.bodies = append(f.bodies, string(data))
	if len(f.uploads) == 0 {
		return nil, errors.New("unexpected upload")
	}
	reply := f.uploads[0]
	f.uploads = f.uploads[1:]
	return reply.doc, reply.err
}

func (f *fakeClient) DeleteDocument(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeClient) ResetDocuments(context.Context) error {
	f.resets++
	return f.resetErr
}

func doc(id, name string) model.Document {
	return model.Document{ID: id, Filename: name, CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func ids(docs []model.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func loaded(t *testing.T, client *fakeClient) *Registry {
	t.Helper()
	client.list = []model.Document{doc("1", "a.pdf"), doc("2", "b.txt")}
	r := New(client, Options{})
	require.NoError(t, r.Refresh(context.Background()))
	return r
}

// =============================================================================
// REFRESH
// =============================================================================

func TestRegistry_Refresh(t *testing.T) {
	r := loaded(t, &fakeClient{})

	require.Equal(t, []string{"1", "2"}, ids(r.Documents()))
	require.True(t, r.Fresh())

	got, ok := r.Get("2")
	require.True(t, ok)
	require.Equal(t, "b.txt", got.Filename)
}

func TestRegistry_RefreshFailureKeepsCache(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	client.listErr = errors.New("boom")
	err := r.Refresh(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, "Failed to load documents", reqErr.UserMessage())
	require.Equal(t, []string{"1", "2"}, ids(r.Documents()))
}

func TestRegistry_EnsureFresh(t *testing.T) {
	client := &fakeClient{list: []model.Document{doc("1", "a.pdf")}}
	r := New(client, Options{})

	require.False(t, r.Fresh())
	require.NoError(t, r.EnsureFresh(context.Background()))
	require.Equal(t, 1, r.Len())

	client.listErr = errors.New("must not be called")
	require.NoError(t, r.EnsureFresh(context.Background()))
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestRegistry_UploadRequiresFiles(t *testing.T) {
	r := New(&fakeClient{}, Options{})

	_, err := r.Upload(context.Background(), nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "Please select at least one file", vErr.UserMessage())
}

func TestRegistry_UploadRejectsExtensionBeforeSending(t *testing.T) {
	client := &fakeClient{}
	r := New(client, Options{})

	_, err := r.Upload(context.Background(), []File{
		FileFromBytes("ok.pdf", []byte("x")),
		FileFromBytes("evil.exe", []byte("x")),
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.UserMessage(), "evil.exe")
	require.Empty(t, client.uploaded, "nothing is sent")
}

func TestRegistry_UploadExtensionIsCaseInsensitive(t *testing.T) {
	d := doc("9", "REPORT.PDF")
	client := &fakeClient{uploads: []uploadReply{{doc: &d}}}
	r := New(client, Options{})

	res, err := r.Upload(context.Background(), []File{FileFromBytes("REPORT.PDF", []byte("x"))})
	require.NoError(t, err)
	require.Len(t, res.Uploaded, 1)
}

// One response carries a document, the other does not.
func TestRegistry_UploadPartialSuccess(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	newDoc := doc("10", "policy.pdf")
	client.uploads = []uploadReply{{doc: &newDoc}, {doc: nil}}

	res, err := r.Upload(context.Background(), []File{
		FileFromBytes("policy.pdf", []byte("pdf bytes")),
		FileFromBytes("notes.txt", []byte("txt bytes")),
	})
	require.NoError(t, err)
	require.Equal(t, "Successfully uploaded 1 file(s)!", res.Message)
	require.False(t, res.Warning)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, []string{"10", "1", "2"}, ids(r.Documents()))
	require.Equal(t, []string{"policy.pdf", "notes.txt"}, client.uploaded)
	require.Equal(t, []string{"pdf bytes", "txt bytes"}, client.bodies)
}

func TestRegistry_UploadKeepsUploadOrder(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	a, b := doc("a", "a.txt"), doc("b", "b.txt")
	client.uploads = []uploadReply{{doc: &a}, {doc: &b}}

	res, err := r.Upload(context.Background(), []File{
		FileFromBytes("a.txt", nil),
		FileFromBytes("b.txt", nil),
	})
	require.NoError(t, err)
	require.Equal(t, "Successfully uploaded 2 file(s)!", res.Message)
	require.Equal(t, []string{"a", "b", "1", "2"}, ids(r.Documents()))
}

func TestRegistry_UploadNothingReturned(t *testing.T) {
	client := &fakeClient{uploads: []uploadReply{{doc: nil}}}
	r := New(client, Options{})

	res, err := r.Upload(context.Background(), []File{FileFromBytes("a.txt", nil)})
	require.NoError(t, err)
	require.True(t, res.Warning)
	require.Equal(t, "No files were uploaded. Please try again.", res.Message)
	require.Zero(t, r.Len())
}

func TestRegistry_UploadAbortsOnFirstError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend detail", &backend.APIError{Op: "upload document", Status: 400, Detail: "File too large"}, "File too large"},
		{"transport", errors.New("connection reset"), "Upload failed. Please try again."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{}
			r := loaded(t, client)

			first := doc("10", "one.pdf")
			client.uploads = []uploadReply{{doc: &first}, {err: tc.err}, {doc: nil}}

			_, err := r.Upload(context.Background(), []File{
				FileFromBytes("one.pdf", nil),
				FileFromBytes("two.pdf", nil),
				FileFromBytes("three.pdf", nil),
			})

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			require.Equal(t, tc.want, reqErr.UserMessage())
			require.Equal(t, []string{"one.pdf", "two.pdf"}, client.uploaded, "third file is never sent")
			require.Equal(t, []string{"1", "2"}, ids(r.Documents()), "nothing prepended")
		})
	}
}

func TestRegistry_UploadUnreadableFile(t *testing.T) {
	client := &fakeClient{}
	r := New(client, Options{})

	_, err := r.Upload(context.Background(), []File{
		FileFromPath(filepath.Join(t.TempDir(), "missing.pdf")),
	})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Empty(t, client.uploaded)
}

func TestRegistry_UploadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handbook.txt")
	require.NoError(t, os.WriteFile(path, []byte("employee handbook"), 0600))

	d := doc("3", "handbook.txt")
	client := &fakeClient{uploads: []uploadReply{{doc: &d}}}
	r := New(client, Options{})

	_, err := r.Upload(context.Background(), []File{FileFromPath(path)})
	require.NoError(t, err)
	require.Equal(t, []string{"handbook.txt"}, client.uploaded)
	require.Equal(t, []string{"employee handbook"}, client.bodies)
}

// =============================================================================
// DELETE
// =============================================================================

func TestRegistry_Delete(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	require.NoError(t, r.Delete(context.Background(), "1"))
	require.Equal(t, []string{"2"}, ids(r.Documents()))
	require.Equal(t, []string{"1"}, client.deleted)
}

func TestRegistry_DeleteFailureLeavesCache(t *testing.T) {
	client := &fakeClient{deleteErr: errors.New("nope")}
	r := loaded(t, client)

	err := r.Delete(context.Background(), "1")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, "Failed to delete document. Please try again.", reqErr.UserMessage())
	require.Equal(t, []string{"1", "2"}, ids(r.Documents()))
}

func TestRegistry_DeleteAll(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	var notified int
	r.Subscribe(func() { notified++ })

	require.NoError(t, r.DeleteAll(context.Background()))
	require.Empty(t, r.Documents())
	require.True(t, r.Fresh())
	require.Equal(t, 1, notified)
}

func TestRegistry_DeleteAllFailureLeavesList(t *testing.T) {
	client := &fakeClient{resetErr: &backend.APIError{Op: "reset documents", Status: 500}}
	r := loaded(t, client)

	var notified int
	r.Subscribe(func() { notified++ })

	err := r.DeleteAll(context.Background())
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, "Failed to reset knowledge base. Please try again.", reqErr.UserMessage())
	require.Equal(t, []string{"1", "2"}, ids(r.Documents()))
	require.Zero(t, notified)
}

func TestRegistry_Forget(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	var notified int
	r.Subscribe(func() { notified++ })

	r.Forget()
	require.Empty(t, r.Documents())
	require.False(t, r.Fresh())
	require.Equal(t, 1, notified)
	require.Empty(t, client.deleted)
	require.Zero(t, client.resets)
}

// Optimistic mutations stay when a later unrelated call fails.
func TestRegistry_NoRollbackOnLaterFailure(t *testing.T) {
	client := &fakeClient{}
	r := loaded(t, client)

	require.NoError(t, r.Delete(context.Background(), "1"))

	client.resetErr = errors.New("down")
	require.Error(t, r.DeleteAll(context.Background()))
	require.Equal(t, []string{"2"}, ids(r.Documents()))
}

// =============================================================================
// CACHE
// =============================================================================

func TestCache_MergeRules(t *testing.T) {
	c := NewCache(0)
	require.False(t, c.Fresh())

	c.Replace([]model.Document{doc("1", "a"), doc("2", "b"), doc("1", "a-dup")})
	require.Equal(t, []string{"1", "2"}, ids(c.Documents()))
	require.True(t, c.Fresh())

	c.Prepend([]model.Document{doc("3", "c"), doc("2", "b2")})
	require.Equal(t, []string{"3", "2", "1"}, ids(c.Documents()))
	got, _ := c.Get("2")
	require.Equal(t, "b2", got.Filename)

	require.True(t, c.Remove("2"))
	require.False(t, c.Remove("2"))
	require.Equal(t, []string{"3", "1"}, ids(c.Documents()))

	c.Clear()
	require.Zero(t, c.Len())
	require.True(t, c.Fresh())
}

func TestCache_GoesStale(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	c.Replace([]model.Document{doc("1", "a")})
	require.True(t, c.Fresh())

	require.Eventually(t, func() bool { return !c.Fresh() }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, c.Len(), "documents stay visible while stale")

	_, ok := c.LoadedAt()
	require.False(t, ok)
}
