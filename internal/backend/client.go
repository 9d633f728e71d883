// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/model"
)

// Configuration constants for the service API.
const (
	// DefaultBaseURL is where the service listens in a local setup.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultTopK is the number of passages retrieved per question.
	DefaultTopK = 3

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024
)

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// QueryRequest is the body of POST /rag/query.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// QueryResponse is the answer to a question. Answer is empty when the
// service returned none.
type QueryResponse struct {
	Answer string `json:"answer"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type uploadResponse struct {
	Document *model.Document `json:"document"`
}

// CredentialFunc returns the current bearer credential. It is called while
// building every authenticated request.
type CredentialFunc func() (string, bool)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the document-question-answering service.
// It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	credentials CredentialFunc
	logger      *zap.Logger
	userAgent   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit paces outgoing requests to rps with the given burst.
// rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCredentials sets the credential source for authenticated requests.
func WithCredentials(fn CredentialFunc) Option {
	return func(c *Client) {
		c.credentials = fn
	}
}

// WithLogger sets the logger. Request logs never include headers or bodies.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Module(l, "backend")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Module(nil, "backend"),
		userAgent:  "docqa/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for an access token.
// The request is form-encoded and carries no Authorization header.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), false)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, "login")
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse login response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", ErrMissingToken
	}
	return resp.AccessToken, nil
}

// Signup registers a new account. It does not log in.
func (c *Client) Signup(ctx context.Context, profile model.Profile) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/users/signup", profile, false)
	if err != nil {
		return err
	}
	_, err = c.do(req, "signup")
	return err
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// ListDocuments returns the user's documents. A null body is an empty list.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/documents", nil, true)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, "list documents")
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse document list: %w", err)
		}
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// UploadDocument uploads one file as multipart field "file".
// A 2xx response without a "document" object returns (nil, nil).
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*model.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/documents/upload", &buf, true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(req, "upload document")
	if err != nil {
		return nil, err
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Warn("upload response was not JSON", zap.String("file", filename))
		return nil, nil
	}
	return resp.Document, nil
}

// DeleteDocument deletes one document by id.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, true)
	if err != nil {
		return err
	}
	_, err = c.do(req, "delete document")
	return err
}

// ResetDocuments deletes every document of the current user.
func (c *Client) ResetDocuments(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/documents/reset/all", nil, true)
	if err != nil {
		return err
	}
	_, err = c.do(req, "reset documents")
	return err
}

// =============================================================================
// QUERY
// =============================================================================

// Query asks one question and returns the complete answer.
func (c *Client) Query(ctx context.Context, q QueryRequest) (*QueryResponse, error) {
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/rag/query", q, true)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, "query")
	if err != nil {
		return nil, err
	}

	var resp QueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse answer: %w", err)
	}
	return &resp, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any, auth bool) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data), auth)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// newRequest builds a request and, when auth is set, attaches the credential
// that is current at this moment.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, auth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if auth && c.credentials != nil {
		if token, ok := c.credentials(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do sends req and returns the body of a 2xx response.
// Non-2xx responses become *APIError.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	c.logRequest(req)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	c.logResponse(req, resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Op:     op,
			Status: resp.StatusCode,
			Detail: parseDetail(body),
		}
	}
	return body, nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}

// logRequest logs method and path only; headers carry the credential.
func (c *Client) logRequest(req *http.Request) {
	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Bool("authorized", req.Header.Get("Authorization") != ""),
	)
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, d time.Duration) {
	c.logger.Info("api response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", d),
	)
}
