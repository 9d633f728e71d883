// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docqa-tui/internal/app"
	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/config"
	"github.com/jeranaias/docqa-tui/internal/conversation"
	"github.com/jeranaias/docqa-tui/internal/documents"
	"github.com/jeranaias/docqa-tui/internal/session"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		cmd   Command
		check func(t *testing.T, a Args)
	}{
		{
			name: "no args starts the TUI",
			args: nil,
			cmd:  CmdTUI,
		},
		{
			name: "global flags before the command",
			args: []string{"--url", "http://api:8000", "--interval=50", "--json", "status", "--check"},
			cmd:  CmdStatus,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "http://api:8000", a.URL)
				require.Equal(t, 50, a.IntervalMs)
				require.True(t, a.JSON)
				require.True(t, a.Check)
			},
		},
		{
			name: "login with positional email",
			args: []string{"login", "ann@example.com"},
			cmd:  CmdLogin,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "ann@example.com", a.User)
			},
		},
		{
			name: "login with --user=",
			args: []string{"login", "--user=bob@example.com"},
			cmd:  CmdLogin,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "bob@example.com", a.User)
			},
		},
		{
			name: "signup",
			args: []string{"signup", "--email", "c@example.com", "--name", "Cee Dee"},
			cmd:  CmdSignup,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "c@example.com", a.Email)
				require.Equal(t, "Cee Dee", a.Name)
			},
		},
		{
			name: "docs defaults to list",
			args: []string{"docs"},
			cmd:  CmdDocs,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "list", a.Subcommand)
				require.Empty(t, a.Raw)
			},
		},
		{
			name: "docs delete with --yes anywhere",
			args: []string{"docs", "--yes", "delete", "42"},
			cmd:  CmdDocs,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "delete", a.Subcommand)
				require.True(t, a.Yes)
				require.Equal(t, []string{"42"}, a.Raw)
			},
		},
		{
			name: "docs upload keeps file order",
			args: []string{"docs", "upload", "a.pdf", "b.txt"},
			cmd:  CmdDocs,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "upload", a.Subcommand)
				require.Equal(t, []string{"a.pdf", "b.txt"}, a.Raw)
			},
		},
		{
			name: "ask joins words and reads --top-k",
			args: []string{"ask", "--top-k", "5", "what", "is", "this?"},
			cmd:  CmdAsk,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "what is this?", a.Query)
				require.Equal(t, 5, a.TopK)
			},
		},
		{
			name: "ask after -- keeps dashes",
			args: []string{"ask", "--render", "--", "-v", "flag?"},
			cmd:  CmdAsk,
			check: func(t *testing.T, a Args) {
				require.True(t, a.Render)
				require.Equal(t, "-v flag?", a.Query)
			},
		},
		{
			name: "invalid top-k is ignored",
			args: []string{"ask", "--top-k=-2", "hi"},
			cmd:  CmdAsk,
			check: func(t *testing.T, a Args) {
				require.Zero(t, a.TopK)
			},
		},
		{
			name: "unknown command becomes help with the name",
			args: []string{"dcos"},
			cmd:  CmdHelp,
			check: func(t *testing.T, a Args) {
				require.Equal(t, []string{"dcos"}, a.Raw)
			},
		},
		{
			name: "config init --yes",
			args: []string{"config", "--yes", "init"},
			cmd:  CmdConfig,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "init", a.Subcommand)
				require.True(t, a.Yes)
			},
		},
		{
			name: "config path",
			args: []string{"config", "PATH"},
			cmd:  CmdConfig,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "path", a.Subcommand)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.args)
			require.Equal(t, tt.cmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	ApplyFlags(cfg, Args{URL: "http://x", IntervalMs: 80, Ephemeral: true, TopK: 7})

	require.Equal(t, "http://x", cfg.Backend.URL)
	require.Equal(t, 80, cfg.Reveal.IntervalMs)
	require.True(t, cfg.Session.Ephemeral)
	require.Equal(t, 7, cfg.Chat.TopK)
}

func TestSuggestCommand(t *testing.T) {
	require.Equal(t, "docs", SuggestCommand("dcos"))
	require.Equal(t, "login", SuggestCommand("lgoin"))
	require.Equal(t, "", SuggestCommand("status"))
	require.Equal(t, "", SuggestCommand("x"))
	require.Equal(t, "", SuggestCommand("completely-different"))
	require.Equal(t, "upload", suggest("uplaod", docsSubcommands))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"cancelled", ErrCancelled, ExitCancelled},
		{"context cancelled", context.Canceled, ExitCancelled},
		{"deadline", fmt.Errorf("ask: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"not logged in", session.ErrNotLoggedIn, ExitAuthError},
		{"auth rejected", &session.AuthError{Op: "login", Message: "Invalid credentials"}, ExitAuthError},
		{"unauthorized", &backend.APIError{Status: http.StatusUnauthorized}, ExitAuthError},
		{"cli validation", ErrMissingArgument("ID", "docqa docs delete 42"), ExitUsageError},
		{"documents validation", &documents.ValidationError{Message: documents.NoFilesMessage}, ExitUsageError},
		{"config", config.ValidateErrors{{Field: "backend.url", Message: "required"}}, ExitConfigError},
		{"not found", &backend.APIError{Status: http.StatusNotFound}, ExitNotFoundError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	displayError(&buf, &documents.RequestError{Op: "delete", Message: documents.DeleteFailedMessage}, true)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, documents.DeleteFailedMessage, out["error"])
	require.Equal(t, "request_error", out["error_type"])
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "Invalid credentials",
		UserMessage(&session.AuthError{Op: "login", Message: "Invalid credentials"}))
	require.Contains(t, UserMessage(session.ErrNotLoggedIn), "docqa login")
}

// =============================================================================
// CONFIRMATION
// =============================================================================

func TestIsAffirmative(t *testing.T) {
	for _, s := range []string{"y", "Y", "yes", " YES "} {
		require.True(t, IsAffirmative(s), s)
	}
	for _, s := range []string{"", "n", "no", "yep", "sure"} {
		require.False(t, IsAffirmative(s), s)
	}
}

func TestRequireConfirmation(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		interactive bool
		opts        ConfirmationOptions
		check       func(t *testing.T, err error)
	}{
		{
			name: "yes flag skips the prompt",
			opts: ConfirmationOptions{Yes: true},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:        "json mode needs --yes",
			interactive: true,
			opts:        ConfirmationOptions{JSONMode: true},
			check: func(t *testing.T, err error) {
				var v *ValidationError
				require.ErrorAs(t, err, &v)
			},
		},
		{
			name: "non-interactive needs --yes",
			check: func(t *testing.T, err error) {
				var tty *TTYRequiredError
				require.ErrorAs(t, err, &tty)
			},
		},
		{
			name:        "answer yes",
			input:       "yes\n",
			interactive: true,
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:        "answer no",
			input:       "n\n",
			interactive: true,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrCancelled)
			},
		},
		{
			name:        "end of input",
			interactive: true,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrCancelled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			env := &Env{Stdin: strings.NewReader(tt.input), Stdout: &out, Interactive: tt.interactive}
			tt.check(t, RequireConfirmation(env, "Delete?", tt.opts))
		})
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

// fakeAPI is an in-memory backend for command tests.
type fakeAPI struct {
	mu       sync.Mutex
	docs     []map[string]any
	deleted  []string
	resets   int
	uploaded []string
	answer   string

	// queryStatus, when set, fails /rag/query with queryBody.
	queryStatus int
	queryBody   string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{
		docs: []map[string]any{
			{"id": 1, "filename": "handbook.pdf", "created_at": "2024-05-01T09:30:00"},
			{"id": "a2", "filename": "notes.txt"},
		},
		answer: "Refunds take five business days.",
	}

	authed := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		api.mu.Lock()
		defer api.mu.Unlock()
		_ = json.NewEncoder(w).Encode(api.docs)
	})
	mux.HandleFunc("POST /documents/upload", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		api.mu.Lock()
		api.uploaded = append(api.uploaded, header.Filename)
		id := len(api.uploaded) + 100
		api.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"document": map[string]any{"id": id, "filename": header.Filename},
		})
	})
	mux.HandleFunc("DELETE /documents/reset/all", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		api.mu.Lock()
		api.resets++
		api.mu.Unlock()
	})
	mux.HandleFunc("DELETE /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		api.mu.Lock()
		api.deleted = append(api.deleted, r.PathValue("id"))
		api.mu.Unlock()
	})
	mux.HandleFunc("POST /rag/query", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		api.mu.Lock()
		status, body := api.queryStatus, api.queryBody
		api.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": api.answer})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

// newTestEnv wires real services against srv with an in-memory credential.
func newTestEnv(t *testing.T, srv *httptest.Server, stdin string, loggedIn bool) (*Env, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.URL = srv.URL
	cfg.Backend.RateLimitRPS = 0

	svc, err := app.New(cfg, nil, app.WithPersister(session.NewMemoryStore()))
	require.NoError(t, err)
	if loggedIn {
		require.NoError(t, svc.Session.Login(t.Context(), "ann@example.com", "pw"))
	}

	var out bytes.Buffer
	return &Env{
		Services: svc,
		Stdin:    strings.NewReader(stdin),
		Stdout:   &out,
		Stderr:   &out,
	}, &out
}

func TestHandleDocs_ListJSON(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "", true)

	require.NoError(t, HandleDocs(env, Args{Subcommand: "list", JSON: true}))

	var docs []DocumentJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "1", docs[0].ID)
	require.Equal(t, "handbook.pdf", docs[0].Filename)
	require.NotEmpty(t, docs[0].CreatedAt)
	require.Equal(t, "a2", docs[1].ID)
	require.Empty(t, docs[1].CreatedAt)
}

func TestHandleDocs_ListText(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "", true)

	require.NoError(t, HandleDocs(env, Args{Subcommand: "list"}))
	require.Contains(t, out.String(), "handbook.pdf")
	require.Contains(t, out.String(), "notes.txt")
	require.Contains(t, out.String(), "FILENAME")
}

func TestHandleDocs_LoggedOut(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, _ := newTestEnv(t, srv, "", false)

	err := HandleDocs(env, Args{Subcommand: "list"})
	require.Error(t, err)
	require.Equal(t, documents.LoadFailedMessage, UserMessage(err))
}

func TestHandleDocs_Upload(t *testing.T) {
	api, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "", true)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("%PDF"), 0o600))

	require.NoError(t, HandleDocs(env, Args{Subcommand: "upload", Raw: []string{a, b}}))
	require.Equal(t, []string{"a.txt", "b.pdf"}, api.uploaded)
	require.Contains(t, out.String(), "Successfully uploaded 2 file(s)!")
}

func TestHandleDocs_UploadRejectsExtension(t *testing.T) {
	api, srv := newFakeAPI(t)
	env, _ := newTestEnv(t, srv, "", true)

	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	err := HandleDocs(env, Args{Subcommand: "upload", Raw: []string{path}})
	require.Error(t, err)
	require.Equal(t, ExitUsageError, GetExitCode(err))
	require.Empty(t, api.uploaded)
}

func TestHandleDocs_UploadNoFiles(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, _ := newTestEnv(t, srv, "", true)

	err := HandleDocs(env, Args{Subcommand: "upload"})
	require.Error(t, err)
	require.Equal(t, documents.NoFilesMessage, UserMessage(err))
}

func TestHandleDocs_Delete(t *testing.T) {
	t.Run("requires --yes without a terminal", func(t *testing.T) {
		api, srv := newFakeAPI(t)
		env, _ := newTestEnv(t, srv, "", true)

		err := HandleDocs(env, Args{Subcommand: "delete", Raw: []string{"1"}})
		var tty *TTYRequiredError
		require.ErrorAs(t, err, &tty)
		require.Empty(t, api.deleted)
	})

	t.Run("deletes with --yes", func(t *testing.T) {
		api, srv := newFakeAPI(t)
		env, out := newTestEnv(t, srv, "", true)

		require.NoError(t, HandleDocs(env, Args{Subcommand: "delete", Raw: []string{"1"}, Yes: true}))
		require.Equal(t, []string{"1"}, api.deleted)
		require.Contains(t, out.String(), "Deleted document 1")
	})

	t.Run("declined at the prompt", func(t *testing.T) {
		api, srv := newFakeAPI(t)
		env, out := newTestEnv(t, srv, "n\n", true)
		env.Interactive = true

		err := HandleDocs(env, Args{Subcommand: "delete", Raw: []string{"1"}})
		require.ErrorIs(t, err, ErrCancelled)
		require.Empty(t, api.deleted)
		require.Contains(t, out.String(), documents.ConfirmDeletePrompt)
	})

	t.Run("missing id", func(t *testing.T) {
		_, srv := newFakeAPI(t)
		env, _ := newTestEnv(t, srv, "", true)

		err := HandleDocs(env, Args{Subcommand: "delete", Yes: true})
		require.Equal(t, ExitUsageError, GetExitCode(err))
	})
}

func TestHandleDocs_Reset(t *testing.T) {
	api, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "y\n", true)
	env.Interactive = true

	require.NoError(t, HandleDocs(env, Args{Subcommand: "reset"}))
	require.Equal(t, 1, api.resets)
	require.Contains(t, out.String(), "Knowledge base reset")
}

func TestHandleDocs_UnknownSubcommand(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, _ := newTestEnv(t, srv, "", true)

	err := HandleDocs(env, Args{Subcommand: "lsit"})
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	require.Contains(t, v.Reason, "'list'")
}

func TestHandleAsk(t *testing.T) {
	t.Run("prints the answer", func(t *testing.T) {
		_, srv := newFakeAPI(t)
		env, out := newTestEnv(t, srv, "", true)

		require.NoError(t, HandleAsk(env, Args{Query: "How long do refunds take?"}))
		require.Equal(t, "Refunds take five business days.\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		_, srv := newFakeAPI(t)
		env, out := newTestEnv(t, srv, "", true)

		require.NoError(t, HandleAsk(env, Args{Query: "  refunds?  ", JSON: true}))
		var res AskResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		require.True(t, res.Success)
		require.Empty(t, res.Error)
		require.Equal(t, "refunds?", res.Question)
		require.Equal(t, "Refunds take five business days.", res.Answer)
	})

	t.Run("empty question", func(t *testing.T) {
		_, srv := newFakeAPI(t)
		env, _ := newTestEnv(t, srv, "", true)

		err := HandleAsk(env, Args{Query: "   "})
		require.Equal(t, ExitUsageError, GetExitCode(err))
	})

	t.Run("logged out", func(t *testing.T) {
		_, srv := newFakeAPI(t)
		env, _ := newTestEnv(t, srv, "", false)

		err := HandleAsk(env, Args{Query: "anything"})
		require.ErrorIs(t, err, session.ErrNotLoggedIn)
		require.Equal(t, ExitAuthError, GetExitCode(err))
	})
}

func TestHandleAsk_BackendFailure(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantExit  int
		wantError string
	}{
		{
			name:      "server error without detail",
			status:    http.StatusInternalServerError,
			body:      "boom",
			wantExit:  ExitGeneralError,
			wantError: conversation.FailureMessage,
		},
		{
			name:      "rejected credential",
			status:    http.StatusUnauthorized,
			body:      `{"detail":"Token expired"}`,
			wantExit:  ExitAuthError,
			wantError: "Token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("json", func(t *testing.T) {
				api, srv := newFakeAPI(t)
				api.queryStatus, api.queryBody = tt.status, tt.body
				env, out := newTestEnv(t, srv, "", true)

				err := HandleAsk(env, Args{Query: "q?", JSON: true})
				require.Error(t, err)
				require.Equal(t, tt.wantExit, GetExitCode(err))
				require.Equal(t, tt.wantError, UserMessage(err))

				var qerr *conversation.QuestionError
				require.ErrorAs(t, err, &qerr)

				var res AskResult
				require.NoError(t, json.Unmarshal(out.Bytes(), &res))
				require.False(t, res.Success)
				require.Equal(t, "q?", res.Question)
				require.Empty(t, res.Answer)
				require.Equal(t, tt.wantError, res.Error)
			})

			t.Run("text", func(t *testing.T) {
				api, srv := newFakeAPI(t)
				api.queryStatus, api.queryBody = tt.status, tt.body
				env, out := newTestEnv(t, srv, "", true)

				err := HandleAsk(env, Args{Query: "q?"})
				require.Equal(t, tt.wantExit, GetExitCode(err))
				require.Empty(t, out.String(), "failure text is not printed as an answer")
			})
		})
	}
}

func TestHandleChat_Piped(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "first question\n/history\n/bogus\n/clear\n/history\nexit\nnever asked\n", true)

	require.NoError(t, HandleChat(env, Args{}))

	got := out.String()
	require.Contains(t, got, "User: first question")
	require.Contains(t, got, "Assistant: Refunds take five business days.")
	require.Equal(t, 3, strings.Count(got, "Refunds take five business days."),
		"first answer, history line, and the answer to /bogus")
	require.NotContains(t, got, "Unknown command")
	require.Contains(t, got, "Transcript cleared.")
	require.Contains(t, got, "No messages yet.")
	require.NotContains(t, got, "never asked")
}

func TestHandleChat_FailureKeepsLooping(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.queryStatus, api.queryBody = http.StatusBadRequest, `{"detail":"No documents uploaded"}`
	env, out := newTestEnv(t, srv, "first?\nsecond?\n/history\n", true)

	require.NoError(t, HandleChat(env, Args{}))

	got := out.String()
	require.Equal(t, 2, strings.Count(got, "[ERROR]"))
	require.Equal(t, 4, strings.Count(got, "No documents uploaded"), "two errors, two history lines")
	require.Contains(t, got, "User: second?")
}

func TestHandleChat_EndOfInput(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, _ := newTestEnv(t, srv, "", true)

	require.NoError(t, HandleChat(env, Args{}))
}

func TestHandleStatus_JSON(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "", true)

	require.NoError(t, HandleStatus(env, Args{JSON: true}))

	var data StatusData
	require.NoError(t, json.Unmarshal(out.Bytes(), &data))
	require.Equal(t, srv.URL, data.BackendURL)
	require.True(t, data.LoggedIn)
	require.Equal(t, 3, data.TopK)
}

func TestHandleStatus_Check(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "", false)

	err := HandleStatus(env, Args{Check: true})
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
	require.Empty(t, out.String())
}

func TestHandleLogin_Piped(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "secret\n", false)

	require.NoError(t, HandleLogin(env, Args{User: " ann@example.com "}))
	require.True(t, env.Services.Session.LoggedIn())
	require.Contains(t, out.String(), "Logged in as ann@example.com")
}

func TestHandleLogin_MissingUser(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, _ := newTestEnv(t, srv, "", false)

	err := HandleLogin(env, Args{})
	require.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleLogout(t *testing.T) {
	_, srv := newFakeAPI(t)
	env, out := newTestEnv(t, srv, "", true)

	require.NoError(t, HandleLogout(env, Args{}))
	require.False(t, env.Services.Session.LoggedIn())
	require.Contains(t, out.String(), "Logged out")
}

func TestHandleConfig_Path(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DOCQA_HOME", home)

	var out bytes.Buffer
	require.NoError(t, HandleConfig(Args{Subcommand: "path"}, &out))
	require.Equal(t, filepath.Join(home, "config.toml"), strings.TrimSpace(out.String()))

	err := HandleConfig(Args{Subcommand: "edit"}, &out)
	require.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleConfig_Init(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DOCQA_HOME", home)
	path := filepath.Join(home, "config.toml")

	var out bytes.Buffer
	require.NoError(t, HandleConfig(Args{Subcommand: "init"}, &out))
	require.FileExists(t, path)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, config.Default().Backend.URL, cfg.Backend.URL)

	err = HandleConfig(Args{Subcommand: "init"}, &out)
	require.Equal(t, ExitUsageError, GetExitCode(err))
	require.NoError(t, HandleConfig(Args{Subcommand: "init", Yes: true}, &out))
}

func TestNormalizeInput(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	require.Equal(t, "caf\u00e9", normalizeInput("  cafe\u0301 \n"))
}
