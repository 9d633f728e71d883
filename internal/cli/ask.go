// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot question command and the shared answer printer.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docqa-tui/internal/conversation"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/ui/markdown"
	"github.com/jeranaias/docqa-tui/internal/ui/styles"
)

// instantInterval replaces the reveal delay when output is not live.
const instantInterval = time.Microsecond

// AskResult is the JSON form of `docqa ask`. A failed question has an empty
// Answer and the failure text in Error.
type AskResult struct {
	Success  bool   `json:"success"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Error    string `json:"error,omitempty"`
}

// HandleAsk asks one question. On a terminal the answer is revealed word by
// word; otherwise, or with --render or --json, it is printed once complete.
func HandleAsk(env *Env, args Args) error {
	question := normalizeInput(args.Query)
	if question == "" {
		return ErrMissingArgument("question", "docqa ask \"What does the contract say about renewal?\"")
	}
	if _, err := env.Services.Session.RequireCredential(); err != nil {
		return err
	}

	live := env.Interactive && IsStdoutTTY() && !args.Render && !args.JSON
	if !live {
		env.Services.Reveal.SetInterval(instantInterval)
	}

	conv := env.Services.NewConversation()
	defer conv.Close()

	ctx, cancel := env.Context()
	defer cancel()

	turn, err := askOnce(ctx, conv, question, newAnswerPrinter(env.Stdout, live))
	var qerr *conversation.QuestionError
	if err != nil && !errors.As(err, &qerr) {
		return err
	}

	switch {
	case args.JSON:
		res := AskResult{Success: qerr == nil, Question: question}
		if qerr != nil {
			res.Error = qerr.UserMessage()
		} else {
			res.Answer = turn.Content
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return encErr
		}
	case qerr != nil:
		// Run reports the failure on stderr.
	case args.Render:
		env.Printf("%s\n", renderAnswer(env, turn.Content))
	case !live:
		env.Printf("%s\n", turn.Content)
	}
	return err
}

// askOnce submits question to conv and blocks until conv is idle again. It
// returns the assistant turn that answered it. When the backend failed the
// turn holds the failure text and the error wraps a
// *conversation.QuestionError.
func askOnce(ctx context.Context, conv *conversation.Machine, question string, p *answerPrinter) (model.Turn, error) {
	unsubscribe := conv.Subscribe(p.handle)
	defer unsubscribe()

	if !conv.Submit(question) {
		return model.Turn{}, &ValidationError{
			Field:  "question",
			Value:  question,
			Reason: "a question is already being answered",
		}
	}

	select {
	case <-p.idle:
	case <-ctx.Done():
		return model.Turn{}, ErrCancelled
	}

	turn, ok := lastAssistant(conv.Transcript())
	if !ok {
		return model.Turn{}, NewCommandError("ask", "answer", "no answer received", nil)
	}
	if failure := p.failure(); failure != nil {
		return turn, NewCommandError("ask", "answer", "question failed", failure)
	}
	return turn, nil
}

func lastAssistant(turns []model.Turn) (model.Turn, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].IsAssistant() {
			return turns[i], true
		}
	}
	return model.Turn{}, false
}

func renderAnswer(env *Env, content string) string {
	ui := env.Services.Config.UI
	theme := styles.NewTheme(ui.Theme)
	r := markdown.New(theme.GlamourStyle(), true)
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	out, _ := r.Render(content, width)
	return out
}

// =============================================================================
// ANSWER PRINTER
// =============================================================================

// answerPrinter follows conversation events. In live mode it writes the
// assistant label and each newly revealed part of the answer as it grows.
// Failed questions are recorded, not printed.
type answerPrinter struct {
	w    io.Writer
	live bool

	mu      sync.Mutex
	printed string
	failed  error
	idle    chan struct{}
}

func newAnswerPrinter(w io.Writer, live bool) *answerPrinter {
	return &answerPrinter{w: w, live: live, idle: make(chan struct{}, 1)}
}

// reset prepares the printer for the next question.
func (p *answerPrinter) reset() {
	p.mu.Lock()
	p.printed = ""
	p.failed = nil
	p.mu.Unlock()
	select {
	case <-p.idle:
	default:
	}
}

// failure returns the error of the last failed question, if any.
func (p *answerPrinter) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

func (p *answerPrinter) handle(ev conversation.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case conversation.EventTurnAppended:
		if ev.Err != nil {
			p.failed = ev.Err
			return
		}
		if !p.live || !ev.Turn.IsAssistant() {
			return
		}
		fmt.Fprint(p.w, AssistantLabelStyle.Render(ev.Turn.Role.DisplayName()+":")+" ")
		p.write(ev.Turn.Content)

	case conversation.EventTurnUpdated:
		if p.live {
			p.write(ev.Turn.Content)
		}

	case conversation.EventPhaseChanged:
		if ev.Phase != conversation.PhaseIdle {
			return
		}
		if p.live && p.failed == nil {
			fmt.Fprintln(p.w)
		}
		select {
		case p.idle <- struct{}{}:
		default:
		}
	}
}

// write prints the part of content not yet printed. mu must be held.
func (p *answerPrinter) write(content string) {
	if content == "" {
		return
	}
	if strings.HasPrefix(content, p.printed) {
		fmt.Fprint(p.w, content[len(p.printed):])
	} else {
		fmt.Fprint(p.w, "\n"+content)
	}
	p.printed = content
}
