// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - line-oriented question loop.
//
// Slash commands:
//
//	/clear    empty the transcript
//	/history  print the transcript
//	/help     list commands
//	/exit     leave (also exit, quit, Ctrl+D)
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/docqa-tui/internal/conversation"
)

const chatPrompt = "docqa> "

var chatCommands = []string{"/clear", "/history", "/help", "/exit"}

// chatCommandNames are the lines the loop handles itself. Anything else,
// including other text starting with "/", is asked as a question.
var chatCommandNames = map[string]bool{
	"/clear": true, "/history": true, "/help": true,
	"/exit": true, "/quit": true, "exit": true, "quit": true,
}

func isChatCommand(line string) bool {
	return chatCommandNames[strings.ToLower(line)]
}

// lineReader yields one line of user input per call.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// HandleChat runs the question loop until /exit or end of input.
func HandleChat(env *Env, args Args) error {
	if _, err := env.Services.Session.RequireCredential(); err != nil {
		return err
	}

	live := env.Interactive && IsStdoutTTY()
	if !live {
		env.Services.Reveal.SetInterval(instantInterval)
	}

	var input lineReader
	if env.Interactive {
		input = newLinerReader()
	} else {
		input = &plainReader{env: env}
	}
	defer input.Close()

	conv := env.Services.NewConversation()
	defer conv.Close()

	if !args.Quiet && live {
		env.Printf("%s\n", TitleStyle.Render("docqa chat"))
		env.Printf("%s\n\n", DimStyle.Render("Type a question, /help for commands, /exit to leave."))
	}

	return chatLoop(env, conv, input, newAnswerPrinter(env.Stdout, live), live)
}

func chatLoop(env *Env, conv *conversation.Machine, input lineReader, printer *answerPrinter, live bool) error {
	for {
		line, err := input.Prompt(chatPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, liner.ErrPromptAborted) {
				return ErrCancelled
			}
			return WrapError(err, "read input")
		}

		line = normalizeInput(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		if isChatCommand(line) {
			if done := chatCommand(env, conv, line); done {
				return nil
			}
			continue
		}

		printer.reset()
		ctx, cancel := env.Context()
		turn, err := askOnce(ctx, conv, line, printer)
		cancel()
		var qerr *conversation.QuestionError
		if errors.As(err, &qerr) {
			displayError(env.Stderr, err, false)
			continue
		}
		if err != nil {
			return err
		}
		if !live {
			env.Printf("%s\n", turn.Content)
		} else {
			env.Printf("\n")
		}
	}
}

// chatCommand runs a slash command and reports whether the loop should end.
func chatCommand(env *Env, conv *conversation.Machine, line string) bool {
	switch strings.ToLower(line) {
	case "/exit", "/quit", "exit", "quit":
		return true

	case "/clear":
		if conv.Clear() {
			env.Printf("%s\n", DimStyle.Render("Transcript cleared."))
		}

	case "/history":
		turns := conv.Transcript()
		if len(turns) == 0 {
			env.Printf("%s\n", DimStyle.Render("No messages yet."))
			return false
		}
		title := cases.Title(language.English)
		for _, t := range turns {
			label := title.String(t.Role.String()) + ":"
			if t.IsUser() {
				label = UserLabelStyle.Render(label)
			} else {
				label = AssistantLabelStyle.Render(label)
			}
			env.Printf("%s %s\n", label, t.Content)
		}

	case "/help":
		env.Printf("%s\n", TitleStyle.Render("Commands"))
		env.Printf("  %s  empty the transcript\n", PromptStyle.Render("/clear  "))
		env.Printf("  %s  print the transcript\n", PromptStyle.Render("/history"))
		env.Printf("  %s  show this list\n", PromptStyle.Render("/help   "))
		env.Printf("  %s  leave\n", PromptStyle.Render("/exit   "))
	}
	return false
}

// =============================================================================
// INPUT
// =============================================================================

type linerReader struct {
	*liner.State
}

func newLinerReader() *linerReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetCompleter(func(line string) []string {
		if !strings.HasPrefix(line, "/") {
			return nil
		}
		var out []string
		for _, c := range chatCommands {
			if strings.HasPrefix(c, line) {
				out = append(out, c)
			}
		}
		return out
	})
	return &linerReader{State: st}
}

// plainReader reads piped input without prompting.
type plainReader struct {
	env *Env
}

func (r *plainReader) Prompt(string) (string, error) {
	line, err := r.env.ReadLine("")
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	return line, nil
}

func (r *plainReader) AppendHistory(string) {}

func (r *plainReader) Close() error { return nil }
