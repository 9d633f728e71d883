// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal turns a complete answer into a word-by-word display.
//
// The backend returns the whole answer at once. The Engine replays it one
// word per tick so the transcript grows as if it were being generated. Each
// reveal has a session id; a tick whose id is no longer active is dropped.
package reveal

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/docqa-tui/internal/logging"
)

const (
	// DefaultInterval is the delay between two words.
	DefaultInterval = 30 * time.Millisecond

	// NoAnswer is revealed when the answer is empty.
	NoAnswer = "No answer received"
)

// Words splits answer on spaces and drops tokens that are empty or only
// whitespace. Newlines inside a token are kept. An answer with no words
// yields the single token NoAnswer.
func Words(answer string) []string {
	parts := strings.Split(answer, " ")
	words := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			words = append(words, p)
		}
	}
	if len(words) == 0 {
		return []string{NoAnswer}
	}
	return words
}

// =============================================================================
// SCHEDULING
// =============================================================================

// Timer is a pending tick. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Target receives the growing content of one reveal.
type Target interface {
	// Reveal is called once per word with the full content so far.
	Reveal(id uuid.UUID, content string)
	// Done is called exactly once after the last word.
	Done(id uuid.UUID)
}

// Options configures an Engine.
type Options struct {
	Interval  time.Duration
	Scheduler Scheduler
	Logger    *zap.Logger
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine reveals one answer at a time. Starting a new reveal cancels the
// previous one.
type Engine struct {
	scheduler Scheduler
	logger    *zap.Logger

	mu       sync.Mutex
	interval time.Duration
	active   uuid.UUID
	target   Target
	words    []string
	next     int
	content  strings.Builder
	timer    Timer

	// deliverMu keeps deliveries of one reveal in tick order.
	deliverMu sync.Mutex
}

// New creates an Engine. Zero options select the 30ms clock-driven default.
func New(opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clockScheduler{}
	}
	return &Engine{
		scheduler: opts.Scheduler,
		logger:    logging.Module(opts.Logger, "reveal"),
		interval:  opts.Interval,
	}
}

// Interval returns the delay used for reveals started from now on.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

// SetInterval changes the delay for subsequent ticks. Non-positive values
// are ignored.
func (e *Engine) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	e.interval = d
	e.mu.Unlock()
}

// Start begins revealing answer into target and returns the session id.
// Any reveal still in progress is cancelled without a Done call.
func (e *Engine) Start(answer string, target Target) uuid.UUID {
	id := uuid.New()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.active = id
	e.target = target
	e.words = Words(answer)
	e.next = 0
	e.content.Reset()
	e.timer = e.scheduler.AfterFunc(e.interval, func() { e.tick(id) })

	e.logger.Debug("reveal started",
		zap.String("id", id.String()),
		zap.Int("words", len(e.words)),
	)
	return id
}

// Stop cancels the active reveal, if any. Done is not called.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

// Active returns the id of the reveal in progress.
func (e *Engine) Active() (uuid.UUID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, e.active != uuid.Nil
}

func (e *Engine) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.active != uuid.Nil {
		e.logger.Debug("reveal cancelled", zap.String("id", e.active.String()))
	}
	e.active = uuid.Nil
	e.target = nil
	e.words = nil
}

// tick appends one word for session id. Ticks of a cancelled session are
// dropped.
func (e *Engine) tick(id uuid.UUID) {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()

	e.mu.Lock()
	if id != e.active {
		e.mu.Unlock()
		return
	}
	if e.next > 0 {
		e.content.WriteByte(' ')
	}
	e.content.WriteString(e.words[e.next])
	e.next++
	content := e.content.String()
	target := e.target
	last := e.next == len(e.words)
	if last {
		e.active = uuid.Nil
		e.target = nil
		e.words = nil
		e.timer = nil
	} else {
		e.timer = e.scheduler.AfterFunc(e.interval, func() { e.tick(id) })
	}
	e.mu.Unlock()

	target.Reveal(id, content)
	if last {
		e.logger.Debug("reveal finished", zap.String("id", id.String()))
		target.Done(id)
	}
}
