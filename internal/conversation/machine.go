// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/docqa-tui/internal/backend"
	"github.com/jeranaias/docqa-tui/internal/logging"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/reveal"
)

// FailureMessage is shown when a question fails without a backend detail.
const FailureMessage = "Sorry, I encountered an error. Please try again."

// QuestionError is a question the backend did not answer. Message is the
// text of the assistant turn that reported it.
type QuestionError struct {
	Question string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *QuestionError) Error() string {
	return fmt.Sprintf("question failed: %s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *QuestionError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the user.
func (e *QuestionError) UserMessage() string {
	return e.Message
}

// =============================================================================
// PHASE
// =============================================================================

// Phase is the request lifecycle stage. Input is accepted only when Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseRevealing
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseRevealing:
		return "revealing"
	default:
		return "unknown"
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies what changed.
type EventKind int

const (
	// EventTurnAppended: Turn was added at Index.
	EventTurnAppended EventKind = iota
	// EventTurnUpdated: the revealing turn at Index grew to Turn.
	EventTurnUpdated
	// EventPhaseChanged: the machine moved to Phase.
	EventPhaseChanged
	// EventCleared: the transcript was emptied.
	EventCleared
)

// Event describes one transcript or phase mutation.
type Event struct {
	Kind  EventKind
	Index int
	Turn  model.Turn
	Phase Phase
	// Err is set, as a *QuestionError, on the assistant turn appended for a
	// failed question.
	Err error
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Dispatcher sends one question and returns the complete answer.
// *backend.Client satisfies it.
type Dispatcher interface {
	Query(ctx context.Context, q backend.QueryRequest) (*backend.QueryResponse, error)
}

// Revealer replays an answer into a target. *reveal.Engine satisfies it.
type Revealer interface {
	Start(answer string, target reveal.Target) uuid.UUID
	Stop()
}

// Options configures a Machine.
type Options struct {
	// TopK is sent with every question. Zero means backend.DefaultTopK.
	TopK int
	// Timeout bounds each question. Zero leaves it to the HTTP client.
	Timeout time.Duration
	Logger  *zap.Logger
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine owns the transcript and the Idle -> Sending -> Revealing -> Idle
// lifecycle. Only one question is in flight at a time.
//
// Listeners run outside the state lock, in mutation order, and must not call
// Submit, Clear or Close synchronously.
type Machine struct {
	dispatcher Dispatcher
	revealer   Revealer
	topK       int
	timeout    time.Duration
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	transcript model.Transcript
	phase      Phase
	gen        uint64
	revealID   uuid.UUID
	closed     bool
	listeners  map[int]func(Event)
	nextID     int

	notifyMu sync.Mutex
}

// New creates an idle Machine with an empty transcript.
func New(dispatcher Dispatcher, revealer Revealer, opts Options) *Machine {
	if opts.TopK <= 0 {
		opts.TopK = backend.DefaultTopK
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		dispatcher: dispatcher,
		revealer:   revealer,
		topK:       opts.TopK,
		timeout:    opts.Timeout,
		logger:     logging.Module(opts.Logger, "conversation"),
		ctx:        ctx,
		cancel:     cancel,
		listeners:  make(map[int]func(Event)),
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Transcript returns a snapshot of the turns.
func (m *Machine) Transcript() []model.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.Turns()
}

// Revealing returns the index of the turn being revealed, if any.
func (m *Machine) Revealing() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.Revealing()
}

// Subscribe registers fn for every mutation and returns an unsubscribe func.
func (m *Machine) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Submit asks question. It reports whether the question was accepted; an
// empty question or a phase other than Idle is a no-op. The user turn is in
// the transcript before Submit returns.
func (m *Machine) Submit(question string) bool {
	q := strings.TrimSpace(question)
	if q == "" {
		return false
	}

	m.mu.Lock()
	if m.closed || m.phase != PhaseIdle {
		m.mu.Unlock()
		return false
	}

	turn := model.NewUserTurn(q)
	idx := m.transcript.Append(turn)
	m.phase = PhaseSending
	m.wg.Add(1)

	m.commit(
		Event{Kind: EventTurnAppended, Index: idx, Turn: turn, Phase: PhaseSending},
		Event{Kind: EventPhaseChanged, Index: -1, Phase: PhaseSending},
	)

	go m.dispatch(q)
	return true
}

// Clear empties the transcript. It is refused unless Idle.
func (m *Machine) Clear() bool {
	m.mu.Lock()
	if m.closed || m.phase != PhaseIdle {
		m.mu.Unlock()
		return false
	}
	m.transcript.Reset()
	m.commit(Event{Kind: EventCleared, Index: -1, Phase: PhaseIdle})
	return true
}

// Close cancels an in-flight question, stops any reveal and waits for the
// request goroutine. The machine accepts nothing afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.gen++
	m.cancel()
	m.revealer.Stop()
	if idx, ok := m.transcript.Revealing(); ok {
		m.transcript.EndReveal(idx)
	}
	changed := m.phase != PhaseIdle
	m.phase = PhaseIdle
	if changed {
		m.commit(Event{Kind: EventPhaseChanged, Index: -1, Phase: PhaseIdle})
	} else {
		m.mu.Unlock()
	}

	m.wg.Wait()
}

// dispatch runs the request for question and applies its outcome.
func (m *Machine) dispatch(question string) {
	defer m.wg.Done()

	ctx := m.ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := m.dispatcher.Query(ctx, backend.QueryRequest{Question: question, TopK: m.topK})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	if err != nil {
		msg := FailureMessage
		if detail, ok := backend.Detail(err); ok {
			msg = detail
		}
		m.logger.Warn("question failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))

		turn := model.NewAssistantTurn(msg)
		idx := m.transcript.Append(turn)
		m.phase = PhaseIdle
		qerr := &QuestionError{Question: question, Message: msg, Err: err}
		m.commit(
			Event{Kind: EventTurnAppended, Index: idx, Turn: turn, Phase: PhaseIdle, Err: qerr},
			Event{Kind: EventPhaseChanged, Index: -1, Phase: PhaseIdle},
		)
		return
	}

	answer := ""
	if resp != nil {
		answer = resp.Answer
	}
	m.logger.Info("answer received",
		zap.Int("chars", len(answer)),
		zap.Duration("elapsed", time.Since(start)),
	)

	idx := m.transcript.BeginReveal()
	m.phase = PhaseRevealing
	m.gen++
	m.revealID = m.revealer.Start(answer, &revealTurn{m: m, index: idx, gen: m.gen})
	m.commit(
		Event{Kind: EventTurnAppended, Index: idx, Turn: model.NewAssistantTurn(""), Phase: PhaseRevealing},
		Event{Kind: EventPhaseChanged, Index: -1, Phase: PhaseRevealing},
	)
}

// commit must be called with mu held. It releases mu and delivers events
// to the listeners registered at that moment.
func (m *Machine) commit(events ...Event) {
	fns := make([]func(Event), 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if fn, ok := m.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}

	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// =============================================================================
// REVEAL TARGET
// =============================================================================

// revealTurn binds one reveal to the assistant turn it grows. Deliveries
// from an older reveal generation are ignored.
type revealTurn struct {
	m     *Machine
	index int
	gen   uint64
}

func (r *revealTurn) Reveal(_ uuid.UUID, content string) {
	m := r.m
	m.mu.Lock()
	if m.gen != r.gen || m.phase != PhaseRevealing {
		m.mu.Unlock()
		return
	}
	if err := m.transcript.Reveal(r.index, content); err != nil {
		m.logger.Debug("dropped reveal update", zap.Error(err))
		m.mu.Unlock()
		return
	}
	m.commit(Event{
		Kind:  EventTurnUpdated,
		Index: r.index,
		Turn:  model.NewAssistantTurn(content),
		Phase: PhaseRevealing,
	})
}

func (r *revealTurn) Done(id uuid.UUID) {
	m := r.m
	m.mu.Lock()
	if m.gen != r.gen || m.phase != PhaseRevealing {
		m.mu.Unlock()
		return
	}
	m.transcript.EndReveal(r.index)
	m.phase = PhaseIdle
	m.logger.Debug("reveal complete", zap.String("id", id.String()))
	m.commit(Event{Kind: EventPhaseChanged, Index: -1, Phase: PhaseIdle})
}
