// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FORWARDER
// =============================================================================

// Sender delivers a message to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Forwarder hands messages from service goroutines to a Sender in the order
// they were queued. Queue never blocks; one goroutine running Run does the
// sending.
type Forwarder struct {
	mu     sync.Mutex
	queue  []tea.Msg
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewForwarder returns an empty forwarder. Messages queued before Run starts
// are held and sent first.
func NewForwarder() *Forwarder {
	return &Forwarder{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Queue appends msg. After Close it is dropped.
func (f *Forwarder) Queue(msg tea.Msg) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.queue = append(f.queue, msg)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Run sends queued messages to s until Close.
func (f *Forwarder) Run(s Sender) {
	for {
		select {
		case <-f.done:
			return
		case <-f.wake:
		}
		for _, msg := range f.take() {
			s.Send(msg)
		}
	}
}

// Close stops Run and drops anything still queued.
func (f *Forwarder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.queue = nil
	close(f.done)
}

func (f *Forwarder) take() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queue
	f.queue = nil
	return q
}
