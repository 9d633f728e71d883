// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package revealtest provides a hand-driven reveal.Scheduler for tests.
package revealtest

import (
	"sync"
	"time"

	"github.com/jeranaias/docqa-tui/internal/reveal"
)

// Manual is a reveal.Scheduler whose timers fire only when told to.
type Manual struct {
	mu     sync.Mutex
	timers []*Timer
}

// Timer is one scheduled callback.
type Timer struct {
	Delay time.Duration

	m       *Manual
	fn      func()
	stopped bool
	fired   bool
}

// Stop prevents a pending timer from firing through Fire.
func (t *Timer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// NewManual returns an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements reveal.Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) reveal.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &Timer{Delay: d, m: m, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Fire runs the oldest pending timer and reports whether one ran.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	var next *Timer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	m.mu.Unlock()

	if next == nil {
		return false
	}
	next.fn()
	return true
}

// FireAll runs pending timers, including ones scheduled while firing,
// until none remain. It returns how many ran.
func (m *Manual) FireAll() int {
	n := 0
	for m.Fire() {
		n++
	}
	return n
}

// Pending returns how many timers are waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Timers returns every timer scheduled so far, oldest first.
func (m *Manual) Timers() []*Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Timer, len(m.timers))
	copy(out, m.timers)
	return out
}

// ForceFire runs t even if it was stopped, as a timer that lost the race
// with Stop would.
func (m *Manual) ForceFire(t *Timer) {
	m.mu.Lock()
	t.fired = true
	m.mu.Unlock()
	t.fn()
}
