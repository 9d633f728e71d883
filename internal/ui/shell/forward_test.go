// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
	gate chan struct{}
}

func (r *recordingSender) Send(msg tea.Msg) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recordingSender) sent() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

func TestForwarder_KeepsOrder(t *testing.T) {
	tests := []struct {
		name       string
		queueFirst bool
	}{
		{name: "queued before run", queueFirst: true},
		{name: "queued while running", queueFirst: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForwarder()
			defer f.Close()
			s := &recordingSender{}

			var want []tea.Msg
			queue := func() {
				for i := 0; i < 200; i++ {
					msg := SessionChangedMsg{LoggedIn: i%2 == 0}
					want = append(want, msg)
					f.Queue(msg)
				}
			}

			if tt.queueFirst {
				queue()
				go f.Run(s)
			} else {
				go f.Run(s)
				queue()
			}

			require.Eventually(t, func() bool { return len(s.sent()) == len(want) },
				2*time.Second, 5*time.Millisecond)
			require.Equal(t, want, s.sent())
		})
	}
}

func TestForwarder_LogoutAfterLoginArrivesLast(t *testing.T) {
	f := NewForwarder()
	defer f.Close()
	s := &recordingSender{}
	go f.Run(s)

	f.Queue(SessionChangedMsg{LoggedIn: true})
	f.Queue(SessionChangedMsg{LoggedIn: false})

	require.Eventually(t, func() bool { return len(s.sent()) == 2 },
		2*time.Second, 5*time.Millisecond)
	require.Equal(t, SessionChangedMsg{LoggedIn: false}, s.sent()[1])
}

func TestForwarder_QueueDoesNotWaitForSender(t *testing.T) {
	f := NewForwarder()
	s := &recordingSender{gate: make(chan struct{})}
	go f.Run(s)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			f.Queue(SessionChangedMsg{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Queue blocked on a stalled sender")
	}

	close(s.gate)
	f.Close()
}

func TestForwarder_DropsAfterClose(t *testing.T) {
	f := NewForwarder()
	f.Close()
	f.Close()
	f.Queue(SessionChangedMsg{LoggedIn: true})

	s := &recordingSender{}
	ran := make(chan struct{})
	go func() {
		f.Run(s)
		close(ran)
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	require.Empty(t, s.sent())
}
