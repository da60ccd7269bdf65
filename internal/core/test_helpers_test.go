package core

import (
	"testing"
	"time"
)

func newTestRegistry() *Registry {
	return NewRegistry(nil)
}

// join registers a fresh participant and names it when name is non-empty.
func join(t *testing.T, r *Registry, id, name string) *Participant {
	t.Helper()

	p := NewParticipant(id, DefaultMailboxSize)
	if !r.Register(p) {
		t.Fatalf("register %s: already registered", id)
	}
	if name != "" {
		if err := r.SetName(p, name); err != nil {
			t.Fatalf("set name %s: %v", name, err)
		}
	}
	return p
}

// drain returns every line currently queued for p without blocking.
func drain(p *Participant) []string {
	var out []string
	for p.Mailbox().Len() > 0 {
		msg, ok := p.Mailbox().Next()
		if !ok {
			break
		}
		out = append(out, msg)
	}
	return out
}

func mustNext(t *testing.T, m *Mailbox) string {
	t.Helper()

	got := make(chan string, 1)
	go func() {
		msg, _ := m.Next()
		got <- msg
	}()
	select {
	case msg := <-got:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a queued message")
		return ""
	}
}
