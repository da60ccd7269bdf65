//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_session_store.go -package=mocks github.com/vovakirdan/linechat/internal/store SessionStore

package store

import (
	"context"
	"time"
)

// Session is one journaled client connection. Chat text is never stored.
type Session struct {
	ID             string     `json:"id"`
	Peer           string     `json:"peer"`
	Transport      string     `json:"transport"`
	Name           string     `json:"name"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
	CloseReason    string     `json:"close_reason,omitempty"`
}

// SessionStore handles connection journal persistence.
type SessionStore interface {
	// OpenSession records a newly accepted connection.
	OpenSession(ctx context.Context, s *Session) error

	// RenameSession records the latest display name claimed by a session.
	RenameSession(ctx context.Context, id, name string) error

	// CloseSession marks a session finished.
	CloseSession(ctx context.Context, id, reason string, at time.Time) error

	// RecentSessions lists the newest sessions first.
	RecentSessions(ctx context.Context, limit int) ([]*Session, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	SessionStore

	// Close closes the underlying database connection.
	Close() error
}

// Nop is a Store that records nothing. Used when the journal is disabled.
type Nop struct{}

func (Nop) OpenSession(context.Context, *Session) error {
	return nil
}

func (Nop) RenameSession(context.Context, string, string) error {
	return nil
}

func (Nop) CloseSession(context.Context, string, string, time.Time) error {
	return nil
}

func (Nop) RecentSessions(context.Context, int) ([]*Session, error) {
	return []*Session{}, nil
}

func (Nop) Close() error {
	return nil
}
