package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/linechat/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	peer            TEXT NOT NULL,
	transport       TEXT NOT NULL,
	name            TEXT NOT NULL DEFAULT '',
	connected_at    DATETIME NOT NULL,
	disconnected_at DATETIME,
	close_reason    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sessions_connected ON sessions(connected_at DESC);
`

// ErrSessionNotFound is returned when an update targets an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the SQLite database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// OpenSession inserts a new session row.
func (s *SQLiteStore) OpenSession(ctx context.Context, sess *store.Session) error {
	query := `
		INSERT INTO sessions (id, peer, transport, name, connected_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.Peer, sess.Transport, sess.Name, sess.ConnectedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// RenameSession updates the display name recorded for a session.
func (s *SQLiteStore) RenameSession(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sessions SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update session name: %w", err)
	}
	return expectOneRow(result)
}

// CloseSession stamps the disconnect time and reason.
func (s *SQLiteStore) CloseSession(ctx context.Context, id, reason string, at time.Time) error {
	query := `
		UPDATE sessions
		SET disconnected_at = ?, close_reason = ?
		WHERE id = ? AND disconnected_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, at.UTC(), reason, id)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return expectOneRow(result)
}

// RecentSessions returns at most limit sessions, newest first.
func (s *SQLiteStore) RecentSessions(ctx context.Context, limit int) ([]*store.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, peer, transport, name, connected_at, disconnected_at, close_reason
		FROM sessions
		ORDER BY connected_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*store.Session, 0)
	for rows.Next() {
		var (
			sess         store.Session
			disconnected sql.NullTime
		)
		if err := rows.Scan(
			&sess.ID,
			&sess.Peer,
			&sess.Transport,
			&sess.Name,
			&sess.ConnectedAt,
			&disconnected,
			&sess.CloseReason,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if disconnected.Valid {
			at := disconnected.Time
			sess.DisconnectedAt = &at
		}
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
