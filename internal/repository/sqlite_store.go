// Package repository persists conversation session history in an embedded
// SQLite database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portfolio-backend/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps conversation turns in a single SQLite file. Sessions are
// created lazily by the first insert and never explicitly destroyed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the session database at dbPath. If the primary
// path cannot be created or opened, it falls back to a file of the same name
// under the system temp directory, for restricted deployments where only temp
// space is writable.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("repository: db path must not be empty")
	}
	db, err := openDB(dbPath)
	if err != nil {
		db, err = openDB(filepath.Join(os.TempDir(), filepath.Base(dbPath)))
		if err != nil {
			return nil, fmt.Errorf("repository: open database: %w", err)
		}
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: initialize schema: %w", err)
	}
	return store, nil
}

// openDB opens a pooled handle on path. The pragmas ride on the DSN in the
// modernc driver's _pragma form so every pooled connection gets WAL, a write
// lock wait, and relaxed fsync, not just the connection that ran the schema.
func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetHistory returns up to limit most recent turns for a conversation in
// chronological order. The query reads newest first so the limit favors the
// most recent context, then reverses before returning.
func (s *SQLiteStore) GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error) {
	query := `
		SELECT conversation_id, question, answer, created_at
		FROM turns WHERE conversation_id = ?
		ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: GetHistory query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		var createdAt int64
		if err := rows.Scan(&t.ConversationID, &t.Question, &t.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("repository: GetHistory scan: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: GetHistory rows: %w", err)
	}
	// Reverse to chronological order before returning to prompt assembly.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// SaveTurn appends a completed turn to the conversation.
func (s *SQLiteStore) SaveTurn(ctx context.Context, turn domain.Turn) error {
	if turn.ConversationID == "" {
		return errors.New("repository: SaveTurn: conversation id is required")
	}
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (conversation_id, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		turn.ConversationID, turn.Question, turn.Answer, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("repository: SaveTurn: %w", err)
	}
	return nil
}

// TurnCount returns the number of persisted turns for a conversation.
func (s *SQLiteStore) TurnCount(ctx context.Context, conversationID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM turns WHERE conversation_id = ?`, conversationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repository: TurnCount: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
