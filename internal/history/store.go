// Package history keeps a local log of spoken utterances.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded utterance.
type Entry struct {
	ID        int64
	Utterance string
	Text      string
	Voice     string
	Rate      int
	Volume    int
	SpokenAt  time.Time
}

// Store wraps the SQLite-backed utterance log.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates or opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, clock: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS utterances (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	utterance TEXT NOT NULL,
	text      TEXT NOT NULL,
	voice     TEXT NOT NULL,
	rate      INTEGER NOT NULL,
	volume    INTEGER NOT NULL,
	spoken_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_utterances_spoken_at ON utterances(spoken_at);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

// Record appends one utterance.
func (s *Store) Record(ctx context.Context, e Entry) error {
	at := e.SpokenAt
	if at.IsZero() {
		at = s.clock()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO utterances (utterance, text, voice, rate, volume, spoken_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Utterance, e.Text, e.Voice, e.Rate, e.Volume, at.UTC())
	if err != nil {
		return fmt.Errorf("record utterance: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, utterance, text, voice, rate, volume, spoken_at
		 FROM utterances ORDER BY spoken_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Utterance, &e.Text, &e.Voice, &e.Rate, &e.Volume, &e.SpokenAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the retention window.
func (s *Store) Prune(ctx context.Context, keep time.Duration) error {
	cutoff := s.clock().Add(-keep).UTC()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM utterances WHERE spoken_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
