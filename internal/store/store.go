// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the append-only conversation log.
//
// The log is an ordered collection of message records. Writes are assigned
// a monotonic sequence number and a server-side timestamp; reads are
// delivered as a live feed of added records in sequence order, independent
// of the arrival order of the goroutines that wrote them. Records are
// never updated or deleted.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/buai-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a persistence-layer error.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed message log.
type Store struct {
	db *sql.DB

	// mu serializes appends so feed delivery order always matches the
	// assigned sequence order.
	mu   sync.Mutex
	subs []chan model.ChatMessage

	// now is the write-time clock; injectable for tests.
	now func() time.Time
}

// Open opens (or creates) the message log at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StoreError{Message: "failed to create data directory", Cause: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Message: "failed to open database", Cause: err}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &StoreError{Message: "failed to migrate database", Cause: err}
	}

	return s, nil
}

// OpenDefault opens the log at its default location, ~/.buai/messages.db.
func OpenDefault() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, &StoreError{Message: "failed to resolve home directory", Cause: err}
	}
	return Open(filepath.Join(home, ".buai", "messages.db"))
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			seq             INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id       TEXT NOT NULL,
			text            TEXT NOT NULL,
			structured_data TEXT NOT NULL DEFAULT '',
			created_at      INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the log and all feed channels.
func (s *Store) Close() error {
	s.mu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.mu.Unlock()
	return s.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Append writes one record and returns it with its assigned sequence
// number and timestamp. Subscribers receive the record before Append
// returns, in sequence order.
func (s *Store) Append(ctx context.Context, senderID, text, structuredData string) (model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, text, structured_data, created_at) VALUES (?, ?, ?, ?)`,
		senderID, text, structuredData, now.UnixNano(),
	)
	if err != nil {
		return model.ChatMessage{}, &StoreError{Message: "failed to append message", Cause: err}
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return model.ChatMessage{}, &StoreError{Message: "failed to read assigned sequence", Cause: err}
	}

	rec := model.ChatMessage{
		ID:             fmt.Sprintf("rec_%d", seq),
		Seq:            seq,
		SenderID:       senderID,
		Text:           text,
		StructuredData: structuredData,
		Timestamp:      now,
	}

	for _, ch := range s.subs {
		ch <- rec
	}

	return rec, nil
}

// =============================================================================
// READS
// =============================================================================

// All returns every record in ascending sequence order.
func (s *Store) All(ctx context.Context) ([]model.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, sender_id, text, structured_data, created_at FROM messages ORDER BY seq ASC`)
	if err != nil {
		return nil, &StoreError{Message: "failed to query messages", Cause: err}
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var rec model.ChatMessage
		var createdAt int64
		if err := rows.Scan(&rec.Seq, &rec.SenderID, &rec.Text, &rec.StructuredData, &createdAt); err != nil {
			return nil, &StoreError{Message: "failed to scan message", Cause: err}
		}
		rec.ID = fmt.Sprintf("rec_%d", rec.Seq)
		rec.Timestamp = time.Unix(0, createdAt).UTC()
		msgs = append(msgs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "failed to read messages", Cause: err}
	}

	return msgs, nil
}

// Subscribe returns a feed of records added after the call. Existing
// history comes from All; together they yield every record exactly once,
// in sequence order, when Subscribe is called before All under no
// concurrent appends (the startup path) or when the caller tolerates the
// overlap by sequence number.
//
// The channel is buffered; a subscriber that stops draining will
// eventually block appends. The channel closes when the store closes.
func (s *Store) Subscribe(buffer int) <-chan model.ChatMessage {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan model.ChatMessage, buffer)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	return ch
}
