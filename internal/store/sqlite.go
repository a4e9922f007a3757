package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

const (
	counterChatsStarted    = "chats_started"
	counterMessagesRelayed = "messages_relayed"
	counterPeakOnline      = "peak_online"
)

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS lifetime_counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);
	INSERT OR IGNORE INTO lifetime_counters (name, value) VALUES
		('chats_started', 0),
		('messages_relayed', 0),
		('peak_online', 0);
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

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// IncrChatsStarted bumps the count of sessions ever formed.
func (s *SQLiteStore) IncrChatsStarted(ctx context.Context) error {
	return s.incr(ctx, counterChatsStarted)
}

// IncrMessagesRelayed bumps the count of messages ever forwarded.
func (s *SQLiteStore) IncrMessagesRelayed(ctx context.Context) error {
	return s.incr(ctx, counterMessagesRelayed)
}

func (s *SQLiteStore) incr(ctx context.Context, name string) error {
	query := `UPDATE lifetime_counters SET value = value + 1 WHERE name = ?`
	if _, err := s.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("increment %s: %w", name, err)
	}
	return nil
}

// RecordPeakOnline raises the peak-online high-water mark.
func (s *SQLiteStore) RecordPeakOnline(ctx context.Context, online int) error {
	query := `UPDATE lifetime_counters SET value = ? WHERE name = ? AND value < ?`
	if _, err := s.db.ExecContext(ctx, query, online, counterPeakOnline, online); err != nil {
		return fmt.Errorf("record peak online: %w", err)
	}
	return nil
}

// Totals retrieves the current counters.
func (s *SQLiteStore) Totals(ctx context.Context) (Totals, error) {
	query := `SELECT name, value FROM lifetime_counters`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Totals{}, fmt.Errorf("query counters: %w", err)
	}
	defer rows.Close()

	var totals Totals
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return Totals{}, fmt.Errorf("scan counter row: %w", err)
		}
		switch name {
		case counterChatsStarted:
			totals.ChatsStarted = value
		case counterMessagesRelayed:
			totals.MessagesRelayed = value
		case counterPeakOnline:
			totals.PeakOnline = value
		}
	}
	if err := rows.Err(); err != nil {
		return Totals{}, fmt.Errorf("iterate counter rows: %w", err)
	}
	return totals, nil
}
