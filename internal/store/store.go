// Package store persists content-free lifetime counters.
//
// Nothing about individual chats is stored: no message bodies, no
// identities, no per-session rows. Losing the database loses nothing
// about any conversation.
package store

import (
	"context"
)

// Totals holds the lifetime counters.
type Totals struct {
	ChatsStarted    int64 `json:"chats_started"`
	MessagesRelayed int64 `json:"messages_relayed"`
	PeakOnline      int64 `json:"peak_online"`
}

// Repository defines the interface for persisting lifetime counters.
type Repository interface {
	// IncrChatsStarted bumps the count of sessions ever formed.
	IncrChatsStarted(ctx context.Context) error

	// IncrMessagesRelayed bumps the count of messages ever forwarded.
	IncrMessagesRelayed(ctx context.Context) error

	// RecordPeakOnline raises the peak-online high-water mark if
	// online exceeds it.
	RecordPeakOnline(ctx context.Context, online int) error

	// Totals retrieves the current counters.
	Totals(ctx context.Context) (Totals, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
