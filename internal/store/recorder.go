package store

import (
	"context"
	"log/slog"
	"time"

	"driftchat/internal/shared"
)

const (
	recorderTimeout    = 5 * time.Second
	recorderMaxRetries = 3
	recorderBaseDelay  = 50 * time.Millisecond
)

// Recorder adapts a Repository to the hub's counter hook. Calls are
// fire-and-forget from the hub's point of view: failures are logged,
// never surfaced, and SQLITE_BUSY conflicts are retried with backoff.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a Recorder backed by repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// ChatStarted records one newly formed session.
func (r *Recorder) ChatStarted() {
	r.run("chats_started", r.repo.IncrChatsStarted)
}

// MessageRelayed records one forwarded message.
func (r *Recorder) MessageRelayed() {
	r.run("messages_relayed", r.repo.IncrMessagesRelayed)
}

// PeakOnline records a possible new online high-water mark.
func (r *Recorder) PeakOnline(online int) {
	r.run("peak_online", func(ctx context.Context) error {
		return r.repo.RecordPeakOnline(ctx, online)
	})
}

func (r *Recorder) run(name string, op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()

	var err error
	for i := 0; i < recorderMaxRetries; i++ {
		if err = op(ctx); err == nil {
			return
		}
		if !shared.IsSQLiteConflictError(err) {
			break
		}
		time.Sleep(recorderBaseDelay * time.Duration(1<<i))
	}
	slog.Warn("Failed to record lifetime counter", "counter", name, "error", err)
}
