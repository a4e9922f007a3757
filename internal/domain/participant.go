// Package domain contains core domain types for the driftchat matchmaker.
package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// MaxTags caps the number of interest tags a participant may carry.
const MaxTags = 10

// Status describes where a participant is in its lifecycle.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusWaiting  Status = "waiting"
	StatusChatting Status = "chatting"
)

// Participant represents one live anonymous connection.
type Participant struct {
	ID           string
	Status       Status
	Tags         []string
	WaitingSince time.Time
	ConnectedAt  time.Time
}

// WaitingEntry is a participant's presence in the waiting pool.
type WaitingEntry struct {
	ID         string
	Tags       []string
	EnqueuedAt time.Time
}

// NormalizeTags trims, lowercases, and dedupes interest tags, dropping
// empties and truncating to MaxTags.
func NormalizeTags(tags []string) []string {
	cleaned := lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		t := strings.ToLower(strings.TrimSpace(tag))
		return t, t != ""
	})
	cleaned = lo.Uniq(cleaned)
	if len(cleaned) > MaxTags {
		cleaned = cleaned[:MaxTags]
	}
	return cleaned
}

// TagsMatch reports whether two tag sets are compatible for pairing.
// A side with no tags matches anyone; otherwise the sets must intersect
// (exact string equality).
func TagsMatch(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	return lo.Some(a, b)
}
