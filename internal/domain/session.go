package domain

import (
	"time"
)

// Session pairs exactly two participants for an ephemeral chat.
// Membership is mutual and exclusive: each participant belongs to at
// most one session, and if A's partner is B then B's partner is A.
type Session struct {
	StartedAt time.Time

	// DisplayNames maps participant ID to the ephemeral display name
	// shown to the *other* side. Regenerated per session, never reused
	// as a stable identity.
	DisplayNames map[string]string

	ids [2]string
}

// NewSession creates a session between a and b with their per-session
// display names.
func NewSession(a, b, displayA, displayB string, now time.Time) *Session {
	return &Session{
		StartedAt: now,
		DisplayNames: map[string]string{
			a: displayA,
			b: displayB,
		},
		ids: [2]string{a, b},
	}
}

// Partner returns the other member of the session, or "" if id is not
// a member.
func (s *Session) Partner(id string) string {
	switch id {
	case s.ids[0]:
		return s.ids[1]
	case s.ids[1]:
		return s.ids[0]
	default:
		return ""
	}
}

// Members returns both participant IDs.
func (s *Session) Members() (string, string) {
	return s.ids[0], s.ids[1]
}

// Has reports whether id is a member of the session.
func (s *Session) Has(id string) bool {
	return id == s.ids[0] || id == s.ids[1]
}
