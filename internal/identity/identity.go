// Package identity provides anonymous identifier primitives.
//
// Participant IDs identify one live connection and die with it.
// Display names are per-session cosmetic labels shown to the peer;
// they are regenerated on every match and are not a security token.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewParticipantID returns a fresh unique identifier for a connection.
func NewParticipantID() string {
	return uuid.NewString()
}

// NewDisplayName returns an ephemeral display name for one side of a
// session, e.g. "Stranger-3f9a1c04".
func NewDisplayName() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate display name: %w", err)
	}
	return "Stranger-" + hex.EncodeToString(buf), nil
}
