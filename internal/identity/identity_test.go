package identity

import (
	"strings"
	"testing"
)

func TestNewParticipantID(t *testing.T) {
	a := NewParticipantID()
	b := NewParticipantID()

	if a == "" {
		t.Fatal("Expected non-empty identifier")
	}
	if a == b {
		t.Error("Expected unique identifiers")
	}
}

func TestNewDisplayName(t *testing.T) {
	name, err := NewDisplayName()
	if err != nil {
		t.Fatalf("Failed to generate display name: %v", err)
	}
	if !strings.HasPrefix(name, "Stranger-") {
		t.Errorf("Expected Stranger- prefix, got %q", name)
	}

	other, err := NewDisplayName()
	if err != nil {
		t.Fatalf("Failed to generate display name: %v", err)
	}
	if name == other {
		t.Error("Expected display names to differ")
	}
}
