package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateGameID - generates a unique identifier for a shared game, safe to put in a link.
func GenerateGameID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateNewSessionID - generates a new unique player identity.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
