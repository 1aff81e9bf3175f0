package tool

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRandomUUID returns a random UUID string.
func GenerateRandomUUID() string {
	return uuid.NewString()
}

// GenerateFingerprint generates a random 32-character session fingerprint.
func GenerateFingerprint() string {
	return strings.ReplaceAll(GenerateRandomUUID(), "-", "")
}
