package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID creates a readable loading session id.
// Format: load-{vehicle}-{8charHexUUID}, with the vehicle name lower-cased
// and spaces replaced by hyphens.
//
// Example:
//   - Input: vehicle="Rover 1"
//   - Output: "load-rover-1-a3f8e2b1"
func GenerateSessionID(vehicle string) string {
	name := strings.ToLower(strings.Join(strings.Fields(vehicle), "-"))
	if name == "" {
		name = "vehicle"
	}
	return "load-" + name + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
