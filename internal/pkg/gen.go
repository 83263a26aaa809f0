package pkg

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRoomKey - generates a statistically-unique join key for a room.
func GenerateRoomKey() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-room-key"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}
