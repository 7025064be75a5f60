package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenBytes is the entropy of a session token before encoding
const sessionTokenBytes = 32

// GenerateSessionToken returns a URL-safe opaque token (43 characters)
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
