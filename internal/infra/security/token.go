package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const sessionTokenBytes = 16

// GenerateSessionToken returns a fresh random session identifier: 16 bytes of
// CSPRNG entropy, hex encoded to 32 characters.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SessionTokenGenerator implements port.SessionTokenSource backed by the
// process CSPRNG.
type SessionTokenGenerator struct{}

// NewSessionToken mints an opaque session identifier.
func (SessionTokenGenerator) NewSessionToken() (string, error) {
	return GenerateSessionToken()
}
