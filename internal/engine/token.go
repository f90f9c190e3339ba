package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// NewSessionToken generates an opaque per-attempt secret. The plaintext is
// returned to the client exactly once; only its hash is ever stored.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashSessionToken returns the one-way hash stored alongside the attempt.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SessionTokenMatches verifies a presented token against a stored hash
// without leaking timing information.
func SessionTokenMatches(storedHash, token string) bool {
	computed := HashSessionToken(token)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}
