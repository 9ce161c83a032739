package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenSource produces opaque identifiers for sessions and password resets.
// Tokens carry no structure; every consumer treats them as equality keys.
type TokenSource interface {
	NewToken() (string, error)
}

// RandomTokenSource draws 32 bytes (256 bits) from crypto/rand per token.
type RandomTokenSource struct{}

func NewRandomTokenSource() *RandomTokenSource {
	return &RandomTokenSource{}
}

func (s *RandomTokenSource) NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
