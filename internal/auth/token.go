package auth

import "github.com/google/uuid"

// TokenGenerator produces collision-resistant opaque tokens. Tokens are plain
// strings so they can travel as cookie values.
type TokenGenerator interface {
	Generate() string
}

// UUIDGenerator generates UUIDv4 tokens.
type UUIDGenerator struct{}

var _ TokenGenerator = UUIDGenerator{}

// NewUUIDGenerator creates a UUID-backed token generator.
func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// Generate returns a fresh UUIDv4 string.
func (UUIDGenerator) Generate() string {
	return uuid.New().String()
}
