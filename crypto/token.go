package crypto

import (
	"strings"

	"github.com/google/uuid"
)

type TokenGenerator struct{}

func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// Generate mints an opaque session token. Two uuids back to back give
// 256 bits of randomness, which is plenty for a bearer token.
func (g *TokenGenerator) Generate() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
