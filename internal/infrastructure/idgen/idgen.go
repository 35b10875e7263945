// Package idgen provides the identifier and secret generators used by the
// engine.
package idgen

import (
	crand "crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// DefaultTokenBytes is the entropy of invite and guest bearer tokens.
const DefaultTokenBytes = 32

// UUIDGenerator implements output.IDGenerator using UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// TokenGenerator implements output.TokenGenerator with crypto/rand bytes
// encoded as unpadded base64url, safe to embed in links.
type TokenGenerator struct {
	Bytes int
}

func (g TokenGenerator) NewToken() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = DefaultTokenBytes
	}
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
