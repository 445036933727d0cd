// Package token provides opaque token generation and hashing for refresh
// tokens and provisioned passwords.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateRandom returns a hex-encoded 32-byte random token.
func GenerateRandom() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashSHA256 returns the hex SHA-256 digest of the value. Refresh tokens are
// stored hashed so a database leak does not expose usable tokens.
func HashSHA256(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
