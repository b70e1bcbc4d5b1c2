package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResetTokenTTL is the fixed lifetime of a password-reset token.
const ResetTokenTTL = 15 * time.Minute

// GenerateResetToken creates a one-time reset secret. The plaintext is
// returned once for delivery to the user; only the digest is ever persisted.
func GenerateResetToken() (plaintext, digest string, err error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(b)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken derives the persisted digest from a plaintext reset token.
// sha256 rather than bcrypt: the token is looked up by digest equality, so
// the digest must be deterministic, and the 160-bit random input makes the
// cost factor irrelevant.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
