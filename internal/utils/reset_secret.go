package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ResetSecretBytes is the entropy of a password reset secret.
const ResetSecretBytes = 32

var ErrMalformedResetSecret = errors.New("malformed password reset secret")

// ResetSecret pairs the raw secret handed to the user with the digest the
// store keeps. Only Hash may be persisted.
type ResetSecret struct {
	Raw  string
	Hash string
}

func NewResetSecret() (ResetSecret, error) {
	buf := make([]byte, ResetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetSecret{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	raw := hex.EncodeToString(buf)
	return ResetSecret{Raw: raw, Hash: digest(raw)}, nil
}

// HashResetSecret digests a secret presented by a user. Anything that could
// not have come from NewResetSecret is rejected without hashing.
func HashResetSecret(raw string) (string, error) {
	if len(raw) != hex.EncodedLen(ResetSecretBytes) {
		return "", ErrMalformedResetSecret
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", ErrMalformedResetSecret
	}
	return digest(raw), nil
}

func digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
