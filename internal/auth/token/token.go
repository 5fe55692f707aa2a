// Package token issues and verifies per-client API tokens. Token hashes
// are stored on the client registry row; the plaintext is shown exactly
// once at issue time.
package token

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

// Generate returns a new random API token.
func Generate() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "pp_" + base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hash returns the bcrypt hash to persist alongside the client.
func Hash(token string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the presented token matches the stored hash.
func Verify(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
