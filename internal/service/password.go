package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	pbkdf2SaltLength = 32
	pbkdf2KeyLength  = 32
)

// hashPassword derives a PBKDF2-HMAC-SHA256 hash from password using a fresh
// random salt, and returns both hex-encoded.
func hashPassword(password string) (hash, salt string, err error) {
	saltBytes := make([]byte, pbkdf2SaltLength)
	if _, err = rand.Read(saltBytes); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), saltBytes, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(derived), hex.EncodeToString(saltBytes), nil
}

// verifyPassword recomputes the PBKDF2 hash for password against storedSalt
// and compares it to storedHash in constant time.
func verifyPassword(password, storedHash, storedSalt string) bool {
	saltBytes, err := hex.DecodeString(storedSalt)
	if err != nil {
		return false
	}
	wantHash, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(password), saltBytes, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return subtle.ConstantTimeCompare(derived, wantHash) == 1
}

// generateToken returns an n-character lowercase alphanumeric token, suitable
// for session tokens and meeting codes alike.
func generateToken(n int) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	var b strings.Builder
	b.Grow(n)
	for _, v := range raw {
		b.WriteByte(alphabet[int(v)%len(alphabet)])
	}
	return b.String(), nil
}
