// Package session – password verification.
//
// The admin password is verified against a PBKDF2-SHA256 digest supplied by
// configuration, encoded as "pbkdf2$<iterations>$<salt-hex>$<hash-hex>".
// This is a demo-grade gate for a read-mostly catalogue, not production
// authentication.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2KeyLen is the derived key length in bytes.
	pbkdf2KeyLen = 32
	// defaultIterations is used when encoding new digests.
	defaultIterations = 100_000
)

// ErrBadDigest indicates the configured digest string is unusable.
var ErrBadDigest = errors.New("malformed password digest")

// HashPassword derives a PBKDF2-SHA256 digest for password with a random
// salt and returns it in the encoded form VerifyPassword accepts.
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), salt, defaultIterations, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("pbkdf2$%d$%s$%s",
		defaultIterations, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches the encoded digest.
// Comparison is constant-time over the derived key.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != "pbkdf2" {
		return false, ErrBadDigest
	}
	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return false, ErrBadDigest
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return false, ErrBadDigest
	}
	want, err := hex.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false, ErrBadDigest
	}

	got := pbkdf2.Key([]byte(password), salt, iter, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
