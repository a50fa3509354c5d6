// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Parameters of the stored credential format: salt followed by the
// PBKDF2-HMAC-SHA256 derived key.
const (
	SaltSize   = 16
	KeySize    = 32
	Iterations = 200_000
	HashSize   = SaltSize + KeySize
)

// HashPassword derives a credential from password with a fresh random salt.
// The result is SaltSize+KeySize bytes long. Empty passwords are accepted;
// policy is enforced by PasswordValidator.
func HashPassword(password string) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(password, salt)

	stored := make([]byte, 0, HashSize)
	stored = append(stored, salt...)
	return append(stored, key...), nil
}

// VerifyPassword reports whether password matches the stored credential.
// Malformed credentials never match.
func VerifyPassword(password string, stored []byte) bool {
	if len(stored) != HashSize {
		return false
	}

	key := deriveKey(password, stored[:SaltSize])
	return subtle.ConstantTimeCompare(key, stored[SaltSize:]) == 1
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}
