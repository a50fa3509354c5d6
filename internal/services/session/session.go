// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session stores the logged-in user in a signed cookie.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const keySize = 32

// Data is the payload of a session cookie.
type Data struct {
	ID        string // per-login identifier, used to address SSE clients
	UserID    int64
	Username  string
	Stamp     string // fingerprint of the credential at login time
	ExpiresAt time.Time
}

// Manager issues and reads session cookies.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a session manager. HashKey and BlockKey are 32-byte
// hex strings; an empty HashKey generates a random key, which invalidates
// all sessions on restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session hash key: %w", err)
	}
	if hashKey == nil {
		slog.Warn("session_hash_key_generated", "reason", "no session hash key configured")
		hashKey = securecookie.GenerateRandomKey(keySize)
		if hashKey == nil {
			return nil, errors.New("failed to generate session hash key")
		}
	}

	blockKey, err := decodeKey(cfg.BlockKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session block key: %w", err)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func decodeKey(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// CredentialStamp fingerprints a stored credential so that sessions opened
// before a password change can be recognized.
func CredentialStamp(passwordHash []byte) string {
	if len(passwordHash) == 0 {
		return ""
	}
	sum := sha256.Sum256(passwordHash)
	return hex.EncodeToString(sum[:8])
}

// Create issues a session cookie for a user.
func (m *Manager) Create(userID int64, username, stamp string) (*http.Cookie, error) {
	data := Data{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		Stamp:     stamp,
		ExpiresAt: time.Now().Add(time.Duration(m.maxAge) * time.Second),
	}

	value, err := m.codec.Encode(m.name, data)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	return m.cookie(value, m.maxAge), nil
}

// Parse reads the session from the request. A missing, invalid, tampered or
// expired cookie yields nil without an error.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return nil, nil //nolint:nilerr // no cookie means no session
	}

	var data Data
	if err := m.codec.Decode(m.name, cookie.Value, &data); err != nil {
		return nil, nil //nolint:nilerr // undecodable cookies are treated as logged out
	}

	if time.Now().After(data.ExpiresAt) {
		return nil, nil
	}

	return &data, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RandomKey returns a hex encoded key suitable for HashKey or BlockKey.
func RandomKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
