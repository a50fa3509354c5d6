// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// PasswordResetToken stores the hash of a single-use reset token.
// The raw token is only ever sent to the account's email address.
type PasswordResetToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string         `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	TokenHash string         `db:"token_hash" json:"-"`
	IssuedAt  time.Time      `db:"issued_at" json:"issued_at"`
	ExpiresAt time.Time      `db:"expires_at" json:"expires_at"`
	UsedAt    sql.NullTime   `db:"used_at" json:"used_at"`
	RequestIP sql.NullString `db:"request_ip" json:"-"`
	UserAgent sql.NullString `db:"user_agent" json:"-"`
}

// IsValid reports whether the token is unused and not yet expired at now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.UsedAt.Valid && now.Before(t.ExpiresAt)
}
