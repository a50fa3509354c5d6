// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
)

// CreatePasswordResetToken inserts a reset token.
func (r *Repository) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO password_reset_tokens
			(id, user_id, token_hash, issued_at, expires_at, used_at, request_ip, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.UserID, token.TokenHash, token.IssuedAt.UTC(), token.ExpiresAt.UTC(),
		token.UsedAt, token.RequestIP, token.UserAgent)
	return err
}

// GetPasswordResetToken retrieves a token by owning user and token hash.
func (r *Repository) GetPasswordResetToken(ctx context.Context, userID int64, tokenHash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.get(ctx, &token,
		`SELECT * FROM password_reset_tokens WHERE user_id = ? AND token_hash = ?`,
		userID, tokenHash)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ListPasswordResetTokens returns all tokens of a user, newest first.
func (r *Repository) ListPasswordResetTokens(ctx context.Context, userID int64) ([]models.PasswordResetToken, error) {
	var tokens []models.PasswordResetToken
	err := r.selectAll(ctx, &tokens,
		`SELECT * FROM password_reset_tokens WHERE user_id = ? ORDER BY issued_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteLivePasswordResetTokens removes the tokens of a user that are still
// usable at now.
func (r *Repository) DeleteLivePasswordResetTokens(ctx context.Context, userID int64, now time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = ? AND used_at IS NULL AND expires_at > ?`,
		userID, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkPasswordResetTokenUsed sets used_at if the token is still unused and
// unexpired. It reports whether this call performed the transition.
func (r *Repository) MarkPasswordResetTokenUsed(ctx context.Context, id string, now time.Time) (bool, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = ?
		 WHERE id = ? AND used_at IS NULL AND expires_at > ?`,
		now.UTC(), id, now.UTC())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteStalePasswordResetTokens removes tokens that expired or were used
// before now.
func (r *Repository) DeleteStalePasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= ? OR used_at IS NOT NULL`,
		now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
