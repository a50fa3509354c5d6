// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToken(userID int64, hash string, issued time.Time) *models.PasswordResetToken {
	return &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(5 * time.Minute),
		RequestIP: sql.NullString{String: "203.0.113.7", Valid: true},
		UserAgent: sql.NullString{String: "test-agent", Valid: true},
	}
}

func TestCreatePasswordResetToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana"})
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	token := newToken(account.ID, "hash-1", issued)

	require.NoError(t, repo.CreatePasswordResetToken(ctx, token))

	stored, err := repo.GetPasswordResetToken(ctx, account.ID, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, token.ID, stored.ID)
	assert.Equal(t, account.ID, stored.UserID)
	assert.True(t, issued.Equal(stored.IssuedAt))
	assert.True(t, issued.Add(5*time.Minute).Equal(stored.ExpiresAt))
	assert.False(t, stored.UsedAt.Valid)
	assert.Equal(t, "203.0.113.7", stored.RequestIP.String)
	assert.Equal(t, "test-agent", stored.UserAgent.String)
}

func TestGetPasswordResetToken_ScopedToUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	ana := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana"})
	bob := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "bob"})
	require.NoError(t, repo.CreatePasswordResetToken(ctx, newToken(ana.ID, "hash-1", time.Now().UTC())))

	_, err := repo.GetPasswordResetToken(ctx, bob.ID, "hash-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetPasswordResetToken(ctx, ana.ID, "other-hash")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteLivePasswordResetTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	ana := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana"})
	bob := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "bob"})
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	live := newToken(ana.ID, "live", now.Add(-time.Minute))
	expired := newToken(ana.ID, "expired", now.Add(-10*time.Minute))
	used := newToken(ana.ID, "used", now.Add(-2*time.Minute))
	used.UsedAt = sql.NullTime{Time: now.Add(-time.Minute), Valid: true}
	other := newToken(bob.ID, "bob-live", now.Add(-time.Minute))
	for _, tok := range []*models.PasswordResetToken{live, expired, used, other} {
		require.NoError(t, repo.CreatePasswordResetToken(ctx, tok))
	}

	deleted, err := repo.DeleteLivePasswordResetTokens(ctx, ana.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	tokens, err := repo.ListPasswordResetTokens(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	_, err = repo.GetPasswordResetToken(ctx, bob.ID, "bob-live")
	assert.NoError(t, err, "other accounts keep their tokens")
}

func TestMarkPasswordResetTokenUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana"})
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	token := newToken(account.ID, "hash-1", issued)
	require.NoError(t, repo.CreatePasswordResetToken(ctx, token))

	ok, err := repo.MarkPasswordResetTokenUsed(ctx, token.ID, issued.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkPasswordResetTokenUsed(ctx, token.ID, issued.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "a token is consumed at most once")

	stored, err := repo.GetPasswordResetToken(ctx, account.ID, "hash-1")
	require.NoError(t, err)
	require.True(t, stored.UsedAt.Valid)
	assert.True(t, issued.Add(time.Minute).Equal(stored.UsedAt.Time))
}

func TestMarkPasswordResetTokenUsed_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana"})
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	token := newToken(account.ID, "hash-1", issued)
	require.NoError(t, repo.CreatePasswordResetToken(ctx, token))

	ok, err := repo.MarkPasswordResetTokenUsed(ctx, token.ID, issued.Add(5*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteStalePasswordResetTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana"})
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	live := newToken(account.ID, "live", now)
	expired := newToken(account.ID, "expired", now.Add(-time.Hour))
	used := newToken(account.ID, "used", now.Add(-time.Minute))
	used.UsedAt = sql.NullTime{Time: now, Valid: true}
	for _, tok := range []*models.PasswordResetToken{live, expired, used} {
		require.NoError(t, repo.CreatePasswordResetToken(ctx, tok))
	}

	deleted, err := repo.DeleteStalePasswordResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	tokens, err := repo.ListPasswordResetTokens(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, live.ID, tokens[0].ID)
}
