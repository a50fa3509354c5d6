// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateRole_Idempotent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := repo.GetOrCreateRole(ctx, "admin")
	require.NoError(t, err)
	second, err := repo.GetOrCreateRole(ctx, "admin")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Active)
}

func TestGetOrCreatePosition_Idempotent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := repo.GetOrCreatePosition(ctx, "Reception")
	require.NoError(t, err)
	second, err := repo.GetOrCreatePosition(ctx, "Reception")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestSetEmployeeActive_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.SetEmployeeActive(context.Background(), 42, false)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
