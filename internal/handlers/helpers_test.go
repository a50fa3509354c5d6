// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/passwordreset"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func appcontextWithUser(ctx context.Context, user *models.Account) context.Context {
	return context.WithValue(ctx, appcontext.User{}, user)
}

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(&config.SessionConfig{
		CookieName: "_test_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)
	return mgr
}

func createStaff(t *testing.T, repo *repository.Repository, username, email, password string) *models.Account {
	t.Helper()
	account, err := auth.NewService(repo).CreateUser(context.Background(), auth.CreateUserParams{
		Username:  username,
		Password:  password,
		Email:     email,
		FirstName: "Alice",
		LastName:  "Moreno",
	})
	require.NoError(t, err)
	return account
}

// storeToken inserts a live reset token for the account and returns its raw value.
func storeToken(t *testing.T, repo *repository.Repository, accountID int64) string {
	t.Helper()
	raw, hash, err := passwordreset.GenerateToken()
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.CreatePasswordResetToken(context.Background(), &models.PasswordResetToken{
		ID:        "tok-" + raw[:8],
		UserID:    accountID,
		TokenHash: hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(passwordreset.TokenTTL),
	}))
	return raw
}

func formContext(e *echo.Echo, method, target string, values url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	if method != http.MethodGet {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
