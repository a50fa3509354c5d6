// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/forms"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/htmx"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/templates"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for signing in and out.
type AuthHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(authService *auth.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		auth:     authService,
		sessions: sessions,
	}
}

// LoginPage renders the sign-in form.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	view := templates.LoginView{}
	if c.QueryParam("reset") != "" {
		view.Notice = "reset_success"
	}
	return Render(c, http.StatusOK, templates.LoginPage(view))
}

// Login checks the credentials and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	var form forms.Login
	if err := c.Bind(&form); err != nil {
		return echo.ErrBadRequest
	}

	if err := form.Validate(); err != nil {
		return Render(c, http.StatusUnprocessableEntity, templates.LoginPage(templates.LoginView{
			Username: form.Username,
			Fields:   forms.FromValidation(err),
		}))
	}

	ctx := c.Request().Context()
	account, err := h.auth.Login(ctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return Render(c, http.StatusUnauthorized, templates.LoginPage(templates.LoginView{
				Username: form.Username,
				Error:    "login_failed",
			}))
		}
		return err
	}

	cookie, err := h.sessions.Create(account.ID, account.Username, session.CredentialStamp(account.PasswordHash))
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	htmx.Redirect(c.Response(), c.Request(), "/")
	return nil
}

// Logout clears the session cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	slog.Info("logout")

	htmx.Redirect(c.Response(), c.Request(), "/auth/login")
	return nil
}
