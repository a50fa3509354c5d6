// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/forms"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/sse"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/templates"
	"github.com/labstack/echo/v4"
)

// AccountHandlers serves the pages a signed-in user manages their own
// account with.
type AccountHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
	hub      *sse.Hub
}

// NewAccount creates a new AccountHandlers instance. hub may be nil.
func NewAccount(authService *auth.Service, sessions *session.Manager, hub *sse.Hub) *AccountHandlers {
	return &AccountHandlers{
		auth:     authService,
		sessions: sessions,
		hub:      hub,
	}
}

// ChangePasswordPage renders the change password form.
func (h *AccountHandlers) ChangePasswordPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.ChangePasswordPage(templates.ChangePasswordView{
		Help: h.auth.PasswordValidator().GetHelpTexts(),
	}))
}

// ChangePassword replaces the password of the signed-in user. The current
// session is reissued with the new credential, every other session of the
// user is revoked and told so over SSE.
func (h *AccountHandlers) ChangePassword(c echo.Context) error {
	ac := appcontext.From(c)
	if ac == nil || !ac.IsAuthenticated() {
		return echo.ErrUnauthorized
	}

	var form forms.ChangePassword
	if err := c.Bind(&form); err != nil {
		return echo.ErrBadRequest
	}

	if err := form.Validate(); err != nil {
		return h.renderForm(c, forms.FromValidation(err))
	}

	account, err := h.auth.ChangePassword(c.Request().Context(), ac.User.ID, form.CurrentPassword, form.Password, form.Confirmation)

	var pve *auth.PasswordValidationError
	switch {
	case errors.As(err, &pve):
		return h.renderForm(c, forms.FromPassword(pve))
	case errors.Is(err, auth.ErrInvalidCredentials):
		return h.renderForm(c, forms.Errors{"current_password": "account_current_password_wrong"})
	case errors.Is(err, auth.ErrUserNotFound):
		return echo.ErrUnauthorized
	case err != nil:
		return err
	}

	cookie, err := h.sessions.Create(account.ID, account.Username, session.CredentialStamp(account.PasswordHash))
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	if h.hub != nil {
		h.hub.SendToUserExcept(account.ID, ac.SessionID(), sse.PasswordChanged())
	}

	return Render(c, http.StatusOK, templates.ChangePasswordPage(templates.ChangePasswordView{
		Notice: "account_password_changed",
		Help:   h.auth.PasswordValidator().GetHelpTexts(),
	}))
}

func (h *AccountHandlers) renderForm(c echo.Context, fields forms.Errors) error {
	return Render(c, http.StatusUnprocessableEntity, templates.ChangePasswordPage(templates.ChangePasswordView{
		Fields: fields,
		Help:   h.auth.PasswordValidator().GetHelpTexts(),
	}))
}
