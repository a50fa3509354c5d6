// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/forms"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/htmx"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/passwordreset"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/sse"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/templates"
	"github.com/labstack/echo/v4"
)

// PasswordHandlers serves the forgot password and reset pages.
type PasswordHandlers struct {
	resets *passwordreset.Service
	hub    *sse.Hub
}

// NewPassword creates a new PasswordHandlers instance. hub may be nil.
func NewPassword(resets *passwordreset.Service, hub *sse.Hub) *PasswordHandlers {
	return &PasswordHandlers{resets: resets, hub: hub}
}

// ForgotPage renders the reset request form.
func (h *PasswordHandlers) ForgotPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.ForgotPage(templates.ForgotView{}))
}

// Forgot issues a reset link. Every well-formed request gets the same
// acknowledgement whether or not the address belongs to an account.
func (h *PasswordHandlers) Forgot(c echo.Context) error {
	var form forms.Forgot
	if err := c.Bind(&form); err != nil {
		return echo.ErrBadRequest
	}
	form.Normalize()

	if err := form.Validate(); err != nil {
		return Render(c, http.StatusUnprocessableEntity, templates.ForgotPage(templates.ForgotView{
			Email:  form.Email,
			Fields: forms.FromValidation(err),
		}))
	}

	meta := passwordreset.RequestMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if err := h.resets.RequestReset(c.Request().Context(), form.Email, meta); err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.ForgotPage(templates.ForgotView{Sent: true}))
}

// ResetPage renders the new password form for a live link.
func (h *PasswordHandlers) ResetPage(c echo.Context) error {
	var form forms.Reset
	if err := c.Bind(&form); err != nil || form.ValidateLink() != nil {
		return renderInvalidLink(c)
	}

	if _, err := h.resets.ValidateToken(c.Request().Context(), form.AccountID, form.Token); err != nil {
		if errors.Is(err, passwordreset.ErrInvalidToken) {
			return renderInvalidLink(c)
		}
		return err
	}

	return Render(c, http.StatusOK, templates.ResetPage(templates.ResetView{
		AccountID: form.AccountID,
		Token:     form.Token,
		Help:      h.resets.PasswordValidator().GetHelpTexts(),
	}))
}

// Reset sets the new password and consumes the link.
func (h *PasswordHandlers) Reset(c echo.Context) error {
	var form forms.Reset
	if err := c.Bind(&form); err != nil || form.ValidateLink() != nil {
		return renderInvalidLink(c)
	}

	err := h.resets.ConsumeAndReset(c.Request().Context(), passwordreset.ResetInput{
		AccountID:    form.AccountID,
		Token:        form.Token,
		NewPassword:  form.Password,
		Confirmation: form.Confirmation,
	})

	var pve *auth.PasswordValidationError
	switch {
	case errors.As(err, &pve):
		return Render(c, http.StatusUnprocessableEntity, templates.ResetPage(templates.ResetView{
			AccountID: form.AccountID,
			Token:     form.Token,
			Fields:    forms.FromPassword(pve),
			Help:      h.resets.PasswordValidator().GetHelpTexts(),
		}))
	case errors.Is(err, passwordreset.ErrInvalidToken):
		return renderInvalidLink(c)
	case err != nil:
		return err
	}

	if h.hub != nil {
		h.hub.SendToUser(form.AccountID, sse.PasswordChanged())
	}

	htmx.Redirect(c.Response(), c.Request(), "/auth/login?reset=1")
	return nil
}

func renderInvalidLink(c echo.Context) error {
	return Render(c, http.StatusBadRequest, templates.ResetInvalidPage())
}
