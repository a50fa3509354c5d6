// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context and context keys.
package appcontext

import (
	"codeberg.org/oliverandrich/hotel-backoffice/internal/htmx"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"github.com/labstack/echo/v4"
)

// Context keys for storing values in context.Context.
type (
	// CSRFToken is the context key for the CSRF token.
	CSRFToken struct{}
	// CSSPath is the context key for the CSS path.
	CSSPath struct{}
	// JSPath is the context key for the JS path.
	JSPath struct{}
	// User is the context key for the signed-in account.
	User struct{}
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets and
// the signed-in account.
type Context struct {
	echo.Context
	Htmx    *htmx.Request
	Assets  *Assets
	User    *models.Account // nil if not authenticated
	Session *session.Data   // nil if not authenticated
}

// GetUser returns the signed-in account, or nil.
func (c *Context) GetUser() *models.Account {
	return c.User
}

// IsAuthenticated returns true if an account is signed in.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// SessionID returns the id of the current login, or "" when anonymous.
func (c *Context) SessionID() string {
	if c.Session == nil {
		return ""
	}
	return c.Session.ID
}

// From returns the custom context wrapped around c, or nil if the request
// did not pass through the context middleware.
func From(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return nil
}
