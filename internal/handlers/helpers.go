// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes component as an HTML page. Pages carry CSRF and reset
// tokens, so they are never stored by caches.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.HTMLBlob(statusCode, buf.Bytes())
}
