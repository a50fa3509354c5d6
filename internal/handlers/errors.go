// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that reach echo as a translated error page.
// Internal errors are logged; their details never reach the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request_failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = Render(c, code, templates.ErrorPage(code, errorMessageID(code)))
	}
	if err != nil {
		slog.Error("failed to render error page", "error", err)
	}
}

func errorMessageID(code int) string {
	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return "error_not_found"
	case http.StatusTooManyRequests:
		return "error_too_many_requests"
	default:
		return "error_generic"
	}
}
