// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/templates"
	"github.com/labstack/echo/v4"
)

// Handlers contains the general HTTP handlers.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health reports whether the database is reachable.
func (h *Handlers) Health(c echo.Context) error {
	if h.repo != nil {
		if err := h.repo.DB().PingContext(c.Request().Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Dashboard renders the start page for signed-in staff.
func (h *Handlers) Dashboard(c echo.Context) error {
	return Render(c, http.StatusOK, templates.DashboardPage())
}
