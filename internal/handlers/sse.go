// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/sse"
	"github.com/labstack/echo/v4"
)

const heartbeatInterval = 30 * time.Second

// SSEHandler streams server-sent events to signed-in staff.
type SSEHandler struct {
	hub *sse.Hub
}

// NewSSEHandler creates a new SSE handler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Events holds the connection open and writes events for the current
// session until the client goes away.
func (h *SSEHandler) Events(c echo.Context) error {
	ac := appcontext.From(c)
	if ac == nil || !ac.IsAuthenticated() || ac.SessionID() == "" {
		return echo.ErrUnauthorized
	}

	sessionID := ac.SessionID()
	userID := ac.User.ID

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	ch := h.hub.Register(sessionID, userID)
	defer h.hub.Unregister(sessionID, userID, ch)

	if _, err := res.Write([]byte(sse.Event{Name: sse.EventConnected, Data: "ok"}.Format())); err != nil {
		return nil
	}
	res.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := res.Write([]byte(sse.Heartbeat)); err != nil {
				return nil
			}
			res.Flush()
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := res.Write([]byte(event.Format())); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// Hub returns the hub events are published through.
func (h *SSEHandler) Hub() *sse.Hub {
	return h.hub
}
