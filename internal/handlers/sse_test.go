// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/handlers"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_Unauthenticated(t *testing.T) {
	h := handlers.NewSSEHandler(sse.NewHub())
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/events", nil), httptest.NewRecorder())

	err := h.Events(&appcontext.Context{Context: c})

	assert.ErrorIs(t, err, echo.ErrUnauthorized)
}

func TestEvents_Stream(t *testing.T) {
	hub := sse.NewHub()
	h := handlers.NewSSEHandler(hub)
	user := &models.Account{User: models.User{ID: 7, Username: "alice"}}

	e := echo.New()
	e.GET("/events", h.Events, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&appcontext.Context{Context: c, User: user, Session: &session.Data{ID: "s-1", UserID: 7}})
		}
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readEvent := func() string {
		var name string
		for lines.Scan() {
			line := lines.Text()
			if line == "" && name != "" {
				return name
			}
			if after, ok := strings.CutPrefix(line, "event: "); ok {
				name = after
			}
		}
		return name
	}

	assert.Equal(t, sse.EventConnected, readEvent())
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.SendToUser(7, sse.PasswordChanged())
	assert.Equal(t, sse.EventPasswordChanged, readEvent())
}
