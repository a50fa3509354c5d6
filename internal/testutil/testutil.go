// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/database"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestFileDB creates a SQLite database file in a temporary directory.
// Unlike the in-memory database it has a connection pool, so transactions
// from concurrent goroutines really run against each other.
func NewTestFileDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "backoffice.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// AccountParams describes a staff account fixture.
type AccountParams struct {
	Username     string
	Email        string
	PasswordHash []byte
	Inactive     bool
}

// NewTestAccount creates a role, position, person, employee and user.
func NewTestAccount(t *testing.T, repo *repository.Repository, params AccountParams) *models.Account {
	t.Helper()
	ctx := context.Background()

	if params.Email == "" {
		params.Email = params.Username + "@hotel.example"
	}

	role, err := repo.GetOrCreateRole(ctx, "staff")
	require.NoError(t, err)
	position, err := repo.GetOrCreatePosition(ctx, "Front desk")
	require.NoError(t, err)

	person := &models.Person{FirstName: "Test", LastName: params.Username, Email: params.Email}
	require.NoError(t, repo.CreatePerson(ctx, person))

	employee := &models.Employee{PersonID: person.ID, PositionID: position.ID, Active: true}
	require.NoError(t, repo.CreateEmployee(ctx, employee))

	user := &models.User{
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		EmployeeID:   employee.ID,
		RoleID:       role.ID,
		Active:       !params.Inactive,
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	account, err := repo.GetAccountByID(ctx, user.ID)
	require.NoError(t, err)
	return account
}

// Clock is a settable time source for expiry tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Message is a mail captured by MailRecorder.
type Message struct {
	To      string
	Subject string
	Body    string
}

// MailRecorder records sent mail instead of delivering it.
type MailRecorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

// Send records the message. It returns Err when set.
func (m *MailRecorder) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, Message{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *MailRecorder) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormContext creates an Echo context carrying a url-encoded form body.
func NewFormContext(e *echo.Echo, method, path, form string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
