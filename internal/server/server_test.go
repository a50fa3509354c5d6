// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/passwordreset"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Hotel2024"

var (
	csrfPattern  = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	resetPattern = regexp.MustCompile(`/auth/reset\?[^"<\s]+`)
)

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestClient(t *testing.T, base string) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:    t,
		base: base,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (tc *testClient) do(req *http.Request) (*http.Response, string) {
	tc.t.Helper()
	resp, err := tc.http.Do(req)
	require.NoError(tc.t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(tc.t, err)
	return resp, string(body)
}

func (tc *testClient) get(path string) (*http.Response, string) {
	tc.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.base+path, nil)
	require.NoError(tc.t, err)
	return tc.do(req)
}

func (tc *testClient) post(path string, form url.Values) (*http.Response, string) {
	tc.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.base+path, strings.NewReader(form.Encode()))
	require.NoError(tc.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

// csrf loads path and returns the token embedded in its form.
func (tc *testClient) csrf(path string) string {
	tc.t.Helper()
	resp, body := tc.get(path)
	require.Equal(tc.t, http.StatusOK, resp.StatusCode)
	match := csrfPattern.FindStringSubmatch(body)
	require.Len(tc.t, match, 2, "csrf field missing on %s", path)
	return match[1]
}

func newTestApp(t *testing.T) (*testClient, *testutil.MailRecorder, *App) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mailer := &testutil.MailRecorder{}

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "localhost", Port: 8080, BaseURL: "http://backoffice.test", MaxBodySize: 1},
		Log:     config.LogConfig{Level: "error"},
		Session: config.SessionConfig{CookieName: "_session", MaxAge: 3600, HashKey: testHashKey},
	}
	app, err := New(cfg, repo, mailer)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	testutil.NewTestAccount(t, repo, testutil.AccountParams{Username: "ana", PasswordHash: hash})

	return newTestClient(t, srv.URL), mailer, app
}

func TestHealth(t *testing.T) {
	client, _, _ := newTestApp(t)

	resp, body := client.get("/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestDashboard_RequiresLogin(t *testing.T) {
	client, _, _ := newTestApp(t)

	resp, _ := client.get("/")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))
}

func TestUnknownRoute(t *testing.T) {
	client, _, _ := newTestApp(t)

	resp, body := client.get("/front-desk/bookings")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "<html")
}

func TestTrailingSlashRedirects(t *testing.T) {
	client, _, _ := newTestApp(t)

	resp, _ := client.get("/auth/forgot/?next=1")

	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/auth/forgot?next=1", resp.Header.Get("Location"))
}

func TestForgot_RequiresCSRF(t *testing.T) {
	client, mailer, _ := newTestApp(t)

	resp, _ := client.post("/auth/forgot", url.Values{"email": {"ana@hotel.example"}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, mailer.Messages())
}

func TestPasswordResetFlow(t *testing.T) {
	client, mailer, app := newTestApp(t)

	token := client.csrf("/auth/forgot")
	resp, body := client.post("/auth/forgot", url.Values{
		"csrf_token": {token},
		"email":      {"  ANA@hotel.example "},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, `name="email"`)

	messages := mailer.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "ana@hotel.example", messages[0].To)
	link := resetPattern.FindString(messages[0].Body)
	require.NotEmpty(t, link, "reset link missing from email")
	assert.Contains(t, messages[0].Body, "http://backoffice.test/auth/reset?")
	link = strings.ReplaceAll(link, "&amp;", "&")

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	resp, body = client.get(link)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-referrer", resp.Header.Get("Referrer-Policy"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	match := csrfPattern.FindStringSubmatch(body)
	require.Len(t, match, 2)

	resp, _ = client.post(passwordreset.ResetPath, url.Values{
		"csrf_token":   {match[1]},
		"accountId":    {parsed.Query().Get("accountId")},
		"token":        {parsed.Query().Get("token")},
		"password":     {"Passw0rd"},
		"confirmation": {"Passw0rd"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login?reset=1", resp.Header.Get("Location"))

	t.Run("link is spent", func(t *testing.T) {
		resp, _ := client.get(link)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("new password signs in", func(t *testing.T) {
		token := client.csrf("/auth/login?reset=1")
		resp, _ := client.post("/auth/login", url.Values{
			"csrf_token": {token},
			"username":   {"ana"},
			"password":   {"Passw0rd"},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		resp, body := client.get("/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Test ana")
		assert.Contains(t, body, `data-events="/events"`)
	})

	t.Run("purge removes the used token", func(t *testing.T) {
		purged, err := app.Resets.PurgeExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)
	})
}

// login signs ana in with password and fails the test otherwise.
func (tc *testClient) login(password string) {
	tc.t.Helper()
	token := tc.csrf("/auth/login")
	resp, _ := tc.post("/auth/login", url.Values{
		"csrf_token": {token},
		"username":   {"ana"},
		"password":   {password},
	})
	require.Equal(tc.t, http.StatusSeeOther, resp.StatusCode)
}

func TestChangePasswordFlow(t *testing.T) {
	desk, _, _ := newTestApp(t)
	office := newTestClient(t, desk.base)

	resp, _ := desk.get("/account/password")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	desk.login(testPassword)
	office.login(testPassword)

	token := desk.csrf("/account/password")
	resp, body := desk.post("/account/password", url.Values{
		"csrf_token":       {token},
		"current_password": {"Wrong2024"},
		"password":         {"Oasis2025"},
		"confirmation":     {"Oasis2025"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "The current password is incorrect.")

	resp, body = desk.post("/account/password", url.Values{
		"csrf_token":       {token},
		"current_password": {testPassword},
		"password":         {"Oasis2025"},
		"confirmation":     {"Oasis2025"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Your password was changed.")

	t.Run("changing session stays signed in", func(t *testing.T) {
		resp, body := desk.get("/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Test ana")
	})

	t.Run("other sessions are revoked", func(t *testing.T) {
		resp, _ := office.get("/")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/auth/login", resp.Header.Get("Location"))
	})

	t.Run("new password signs in", func(t *testing.T) {
		office.login("Oasis2025")
		resp, _ := office.get("/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestForgot_UnknownEmailLooksTheSame(t *testing.T) {
	client, mailer, _ := newTestApp(t)

	token := client.csrf("/auth/forgot")
	_, known := client.post("/auth/forgot", url.Values{"csrf_token": {token}, "email": {"ana@hotel.example"}})
	_, unknown := client.post("/auth/forgot", url.Values{"csrf_token": {token}, "email": {"nobody@hotel.example"}})

	assert.Equal(t, known, unknown)
	assert.Len(t, mailer.Messages(), 1)
}

func TestPurgeTokens_StopsWithContext(t *testing.T) {
	_, _, app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		purgeTokens(ctx, app.Resets, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purgeTokens did not stop")
	}
}
