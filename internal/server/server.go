// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/assets"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/database"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/handlers"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/i18n"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/email"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/passwordreset"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// purgeInterval is how often used and expired reset tokens are deleted.
const purgeInterval = 15 * time.Minute

// App is the wired HTTP application.
type App struct {
	Echo   *echo.Echo
	Resets *passwordreset.Service
	Hub    *sse.Hub
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"mail_driver", cfg.Mail.Driver,
	)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	mailer, err := email.New(ctx, &cfg.Mail)
	if err != nil {
		return fmt.Errorf("failed to set up mail: %w", err)
	}

	app, err := New(cfg, repository.New(db), mailer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeTokens(ctx, app.Resets, purgeInterval)

	return startWithGracefulShutdown(ctx, app.Echo, cfg)
}

// New wires services, middleware and routes into an echo instance.
func New(cfg *config.Config, repo *repository.Repository, mailer email.Sender) (*App, error) {
	if err := i18n.Init(); err != nil {
		return nil, fmt.Errorf("failed to init i18n: %w", err)
	}

	secure := isSecure(cfg)
	sessions, err := session.NewManager(&cfg.Session, secure)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	app := &App{
		Echo:   echo.New(),
		Resets: passwordreset.NewService(repo, mailer, cfg.Server.BaseURL, nil),
		Hub:    sse.NewHub(),
	}

	e := app.Echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	paths := &appcontext.Assets{CSSPath: assets.CSSPath(), JSPath: assets.JSPath()}
	slog.Debug("assets loaded", "css", paths.CSSPath, "js", paths.JSPath)

	setupMiddleware(e, cfg, paths, sessions, repo)
	setupRoutes(e, cfg, routeDeps{
		repo:     repo,
		auth:     auth.NewService(repo),
		sessions: sessions,
		resets:   app.Resets,
		hub:      app.Hub,
	})

	return app, nil
}

type routeDeps struct {
	repo     *repository.Repository
	auth     *auth.Service
	sessions *session.Manager
	resets   *passwordreset.Service
	hub      *sse.Hub
}

func setupRoutes(e *echo.Echo, cfg *config.Config, d routeDeps) {
	h := handlers.New(d.repo)
	authH := handlers.NewAuth(d.auth, d.sessions)
	passwordH := handlers.NewPassword(d.resets, d.hub)
	accountH := handlers.NewAccount(d.auth, d.sessions, d.hub)
	sseH := handlers.NewSSEHandler(d.hub)
	limit := authRateLimiter(cfg.Auth)

	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", assets.FileServer())))
	e.GET("/health", h.Health)

	e.GET("/auth/login", authH.LoginPage)
	e.POST("/auth/login", authH.Login, limit)
	e.POST("/auth/logout", authH.Logout)

	e.GET("/auth/forgot", passwordH.ForgotPage)
	e.POST("/auth/forgot", passwordH.Forgot, limit)
	e.GET(passwordreset.ResetPath, passwordH.ResetPage)
	e.POST(passwordreset.ResetPath, passwordH.Reset, limit)

	e.GET("/", h.Dashboard, RequireAuth())
	e.GET("/account/password", accountH.ChangePasswordPage, RequireAuth())
	e.POST("/account/password", accountH.ChangePassword, RequireAuth(), limit)
	e.GET("/events", sseH.Events)
}

// purgeTokens deletes stale reset tokens every interval until ctx is done.
func purgeTokens(ctx context.Context, resets *passwordreset.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := resets.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				slog.Error("failed to purge reset tokens", "error", err)
			}
		}
	}
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)
	var redirectServer *http.Server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	serve := func(start func() error) {
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	switch tlsResult.Mode {
	case TLSModeOff:
		serve(func() error { return e.Start(addr) })

	case TLSModeACME:
		serve(func() error { return startTLSServer(e, ":443", tlsResult.TLSConfig) })

		redirectServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("redirecting HTTP to HTTPS", "addr", redirectServer.Addr)
			if err := redirectServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		serve(func() error { return startTLSServer(e, addr, tlsResult.TLSConfig) })
	}

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if redirectServer != nil {
		if err := redirectServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.TLSServer.Serve(e.TLSListener)
}
