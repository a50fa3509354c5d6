// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/appcontext"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/htmx"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/i18n"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, assets *appcontext.Assets, sessions *session.Manager, repo *repository.Repository) {
	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	secure := middleware.DefaultSecureConfig
	secure.ReferrerPolicy = "no-referrer"
	e.Use(middleware.SecureWithConfig(secure))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/events"
		},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(staticCacheHeaders())
	e.Use(csrfMiddleware(cfg))
	e.Use(csrfToContext())
	e.Use(customContext(assets))
	e.Use(i18nMiddleware())
	e.Use(AuthMiddleware(sessions, repo))
}

func isSecure(cfg *config.Config) bool {
	return strings.HasPrefix(cfg.Server.BaseURL, "https://")
}

// csrfMiddleware configures CSRF protection.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   isSecure(cfg),
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// csrfToContext copies the CSRF token to the request context.
func csrfToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), appcontext.CSRFToken{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// customContext wraps the Echo context with appcontext.Context and puts the
// asset paths into the request context for templates.
func customContext(assets *appcontext.Assets) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, appcontext.CSSPath{}, assets.CSSPath)
			ctx = context.WithValue(ctx, appcontext.JSPath{}, assets.JSPath)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(&appcontext.Context{
				Context: c,
				Htmx:    htmx.ParseRequest(c.Request()),
				Assets:  assets,
			})
		}
	}
}

// AuthMiddleware resolves the session cookie to the signed-in account.
// Sessions of deactivated accounts and sessions started before the last
// password change are discarded.
func AuthMiddleware(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			if cc == nil {
				return next(c)
			}

			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			account, err := repo.GetAccountByID(ctx, data.UserID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				c.SetCookie(sessions.Clear())
				return next(c)
			case err != nil:
				return err
			}

			if !account.CanSignIn() || session.CredentialStamp(account.PasswordHash) != data.Stamp {
				slog.Info("session_revoked", "user_id", account.ID, "session_id", data.ID)
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			cc.User = account
			cc.Session = data
			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, appcontext.User{}, account)))
			return next(c)
		}
	}
}

// RequireAuth sends anonymous visitors to the sign-in page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			if cc == nil || !cc.IsAuthenticated() {
				htmx.Redirect(c.Response(), c.Request(), "/auth/login")
				return nil
			}
			return next(c)
		}
	}
}

// authRateLimiter limits the credential and reset endpoints per client IP.
// A non-positive limit disables it.
func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	if cfg.RateLimit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RateLimit),
		Burst:     cfg.RateBurst,
		ExpiresIn: 10 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			slog.Warn("rate_limited", "ip", identifier, "path", c.Path())
			return echo.ErrTooManyRequests
		},
	})
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", redactQuery(v.URI)),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// redactQuery keeps reset tokens out of the request log.
func redactQuery(uri string) string {
	if path, query, ok := strings.Cut(uri, "?"); ok && strings.Contains(query, "token=") {
		return path + "?[redacted]"
	}
	return uri
}

// i18nMiddleware sets the locale based on the Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := i18n.MatchLanguage(c.Request().Header.Get("Accept-Language"))
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// staticCacheHeaders adds cache headers for static assets.
func staticCacheHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/static/") {
				if isHashedAsset(path) {
					c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				} else {
					c.Response().Header().Set("Cache-Control", "no-cache")
				}
			}
			return next(c)
		}
	}
}

// isHashedAsset reports whether the file name carries an 8-character
// lowercase hex content hash, as in app.1a2b3c4d.js.
func isHashedAsset(path string) bool {
	parts := strings.Split(path, ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) != 8 {
		return false
	}
	return strings.IndexFunc(hash, func(r rune) bool {
		return (r < '0' || r > '9') && (r < 'a' || r > 'f')
	}) == -1
}
