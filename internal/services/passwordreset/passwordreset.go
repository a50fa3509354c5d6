// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package passwordreset issues, validates and consumes single-use password
// reset tokens. Only the SHA-256 hash of a token is stored; the raw value is
// sent to the account's email address and nowhere else.
package passwordreset

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/i18n"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/email"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/templates"
	"github.com/google/uuid"
)

const (
	// TokenBytes is the amount of randomness in a raw token.
	TokenBytes = 32
	// TokenTTL is how long an issued token stays usable.
	TokenTTL = 5 * time.Minute
	// ResetPath is the route the emailed link points to.
	ResetPath = "/auth/reset"

	maxRequestIPLength = 64
	maxUserAgentLength = 256
)

// ErrInvalidToken is returned for unknown, used and expired tokens alike.
var ErrInvalidToken = errors.New("invalid or expired token")

// RequestMeta describes the client that asked for a reset.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ResetInput is a submitted new password form.
type ResetInput struct {
	AccountID    int64
	Token        string
	NewPassword  string
	Confirmation string
}

type Service struct {
	repo      *repository.Repository
	mailer    email.Sender
	validator *auth.PasswordValidator
	baseURL   string
	now       func() time.Time
}

// NewService creates the reset service. A nil now uses time.Now.
func NewService(repo *repository.Repository, mailer email.Sender, baseURL string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		mailer:    mailer,
		validator: auth.DefaultPasswordValidator(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       now,
	}
}

// PasswordValidator returns the policy new passwords are checked against.
func (s *Service) PasswordValidator() *auth.PasswordValidator {
	return s.validator
}

// GenerateToken returns a fresh raw token and the hash to store for it.
func GenerateToken() (raw, hash string, err error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, HashToken(raw), nil
}

// HashToken returns the stored form of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ResetURL builds the link sent to the account owner.
func ResetURL(baseURL string, accountID int64, raw string) string {
	q := url.Values{}
	q.Set("accountId", strconv.FormatInt(accountID, 10))
	q.Set("token", raw)
	return strings.TrimRight(baseURL, "/") + ResetPath + "?" + q.Encode()
}

// RequestReset issues a token for the active account registered under
// emailAddr and mails the reset link. Unknown addresses are a silent no-op
// so callers can answer every request the same way. Only persistence
// failures are returned; mail delivery failures are logged.
func (s *Service) RequestReset(ctx context.Context, emailAddr string, meta RequestMeta) error {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return nil
	}

	account, err := s.repo.GetActiveAccountByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("password_reset_requested", "found", false)
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	raw, hash, err := GenerateToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    account.ID,
		TokenHash: hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(TokenTTL),
		RequestIP: nullString(meta.IP, maxRequestIPLength),
		UserAgent: nullString(meta.UserAgent, maxUserAgentLength),
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.DeleteLivePasswordResetTokens(ctx, account.ID, now); err != nil {
			return fmt.Errorf("failed to revoke previous tokens: %w", err)
		}
		if err := tx.CreatePasswordResetToken(ctx, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("password_reset_requested", "found", true, "user_id", account.ID, "token_id", token.ID)

	if err := s.dispatch(ctx, account, raw); err != nil {
		slog.Error("password_reset_dispatch_failed", "user_id", account.ID, "token_id", token.ID, "error", err)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, account *models.Account, raw string) error {
	var body bytes.Buffer
	view := templates.ResetEmailView{
		Name:      account.DisplayName(),
		ResetURL:  ResetURL(s.baseURL, account.ID, raw),
		ExpiresIn: int(TokenTTL / time.Minute),
	}
	if err := templates.PasswordResetEmail(view).Render(ctx, &body); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	return s.mailer.Send(ctx, account.Email, i18n.T(ctx, "reset_email_subject"), body.String())
}

// ValidateToken returns the stored token when raw is a live token of the
// account.
func (s *Service) ValidateToken(ctx context.Context, accountID int64, raw string) (*models.PasswordResetToken, error) {
	return s.validate(ctx, s.repo, accountID, raw)
}

func (s *Service) validate(ctx context.Context, repo *repository.Repository, accountID int64, raw string) (*models.PasswordResetToken, error) {
	if accountID <= 0 || raw == "" {
		return nil, ErrInvalidToken
	}

	token, err := repo.GetPasswordResetToken(ctx, accountID, HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if !token.IsValid(s.now()) {
		return nil, ErrInvalidToken
	}
	return token, nil
}

// ConsumeAndReset sets a new password using a live token and marks the token
// used. Policy violations are returned as *auth.PasswordValidationError
// before anything is read or written.
func (s *Service) ConsumeAndReset(ctx context.Context, in ResetInput) error {
	if err := s.validator.ValidateWithConfirmation(in.NewPassword, in.Confirmation).Err(); err != nil {
		return err
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		token, err := s.validate(ctx, tx, in.AccountID, in.Token)
		if err != nil {
			return err
		}

		passwordHash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		if err := tx.UpdateUserPassword(ctx, token.UserID, passwordHash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("failed to update password: %w", err)
		}

		marked, err := tx.MarkPasswordResetTokenUsed(ctx, token.ID, s.now())
		if err != nil {
			return fmt.Errorf("failed to mark token used: %w", err)
		}
		if !marked {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			slog.Warn("password_reset_rejected", "user_id", in.AccountID)
		}
		return err
	}

	slog.Info("password_reset_completed", "user_id", in.AccountID)
	return nil
}

// PurgeExpired deletes tokens that can no longer be used.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteStalePasswordResetTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	if n > 0 {
		slog.Info("password_reset_tokens_purged", "count", n)
	}
	return n, nil
}

func nullString(s string, limit int) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	if len(s) > limit {
		s = strings.ToValidUTF8(s[:limit], "")
	}
	return sql.NullString{String: s, Valid: true}
}
