// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidUsername    = errors.New("username is required")
)

// dummyHash is verified against when the user is unknown so that failed
// logins take the same time either way.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := HashPassword("dummy-password-for-timing")
	return hash
})

type Service struct {
	repo              *repository.Repository
	passwordValidator *PasswordValidator
}

func NewService(repo *repository.Repository) *Service {
	return &Service{
		repo:              repo,
		passwordValidator: DefaultPasswordValidator(),
	}
}

// PasswordValidator returns the password validator for use in handlers
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// DefaultRole is the role given to a new account when none is requested. The
// first account of an installation administers it.
func DefaultRole(existingUsers int64) string {
	if existingUsers == 0 {
		return RoleAdmin
	}
	return RoleStaff
}

// CreateUserParams holds everything needed to set up a staff account.
type CreateUserParams struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	Position  string
}

// CreateUser creates the person, employee and user records of a new staff
// account in one transaction.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*models.Account, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.TrimSpace(params.Email)

	if params.Username == "" {
		return nil, ErrInvalidUsername
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := s.passwordValidator.Validate(params.Password).Err(); err != nil {
		return nil, err
	}

	if params.Position == "" {
		params.Position = "Staff"
	}
	if params.FirstName == "" {
		params.FirstName = params.Username
	}

	passwordHash, err := HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var userID int64
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		_, err := tx.GetUserByUsername(ctx, params.Username)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		if params.Role == "" {
			count, err := tx.CountUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to count users: %w", err)
			}
			params.Role = DefaultRole(count)
		}

		role, err := tx.GetOrCreateRole(ctx, params.Role)
		if err != nil {
			return fmt.Errorf("failed to get role: %w", err)
		}
		position, err := tx.GetOrCreatePosition(ctx, params.Position)
		if err != nil {
			return fmt.Errorf("failed to get position: %w", err)
		}

		person := &models.Person{FirstName: params.FirstName, LastName: params.LastName, Email: params.Email}
		if err := tx.CreatePerson(ctx, person); err != nil {
			return fmt.Errorf("failed to create person: %w", err)
		}

		employee := &models.Employee{PersonID: person.ID, PositionID: position.ID, Active: true}
		if err := tx.CreateEmployee(ctx, employee); err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		user := &models.User{
			Username:     params.Username,
			PasswordHash: passwordHash,
			EmployeeID:   employee.ID,
			RoleID:       role.ID,
			Active:       true,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user_created", "user_id", userID, "username", params.Username, "role", params.Role)

	return s.repo.GetAccountByID(ctx, userID)
}

// Login authenticates an active account by username and password. Accounts
// whose user or employee record is deactivated cannot sign in.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Account, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			VerifyPassword(password, dummyHash())
			slog.Warn("login_failed", "username", username, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	account, err := s.repo.GetAccountByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.CanSignIn() {
		slog.Warn("login_failed", "username", username, "reason", "inactive")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "username", user.Username)
	return account, nil
}

// ChangePassword changes a user's password when they know the current one.
// It returns the updated account so the caller can reissue the session.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword, confirmation string) (*models.Account, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(currentPassword, user.PasswordHash) {
		slog.Warn("password_change_failed", "user_id", userID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if err := s.passwordValidator.ValidateWithConfirmation(newPassword, confirmation).Err(); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdateUserPassword(ctx, userID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_changed", "user_id", userID)
	return s.repo.GetAccountByID(ctx, userID)
}

// SetActive enables or disables the account with the given username.
// Sessions of a disabled account stop working on their next request.
func (s *Service) SetActive(ctx context.Context, username string, active bool) (*models.Account, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.SetUserActive(ctx, user.ID, active); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user_active_changed", "user_id", user.ID, "username", user.Username, "active", active)
	return s.repo.GetAccountByID(ctx, user.ID)
}

// ListAccounts returns every account ordered by username.
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.repo.ListAccounts(ctx)
}
