// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
)

const accountColumns = `u.*, e.active AS employee_active, p.email, p.first_name, p.last_name, r.name AS role_name`

const accountJoins = `FROM users u
	JOIN employees e ON e.id = u.employee_id
	JOIN persons p ON p.id = e.person_id
	JOIN roles r ON r.id = u.role_id`

// CreateUser inserts a user and sets its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, employee_id, role_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, user.EmployeeID, user.RoleID, user.Active, now, now)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username, ignoring case.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAccountByID retrieves a user together with its contact data.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := r.get(ctx, &account, `SELECT `+accountColumns+` `+accountJoins+` WHERE u.id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetActiveAccountByEmail finds the active account whose employee's contact
// email matches. The comparison follows the column's NOCASE collation.
// When several accounts share an address the oldest one wins.
func (r *Repository) GetActiveAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.get(ctx, &account,
		`SELECT `+accountColumns+` `+accountJoins+`
		 WHERE p.email = ? AND u.active = 1 AND e.active = 1
		 ORDER BY u.id
		 LIMIT 1`, email)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns all accounts ordered by username.
func (r *Repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.selectAll(ctx, &accounts, `SELECT `+accountColumns+` `+accountJoins+` ORDER BY u.username`)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateUserPassword replaces the stored credential of a user.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash []byte) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// SetUserActive enables or disables an account.
func (r *Repository) SetUserActive(ctx context.Context, id int64, active bool) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.get(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}
