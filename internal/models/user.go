// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// User is a staff account. PasswordHash holds salt and derived key as
// produced by the credential hasher; it is nil until a password is set.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	EmployeeID   int64     `db:"employee_id" json:"employee_id"`
	RoleID       int64     `db:"role_id" json:"role_id"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HasPassword reports whether a credential has been set for the account.
func (u *User) HasPassword() bool {
	return len(u.PasswordHash) > 0
}

// Account is a user joined with the contact data needed to reach them.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	User
	EmployeeActive bool   `db:"employee_active" json:"employee_active"`
	Email          string `db:"email" json:"email"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	RoleName       string `db:"role_name" json:"role"`
}

// CanSignIn reports whether both the account and its employee are active.
func (a *Account) CanSignIn() bool {
	return a.Active && a.EmployeeActive
}

// DisplayName returns the person's full name, falling back to the username.
func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	default:
		return a.Username
	}
}
