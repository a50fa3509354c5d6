// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

type Role struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Active      bool   `db:"active" json:"active"`
}

type Position struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Active      bool   `db:"active" json:"active"`
}

// Person carries contact data. Email is compared case-insensitively.
type Person struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Employee struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	PersonID   int64     `db:"person_id" json:"person_id"`
	PositionID int64     `db:"position_id" json:"position_id"`
	HiredAt    time.Time `db:"hired_at" json:"hired_at"`
	Active     bool      `db:"active" json:"active"`
}
