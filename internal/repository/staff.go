// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/models"
)

// GetOrCreateRole returns the role with the given name, creating it if needed.
func (r *Repository) GetOrCreateRole(ctx context.Context, name string) (*models.Role, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO roles (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := r.get(ctx, &role, `SELECT * FROM roles WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetOrCreatePosition returns the position with the given name, creating it if needed.
func (r *Repository) GetOrCreatePosition(ctx context.Context, name string) (*models.Position, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO positions (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return nil, err
	}

	var position models.Position
	if err := r.get(ctx, &position, `SELECT * FROM positions WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return &position, nil
}

// CreatePerson inserts a person and sets its ID.
func (r *Repository) CreatePerson(ctx context.Context, person *models.Person) error {
	person.CreatedAt = time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO persons (first_name, last_name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`,
		person.FirstName, person.LastName, person.Email, person.Phone, person.CreatedAt)
	if err != nil {
		return err
	}
	person.ID, err = result.LastInsertId()
	return err
}

// CreateEmployee inserts an employee and sets its ID.
func (r *Repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	if employee.HiredAt.IsZero() {
		employee.HiredAt = time.Now().UTC()
	}
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO employees (person_id, position_id, hired_at, active) VALUES (?, ?, ?, ?)`,
		employee.PersonID, employee.PositionID, employee.HiredAt, employee.Active)
	if err != nil {
		return err
	}
	employee.ID, err = result.LastInsertId()
	return err
}

// SetEmployeeActive enables or disables an employee.
func (r *Repository) SetEmployeeActive(ctx context.Context, id int64, active bool) error {
	result, err := r.q.ExecContext(ctx, `UPDATE employees SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if n > 1 {
		return errors.New("more than one row affected")
	}
	return nil
}
