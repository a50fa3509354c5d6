// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// Repository runs queries against the database, or against a transaction
// when obtained through WithTx.
type Repository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db, q: db}
}

// DB returns the underlying database handle.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// InTx reports whether the repository is bound to a transaction.
func (r *Repository) InTx() bool {
	_, ok := r.q.(*sqlx.Tx)
	return ok
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. Calling WithTx on a repository that
// is already bound to a transaction reuses it.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.InTx() {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Repository{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(sqlx.GetContext(ctx, r.q, dest, query, args...))
}

func (r *Repository) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, r.q, dest, query, args...)
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
