// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

func prepareGoose() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect("sqlite3")
}

// RunMigrations applies all pending migrations.
func RunMigrations(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Up(db, migrationsDir)
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Down(db, migrationsDir)
}

// MigrateReset rolls back all migrations.
func MigrateReset(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Reset(db, migrationsDir)
}

// Version returns the currently applied schema version.
func Version(db *sql.DB) (int64, error) {
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}
