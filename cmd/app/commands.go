// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/database"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/repository"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/server"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/auth"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/services/passwordreset"
	"github.com/urfave/cli/v3"
)

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "Create a staff account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Initial password", Sources: cli.EnvVars("BACKOFFICE_PASSWORD")},
			&cli.StringFlag{Name: "first-name"},
			&cli.StringFlag{Name: "last-name"},
			&cli.StringFlag{Name: "role", Usage: "Role name (default: admin for the first account, staff otherwise)"},
			&cli.StringFlag{Name: "position", Value: "Front desk"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.String("password") == "" {
				return errors.New("--password or BACKOFFICE_PASSWORD is required")
			}
			return withRepository(cmd, func(repo *repository.Repository) error {
				account, err := auth.NewService(repo).CreateUser(ctx, auth.CreateUserParams{
					Username:  cmd.String("username"),
					Password:  cmd.String("password"),
					Email:     cmd.String("email"),
					FirstName: cmd.String("first-name"),
					LastName:  cmd.String("last-name"),
					Role:      cmd.String("role"),
					Position:  cmd.String("position"),
				})
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}
				_, err = fmt.Fprintf(cmd.Root().Writer, "created %s (%s)\n", account.Username, account.RoleName)
				return err
			})
		},
	}
}

func listUsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-users",
		Usage: "List staff accounts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepository(cmd, func(repo *repository.Repository) error {
				accounts, err := auth.NewService(repo).ListAccounts(ctx)
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tROLE\tSTATUS")
				for _, a := range accounts {
					status := "active"
					if !a.CanSignIn() {
						status = "inactive"
					}
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Username, a.DisplayName(), a.Email, a.RoleName, status)
				}
				return w.Flush()
			})
		},
	}
}

// setActiveCommand builds activate-user and deactivate-user.
func setActiveCommand(name, usage string, active bool) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepository(cmd, func(repo *repository.Repository) error {
				account, err := auth.NewService(repo).SetActive(ctx, cmd.String("username"), active)
				if err != nil {
					return fmt.Errorf("failed to update user: %w", err)
				}
				state := "deactivated"
				if account.Active {
					state = "activated"
				}
				_, err = fmt.Fprintf(cmd.Root().Writer, "%s %s\n", state, account.Username)
				return err
			})
		},
	}
}

func purgeTokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-tokens",
		Usage: "Delete used and expired password reset tokens",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepository(cmd, func(repo *repository.Repository) error {
				_, err := passwordreset.NewService(repo, nil, "", nil).PurgeExpired(ctx)
				return err
			})
		},
	}
}

// withRepository opens the configured database for a one-off command.
func withRepository(cmd *cli.Command, fn func(repo *repository.Repository) error) error {
	cfg := config.NewFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	return fn(repository.New(db))
}
