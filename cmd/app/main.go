// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"codeberg.org/oliverandrich/hotel-backoffice/internal/server"
	"github.com/urfave/cli/v3"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "backoffice",
		Usage:   "Hotel back office",
		Version: Version,
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			createUserCommand(),
			listUsersCommand(),
			setActiveCommand("activate-user", "Allow an account to sign in again", true),
			setActiveCommand("deactivate-user", "Stop an account from signing in", false),
			purgeTokensCommand(),
		},
	}
}
