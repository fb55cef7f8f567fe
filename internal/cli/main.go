package cli

//
// main.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/config"
)

//nolint:forbidigo
func Main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "print-version",
		Aliases: []string{"V"},
		Usage:   "Print version.",
	}

	cli := &cli.Command{
		Name:    "libsync",
		Version: config.VersionString,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "db.connstr",
				Value:     "libsync.sqlite?_fk=1&_journal_mode=WAL&_synchronous=NORMAL",
				Usage:     "Database file",
				Aliases:   []string{"D"},
				Sources:   cli.EnvVars("LIBSYNC_DB"),
				Validator: dbConnstrValidator,
				Config:    cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "db.driver",
				Value:   "sqlite3",
				Usage:   "Database driver (sqlite3)",
				Sources: cli.EnvVars("LIBSYNC_DB_DRIVER"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "storage-dir",
				Value:   "./storage",
				Usage:   "Directory for downloaded content",
				Sources: cli.EnvVars("LIBSYNC_STORAGE_DIR"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.IntFlag{
				Name:    "max-feed-pages",
				Value:   100,
				Usage:   "Limit of pages loaded when walking remote feeds",
				Sources: cli.EnvVars("LIBSYNC_MAX_FEED_PAGES"),
			},
			&cli.IntFlag{
				Name:    "sync-interval",
				Value:   0,
				Usage:   "Subscription polling interval in minutes; 0 disables polling",
				Sources: cli.EnvVars("LIBSYNC_SYNC_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "log.level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LIBSYNC_LOGLEVEL"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "log.format",
				Value:   "console",
				Usage:   "Log format (console, logfmt, json, journald, syslog)",
				Sources: cli.EnvVars("LIBSYNC_LOGFORMAT"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
		},
		Commands: []*cli.Command{
			newStartServerCmd(),
			newCheckSubscriptionsCmd(),
			databaseSubCmd(),
			usersSubCmd(),
			librariesSubCmd(),
		},
	}

	if err := cli.Run(context.Background(), os.Args); err != nil {
		if h := aerr.GetUserMessage(err); h != "" {
			fmt.Printf("Error: %s\n", h)
		} else {
			fmt.Printf("Error: %s\n", err.Error())
		}

		if cli.String("log.level") == "debug" {
			fmt.Printf("Error: %#+v\n", err)
		}
	}
}

func usersSubCmd() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "manage users",
		Commands: []*cli.Command{
			newAddUserCmd(),
			newListUsersCmd(),
		},
	}
}

func databaseSubCmd() *cli.Command {
	return &cli.Command{
		Name:  "database",
		Usage: "manage database",
		Commands: []*cli.Command{
			newMigrateCmd(),
			newMaintenanceCmd(),
		},
	}
}

func librariesSubCmd() *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "manage external libraries",
		Commands: []*cli.Command{
			newAddLibraryCmd(),
			newListLibrariesCmd(),
			newDeleteLibraryCmd(),
			newListSubscriptionsCmd(),
		},
	}
}

//---------------------------------------------------------------------

func dbConnstrValidator(connstr string) error {
	if connstr == "" {
		return aerr.New("database connection string cannot be empty")
	}

	return nil
}
