//
// database.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package cli

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/db"
)

func newMigrateCmd() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "update database",
		Action: wrap(migrateCmd),
	}
}

//nolint:forbidigo
func migrateCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	database := do.MustInvoke[*db.Database](injector)
	dbconf := do.MustInvoke[*config.DBConfig](injector)

	if err := database.Migrate(ctx, dbconf.Driver); err != nil {
		return fmt.Errorf("migrate error: %w", err)
	}

	fmt.Println("Migration finished")

	return nil
}

func newMaintenanceCmd() *cli.Command {
	return &cli.Command{
		Name:   "maintenance",
		Usage:  "run database maintenance",
		Action: wrap(maintenanceCmd),
	}
}

//nolint:forbidigo
func maintenanceCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	database := do.MustInvoke[*db.Database](injector)

	if err := database.Maintenance(ctx); err != nil {
		return fmt.Errorf("maintenance error: %w", err)
	}

	fmt.Println("Maintenance finished")

	return nil
}
