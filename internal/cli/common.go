package cli

//
// common.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/repository"
	"github.com/kmwlk/libsync/internal/service"
)

func wrap(
	cmdfunc func(ctx context.Context, clicmd *cli.Command, i do.Injector) error,
) func(ctx context.Context, clicmd *cli.Command) error {
	return func(ctx context.Context, clicmd *cli.Command) error {
		if err := initializeLogger(clicmd.String("log.level"), clicmd.String("log.format")); err != nil {
			return err
		}

		ctx = log.Logger.WithContext(ctx)

		dbconf := config.NewDBConfig(clicmd.String("db.driver"), clicmd.String("db.connstr"))
		if err := dbconf.Validate(); err != nil {
			return aerr.Wrapf(err, "invalid database configuration")
		}

		appconf := config.AppConf{
			StorageDir:      clicmd.String("storage-dir"),
			SyncIntervalMin: int(clicmd.Int("sync-interval")),
			MaxFeedPages:    int(clicmd.Int("max-feed-pages")),
		}
		if err := appconf.Validate(); err != nil {
			return aerr.Wrapf(err, "invalid application configuration")
		}

		injector := createInjector(ctx)
		do.ProvideValue(injector, &dbconf)
		do.ProvideValue(injector, &appconf)

		database := do.MustInvoke[*db.Database](injector)
		if err := database.Connect(ctx, dbconf.Driver, dbconf.Connstr); err != nil {
			return aerr.Wrapf(err, "connect to database failed")
		}

		defer shutdownInjector(ctx, injector)

		return cmdfunc(ctx, clicmd, injector)
	}
}

func createInjector(ctx context.Context) do.Injector {
	injector := do.New(
		service.Package,
		db.Package,
		repository.Package,
	)

	logger := log.Ctx(ctx)
	logger.Debug().Msgf("Available services: %v", injector.ListProvidedServices())

	return injector
}

func shutdownInjector(ctx context.Context, injector do.Injector) {
	report := injector.RootScope().Shutdown()
	if report != nil && !report.Succeed {
		log.Ctx(ctx).Error().Msgf("shutdown services error: %s", report.Error())
	}
}
