package cli

//
// serve.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Merovius/systemd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/server"
	"github.com/kmwlk/libsync/internal/service"
)

func newStartServerCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Value:   ":8080",
				Usage:   "listen address",
				Aliases: []string{"a"},
				Sources: cli.EnvVars("LIBSYNC_SERVER_ADDRESS"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "web-root",
				Value:   "/",
				Usage:   "path root",
				Sources: cli.EnvVars("LIBSYNC_SERVER_WEBROOT"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.BoolFlag{
				Name:    "enable-metrics",
				Usage:   "enable prometheus metrics (/metrics endpoint)",
				Sources: cli.EnvVars("LIBSYNC_SERVER_METRICS"),
			},
			&cli.StringFlag{
				Name:      "cert",
				Usage:     "tls certificate file",
				Sources:   cli.EnvVars("LIBSYNC_SERVER_CERT"),
				Config:    cli.StringConfig{TrimSpace: true},
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:      "key",
				Usage:     "tls key file",
				Sources:   cli.EnvVars("LIBSYNC_SERVER_KEY"),
				Config:    cli.StringConfig{TrimSpace: true},
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "mgmt-address",
				Value:   "",
				Usage:   "listen address for management endpoints; empty disable management; may be the same as main 'address'",
				Aliases: []string{"m"},
				Sources: cli.EnvVars("LIBSYNC_MGMT_SERVER_ADDRESS"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "mgmt-access-list",
				Value:   "",
				Usage:   "list of ip or networks separated by ',' allowed to connected to mgmt endpoints.",
				Sources: cli.EnvVars("LIBSYNC_MGMT_SERVER_ACCESS_LIST"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
		},
		Action: wrap(startServerCmd),
	}
}

func startServerCmd(ctx context.Context, clicmd *cli.Command, rootInjector do.Injector) error {
	injector := rootInjector.Scope("server", server.Package)

	serverConf := config.ServerConf{
		MainServer: config.ListenConf{
			Address: strings.TrimSpace(clicmd.String("address")),
			WebRoot: strings.TrimSuffix(clicmd.String("web-root"), "/"),
			TLSKey:  clicmd.String("key"),
			TLSCert: clicmd.String("cert"),
		},
		MgmtServer: config.ListenConf{
			Address: strings.TrimSpace(clicmd.String("mgmt-address")),
			// mgmt not use for now tls/webroot
		},
		EnableMetrics:  clicmd.Bool("enable-metrics"),
		MgmtAccessList: clicmd.String("mgmt-access-list"),
	}

	if err := serverConf.Validate(); err != nil {
		return aerr.Wrapf(err, "server config validation failed")
	}

	do.ProvideValue(injector, &serverConf)

	s := srv{}

	return s.start(ctx, injector, &serverConf)
}

type srv struct{}

func (s *srv) start(ctx context.Context, injector do.Injector, cfg *config.ServerConf) error {
	logger := log.Ctx(ctx)
	logger.Log().Msgf("Starting libsync (%s)...", config.VersionString)

	s.startSystemdWatchdog(logger)

	database := do.MustInvoke[*db.Database](injector)
	if cfg.EnableMetrics {
		database.RegisterMetrics(true)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	websrv := do.MustInvoke[*server.Server](injector)
	if err := websrv.Start(ctx); err != nil {
		logger.Error().Err(err).Msgf("start server failed error=%q", err)

		return aerr.New("failed start server")
	}

	if cfg.SeparateMgmtEnabled() {
		msrv := do.MustInvoke[*server.MgmtServer](injector)
		if err := msrv.Start(ctx); err != nil {
			logger.Error().Err(err).Msgf("start mgmt server failed error=%q", err)

			return aerr.New("failed start mgmt server")
		}
	}

	go s.runBackgroundMaintenance(ctx, database)

	extlibsSrv := do.MustInvoke[*service.ExtLibsSrv](injector)
	go s.runSubscriptionChecker(ctx, extlibsSrv)

	systemd.NotifyReady()           //nolint:errcheck
	systemd.NotifyStatus("running") //nolint:errcheck

	<-ctx.Done()

	systemd.NotifyStatus("stopped") //nolint:errcheck

	return nil
}

func (*srv) startSystemdWatchdog(logger *zerolog.Logger) {
	if ok, dur, err := systemd.AutoWatchdog(); ok {
		logger.Info().Msgf("Systemd: autowatchdog started; duration=%s", dur)
	} else if err != nil {
		logger.Warn().Err(err).Msgf("Systemd: autowatchdog start error=%q", err)
	}
}

func (*srv) runBackgroundMaintenance(ctx context.Context, database *db.Database) {
	if err := database.StartBackgroundMaintenance(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("background maintenance stopped")
	}
}

func (*srv) runSubscriptionChecker(ctx context.Context, extlibsSrv *service.ExtLibsSrv) {
	if err := extlibsSrv.StartSubscriptionChecker(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("subscription checker stopped")
	}
}
