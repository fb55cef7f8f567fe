package service

//
// testhelpers_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	stdlog "log"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/repository"
)

func prepareTests(t *testing.T) (context.Context, *do.RootScope) {
	t.Helper()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout}).With().Caller().Stack().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	ctx := log.Logger.WithContext(context.Background())
	i := do.New(Package, db.Package, repository.Package)

	do.ProvideValue(i, &config.AppConf{
		StorageDir:   t.TempDir(),
		MaxFeedPages: 10,
	})

	database := do.MustInvoke[*db.Database](i)
	if err := database.Connect(ctx, "sqlite3", ":memory:"); err != nil {
		t.Fatalf("connect to db error: %#+v", err)
	}

	if err := database.Migrate(ctx, "sqlite3"); err != nil {
		t.Fatalf("prepare db error: %#+v", err)
	}

	return ctx, i
}

func prepareTestUser(ctx context.Context, t *testing.T, i do.Injector, name string) int64 {
	t.Helper()

	usersSrv := do.MustInvoke[*UsersSrv](i)

	uid, err := usersSrv.AddUser(ctx, &model.User{
		UserName: name,
		Email:    name + "@example.com",
		Name:     "test user " + name,
	}, name+"123")
	if err != nil {
		t.Fatalf("create test user failed: %#+v", err)
	}

	return uid
}

func prepareTestLibrary(ctx context.Context, t *testing.T, i do.Injector, name string) int64 {
	t.Helper()

	extlibsSrv := do.MustInvoke[*ExtLibsSrv](i)

	id, err := extlibsSrv.AddLibrary(ctx, &model.Library{
		Name:     name,
		URL:      "http://" + name + ".example.com",
		OpdsPath: "/opds",
	})
	if err != nil {
		t.Fatalf("create test library failed: %#+v", err)
	}

	return id
}
