//
// extlibs.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/extlib"
	"github.com/kmwlk/libsync/internal/feed"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/repository"
)

// ExtLibsSrv owns external library configurations and one synchronization
// engine per library. Engines are created on first use and live until
// shutdown or library removal.
type ExtLibsSrv struct {
	db        *db.Database
	libsRepo  repository.LibrariesRepository
	subsRepo  repository.SubscriptionsRepository
	savedRepo repository.SavedDownloadsRepository
	booksSrv  *BooksSrv
	notifSrv  *NotificationsSrv
	conf      *config.AppConf

	engines *DynamicCache[int64, *extlib.Engine]
	baseCtx context.Context
}

func NewExtLibsSrv(i do.Injector) (*ExtLibsSrv, error) {
	srv := &ExtLibsSrv{
		db:        do.MustInvoke[*db.Database](i),
		libsRepo:  do.MustInvoke[repository.LibrariesRepository](i),
		subsRepo:  do.MustInvoke[repository.SubscriptionsRepository](i),
		savedRepo: do.MustInvoke[repository.SavedDownloadsRepository](i),
		booksSrv:  do.MustInvoke[*BooksSrv](i),
		notifSrv:  do.MustInvoke[*NotificationsSrv](i),
		conf:      do.MustInvoke[*config.AppConf](i),

		// background jobs outlive requests, they log via the process logger
		baseCtx: log.Logger.WithContext(context.Background()),
	}

	srv.engines = NewDynamicCache(srv.createEngine)

	return srv, nil
}

// Shutdown stop all engines. Called by samber/do.
func (s *ExtLibsSrv) Shutdown(_ context.Context) error {
	for _, engine := range s.engines.Drain() {
		engine.Close()
	}

	return nil
}

//-------------------------------------------------------------

// GetFeed fetch and decorate one catalog page of the library.
func (s *ExtLibsSrv) GetFeed(ctx context.Context, libraryid int64, uri string) (*feed.Page, error) {
	engine, err := s.engines.GetOrCreate(libraryid)
	if err != nil {
		return nil, err
	}

	return engine.GetFeed(ctx, uri) //nolint:wrapcheck
}

// Action dispatch one user action on the library; returns the redirect
// target.
func (s *ExtLibsSrv) Action(ctx context.Context, user *model.User, libraryid int64, action string,
	params url.Values,
) (string, error) {
	engine, err := s.engines.GetOrCreate(libraryid)
	if err != nil {
		return "", err
	}

	return engine.Action(ctx, user, action, params) //nolint:wrapcheck
}

// CheckAllSubscriptions poll every subscription of every library; failures
// are isolated per library.
func (s *ExtLibsSrv) CheckAllSubscriptions(ctx context.Context) error {
	libraries, err := s.ListLibraries(ctx)
	if err != nil {
		return err
	}

	for _, lib := range libraries {
		engine, err := s.engines.GetOrCreate(lib.ID)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Object("library", lib).Msg("create engine failed")

			continue
		}

		if err := engine.CheckSubscriptions(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Object("library", lib).Msg("check subscriptions failed")
		}
	}

	return nil
}

// ScheduleCheckAllSubscriptions run the poll pass in background on each
// engine's worker pool.
func (s *ExtLibsSrv) ScheduleCheckAllSubscriptions(ctx context.Context) error {
	libraries, err := s.ListLibraries(ctx)
	if err != nil {
		return err
	}

	for _, lib := range libraries {
		engine, err := s.engines.GetOrCreate(lib.ID)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Object("library", lib).Msg("create engine failed")

			continue
		}

		engine.ScheduleCheckSubscriptions()
	}

	return nil
}

// StartSubscriptionChecker run the periodic polling loop until ctx is
// cancelled. No-op when the interval is not configured.
func (s *ExtLibsSrv) StartSubscriptionChecker(ctx context.Context) error {
	if s.conf.SyncIntervalMin <= 0 {
		log.Ctx(ctx).Info().Msg("subscription checker disabled")

		return nil
	}

	interval := time.Duration(s.conf.SyncIntervalMin) * time.Minute

	log.Ctx(ctx).Info().Msgf("start subscription checker, interval %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.CheckAllSubscriptions(ctx); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("subscription check pass failed")
			}
		}
	}
}

//-------------------------------------------------------------

func (s *ExtLibsSrv) GetLibrary(ctx context.Context, libraryid int64) (model.Library, error) {
	libdb, err := db.InConnectionR(ctx, s.db, func(dbctx repository.DBContext) (repository.LibraryDB, error) {
		return s.libsRepo.GetLibrary(ctx, dbctx, libraryid)
	})

	if errors.Is(err, repository.ErrNoData) {
		return model.Library{}, ErrUnknownLibrary
	} else if err != nil {
		return model.Library{}, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return libdb.ToModel(), nil
}

func (s *ExtLibsSrv) ListLibraries(ctx context.Context) ([]model.Library, error) {
	libsdb, err := db.InConnectionR(ctx, s.db, func(dbctx repository.DBContext) ([]repository.LibraryDB, error) {
		return s.libsRepo.ListLibraries(ctx, dbctx)
	})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	libraries := make([]model.Library, 0, len(libsdb))
	for _, ldb := range libsdb {
		libraries = append(libraries, ldb.ToModel())
	}

	return libraries, nil
}

func (s *ExtLibsSrv) AddLibrary(ctx context.Context, lib *model.Library) (int64, error) {
	if err := lib.Validate(); err != nil {
		return 0, err //nolint:wrapcheck
	}

	libdb := repository.LibraryDBFromModel(lib)

	id, err := db.InTransactionR(ctx, s.db, func(dbctx repository.DBContext) (int64, error) {
		return s.libsRepo.SaveLibrary(ctx, dbctx, &libdb)
	})
	if err != nil {
		return 0, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return id, nil
}

func (s *ExtLibsSrv) DeleteLibrary(ctx context.Context, libraryid int64) error {
	if engine, ok := s.engines.Remove(libraryid); ok {
		engine.Close()
	}

	err := db.InTransaction(ctx, s.db, func(dbctx repository.DBContext) error {
		return s.libsRepo.DeleteLibrary(ctx, dbctx, libraryid)
	})
	if err != nil {
		return aerr.ApplyFor(ErrRepositoryError, err)
	}

	return nil
}

// ListSubscriptions return subscriptions of one library.
func (s *ExtLibsSrv) ListSubscriptions(ctx context.Context, libraryid int64) ([]model.Subscription, error) {
	subsdb, err := db.InConnectionR(ctx, s.db,
		func(dbctx repository.DBContext) ([]repository.SubscriptionDB, error) {
			return s.subsRepo.ListSubscriptions(ctx, dbctx, libraryid)
		})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	subs := make([]model.Subscription, 0, len(subsdb))
	for _, sdb := range subsdb {
		subs = append(subs, sdb.ToModel())
	}

	return subs, nil
}

//-------------------------------------------------------------

func (s *ExtLibsSrv) createEngine(libraryid int64) (*extlib.Engine, error) {
	lib, err := s.GetLibrary(s.baseCtx, libraryid)
	if err != nil {
		return nil, err
	}

	client, err := feed.NewHTTPClient(&lib)
	if err != nil {
		return nil, aerr.Wrapf(err, "create library client failed").WithMeta("library_id", libraryid)
	}

	log.Ctx(s.baseCtx).Info().Object("library", lib).Msg("engine created")

	return extlib.NewEngine(s.baseCtx, &lib, extlib.EngineDeps{
		Client:        client,
		Downloader:    client,
		Subscriptions: &subscriptionStore{srv: s, libraryID: libraryid},
		Ledger:        &downloadLedger{srv: s, libraryID: libraryid},
		Books:         s.booksSrv,
		Notifier:      s.notifSrv,
		MaxPages:      s.conf.MaxFeedPages,
	}), nil
}

//-------------------------------------------------------------

// subscriptionStore adapt the subscriptions repository to one library's
// engine.
type subscriptionStore struct {
	srv       *ExtLibsSrv
	libraryID int64
}

func (s *subscriptionStore) List(ctx context.Context) ([]model.Subscription, error) {
	return s.srv.ListSubscriptions(ctx, s.libraryID)
}

func (s *subscriptionStore) FindByLink(ctx context.Context, link string) (*model.Subscription, error) {
	subdb, err := db.InConnectionR(ctx, s.srv.db,
		func(dbctx repository.DBContext) (repository.SubscriptionDB, error) {
			return s.srv.subsRepo.GetSubscriptionByLink(ctx, dbctx, s.libraryID, link)
		})

	switch {
	case errors.Is(err, repository.ErrNoData):
		return nil, nil //nolint:nilnil
	case err != nil:
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	sub := subdb.ToModel()

	return &sub, nil
}

func (s *subscriptionStore) Add(ctx context.Context, link string, userID int64) (*model.Subscription, error) {
	subdb := repository.SubscriptionDB{LibraryID: s.libraryID, Link: link, UserID: userID}

	id, err := db.InTransactionR(ctx, s.srv.db, func(dbctx repository.DBContext) (int64, error) {
		return s.srv.subsRepo.SaveSubscription(ctx, dbctx, &subdb)
	})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	subdb.ID = id
	sub := subdb.ToModel()

	return &sub, nil
}

func (s *subscriptionStore) Delete(ctx context.Context, id int64) error {
	err := db.InTransaction(ctx, s.srv.db, func(dbctx repository.DBContext) error {
		return s.srv.subsRepo.DeleteSubscription(ctx, dbctx, s.libraryID, id)
	})
	if err != nil {
		return aerr.ApplyFor(ErrRepositoryError, err)
	}

	return nil
}

// downloadLedger adapt the saved downloads repository to one library's
// engine.
type downloadLedger struct {
	srv       *ExtLibsSrv
	libraryID int64
}

func (l *downloadLedger) FindSavedExtIDs(ctx context.Context, extIDs []string) ([]string, error) {
	found, err := db.InConnectionR(ctx, l.srv.db, func(dbctx repository.DBContext) ([]string, error) {
		return l.srv.savedRepo.FindSavedExtIDs(ctx, dbctx, l.libraryID, extIDs)
	})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return found, nil
}

func (l *downloadLedger) SaveDownload(ctx context.Context, extID string, bookID int64) error {
	err := db.InTransaction(ctx, l.srv.db, func(dbctx repository.DBContext) error {
		return l.srv.savedRepo.SaveDownload(ctx, dbctx,
			&repository.SavedDownloadDB{LibraryID: l.libraryID, ExtID: extID, BookID: bookID})
	})
	if err != nil {
		return aerr.ApplyFor(ErrRepositoryError, err)
	}

	return nil
}
