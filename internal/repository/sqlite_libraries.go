//
// sqlite_libraries.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kmwlk/libsync/internal/aerr"
)

func (s SqliteRepository) GetLibrary(ctx context.Context, dbctx DBContext, libraryid int64) (LibraryDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("library_id", libraryid).Msg("get library")

	library := LibraryDB{}

	err := dbctx.GetContext(ctx, &library,
		"SELECT id, name, url, opds_path, login, password, proxy, created_at "+
			"FROM libraries WHERE id=?",
		libraryid)

	switch {
	case err == nil:
		return library, nil
	case errors.Is(err, sql.ErrNoRows):
		return library, ErrNoData
	default:
		return library, aerr.Wrapf(err, "select library failed").WithTag(aerr.InternalError)
	}
}

func (s SqliteRepository) ListLibraries(ctx context.Context, dbctx DBContext) ([]LibraryDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Msg("list libraries")

	var libraries []LibraryDB

	err := dbctx.SelectContext(ctx, &libraries,
		"SELECT id, name, url, opds_path, login, password, proxy, created_at "+
			"FROM libraries ORDER BY name")
	if err != nil {
		return nil, aerr.Wrapf(err, "select libraries failed").WithTag(aerr.InternalError)
	}

	return libraries, nil
}

func (s SqliteRepository) SaveLibrary(ctx context.Context, dbctx DBContext, library *LibraryDB) (int64, error) {
	logger := log.Ctx(ctx)

	if library.ID == 0 {
		logger.Debug().Object("library", library).Msg("insert library")

		res, err := dbctx.ExecContext(ctx,
			"INSERT INTO libraries (name, url, opds_path, login, password, proxy, created_at) "+
				"VALUES(?, ?, ?, ?, ?, ?, ?)",
			library.Name, library.URL, library.OpdsPath, library.Login, library.Password,
			library.Proxy, time.Now().UTC())
		if err != nil {
			return 0, aerr.Wrapf(err, "insert library failed").WithTag(aerr.InternalError)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return 0, aerr.Wrapf(err, "get insert id failed").WithTag(aerr.InternalError)
		}

		return id, nil
	}

	// update
	logger.Debug().Object("library", library).Msg("update library")

	_, err := dbctx.ExecContext(ctx,
		"UPDATE libraries SET name=?, url=?, opds_path=?, login=?, password=?, proxy=? WHERE id=?",
		library.Name, library.URL, library.OpdsPath, library.Login, library.Password,
		library.Proxy, library.ID)
	if err != nil {
		return 0, aerr.Wrapf(err, "update library failed").WithTag(aerr.InternalError)
	}

	return library.ID, nil
}

// DeleteLibrary remove library with its subscriptions and download ledger.
func (s SqliteRepository) DeleteLibrary(ctx context.Context, dbctx DBContext, libraryid int64) error {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("library_id", libraryid).Msg("delete library")

	if _, err := dbctx.ExecContext(ctx,
		"DELETE FROM saved_downloads WHERE library_id=?", libraryid); err != nil {
		return aerr.Wrapf(err, "delete saved downloads failed").WithTag(aerr.InternalError).
			WithMeta("library_id", libraryid)
	}

	if _, err := dbctx.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE library_id=?", libraryid); err != nil {
		return aerr.Wrapf(err, "delete subscriptions failed").WithTag(aerr.InternalError).
			WithMeta("library_id", libraryid)
	}

	if _, err := dbctx.ExecContext(ctx,
		"DELETE FROM libraries WHERE id=?", libraryid); err != nil {
		return aerr.Wrapf(err, "delete library failed").WithTag(aerr.InternalError).
			WithMeta("library_id", libraryid)
	}

	return nil
}
