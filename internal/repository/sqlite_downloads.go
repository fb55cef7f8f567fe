//
// sqlite_downloads.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/kmwlk/libsync/internal/aerr"
)

func (s SqliteRepository) FindSavedExtIDs(ctx context.Context, dbctx DBContext, libraryid int64,
	extids []string,
) ([]string, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("library_id", libraryid).Int("candidates", len(extids)).
		Msg("find saved ext ids")

	if len(extids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT ext_id FROM saved_downloads WHERE library_id=? AND ext_id IN (?)",
		libraryid, extids)
	if err != nil {
		return nil, aerr.Wrapf(err, "build ext ids query failed").WithTag(aerr.InternalError)
	}

	var found []string

	if err := dbctx.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, aerr.Wrapf(err, "select saved downloads failed").WithTag(aerr.InternalError)
	}

	return found, nil
}

func (s SqliteRepository) SaveDownload(ctx context.Context, dbctx DBContext, rec *SavedDownloadDB) error {
	logger := log.Ctx(ctx)
	logger.Debug().Object("download", rec).Msg("insert saved download")

	// ledger rows are append-only; a concurrent duplicate insert for the same
	// (library, ext id) is already-satisfied
	_, err := dbctx.ExecContext(ctx,
		"INSERT OR IGNORE INTO saved_downloads (library_id, ext_id, book_id, created_at) "+
			"VALUES(?, ?, ?, ?)",
		rec.LibraryID, rec.ExtID, rec.BookID, time.Now().UTC())
	if err != nil {
		return aerr.Wrapf(err, "insert saved download failed").WithTag(aerr.InternalError).
			WithMeta("ext_id", rec.ExtID)
	}

	return nil
}
