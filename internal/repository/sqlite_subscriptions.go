//
// sqlite_subscriptions.go
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

func (s SqliteRepository) ListSubscriptions(ctx context.Context, dbctx DBContext, libraryid int64,
) ([]SubscriptionDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("library_id", libraryid).Msg("list subscriptions")

	var subs []SubscriptionDB

	err := dbctx.SelectContext(ctx, &subs,
		"SELECT id, library_id, link, user_id, created_at "+
			"FROM subscriptions WHERE library_id=? ORDER BY id",
		libraryid)
	if err != nil {
		return nil, aerr.Wrapf(err, "select subscriptions failed").WithTag(aerr.InternalError)
	}

	return subs, nil
}

func (s SqliteRepository) ListAllSubscriptions(ctx context.Context, dbctx DBContext) ([]SubscriptionDB, error) {
	var subs []SubscriptionDB

	err := dbctx.SelectContext(ctx, &subs,
		"SELECT id, library_id, link, user_id, created_at FROM subscriptions ORDER BY library_id, id")
	if err != nil {
		return nil, aerr.Wrapf(err, "select subscriptions failed").WithTag(aerr.InternalError)
	}

	return subs, nil
}

func (s SqliteRepository) GetSubscriptionByLink(ctx context.Context, dbctx DBContext, libraryid int64,
	link string,
) (SubscriptionDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("library_id", libraryid).Str("link", link).Msg("get subscription")

	sub := SubscriptionDB{}

	err := dbctx.GetContext(ctx, &sub,
		"SELECT id, library_id, link, user_id, created_at "+
			"FROM subscriptions WHERE library_id=? AND link=?",
		libraryid, link)

	switch {
	case err == nil:
		return sub, nil
	case errors.Is(err, sql.ErrNoRows):
		return sub, ErrNoData
	default:
		return sub, aerr.Wrapf(err, "select subscription failed").WithTag(aerr.InternalError)
	}
}

func (s SqliteRepository) SaveSubscription(ctx context.Context, dbctx DBContext, sub *SubscriptionDB,
) (int64, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Object("subscription", sub).Msg("insert subscription")

	res, err := dbctx.ExecContext(ctx,
		"INSERT INTO subscriptions (library_id, link, user_id, created_at) VALUES(?, ?, ?, ?)",
		sub.LibraryID, sub.Link, sub.UserID, time.Now().UTC())
	if err != nil {
		return 0, aerr.Wrapf(err, "insert subscription failed").WithTag(aerr.InternalError)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, aerr.Wrapf(err, "get insert id failed").WithTag(aerr.InternalError)
	}

	return id, nil
}

func (s SqliteRepository) DeleteSubscription(ctx context.Context, dbctx DBContext, libraryid, subid int64,
) error {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("library_id", libraryid).Int64("subscription_id", subid).
		Msg("delete subscription")

	_, err := dbctx.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE library_id=? AND id=?", libraryid, subid)
	if err != nil {
		return aerr.Wrapf(err, "delete subscription failed").WithTag(aerr.InternalError).
			WithMeta("subscription_id", subid)
	}

	return nil
}
