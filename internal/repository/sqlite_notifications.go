//
// sqlite_notifications.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kmwlk/libsync/internal/aerr"
)

func (s SqliteRepository) SaveNotification(ctx context.Context, dbctx DBContext, notif *NotificationDB,
) (int64, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Object("notification", notif).Msg("insert notification")

	res, err := dbctx.ExecContext(ctx,
		"INSERT INTO notifications (user_id, role, message, created_at) VALUES(?, ?, ?, ?)",
		notif.UserID, notif.Role, notif.Message, time.Now().UTC())
	if err != nil {
		return 0, aerr.Wrapf(err, "insert notification failed").WithTag(aerr.InternalError)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, aerr.Wrapf(err, "get insert id failed").WithTag(aerr.InternalError)
	}

	return id, nil
}

func (s SqliteRepository) ListNotifications(ctx context.Context, dbctx DBContext, userid int64,
	role string,
) ([]NotificationDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("user_id", userid).Str("role", role).Msg("list notifications")

	var notifs []NotificationDB

	err := dbctx.SelectContext(ctx, &notifs,
		"SELECT id, user_id, role, message, created_at "+
			"FROM notifications WHERE user_id=? OR role=? ORDER BY id DESC",
		userid, role)
	if err != nil {
		return nil, aerr.Wrapf(err, "select notifications failed").WithTag(aerr.InternalError)
	}

	return notifs, nil
}
