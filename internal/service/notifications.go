//
// notifications.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/repository"
)

// NotificationsSrv keep messages for users in the repository; background
// tasks have no caller to report to, so results land here.
type NotificationsSrv struct {
	db         *db.Database
	notifsRepo repository.NotificationsRepository
}

func NewNotificationsSrv(i do.Injector) (*NotificationsSrv, error) {
	database := do.MustInvoke[*db.Database](i)
	repo := do.MustInvoke[repository.NotificationsRepository](i)

	return &NotificationsSrv{database, repo}, nil
}

func (n *NotificationsSrv) NotifyUser(ctx context.Context, msg string, userid int64) error {
	log.Ctx(ctx).Info().Int64("user_id", userid).Str("msg", msg).Msg("notify user")

	return db.InTransaction(ctx, n.db, func(dbctx repository.DBContext) error {
		_, err := n.notifsRepo.SaveNotification(ctx, dbctx,
			&repository.NotificationDB{UserID: &userid, Message: msg})

		return err //nolint:wrapcheck
	})
}

func (n *NotificationsSrv) NotifyRole(ctx context.Context, msg, role string) error {
	log.Ctx(ctx).Info().Str("role", role).Str("msg", msg).Msg("notify role")

	return db.InTransaction(ctx, n.db, func(dbctx repository.DBContext) error {
		_, err := n.notifsRepo.SaveNotification(ctx, dbctx,
			&repository.NotificationDB{Role: role, Message: msg})

		return err //nolint:wrapcheck
	})
}

func (n *NotificationsSrv) ListNotifications(ctx context.Context, user *model.User,
) ([]model.Notification, error) {
	notifsdb, err := db.InConnectionR(ctx, n.db,
		func(dbctx repository.DBContext) ([]repository.NotificationDB, error) {
			return n.notifsRepo.ListNotifications(ctx, dbctx, user.ID, user.Role)
		})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	notifs := make([]model.Notification, 0, len(notifsdb))
	for _, ndb := range notifsdb {
		notifs = append(notifs, ndb.ToModel())
	}

	return notifs, nil
}
