// notifications.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal"
	"github.com/kmwlk/libsync/internal/service"
)

// notificationsResource expose messages of the authenticated user.
type notificationsResource struct {
	notifSrv *service.NotificationsSrv
}

func newNotificationsResource(i do.Injector) notificationsResource {
	return notificationsResource{
		notifSrv: do.MustInvoke[*service.NotificationsSrv](i),
	}
}

func (nr notificationsResource) Routes() *chi.Mux {
	router := chi.NewRouter()

	router.Get("/", wrap(nr.listNotifications))

	return router
}

func (nr notificationsResource) listNotifications(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	user := internal.ContextUser(ctx)
	if user == nil {
		unauthorized(w)

		return
	}

	notifs, err := nr.notifSrv.ListNotifications(ctx, user)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Error().Err(err).Msg("list notifications error")

		return
	}

	res := make([]notificationEntry, 0, len(notifs))
	for _, notif := range notifs {
		res = append(res, notificationEntry{
			ID:        notif.ID,
			Message:   notif.Message,
			CreatedAt: notif.CreatedAt,
		})
	}

	render.JSON(w, r, res)
}

//-------------------------------------------------------------

type notificationEntry struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
