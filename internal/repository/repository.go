//
// repository.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBContext is the database access object repositories operate on; both
// connections and transactions satisfy it.
type DBContext interface {
	sqlx.QueryerContext
	sqlx.PreparerContext
	sqlx.ExecerContext

	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// ------------------------------------------------------

type UsersRepository interface {
	// GetUser return user by name; ErrNoData when not found.
	GetUser(ctx context.Context, dbctx DBContext, username string) (UserDB, error)
	GetUserByID(ctx context.Context, dbctx DBContext, userid int64) (UserDB, error)
	SaveUser(ctx context.Context, dbctx DBContext, user *UserDB) (int64, error)
	ListUsers(ctx context.Context, dbctx DBContext) ([]UserDB, error)
}

type LibrariesRepository interface {
	GetLibrary(ctx context.Context, dbctx DBContext, libraryid int64) (LibraryDB, error)
	ListLibraries(ctx context.Context, dbctx DBContext) ([]LibraryDB, error)
	SaveLibrary(ctx context.Context, dbctx DBContext, library *LibraryDB) (int64, error)
	// DeleteLibrary and all dependent objects.
	DeleteLibrary(ctx context.Context, dbctx DBContext, libraryid int64) error
}

type SubscriptionsRepository interface {
	ListSubscriptions(ctx context.Context, dbctx DBContext, libraryid int64) ([]SubscriptionDB, error)
	ListAllSubscriptions(ctx context.Context, dbctx DBContext) ([]SubscriptionDB, error)
	// GetSubscriptionByLink return subscription for (library, link);
	// ErrNoData when not found.
	GetSubscriptionByLink(ctx context.Context, dbctx DBContext, libraryid int64, link string,
	) (SubscriptionDB, error)
	SaveSubscription(ctx context.Context, dbctx DBContext, sub *SubscriptionDB) (int64, error)
	// DeleteSubscription is a no-op when id is unknown.
	DeleteSubscription(ctx context.Context, dbctx DBContext, libraryid, subid int64) error
}

type SavedDownloadsRepository interface {
	// FindSavedExtIDs return the subset of extids already recorded for the
	// library.
	FindSavedExtIDs(ctx context.Context, dbctx DBContext, libraryid int64, extids []string,
	) ([]string, error)
	// SaveDownload insert a ledger row; an existing (library, ext id) row is
	// left untouched.
	SaveDownload(ctx context.Context, dbctx DBContext, rec *SavedDownloadDB) error
}

type BooksRepository interface {
	GetBook(ctx context.Context, dbctx DBContext, bookid int64) (BookDB, error)
	SaveBook(ctx context.Context, dbctx DBContext, book *BookDB) (int64, error)
	ListBooks(ctx context.Context, dbctx DBContext) ([]BookDB, error)
}

type NotificationsRepository interface {
	SaveNotification(ctx context.Context, dbctx DBContext, notif *NotificationDB) (int64, error)
	// ListNotifications return messages addressed to the user directly or
	// via role.
	ListNotifications(ctx context.Context, dbctx DBContext, userid int64, role string,
	) ([]NotificationDB, error)
}

type Repository interface {
	UsersRepository
	LibrariesRepository
	SubscriptionsRepository
	SavedDownloadsRepository
	BooksRepository
	NotificationsRepository
}
