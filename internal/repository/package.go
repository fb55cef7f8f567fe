package repository

//
// package.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import "github.com/samber/do/v2"

var Package = do.Package(
	do.Lazy(func(_ do.Injector) (UsersRepository, error) {
		return SqliteRepository{}, nil
	}),
	do.Lazy(func(_ do.Injector) (LibrariesRepository, error) {
		return SqliteRepository{}, nil
	}),
	do.Lazy(func(_ do.Injector) (SubscriptionsRepository, error) {
		return SqliteRepository{}, nil
	}),
	do.Lazy(func(_ do.Injector) (SavedDownloadsRepository, error) {
		return SqliteRepository{}, nil
	}),
	do.Lazy(func(_ do.Injector) (BooksRepository, error) {
		return SqliteRepository{}, nil
	}),
	do.Lazy(func(_ do.Injector) (NotificationsRepository, error) {
		return SqliteRepository{}, nil
	}),
)
