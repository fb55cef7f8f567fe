package service

// package.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.

import "github.com/samber/do/v2"

//nolint:gochecknoglobals
var Package = do.Package(
	do.Lazy(NewUsersSrv),
	do.Lazy(NewBooksSrv),
	do.Lazy(NewNotificationsSrv),
	do.Lazy(NewExtLibsSrv),
)
