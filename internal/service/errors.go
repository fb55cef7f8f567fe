package service

//
// errors.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/kmwlk/libsync/internal/aerr"
)

var (
	ErrRepositoryError = aerr.New("database error").
				WithTag(aerr.InternalError).
				WithUserMsg("database error")

	ErrUnknownUser = aerr.New("unknown user").
			WithTag(aerr.ValidationError).
			WithUserMsg("unknown user")

	ErrUnauthorized = aerr.New("unauthorized").
			WithUserMsg("invalid user or password")

	ErrUserExists = aerr.New("user already exists").
			WithTag(aerr.ValidationError).
			WithUserMsg("user already exists")

	ErrUnknownLibrary = aerr.New("unknown library").
				WithTag(aerr.ValidationError).
				WithUserMsg("unknown library")
)
