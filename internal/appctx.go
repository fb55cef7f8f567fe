package internal

//
// appctx.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"github.com/kmwlk/libsync/internal/model"
)

var CtxUserKey = any("CtxUserKey")

// ContextUser return the authenticated user stored in ctx or nil.
func ContextUser(ctx context.Context) *model.User {
	user, ok := ctx.Value(CtxUserKey).(*model.User)
	if ok {
		return user
	}

	return nil
}

func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, CtxUserKey, user)
}
