package service

//
// notifications_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/assert"
	"github.com/kmwlk/libsync/internal/model"
)

func TestNotifications(t *testing.T) {
	ctx, i := prepareTests(t)
	notifSrv := do.MustInvoke[*NotificationsSrv](i)
	usersSrv := do.MustInvoke[*UsersSrv](i)

	uid := prepareTestUser(ctx, t, i, "user1")

	adminID, err := usersSrv.AddUser(ctx,
		&model.User{UserName: "admin", Role: model.RoleAdmin}, "admin123")
	assert.NoErr(t, err)

	assert.NoErr(t, notifSrv.NotifyUser(ctx, "downloaded 2", uid))
	assert.NoErr(t, notifSrv.NotifyRole(ctx, "ambiguous links on lib1", model.RoleAdmin))

	// user sees only own messages
	user, err := usersSrv.GetUserByID(ctx, uid)
	assert.NoErr(t, err)

	notifs, err := notifSrv.ListNotifications(ctx, &user)
	assert.NoErr(t, err)
	assert.Equal(t, len(notifs), 1)
	assert.Equal(t, notifs[0].Message, "downloaded 2")

	// admin sees role messages
	admin, err := usersSrv.GetUserByID(ctx, adminID)
	assert.NoErr(t, err)

	notifs, err = notifSrv.ListNotifications(ctx, &admin)
	assert.NoErr(t, err)
	assert.Equal(t, len(notifs), 1)
	assert.Equal(t, notifs[0].Message, "ambiguous links on lib1")
}
