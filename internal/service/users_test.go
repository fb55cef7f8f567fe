package service

//
// users_test.go
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

func TestUsers(t *testing.T) {
	ctx, i := prepareTests(t)
	usersSrv := do.MustInvoke[*UsersSrv](i)

	_, err := usersSrv.LoginUser(ctx, "test", "test123")
	assert.ErrSpec(t, err, ErrUnknownUser)

	newuser := model.User{UserName: "test", Email: "test@example.com", Name: "test user 1"}
	uid, err := usersSrv.AddUser(ctx, &newuser, "test123")
	assert.NoErr(t, err)
	assert.True(t, uid > 0)

	user, err := usersSrv.LoginUser(ctx, "test", "test123")
	assert.NoErr(t, err)
	assert.Equal(t, user.Name, newuser.Name)
	assert.Equal(t, user.UserName, newuser.UserName)
	assert.Equal(t, user.Email, newuser.Email)
	assert.Equal(t, user.Role, model.RoleUser)

	_, err = usersSrv.LoginUser(ctx, "test", "test1233")
	assert.ErrSpec(t, err, ErrUnauthorized)

	// try double user
	newuser2 := model.User{UserName: "test", Email: "test2@example.com", Name: "test user 2"}
	_, err = usersSrv.AddUser(ctx, &newuser2, "test123")
	assert.ErrSpec(t, err, ErrUserExists)

	newuser2.UserName = "test2"
	newuser2.Role = model.RoleAdmin
	uid2, err := usersSrv.AddUser(ctx, &newuser2, "test123")
	assert.NoErr(t, err)
	assert.True(t, uid2 > 0)
	assert.True(t, uid != uid2)

	// get all users
	users, err := usersSrv.ListUsers(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, len(users), 2)
	assert.Equal(t, users[0].UserName, "test")
	assert.Equal(t, users[1].UserName, "test2")
	assert.True(t, users[1].IsAdmin())

	// lookup by id
	user, err = usersSrv.GetUserByID(ctx, uid)
	assert.NoErr(t, err)
	assert.Equal(t, user.UserName, "test")

	_, err = usersSrv.GetUserByID(ctx, 9999)
	assert.ErrSpec(t, err, ErrUnknownUser)
}
