//
// sqlite_users.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kmwlk/libsync/internal/aerr"
)

func (s SqliteRepository) GetUser(ctx context.Context, dbctx DBContext, username string) (UserDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Str("user_name", username).Msg("get user")

	user := UserDB{}

	err := dbctx.GetContext(ctx, &user,
		"SELECT id, username, password, email, name, role, created_at "+
			"FROM users WHERE username=?",
		username)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, sql.ErrNoRows):
		return user, ErrNoData
	default:
		return user, aerr.Wrapf(err, "select user failed").WithTag(aerr.InternalError)
	}
}

func (s SqliteRepository) GetUserByID(ctx context.Context, dbctx DBContext, userid int64) (UserDB, error) {
	user := UserDB{}

	err := dbctx.GetContext(ctx, &user,
		"SELECT id, username, password, email, name, role, created_at "+
			"FROM users WHERE id=?",
		userid)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, sql.ErrNoRows):
		return user, ErrNoData
	default:
		return user, aerr.Wrapf(err, "select user failed").WithTag(aerr.InternalError)
	}
}

func (s SqliteRepository) SaveUser(ctx context.Context, dbctx DBContext, user *UserDB) (int64, error) {
	logger := log.Ctx(ctx)

	if user.ID == 0 {
		logger.Debug().Object("user", user).Msg("insert user")

		res, err := dbctx.ExecContext(ctx,
			"INSERT INTO users (username, password, email, name, role, created_at) "+
				"VALUES(?, ?, ?, ?, ?, ?)",
			user.UserName, user.Password, user.Email, user.Name, user.Role, time.Now().UTC())
		if err != nil {
			return 0, aerr.Wrapf(err, "insert user failed").WithTag(aerr.InternalError)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return 0, aerr.Wrapf(err, "get insert id failed").WithTag(aerr.InternalError)
		}

		return id, nil
	}

	// update
	logger.Debug().Object("user", user).Msg("update user")

	_, err := dbctx.ExecContext(ctx,
		"UPDATE users SET password=?, email=?, name=?, role=? WHERE id=?",
		user.Password, user.Email, user.Name, user.Role, user.ID)
	if err != nil {
		return 0, aerr.Wrapf(err, "update user failed").WithTag(aerr.InternalError)
	}

	return user.ID, nil
}

func (s SqliteRepository) ListUsers(ctx context.Context, dbctx DBContext) ([]UserDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Msg("list users")

	var users []UserDB

	err := dbctx.SelectContext(ctx, &users,
		"SELECT id, username, password, email, name, role, created_at "+
			"FROM users ORDER BY username")
	if err != nil {
		return nil, aerr.Wrapf(err, "select users failed").WithTag(aerr.InternalError)
	}

	return users, nil
}
