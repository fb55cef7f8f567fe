//
// users.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"
	"errors"

	"github.com/samber/do/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/repository"
)

type UsersSrv struct {
	db         *db.Database
	usersRepo  repository.UsersRepository
	passHasher PasswordHasher
}

func NewUsersSrv(i do.Injector) (*UsersSrv, error) {
	database := do.MustInvoke[*db.Database](i)
	repo := do.MustInvoke[repository.UsersRepository](i)

	return &UsersSrv{database, repo, BCryptPasswordHasher{}}, nil
}

func (u *UsersSrv) LoginUser(ctx context.Context, username, password string) (model.User, error) {
	if username == "" {
		return model.User{}, aerr.ErrValidation.WithMsg("username can't be empty")
	}

	if password == "" {
		return model.User{}, aerr.ErrValidation.WithMsg("password can't be empty")
	}

	user, err := db.InConnectionR(ctx, u.db, func(dbctx repository.DBContext) (repository.UserDB, error) {
		return u.usersRepo.GetUser(ctx, dbctx, username)
	})

	if errors.Is(err, repository.ErrNoData) {
		return model.User{}, ErrUnknownUser
	} else if err != nil {
		return model.User{}, aerr.ApplyFor(ErrRepositoryError, err)
	}

	if !u.passHasher.CheckPassword(password, user.Password) {
		return model.User{}, ErrUnauthorized
	}

	return user.ToModel(), nil
}

func (u *UsersSrv) AddUser(ctx context.Context, user *model.User, password string) (int64, error) {
	if user.UserName == "" {
		return 0, aerr.ErrValidation.WithMsg("username can't be empty")
	}

	if password == "" {
		return 0, aerr.ErrValidation.WithMsg("password can't be empty")
	}

	if user.Role == "" {
		user.Role = model.RoleUser
	}

	if user.Role != model.RoleUser && user.Role != model.RoleAdmin {
		return 0, aerr.ErrValidation.WithMsg("invalid role: %q", user.Role)
	}

	//nolint:wrapcheck
	return db.InTransactionR(ctx, u.db, func(dbctx repository.DBContext) (int64, error) {
		// is user exists?
		_, err := u.usersRepo.GetUser(ctx, dbctx, user.UserName)
		switch {
		case errors.Is(err, repository.ErrNoData):
			// ok; user not exists
		case err == nil:
			return 0, ErrUserExists
		default:
			return 0, aerr.ApplyFor(ErrRepositoryError, err)
		}

		hashedPass, err := u.passHasher.HashPassword(password)
		if err != nil {
			return 0, aerr.Wrapf(err, "hash password failed")
		}

		udb := repository.UserDBFromModel(user)
		udb.Password = hashedPass

		uid, err := u.usersRepo.SaveUser(ctx, dbctx, &udb)
		if err != nil {
			return 0, aerr.ApplyFor(ErrRepositoryError, err)
		}

		return uid, nil
	})
}

func (u *UsersSrv) GetUserByID(ctx context.Context, userid int64) (model.User, error) {
	user, err := db.InConnectionR(ctx, u.db, func(dbctx repository.DBContext) (repository.UserDB, error) {
		return u.usersRepo.GetUserByID(ctx, dbctx, userid)
	})

	if errors.Is(err, repository.ErrNoData) {
		return model.User{}, ErrUnknownUser
	} else if err != nil {
		return model.User{}, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return user.ToModel(), nil
}

func (u *UsersSrv) ListUsers(ctx context.Context) ([]model.User, error) {
	usersdb, err := db.InConnectionR(ctx, u.db, func(dbctx repository.DBContext) ([]repository.UserDB, error) {
		return u.usersRepo.ListUsers(ctx, dbctx)
	})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	users := make([]model.User, 0, len(usersdb))
	for _, udb := range usersdb {
		users = append(users, udb.ToModel())
	}

	return users, nil
}

//-------------------------------------------------------------

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
}

type BCryptPasswordHasher struct{}

func (BCryptPasswordHasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(hash), err
}

func (BCryptPasswordHasher) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

//-------------------------------------------------------------
