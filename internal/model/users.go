//
// users.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package model

import (
	"time"

	"github.com/rs/zerolog"
)

// Roles used for operator notifications and capability checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        int64
	UserName  string
	Password  string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) MarshalZerologObject(event *zerolog.Event) {
	pass := ""
	if u.Password != "" {
		pass = "***"
	}

	event.Int64("id", u.ID).
		Str("user_name", u.UserName).
		Str("password", pass).
		Str("email", u.Email).
		Str("role", u.Role).
		Time("created_at", u.CreatedAt)
}
