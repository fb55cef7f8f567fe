// model.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
package repository

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kmwlk/libsync/internal/model"
)

var ErrNoData = errors.New("no result")

type UserDB struct {
	ID        int64     `db:"id"`
	UserName  string    `db:"username"`
	Password  string    `db:"password"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

func (u UserDB) MarshalZerologObject(event *zerolog.Event) {
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

func (u UserDB) ToModel() model.User {
	return model.User{
		ID:        u.ID,
		UserName:  u.UserName,
		Password:  u.Password,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func UserDBFromModel(u *model.User) UserDB {
	return UserDB{
		ID:       u.ID,
		UserName: u.UserName,
		Password: u.Password,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
	}
}

// ------------------------------------------------------

type LibraryDB struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	URL       string    `db:"url"`
	OpdsPath  string    `db:"opds_path"`
	Login     string    `db:"login"`
	Password  string    `db:"password"`
	Proxy     string    `db:"proxy"`
	CreatedAt time.Time `db:"created_at"`
}

func (l LibraryDB) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", l.ID).
		Str("name", l.Name).
		Str("url", l.URL).
		Str("opds_path", l.OpdsPath).
		Str("proxy", l.Proxy).
		Time("created_at", l.CreatedAt)
}

func (l LibraryDB) ToModel() model.Library {
	return model.Library{
		ID:        l.ID,
		Name:      l.Name,
		URL:       l.URL,
		OpdsPath:  l.OpdsPath,
		Login:     l.Login,
		Password:  l.Password,
		Proxy:     l.Proxy,
		CreatedAt: l.CreatedAt,
	}
}

func LibraryDBFromModel(l *model.Library) LibraryDB {
	return LibraryDB{
		ID:       l.ID,
		Name:     l.Name,
		URL:      l.URL,
		OpdsPath: l.OpdsPath,
		Login:    l.Login,
		Password: l.Password,
		Proxy:    l.Proxy,
	}
}

// ------------------------------------------------------

type SubscriptionDB struct {
	ID        int64     `db:"id"`
	LibraryID int64     `db:"library_id"`
	Link      string    `db:"link"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (s SubscriptionDB) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", s.ID).
		Int64("library_id", s.LibraryID).
		Str("link", s.Link).
		Int64("user_id", s.UserID)
}

func (s SubscriptionDB) ToModel() model.Subscription {
	return model.Subscription{
		ID:        s.ID,
		LibraryID: s.LibraryID,
		Link:      s.Link,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}

// ------------------------------------------------------

type SavedDownloadDB struct {
	LibraryID int64     `db:"library_id"`
	ExtID     string    `db:"ext_id"`
	BookID    int64     `db:"book_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (s SavedDownloadDB) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("library_id", s.LibraryID).
		Str("ext_id", s.ExtID).
		Int64("book_id", s.BookID)
}

// ------------------------------------------------------

type BookDB struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	FileName  string    `db:"file_name"`
	ContentID string    `db:"content_id"`
	Size      int64     `db:"size"`
	CreatedAt time.Time `db:"created_at"`
}

func (b BookDB) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", b.ID).
		Str("title", b.Title).
		Str("file_name", b.FileName).
		Str("content_id", b.ContentID).
		Int64("size", b.Size)
}

func (b BookDB) ToModel() model.Book {
	return model.Book{
		ID:        b.ID,
		Title:     b.Title,
		FileName:  b.FileName,
		ContentID: b.ContentID,
		Size:      b.Size,
		CreatedAt: b.CreatedAt,
	}
}

func BookDBFromModel(b *model.Book) BookDB {
	return BookDB{
		ID:        b.ID,
		Title:     b.Title,
		FileName:  b.FileName,
		ContentID: b.ContentID,
		Size:      b.Size,
	}
}

// ------------------------------------------------------

type NotificationDB struct {
	ID        int64     `db:"id"`
	UserID    *int64    `db:"user_id"`
	Role      string    `db:"role"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

func (n NotificationDB) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", n.ID).
		Any("user_id", n.UserID).
		Str("role", n.Role).
		Str("message", n.Message)
}

func (n NotificationDB) ToModel() model.Notification {
	return model.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Role:      n.Role,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
}
