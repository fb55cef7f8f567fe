//
// sqlite_books.go
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

func (s SqliteRepository) GetBook(ctx context.Context, dbctx DBContext, bookid int64) (BookDB, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Int64("book_id", bookid).Msg("get book")

	book := BookDB{}

	err := dbctx.GetContext(ctx, &book,
		"SELECT id, title, file_name, content_id, size, created_at FROM books WHERE id=?",
		bookid)

	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, sql.ErrNoRows):
		return book, ErrNoData
	default:
		return book, aerr.Wrapf(err, "select book failed").WithTag(aerr.InternalError)
	}
}

func (s SqliteRepository) SaveBook(ctx context.Context, dbctx DBContext, book *BookDB) (int64, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Object("book", book).Msg("insert book")

	res, err := dbctx.ExecContext(ctx,
		"INSERT INTO books (title, file_name, content_id, size, created_at) VALUES(?, ?, ?, ?, ?)",
		book.Title, book.FileName, book.ContentID, book.Size, time.Now().UTC())
	if err != nil {
		return 0, aerr.Wrapf(err, "insert book failed").WithTag(aerr.InternalError)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, aerr.Wrapf(err, "get insert id failed").WithTag(aerr.InternalError)
	}

	return id, nil
}

func (s SqliteRepository) ListBooks(ctx context.Context, dbctx DBContext) ([]BookDB, error) {
	var books []BookDB

	err := dbctx.SelectContext(ctx, &books,
		"SELECT id, title, file_name, content_id, size, created_at FROM books ORDER BY id")
	if err != nil {
		return nil, aerr.Wrapf(err, "select books failed").WithTag(aerr.InternalError)
	}

	return books, nil
}
