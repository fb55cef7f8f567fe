//
// books.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/db"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/repository"
)

// Parser extract book metadata from downloaded content; content format
// decoding lives behind this boundary.
type Parser interface {
	ToBook(fileName string, data []byte) (model.Book, error)
}

// BooksSrv stores downloaded content on disk and keeps book records in the
// repository.
type BooksSrv struct {
	db         *db.Database
	booksRepo  repository.BooksRepository
	parser     Parser
	storageDir string
}

func NewBooksSrv(i do.Injector) (*BooksSrv, error) {
	database := do.MustInvoke[*db.Database](i)
	repo := do.MustInvoke[repository.BooksRepository](i)
	conf := do.MustInvoke[*config.AppConf](i)

	return &BooksSrv{database, repo, FileNameParser{}, conf.StorageDir}, nil
}

// StoreBook write data under a fresh content id and insert the book record.
func (b *BooksSrv) StoreBook(ctx context.Context, fileName string, data []byte) (*model.Book, error) {
	book, err := b.parser.ToBook(fileName, data)
	if err != nil {
		return nil, aerr.Wrapf(err, "parse book content failed").WithMeta("file_name", fileName)
	}

	book.ContentID = xid.New().String()
	book.Size = int64(len(data))

	if err := b.writeContent(book.ContentID, data); err != nil {
		return nil, err
	}

	bookdb := repository.BookDBFromModel(&book)

	id, err := db.InTransactionR(ctx, b.db, func(dbctx repository.DBContext) (int64, error) {
		return b.booksRepo.SaveBook(ctx, dbctx, &bookdb)
	})
	if err != nil {
		// keep storage consistent with the repository
		if rerr := os.Remove(b.contentPath(book.ContentID)); rerr != nil {
			log.Ctx(ctx).Error().Err(rerr).Str("content_id", book.ContentID).
				Msg("remove orphaned content failed")
		}

		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	book.ID = id

	return &book, nil
}

func (b *BooksSrv) GetBook(ctx context.Context, bookid int64) (model.Book, error) {
	bookdb, err := db.InConnectionR(ctx, b.db, func(dbctx repository.DBContext) (repository.BookDB, error) {
		return b.booksRepo.GetBook(ctx, dbctx, bookid)
	})

	if errors.Is(err, repository.ErrNoData) {
		return model.Book{}, aerr.ErrValidation.WithUserMsg("unknown book")
	} else if err != nil {
		return model.Book{}, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return bookdb.ToModel(), nil
}

// OpenBookFile return the stored content of the book for streaming; caller
// closes the reader.
func (b *BooksSrv) OpenBookFile(ctx context.Context, bookid int64) (io.ReadCloser, model.Book, error) {
	book, err := b.GetBook(ctx, bookid)
	if err != nil {
		return nil, model.Book{}, err
	}

	file, err := os.Open(b.contentPath(book.ContentID))
	if err != nil {
		return nil, model.Book{}, aerr.Wrapf(err, "open book content failed").
			WithMeta("content_id", book.ContentID)
	}

	return file, book, nil
}

func (b *BooksSrv) ListBooks(ctx context.Context) ([]model.Book, error) {
	booksdb, err := db.InConnectionR(ctx, b.db, func(dbctx repository.DBContext) ([]repository.BookDB, error) {
		return b.booksRepo.ListBooks(ctx, dbctx)
	})
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	books := make([]model.Book, 0, len(booksdb))
	for _, bdb := range booksdb {
		books = append(books, bdb.ToModel())
	}

	return books, nil
}

func (b *BooksSrv) contentPath(contentID string) string {
	// shard by prefix, one flat dir does not scale
	return filepath.Join(b.storageDir, contentID[:2], contentID)
}

func (b *BooksSrv) writeContent(contentID string, data []byte) error {
	path := b.contentPath(contentID)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return aerr.Wrapf(err, "create storage dir failed").WithMeta("path", path)
	}

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return aerr.Wrapf(err, "write content failed").WithMeta("path", path)
	}

	return nil
}

//-------------------------------------------------------------

// FileNameParser derive book metadata from the remote file name only. Used
// until a real format decoder is plugged in.
type FileNameParser struct{}

func (FileNameParser) ToBook(fileName string, _ []byte) (model.Book, error) {
	title := filepath.Base(fileName)
	title = strings.TrimSuffix(title, filepath.Ext(title))
	// fb2 content often arrives zipped, strip the inner extension too
	title = strings.TrimSuffix(title, ".fb2")
	title = strings.ReplaceAll(title, "_", " ")

	return model.Book{
		Title:    title,
		FileName: filepath.Base(fileName),
	}, nil
}
