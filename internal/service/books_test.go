package service

//
// books_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"io"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/assert"
)

func TestStoreBook(t *testing.T) {
	ctx, i := prepareTests(t)
	booksSrv := do.MustInvoke[*BooksSrv](i)

	book, err := booksSrv.StoreBook(ctx, "war_and_peace.fb2.zip", []byte("fake content"))
	assert.NoErr(t, err)
	assert.True(t, book.ID > 0)
	assert.Equal(t, book.Title, "war and peace")
	assert.Equal(t, book.FileName, "war_and_peace.fb2.zip")
	assert.Equal(t, book.Size, 12)
	assert.True(t, book.ContentID != "")

	// read content back
	reader, stored, err := booksSrv.OpenBookFile(ctx, book.ID)
	assert.NoErr(t, err)

	defer reader.Close()

	assert.Equal(t, stored.ID, book.ID)

	data, err := io.ReadAll(reader)
	assert.NoErr(t, err)
	assert.Equal(t, string(data), "fake content")

	books, err := booksSrv.ListBooks(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, len(books), 1)
}

func TestGetBookUnknown(t *testing.T) {
	ctx, i := prepareTests(t)
	booksSrv := do.MustInvoke[*BooksSrv](i)

	_, err := booksSrv.GetBook(ctx, 12345)
	assert.ErrSpec(t, err, "unknown book")
}

func TestFileNameParser(t *testing.T) {
	t.Parallel()

	parser := FileNameParser{}

	book, err := parser.ToBook("dir/some_book.fb2", nil)
	assert.NoErr(t, err)
	assert.Equal(t, book.Title, "some book")
	assert.Equal(t, book.FileName, "some_book.fb2")

	book, err = parser.ToBook("archive.fb2.zip", nil)
	assert.NoErr(t, err)
	assert.Equal(t, book.Title, "archive")
}
