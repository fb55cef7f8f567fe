// books.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
package server

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/service"
)

// booksResource expose stored books and their content.
type booksResource struct {
	booksSrv *service.BooksSrv
	webroot  string
}

func newBooksResource(i do.Injector) booksResource {
	return booksResource{
		booksSrv: do.MustInvoke[*service.BooksSrv](i),
		webroot:  do.MustInvoke[*config.ServerConf](i).MainServer.WebRoot,
	}
}

func (br booksResource) Routes() *chi.Mux {
	router := chi.NewRouter()

	router.Get("/", wrap(br.listBooks))
	router.Get(`/{bookid:\d+}`, wrap(br.getBook))
	router.Get(`/{bookid:\d+}/file`, wrap(br.bookFile))

	return router
}

func (br booksResource) listBooks(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	books, err := br.booksSrv.ListBooks(ctx)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Error().Err(err).Msg("list books error")

		return
	}

	res := make([]bookEntry, 0, len(books))
	for _, book := range books {
		res = append(res, br.newBookEntry(&book))
	}

	render.JSON(w, r, res)
}

func (br booksResource) getBook(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	bookid, err := idParam(r, "bookid")
	if err != nil {
		checkAndWriteError(w, r, err)

		return
	}

	book, err := br.booksSrv.GetBook(ctx, bookid)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Warn().Err(err).Int64("book_id", bookid).Msg("get book error")

		return
	}

	res := br.newBookEntry(&book)
	render.JSON(w, r, &res)
}

func (br booksResource) bookFile(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	bookid, err := idParam(r, "bookid")
	if err != nil {
		checkAndWriteError(w, r, err)

		return
	}

	reader, book, err := br.booksSrv.OpenBookFile(ctx, bookid)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Warn().Err(err).Int64("book_id", bookid).Msg("open book file error")

		return
	}

	defer reader.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": book.FileName})

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.FormatInt(book.Size, 10))

	if _, err := io.Copy(w, reader); err != nil {
		logger.Warn().Err(err).Int64("book_id", bookid).Msg("send book file error")
	}
}

//-------------------------------------------------------------

type bookEntry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Href      string    `json:"href"`
}

func (br booksResource) newBookEntry(book *model.Book) bookEntry {
	return bookEntry{
		ID:        book.ID,
		Title:     book.Title,
		FileName:  book.FileName,
		Size:      book.Size,
		CreatedAt: book.CreatedAt,
		Href:      br.webroot + "/books/" + strconv.FormatInt(book.ID, 10) + "/file",
	}
}
