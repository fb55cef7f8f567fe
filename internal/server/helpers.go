// helpers.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/extlib"
	"github.com/kmwlk/libsync/internal/service"
)

// wrap add context and logger to handler.
func wrap(handler func(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := hlog.FromRequest(r)
		handler(ctx, w, r, logger)
	}
}

// idParam parse a numeric url parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, aerr.ErrValidation.WithUserMsg("invalid %s: %q", name, raw)
	}

	return id, nil
}

// checkAndWriteError decode and write error to ResponseWriter.
func checkAndWriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrUnknownLibrary):
		status = http.StatusNotFound

	case errors.Is(err, extlib.ErrUnknownAction):
		status = http.StatusBadRequest

	case aerr.HasTag(err, aerr.InternalError):
		status = http.StatusInternalServerError

	case aerr.HasTag(err, aerr.ValidationError):
		status = http.StatusBadRequest
	}

	writeError(w, r, status, aerr.GetUserMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		res := struct {
			Error string `json:"error"`
		}{msg}

		render.Status(r, status)
		render.JSON(w, r, &res)

		return
	}

	http.Error(w, msg, status)
}
