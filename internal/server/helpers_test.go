package server

//
// helpers_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kmwlk/libsync/internal/assert"
	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/extlib"
	"github.com/kmwlk/libsync/internal/service"
)

func TestCheckAndWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"unknown library", service.ErrUnknownLibrary, http.StatusNotFound},
		{"unknown action", fmt.Errorf("dispatch: %w", extlib.ErrUnknownAction), http.StatusBadRequest},
		{"validation", service.ErrUserExists, http.StatusBadRequest},
		{"internal", service.ErrRepositoryError, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			checkAndWriteError(w, r, tt.err)
			assert.Equal(t, w.Code, tt.expected)
		})
	}
}

func TestCheckAndWriteErrorJSONBody(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Content-Type", "application/json")

	checkAndWriteError(w, r, service.ErrUnknownLibrary)

	assert.Equal(t, w.Code, http.StatusNotFound)
	assert.True(t, strings.Contains(w.Body.String(), `"error"`))
	assert.True(t, strings.Contains(w.Body.String(), "unknown library"))
}

func TestResolveTarget(t *testing.T) {
	t.Parallel()

	or := opdsResource{webroot: ""}

	// feed relative targets resolve against the library feed page
	assert.Equal(t, or.resolveTarget(5, "?uri=%2Fnew"), "/opds/extlib/5?uri=%2Fnew")
	// absolute targets only get the web root
	assert.Equal(t, or.resolveTarget(5, "/books/1/file"), "/books/1/file")

	or = opdsResource{webroot: "/app"}
	assert.Equal(t, or.resolveTarget(7, "?uri=%2Fx"), "/app/opds/extlib/7?uri=%2Fx")
	assert.Equal(t, or.resolveTarget(7, "/books/2/file"), "/app/books/2/file")
}

func TestAuthMgmtMiddleware(t *testing.T) {
	t.Parallel()

	cfg := &config.ServerConf{}
	handler := newAuthMgmtMiddleware(cfg)(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.RemoteAddr = "127.0.0.1:12345"
	handler.ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.RemoteAddr = "8.8.8.8:12345"
	handler.ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusForbidden)
}

func TestIDParam(t *testing.T) {
	t.Parallel()

	var (
		id     int64
		iderr  error
		router = chi.NewRouter()
	)

	router.Get("/thing/{thingid}", func(w http.ResponseWriter, r *http.Request) {
		id, iderr = idParam(r, "thingid")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/thing/42", nil))
	assert.NoErr(t, iderr)
	assert.Equal(t, id, 42)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/thing/nan", nil))
	assert.Err(t, iderr)
}
