//
// libraries.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package model

import (
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/kmwlk/libsync/internal/aerr"
)

// Library is one configured external catalog service. Identity and
// connection parameters are fixed for the process lifetime; subscriptions
// attach and detach while it lives.
type Library struct {
	ID        int64
	Name      string
	URL       string
	OpdsPath  string
	Login     string
	Password  string
	Proxy     string
	CreatedAt time.Time
}

func (l *Library) Validate() error {
	if l.Name == "" {
		return aerr.ErrValidation.WithUserMsg("library name can't be empty")
	}

	if l.URL == "" {
		return aerr.ErrValidation.WithUserMsg("library url can't be empty")
	}

	if _, err := url.Parse(l.URL); err != nil {
		return aerr.ErrValidation.WithUserMsg("invalid library url: %s", err)
	}

	if l.Proxy != "" {
		if _, err := url.Parse(l.Proxy); err != nil {
			return aerr.ErrValidation.WithUserMsg("invalid proxy url: %s", err)
		}
	}

	return nil
}

func (l Library) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", l.ID).
		Str("name", l.Name).
		Str("url", l.URL).
		Str("opds_path", l.OpdsPath).
		Str("proxy", l.Proxy)
}

// ------------------------------------------------------

// Subscription is a standing request to poll one catalog URI of one library
// for new entries. At most one active subscription per (library, link).
type Subscription struct {
	ID        int64
	LibraryID int64
	Link      string
	UserID    int64
	CreatedAt time.Time
}

func (s Subscription) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", s.ID).
		Int64("library_id", s.LibraryID).
		Str("link", s.Link).
		Int64("user_id", s.UserID)
}

// ------------------------------------------------------

// SavedDownload is one row of the dedup ledger: the external id (source URI
// of the downloaded link) of content already stored for a library. Written
// once per successful download, never mutated.
type SavedDownload struct {
	LibraryID int64
	ExtID     string
	BookID    int64
	CreatedAt time.Time
}
