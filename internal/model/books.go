//
// books.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package model

import (
	"time"

	"github.com/rs/zerolog"
)

// Book is locally stored content produced by the parser collaborator from
// downloaded bytes.
type Book struct {
	ID        int64
	Title     string
	FileName  string
	ContentID string
	Size      int64
	CreatedAt time.Time
}

func (b Book) MarshalZerologObject(event *zerolog.Event) {
	event.Int64("id", b.ID).
		Str("title", b.Title).
		Str("file_name", b.FileName).
		Str("content_id", b.ContentID).
		Int64("size", b.Size)
}

// ------------------------------------------------------

// Notification is one delivered message; kept as a ledger so out-of-band
// results of background tasks are not lost.
type Notification struct {
	ID        int64
	UserID    *int64
	Role      string
	Message   string
	CreatedAt time.Time
}
