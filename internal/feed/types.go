//
// types.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"time"
)

// RelNext is the pagination continuation marker in catalog feeds.
const RelNext = "next"

type Link struct {
	Href string
	Rel  string
	Type string
}

// Entry is one catalog item with metadata and download links. Transient;
// produced by Client/Paginator, never persisted.
type Entry struct {
	ID      string
	Title   string
	Updated *time.Time
	Links   []Link
	Authors []string
	Content []string
}

// Page is one fetched catalog page, normalized from the remote encoding.
type Page struct {
	Title   string
	Entries []Entry
	Links   []Link
}

func (p *Page) NextLink() (Link, bool) {
	for _, l := range p.Links {
		if l.Rel == RelNext {
			return l, true
		}
	}

	return Link{}, false
}
