//
// paginator.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// DefaultMaxPages bounds the rel="next" chain; a remote that never
// terminates it would otherwise hang the traversal forever.
const DefaultMaxPages = 100

var ErrTooManyPages = errors.New("too many feed pages")

// Paginator walks a feed page by page following the "next" relation.
type Paginator struct {
	client   Client
	maxPages int
}

func NewPaginator(client Client, maxPages int) *Paginator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	return &Paginator{client: client, maxPages: maxPages}
}

// CollectAll fetch all pages starting at startURI and return entries in page
// order. Any fetch failure aborts the whole traversal; accumulated entries
// are discarded.
func (p *Paginator) CollectAll(ctx context.Context, startURI string) ([]Entry, error) {
	logger := zerolog.Ctx(ctx)

	var entries []Entry

	uri := startURI

	for pageno := 0; ; pageno++ {
		if pageno >= p.maxPages {
			return nil, &FetchError{URI: uri, Err: ErrTooManyPages}
		}

		page, err := p.client.Fetch(ctx, uri)
		if err != nil {
			return nil, err
		}

		entries = append(entries, page.Entries...)

		next, ok := page.NextLink()
		if !ok {
			logger.Debug().Str("uri", startURI).Int("pages", pageno+1).
				Int("entries", len(entries)).Msg("feed walk finished")

			return entries, nil
		}

		uri = next.Href
	}
}
