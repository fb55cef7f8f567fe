//
// feedview_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"testing"

	"github.com/kmwlk/libsync/internal/assert"
	"github.com/kmwlk/libsync/internal/feed"
	"github.com/kmwlk/libsync/internal/model"
)

func TestGetFeedDecoration(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.pages["/cat"] = &feed.Page{
		Title: "Catalog",
		Entries: []feed.Entry{{
			ID:    "e1",
			Title: "book",
			Links: []feed.Link{
				{Href: "/book.fb2", Rel: "http://opds-spec.org/acquisition/open-access",
					Type: "application/fb2+zip"},
				{Href: "/shelf", Rel: "subsection",
					Type: "application/atom+xml;profile=opds-catalog"},
				{Href: "/cover.png", Rel: "image", Type: "image/png"},
			},
		}},
		Links: []feed.Link{{Href: "/cat?page=2", Rel: feed.RelNext, Type: "application/atom+xml"}},
	}

	page, err := te.engine.GetFeed(context.Background(), "/cat")
	assert.NoErr(t, err)
	assert.Equal(t, page.Title, "Catalog")

	// action entries first, next page entry last
	assert.Equal(t, len(page.Entries), 4)
	assert.Equal(t, page.Entries[0].ID, "download-all")
	assert.Equal(t, page.Entries[0].Links[0].Href, "action/downloadAll?uri=%2Fcat")
	assert.Equal(t, page.Entries[1].ID, "subscribe")
	assert.Equal(t, page.Entries[1].Links[0].Href, "action/subscribe?uri=%2Fcat")
	assert.Equal(t, page.Entries[3].ID, "next")

	// content link points at the download action, rel and type are kept;
	// catalog link is wrapped; the image link is dropped
	entry := page.Entries[2]
	assert.Equal(t, len(entry.Links), 2)
	assert.Equal(t, entry.Links[0].Href, "action/download?type=fb2&uri=%2Fbook.fb2")
	assert.Equal(t, entry.Links[0].Rel, "http://opds-spec.org/acquisition/open-access")
	assert.Equal(t, entry.Links[0].Type, "application/fb2+zip")
	assert.Equal(t, entry.Links[1].Href, "?uri=%2Fshelf")
	assert.Equal(t, entry.Links[1].Rel, "subsection")

	next, ok := page.NextLink()
	assert.True(t, ok)
	assert.Equal(t, next.Href, "?uri=%2Fcat%3Fpage%3D2")
}

func TestGetFeedSubscriptionToggle(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.pages["/cat"] = &feed.Page{
		Entries: []feed.Entry{fb2Entry("one", "/b1.fb2")},
	}

	page, err := te.engine.GetFeed(context.Background(), "/cat")
	assert.NoErr(t, err)
	assert.Equal(t, page.Entries[1].ID, "subscribe")

	te.subs.subs = []model.Subscription{{ID: 7, LibraryID: 1, Link: "/cat", UserID: 5}}

	page, err = te.engine.GetFeed(context.Background(), "/cat")
	assert.NoErr(t, err)
	assert.Equal(t, page.Entries[1].ID, "unsubscribe")
	assert.Equal(t, page.Entries[1].Links[0].Href, "action/unsubscribe?id=7&uri=%2Fcat")
}

func TestGetFeedNavigationOnly(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.pages["/nav"] = &feed.Page{
		Entries: []feed.Entry{{
			Title: "shelf",
			Links: []feed.Link{{Href: "/shelf",
				Type: "application/atom+xml;profile=opds-catalog"}},
		}},
	}

	page, err := te.engine.GetFeed(context.Background(), "/nav")
	assert.NoErr(t, err)

	// pages without downloadable content get no action entries
	assert.Equal(t, len(page.Entries), 1)
	assert.Equal(t, page.Entries[0].Title, "shelf")
}
