//
// selector_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"testing"

	"github.com/kmwlk/libsync/internal/assert"
)

func TestSelectLinks(t *testing.T) {
	t.Parallel()

	entry := &Entry{
		Title: "some book",
		Links: []Link{
			{Href: "/cover.png", Type: "image/png"},
			{Href: "/book.fb2.zip", Type: "application/fb2+zip"},
			{Href: "/book.epub", Type: "application/epub+zip"},
		},
	}

	links := SelectLinks(entry, "application/fb2")
	assert.Equal(t, len(links), 1)
	assert.Equal(t, links[0].Href, "/book.fb2.zip")
}

func TestSelectLinksNone(t *testing.T) {
	t.Parallel()

	entry := &Entry{Links: []Link{{Href: "/cover.png", Type: "image/png"}}}

	assert.Equal(t, len(SelectLinks(entry, "application/fb2")), 0)
}

func TestSelectLinksMany(t *testing.T) {
	t.Parallel()

	entry := &Entry{
		Links: []Link{
			{Href: "/a.fb2", Type: "application/fb2"},
			{Href: "/a.fb2.zip", Type: "application/fb2+zip"},
		},
	}

	assert.Equal(t, len(SelectLinks(entry, "application/fb2")), 2)
}
