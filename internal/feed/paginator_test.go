//
// paginator_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/kmwlk/libsync/internal/assert"
)

type fakeClient struct {
	pages map[string]*Page
	errs  map[string]error
}

func (c *fakeClient) Fetch(_ context.Context, uri string) (*Page, error) {
	if err, ok := c.errs[uri]; ok {
		return nil, &FetchError{URI: uri, Err: err}
	}

	page, ok := c.pages[uri]
	if !ok {
		return nil, &FetchError{URI: uri, Err: errors.New("no such page")}
	}

	return page, nil
}

func chainedPages() map[string]*Page {
	return map[string]*Page{
		"/p1": {
			Entries: []Entry{{ID: "a"}, {ID: "b"}},
			Links:   []Link{{Href: "/p2", Rel: RelNext}},
		},
		"/p2": {
			Entries: []Entry{{ID: "c"}},
			Links:   []Link{{Href: "/p3", Rel: RelNext}},
		},
		"/p3": {
			Entries: []Entry{{ID: "d"}, {ID: "e"}},
		},
	}
}

func TestCollectAllFollowsNextChain(t *testing.T) {
	t.Parallel()

	pag := NewPaginator(&fakeClient{pages: chainedPages()}, 0)

	entries, err := pag.CollectAll(context.Background(), "/p1")
	assert.NoErr(t, err)
	assert.Equal(t, len(entries), 5)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	assert.Equal(t, ids, []string{"a", "b", "c", "d", "e"})
}

func TestCollectAllFailsFast(t *testing.T) {
	t.Parallel()

	cause := errors.New("malformed payload")
	client := &fakeClient{
		pages: chainedPages(),
		errs:  map[string]error{"/p2": cause},
	}

	entries, err := NewPaginator(client, 0).CollectAll(context.Background(), "/p1")
	assert.ErrSpec(t, err, cause)
	assert.Nil(t, entries)

	var ferr *FetchError

	assert.True(t, errors.As(err, &ferr))
	assert.Equal(t, ferr.URI, "/p2")
}

func TestCollectAllPageCap(t *testing.T) {
	t.Parallel()

	// /loop points at itself, the chain never terminates
	client := &fakeClient{pages: map[string]*Page{
		"/loop": {
			Entries: []Entry{{ID: "x"}},
			Links:   []Link{{Href: "/loop", Rel: RelNext}},
		},
	}}

	entries, err := NewPaginator(client, 10).CollectAll(context.Background(), "/loop")
	assert.ErrSpec(t, err, ErrTooManyPages)
	assert.Nil(t, entries)
}
