//
// feedview.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kmwlk/libsync/internal/feed"
)

// catalogTypeMarker identifies navigation links pointing at further catalog
// pages rather than at content.
const catalogTypeMarker = "profile=opds-catalog"

// GetFeed fetch one remote page and rewrite it for local rendering: remote
// addresses are wrapped into the uri parameter, content links point at the
// download action, and synthetic action entries (download all, subscribe or
// unsubscribe, next page) are added. Only the requested page is fetched.
func (e *Engine) GetFeed(ctx context.Context, uri string) (*feed.Page, error) {
	page, err := e.client.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	view := &feed.Page{Title: page.Title}
	hasContent := false

	for i := range page.Entries {
		entry := page.Entries[i]
		entry.Links = wrapEntryLinks(entry.Links)

		for _, l := range entry.Links {
			if strings.Contains(l.Type, FB2ContentType) {
				hasContent = true
			}
		}

		view.Entries = append(view.Entries, entry)
	}

	if hasContent {
		actions, err := e.actionEntries(ctx, uri)
		if err != nil {
			return nil, err
		}

		view.Entries = append(actions, view.Entries...)
	}

	if next, ok := page.NextLink(); ok {
		link := feed.Link{
			Href: feed.WrapURI("?", next.Href),
			Rel:  feed.RelNext,
			Type: next.Type,
		}
		view.Links = append(view.Links, link)
		view.Entries = append(view.Entries, feed.Entry{
			ID:    "next",
			Title: "Next page",
			Links: []feed.Link{link},
		})
	}

	return view, nil
}

const relDownload = "http://opds-spec.org/acquisition"

func wrapEntryLinks(links []feed.Link) []feed.Link {
	var wrapped []feed.Link

	for _, l := range links {
		switch {
		case strings.Contains(l.Type, catalogTypeMarker):
			wrapped = append(wrapped, feed.Link{
				Href: feed.WrapURI("?", l.Href),
				Rel:  l.Rel,
				Type: l.Type,
			})
		case strings.Contains(l.Type, FB2ContentType):
			// remote rel and type are kept, only the address is rewritten
			wrapped = append(wrapped, feed.Link{
				Href: feed.WrapURI("action/"+ActionDownload+"?type=fb2&", l.Href),
				Rel:  l.Rel,
				Type: l.Type,
			})
		}
		// other link kinds are not usable locally and are dropped
	}

	return wrapped
}

// actionEntries build the synthetic entries shown on pages with downloadable
// content.
func (e *Engine) actionEntries(ctx context.Context, uri string) ([]feed.Entry, error) {
	entries := []feed.Entry{{
		ID:    "download-all",
		Title: "Download all from this page and following",
		Links: []feed.Link{{
			Href: feed.WrapURI("action/"+ActionDownloadAll+"?", uri),
			Rel:  relDownload,
		}},
	}}

	sub, err := e.subs.FindByLink(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("find subscription error: %w", err)
	}

	if sub == nil {
		entries = append(entries, feed.Entry{
			ID:    "subscribe",
			Title: "Subscribe to new entries",
			Links: []feed.Link{{
				Href: feed.WrapURI("action/"+ActionSubscribe+"?", uri),
			}},
		})
	} else {
		entries = append(entries, feed.Entry{
			ID:    "unsubscribe",
			Title: "Unsubscribe",
			Links: []feed.Link{{
				Href: feed.WrapURI(
					"action/"+ActionUnsubscribe+"?id="+strconv.FormatInt(sub.ID, 10)+"&",
					uri),
			}},
		})
	}

	return entries, nil
}
