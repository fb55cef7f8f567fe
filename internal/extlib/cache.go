//
// cache.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"sync"
	"time"

	"github.com/kmwlk/libsync/internal/model"
)

// DefaultCacheTTL is the write-time expiry of downloaded content. Content
// turns into a saved-download ledger row on success, so it does not need to
// stay resident longer than a burst of identical requests.
const DefaultCacheTTL = 5 * time.Minute

type fetchFunc func(ctx context.Context) (*model.Book, error)

type cacheEntry struct {
	ready     chan struct{}
	book      *model.Book
	err       error
	writtenAt time.Time
}

// DownloadCache deduplicates downloads of the same external URI. For
// concurrent calls with the same key at most one fetch runs; all callers
// waiting on that key receive its result or its error. Successful results
// expire a fixed duration after the write; failures are never cached, so a
// later call retries naturally.
type DownloadCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration

	now func() time.Time
}

func NewDownloadCache(ttl time.Duration) *DownloadCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &DownloadCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetOrFetch return the cached content for key or run fetch exactly once,
// sharing the outcome with every concurrent caller for that key. Unrelated
// keys proceed fully in parallel.
func (c *DownloadCache) GetOrFetch(ctx context.Context, key string, fetch fetchFunc) (*model.Book, error) {
	for {
		c.mu.Lock()

		if entry, ok := c.entries[key]; ok {
			select {
			case <-entry.ready:
				// resolved entries in the map are always successful; failed
				// ones are removed at write time.
				if c.now().Sub(entry.writtenAt) < c.ttl {
					c.mu.Unlock()

					return entry.book, nil
				}

				delete(c.entries, key)
			default:
				c.mu.Unlock()

				select {
				case <-entry.ready:
					return entry.book, entry.err
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}

			c.mu.Unlock()

			continue
		}

		entry := &cacheEntry{ready: make(chan struct{})}
		c.entries[key] = entry
		c.mu.Unlock()

		book, err := fetch(ctx)

		c.mu.Lock()
		entry.book = book
		entry.err = err
		entry.writtenAt = c.now()
		close(entry.ready)

		if err != nil {
			delete(c.entries, key)
		}

		c.sweepLocked()
		c.mu.Unlock()

		return book, err
	}
}

// Len reports the number of resident entries (in-flight included).
func (c *DownloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// sweepLocked drops expired entries so the map stays bounded without a
// janitor goroutine. Caller holds c.mu.
func (c *DownloadCache) sweepLocked() {
	now := c.now()

	for key, entry := range c.entries {
		select {
		case <-entry.ready:
			if now.Sub(entry.writtenAt) >= c.ttl {
				delete(c.entries, key)
			}
		default:
			// in flight
		}
	}
}
