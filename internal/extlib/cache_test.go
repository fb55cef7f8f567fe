//
// cache_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kmwlk/libsync/internal/assert"
	"github.com/kmwlk/libsync/internal/model"
)

func TestCacheSingleFlight(t *testing.T) {
	t.Parallel()

	cache := NewDownloadCache(0)

	var calls atomic.Int32

	fetch := func(_ context.Context) (*model.Book, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)

		return &model.Book{ID: 42}, nil
	}

	const concurrency = 50

	var wg sync.WaitGroup

	wg.Add(concurrency)

	for range concurrency {
		go func() {
			defer wg.Done()

			book, err := cache.GetOrFetch(context.Background(), "key", fetch)
			assert.NoErr(t, err)
			assert.Equal(t, book.ID, 42)
		}()
	}

	wg.Wait()

	assert.Equal(t, calls.Load(), 1)
}

func TestCacheWriteTimeExpiry(t *testing.T) {
	t.Parallel()

	cache := NewDownloadCache(5 * time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	var calls int

	fetch := func(_ context.Context) (*model.Book, error) {
		calls++

		return &model.Book{ID: int64(calls)}, nil
	}

	book, err := cache.GetOrFetch(context.Background(), "key", fetch)
	assert.NoErr(t, err)
	assert.Equal(t, book.ID, 1)

	// just before expiry the entry is still served
	now = now.Add(5*time.Minute - time.Second)

	book, err = cache.GetOrFetch(context.Background(), "key", fetch)
	assert.NoErr(t, err)
	assert.Equal(t, book.ID, 1)
	assert.Equal(t, calls, 1)

	// just after expiry the fetch runs again
	now = now.Add(2 * time.Second)

	book, err = cache.GetOrFetch(context.Background(), "key", fetch)
	assert.NoErr(t, err)
	assert.Equal(t, book.ID, 2)
	assert.Equal(t, calls, 2)
}

func TestCacheFailureNotCached(t *testing.T) {
	t.Parallel()

	cache := NewDownloadCache(0)
	boom := errors.New("boom")
	calls := 0

	_, err := cache.GetOrFetch(context.Background(), "key",
		func(_ context.Context) (*model.Book, error) {
			calls++

			return nil, boom
		})
	assert.ErrSpec(t, err, boom)
	assert.Equal(t, cache.Len(), 0)

	book, err := cache.GetOrFetch(context.Background(), "key",
		func(_ context.Context) (*model.Book, error) {
			calls++

			return &model.Book{ID: 7}, nil
		})
	assert.NoErr(t, err)
	assert.Equal(t, book.ID, 7)
	assert.Equal(t, calls, 2)
}

func TestCacheUnrelatedKeys(t *testing.T) {
	t.Parallel()

	cache := NewDownloadCache(0)

	for i, key := range []string{"a", "b", "c"} {
		id := int64(i + 1)

		book, err := cache.GetOrFetch(context.Background(), key,
			func(_ context.Context) (*model.Book, error) {
				return &model.Book{ID: id}, nil
			})
		assert.NoErr(t, err)
		assert.Equal(t, book.ID, id)
	}

	assert.Equal(t, cache.Len(), 3)
}
