//
// wrap_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"testing"

	"github.com/kmwlk/libsync/internal/assert"
)

func TestWrapExtractRoundTrip(t *testing.T) {
	t.Parallel()

	hrefs := []string{
		"/opds/new?page=2",
		"http://remote.example.com/catalog?a=1&b=2",
		"relative/path with space",
	}

	for _, href := range hrefs {
		wrapped := WrapURI("action/download?type=fb2&", href)

		got, ok := ExtractURI(wrapped)
		assert.True(t, ok)
		assert.Equal(t, got, href)
	}
}

func TestExtractURIFromRawQuery(t *testing.T) {
	t.Parallel()

	got, ok := ExtractURI("uri=%2Fopds%2Fnew")
	assert.True(t, ok)
	assert.Equal(t, got, "/opds/new")
}

func TestExtractURIMissing(t *testing.T) {
	t.Parallel()

	_, ok := ExtractURI("action/download?type=fb2")
	assert.True(t, !ok)

	_, ok = ExtractURI("")
	assert.True(t, !ok)
}
