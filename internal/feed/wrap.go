//
// wrap.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"net/url"
	"strings"
)

// URIParam is the query parameter that carries a remote address through
// internally rendered links, so an inbound request can recover it losslessly.
const URIParam = "uri"

// WrapURI append the percent-encoded remote href to prefix as the uri
// parameter. prefix is expected to end with "?" or "&".
func WrapURI(prefix, href string) string {
	return prefix + URIParam + "=" + url.QueryEscape(href)
}

// ExtractURI recover the remote address from a wrapped link or raw query
// string. Returns false when no uri parameter is present.
func ExtractURI(link string) (string, bool) {
	if idx := strings.IndexByte(link, '?'); idx >= 0 {
		link = link[idx+1:]
	}

	values, err := url.ParseQuery(link)
	if err != nil {
		return "", false
	}

	uri := values.Get(URIParam)

	return uri, uri != ""
}
