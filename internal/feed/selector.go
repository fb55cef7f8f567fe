//
// selector.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import "strings"

// SelectLinks filter entry links to those whose type contains contentType.
// Substring match: remote types carry parameters ("application/fb2+zip").
// The caller decides what zero, one or many matches mean.
func SelectLinks(entry *Entry, contentType string) []Link {
	var links []Link

	for _, l := range entry.Links {
		if strings.Contains(l.Type, contentType) {
			links = append(links, l)
		}
	}

	return links
}
