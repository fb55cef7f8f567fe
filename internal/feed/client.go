//
// client.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package feed

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"golang.org/x/net/proxy"

	"github.com/kmwlk/libsync/internal/model"
)

const (
	fetchTimeout    = 30 * time.Second
	downloadTimeout = 5 * time.Minute

	maxDownloadSize = 256 << 20
)

// FetchError is any failure reaching or decoding a remote page. Carries the
// requested URI for logging; no retries happen at this layer.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q failed: %s", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ------------------------------------------------------

// Client fetch one catalog page for a URI.
type Client interface {
	Fetch(ctx context.Context, uri string) (*Page, error)
}

// Downloader retrieve raw entry content; returns the remote file name (from
// Content-Disposition when present) and the content bytes.
type Downloader interface {
	Download(ctx context.Context, uri string) (string, []byte, error)
}

// ------------------------------------------------------

// HTTPClient talks to one external library; base address, credentials and
// proxy are bound at construction, not per call.
type HTTPClient struct {
	base     *url.URL
	login    string
	password string
	hc       *http.Client
}

func NewHTTPClient(lib *model.Library) (*HTTPClient, error) {
	base, err := url.Parse(lib.URL)
	if err != nil {
		return nil, fmt.Errorf("parse library url %q error: %w", lib.URL, err)
	}

	if lib.OpdsPath != "" {
		base = base.JoinPath(lib.OpdsPath)
	}

	transport, err := newTransport(lib.Proxy)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		base:     base,
		login:    lib.Login,
		password: lib.Password,
		hc:       &http.Client{Transport: transport},
	}, nil
}

func (c *HTTPClient) Fetch(ctx context.Context, uri string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	resp, err := c.get(ctx, uri)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	parsed, err := (&atom.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: fmt.Errorf("decode feed: %w", err)}
	}

	return mapFeed(parsed), nil
}

func (c *HTTPClient) Download(ctx context.Context, uri string) (string, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	resp, err := c.get(ctx, uri)
	if err != nil {
		return "", nil, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return "", nil, &FetchError{URI: uri, Err: fmt.Errorf("read content: %w", err)}
	}

	return fileNameFromHeader(resp.Header.Get("Content-Disposition")), data, nil
}

func (c *HTTPClient) get(ctx context.Context, uri string) (*http.Response, error) {
	target, err := c.resolve(uri)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}

	if c.login != "" {
		req.SetBasicAuth(c.login, c.password)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		return nil, &FetchError{URI: uri, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	return resp, nil
}

func (c *HTTPClient) resolve(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}

	if parsed.IsAbs() {
		return uri, nil
	}

	return c.base.ResolveReference(parsed).String(), nil
}

// ------------------------------------------------------

func mapFeed(parsed *atom.Feed) *Page {
	page := &Page{
		Title:   parsed.Title,
		Entries: make([]Entry, 0, len(parsed.Entries)),
	}

	for _, l := range parsed.Links {
		page.Links = append(page.Links, Link{Href: l.Href, Rel: l.Rel, Type: l.Type})
	}

	for _, e := range parsed.Entries {
		entry := Entry{
			ID:      e.ID,
			Title:   e.Title,
			Updated: e.UpdatedParsed,
		}

		for _, l := range e.Links {
			entry.Links = append(entry.Links, Link{Href: l.Href, Rel: l.Rel, Type: l.Type})
		}

		for _, a := range e.Authors {
			entry.Authors = append(entry.Authors, a.Name)
		}

		if e.Content != nil && e.Content.Value != "" {
			entry.Content = append(entry.Content, e.Content.Value)
		}

		if e.Summary != "" {
			entry.Content = append(entry.Content, e.Summary)
		}

		page.Entries = append(page.Entries, entry)
	}

	return page
}

func fileNameFromHeader(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}

	return params["filename"]
}

func newTransport(proxyAddr string) (*http.Transport, error) {
	transport := &http.Transport{
		MaxIdleConns:    4,
		IdleConnTimeout: 60 * time.Second,
	}

	if proxyAddr == "" {
		return transport, nil
	}

	parsed, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url %q error: %w", proxyAddr, err)
	}

	switch parsed.Scheme {
	case "socks5":
		var auth *proxy.Auth
		if user := parsed.User; user != nil {
			pass, _ := user.Password()
			auth = &proxy.Auth{User: user.Username(), Password: pass}
		}

		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks5 dialer error: %w", err)
		}

		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}

			return dialer.Dial(network, addr)
		}
	default:
		transport.Proxy = http.ProxyURL(parsed)
	}

	return transport, nil
}
