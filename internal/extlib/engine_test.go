//
// engine_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/kmwlk/libsync/internal/assert"
	"github.com/kmwlk/libsync/internal/feed"
	"github.com/kmwlk/libsync/internal/model"
)

type fakeFeed struct {
	mu      sync.Mutex
	pages   map[string]*feed.Page
	fetches []string
	fetched chan string
}

func (f *fakeFeed) Fetch(_ context.Context, uri string) (*feed.Page, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, uri)
	f.mu.Unlock()

	if f.fetched != nil {
		f.fetched <- uri
	}

	page, ok := f.pages[uri]
	if !ok {
		return nil, &feed.FetchError{URI: uri, Err: errors.New("no such page")}
	}

	return page, nil
}

func (f *fakeFeed) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.fetches)
}

type fakeDownloader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (d *fakeDownloader) Download(_ context.Context, uri string) (string, []byte, error) {
	d.mu.Lock()
	d.calls = append(d.calls, uri)
	d.mu.Unlock()

	if d.fail[uri] {
		return "", nil, &feed.FetchError{URI: uri, Err: errors.New("download failed")}
	}

	return "book.fb2", []byte("content"), nil
}

func (d *fakeDownloader) downloaded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.calls...)
}

type fakeSubs struct {
	mu     sync.Mutex
	nextID int64
	subs   []model.Subscription
	adds   int
}

func (s *fakeSubs) List(_ context.Context) ([]model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Subscription(nil), s.subs...), nil
}

func (s *fakeSubs) FindByLink(_ context.Context, link string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		if sub.Link == link {
			return &sub, nil
		}
	}

	return nil, nil
}

func (s *fakeSubs) Add(_ context.Context, link string, userID int64) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.adds++
	sub := model.Subscription{ID: s.nextID, LibraryID: 1, Link: link, UserID: userID}
	s.subs = append(s.subs, sub)

	return &sub, nil
}

func (s *fakeSubs) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)

			break
		}
	}

	return nil
}

type fakeLedger struct {
	mu    sync.Mutex
	saved map[string]int64
}

func (l *fakeLedger) FindSavedExtIDs(_ context.Context, extIDs []string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var present []string

	for _, id := range extIDs {
		if _, ok := l.saved[id]; ok {
			present = append(present, id)
		}
	}

	return present, nil
}

func (l *fakeLedger) SaveDownload(_ context.Context, extID string, bookID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.saved == nil {
		l.saved = make(map[string]int64)
	}

	l.saved[extID] = bookID

	return nil
}

type fakeBooks struct {
	mu     sync.Mutex
	nextID int64
}

func (b *fakeBooks) StoreBook(_ context.Context, fileName string, data []byte) (*model.Book, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++

	return &model.Book{ID: b.nextID, FileName: fileName, Size: int64(len(data))}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	userMsgs []string
	roleMsgs []string
}

func (n *fakeNotifier) NotifyUser(_ context.Context, msg string, _ int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.userMsgs = append(n.userMsgs, msg)

	return nil
}

func (n *fakeNotifier) NotifyRole(_ context.Context, msg, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.roleMsgs = append(n.roleMsgs, msg)

	return nil
}

func (n *fakeNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.userMsgs), len(n.roleMsgs)
}

// ------------------------------------------------------

type testEngine struct {
	engine     *Engine
	feeds      *fakeFeed
	downloader *fakeDownloader
	subs       *fakeSubs
	ledger     *fakeLedger
	notifier   *fakeNotifier
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	te := &testEngine{
		feeds:      &fakeFeed{pages: make(map[string]*feed.Page)},
		downloader: &fakeDownloader{},
		subs:       &fakeSubs{},
		ledger:     &fakeLedger{},
		notifier:   &fakeNotifier{},
	}

	te.engine = NewEngine(context.Background(),
		&model.Library{ID: 1, Name: "testlib", URL: "http://remote.example.com"},
		EngineDeps{
			Client:        te.feeds,
			Downloader:    te.downloader,
			Subscriptions: te.subs,
			Ledger:        te.ledger,
			Books:         &fakeBooks{},
			Notifier:      te.notifier,
		})

	t.Cleanup(te.engine.Close)

	return te
}

func fb2Entry(title, href string) feed.Entry {
	return feed.Entry{
		ID:    href,
		Title: title,
		Links: []feed.Link{{Href: href, Type: "application/fb2+zip"}},
	}
}

// ------------------------------------------------------

func TestDownloadEntriesOutcomes(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.downloader.fail = map[string]bool{"/bad.fb2": true}

	entries := []feed.Entry{
		fb2Entry("good", "/good.fb2"),
		fb2Entry("bad", "/bad.fb2"),
		{Title: "no links", Links: []feed.Link{{Href: "/c.png", Type: "image/png"}}},
		{Title: "two links", Links: []feed.Link{
			{Href: "/a.fb2", Type: "application/fb2"},
			{Href: "/a.fb2.zip", Type: "application/fb2+zip"},
		}},
	}

	report := te.engine.downloadEntries(context.Background(), entries, FB2ContentType)

	assert.NotNil(t, report)
	assert.Equal(t, len(report.Success), 1)
	assert.Equal(t, report.Success[0].Title, "good")
	assert.Equal(t, len(report.Failed), 1)
	assert.Equal(t, report.Failed[0].Title, "bad")
	assert.Equal(t, len(report.Empty), 1)
	assert.Equal(t, len(report.Ambiguous), 1)
	assert.Equal(t, report.Ambiguous[0].Title, "two links")

	// exactly one operator notification, for the ambiguous entry
	_, roleMsgs := te.notifier.counts()
	assert.Equal(t, roleMsgs, 1)

	// successful download landed in the ledger
	assert.Equal(t, len(te.ledger.saved), 1)
}

func TestDownloadEntriesEmptyInput(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)

	assert.Nil(t, te.engine.downloadEntries(context.Background(), nil, FB2ContentType))
}

func TestCheckSubscriptionDelta(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.pages["/sub"] = &feed.Page{
		Entries: []feed.Entry{
			fb2Entry("one", "/b1.fb2"),
			fb2Entry("two", "/b2.fb2"),
			fb2Entry("three", "/b3.fb2"),
			fb2Entry("four", "/b4.fb2"),
			fb2Entry("five", "/b5.fb2"),
		},
	}
	te.ledger.saved = map[string]int64{"/b2.fb2": 2, "/b4.fb2": 4}

	sub := &model.Subscription{ID: 1, LibraryID: 1, Link: "/sub", UserID: 5}

	assert.NoErr(t, te.engine.CheckSubscription(context.Background(), sub))

	// only unsaved entries, in feed order
	assert.Equal(t, te.downloader.downloaded(), []string{"/b1.fb2", "/b3.fb2", "/b5.fb2"})

	userMsgs, _ := te.notifier.counts()
	assert.Equal(t, userMsgs, 1)
}

func TestCheckSubscriptionNothingNew(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.pages["/sub"] = &feed.Page{
		Entries: []feed.Entry{fb2Entry("one", "/b1.fb2")},
	}
	te.ledger.saved = map[string]int64{"/b1.fb2": 1}

	sub := &model.Subscription{ID: 1, Link: "/sub", UserID: 5}

	assert.NoErr(t, te.engine.CheckSubscription(context.Background(), sub))
	assert.Equal(t, len(te.downloader.downloaded()), 0)

	userMsgs, _ := te.notifier.counts()
	assert.Equal(t, userMsgs, 0)
}

func TestCheckSubscriptionsIsolation(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.pages["/ok"] = &feed.Page{
		Entries: []feed.Entry{fb2Entry("one", "/b1.fb2")},
	}
	// "/broken" has no page, its walk fails

	te.subs.subs = []model.Subscription{
		{ID: 1, Link: "/broken", UserID: 5},
		{ID: 2, Link: "/ok", UserID: 5},
	}

	assert.NoErr(t, te.engine.CheckSubscriptions(context.Background()))
	assert.Equal(t, te.downloader.downloaded(), []string{"/b1.fb2"})
}

func TestActionUnknown(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	user := &model.User{ID: 5, Role: model.RoleUser}

	_, err := te.engine.Action(context.Background(), user, "bogus",
		url.Values{"uri": {"/x"}})
	assert.ErrSpec(t, err, ErrUnknownAction)

	// no side effects
	assert.Equal(t, te.feeds.fetchCount(), 0)
	assert.Equal(t, len(te.downloader.downloaded()), 0)
	assert.Equal(t, te.subs.adds, 0)
}

func TestActionRequiresUser(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)

	_, err := te.engine.Action(context.Background(), nil, ActionDownload,
		url.Values{"uri": {"/x"}})
	assert.ErrSpec(t, err, ErrNoUser)
}

func TestActionDownload(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	user := &model.User{ID: 5}

	redirect, err := te.engine.Action(context.Background(), user, ActionDownload,
		url.Values{"uri": {"/book.fb2"}, "type": {"fb2"}})
	assert.NoErr(t, err)
	assert.Equal(t, redirect, "/books/1/file")
	assert.Equal(t, te.ledger.saved["/book.fb2"], 1)
}

func TestActionSubscribeIdempotent(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.fetched = make(chan string, 16)
	te.feeds.pages["/sub"] = &feed.Page{}
	user := &model.User{ID: 5}

	params := url.Values{"uri": {"/sub"}}

	redirect, err := te.engine.Action(context.Background(), user, ActionSubscribe, params)
	assert.NoErr(t, err)
	assert.Equal(t, redirect, "?uri=%2Fsub")

	// wait for the initial check to walk the feed
	select {
	case <-te.feeds.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("initial subscription check not scheduled")
	}

	_, err = te.engine.Action(context.Background(), user, ActionSubscribe, params)
	assert.NoErr(t, err)

	time.Sleep(50 * time.Millisecond)
	te.engine.Close()

	assert.Equal(t, te.subs.adds, 1)
	assert.Equal(t, te.feeds.fetchCount(), 1)
}

func TestActionUnsubscribe(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.subs.subs = []model.Subscription{{ID: 3, Link: "/sub", UserID: 5}}
	te.subs.nextID = 3
	user := &model.User{ID: 5}

	redirect, err := te.engine.Action(context.Background(), user, ActionUnsubscribe,
		url.Values{"uri": {"/sub"}, "id": {"3"}})
	assert.NoErr(t, err)
	assert.Equal(t, redirect, "?uri=%2Fsub")
	assert.Equal(t, len(te.subs.subs), 0)

	// removing an already-removed id is a no-op
	_, err = te.engine.Action(context.Background(), user, ActionUnsubscribe,
		url.Values{"uri": {"/sub"}, "id": {"3"}})
	assert.NoErr(t, err)
}

func TestActionDownloadAll(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t)
	te.feeds.fetched = make(chan string, 16)
	te.feeds.pages["/list"] = &feed.Page{
		Entries: []feed.Entry{fb2Entry("one", "/b1.fb2"), fb2Entry("two", "/b2.fb2")},
	}
	user := &model.User{ID: 5}

	redirect, err := te.engine.Action(context.Background(), user, ActionDownloadAll,
		url.Values{"uri": {"/list"}})
	assert.NoErr(t, err)
	assert.Equal(t, redirect, "?uri=%2Flist")

	select {
	case <-te.feeds.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("download all not scheduled")
	}

	time.Sleep(50 * time.Millisecond)
	te.engine.Close()

	assert.Equal(t, te.downloader.downloaded(), []string{"/b1.fb2", "/b2.fb2"})

	userMsgs, _ := te.notifier.counts()
	assert.Equal(t, userMsgs, 1)
}
