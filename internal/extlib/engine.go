//
// engine.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/kmwlk/libsync/internal/feed"
	"github.com/kmwlk/libsync/internal/model"
)

// Action names accepted by Engine.Action.
const (
	ActionDownload    = "download"
	ActionDownloadAll = "downloadAll"
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// FB2ContentType matches fb2 download links; remote link types carry
// parameters and suffixes, so matching is by substring.
const FB2ContentType = "application/fb2"

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrNoUser        = errors.New("no authenticated user")
)

// ------------------------------------------------------

// SubscriptionStore own subscription records of one library.
type SubscriptionStore interface {
	List(ctx context.Context) ([]model.Subscription, error)
	// FindByLink return nil when no subscription for link exists.
	FindByLink(ctx context.Context, link string) (*model.Subscription, error)
	Add(ctx context.Context, link string, userID int64) (*model.Subscription, error)
	// Delete is a no-op when id does not exist.
	Delete(ctx context.Context, id int64) error
}

// DownloadLedger is the per-library dedup ledger of already-downloaded
// external ids.
type DownloadLedger interface {
	// FindSavedExtIDs return the subset of extIDs already recorded.
	FindSavedExtIDs(ctx context.Context, extIDs []string) ([]string, error)
	// SaveDownload record extID as downloaded; recording an already-present
	// id is treated as satisfied, not as an error.
	SaveDownload(ctx context.Context, extID string, bookID int64) error
}

// BookStorer turns downloaded bytes into a stored book record.
type BookStorer interface {
	StoreBook(ctx context.Context, fileName string, data []byte) (*model.Book, error)
}

// Notifier delivers out-of-band results of background tasks.
type Notifier interface {
	NotifyUser(ctx context.Context, msg string, userID int64) error
	NotifyRole(ctx context.Context, msg, role string) error
}

// ------------------------------------------------------

// EngineDeps are the collaborators of one Engine; all are scoped to the same
// library as the engine itself.
type EngineDeps struct {
	Client        feed.Client
	Downloader    feed.Downloader
	Subscriptions SubscriptionStore
	Ledger        DownloadLedger
	Books         BookStorer
	Notifier      Notifier

	MaxPages int
	CacheTTL time.Duration
}

// Engine is the synchronization engine bound to one external library: it
// dispatches user actions, walks remote feeds, downloads content through the
// dedup cache and polls subscriptions for new entries. Background work runs
// on the engine's own worker pool; results surface via the notifier.
type Engine struct {
	lib        *model.Library
	client     feed.Client
	downloader feed.Downloader
	paginator  *feed.Paginator
	cache      *DownloadCache
	pool       *workerPool
	subs       SubscriptionStore
	ledger     DownloadLedger
	books      BookStorer
	notifier   Notifier
}

// NewEngine create an engine for lib; ctx is the base context of background
// jobs and should carry the process logger.
func NewEngine(ctx context.Context, lib *model.Library, deps EngineDeps) *Engine {
	return &Engine{
		lib:        lib,
		client:     deps.Client,
		downloader: deps.Downloader,
		paginator:  feed.NewPaginator(deps.Client, deps.MaxPages),
		cache:      NewDownloadCache(deps.CacheTTL),
		pool:       newWorkerPool(ctx),
		subs:       deps.Subscriptions,
		ledger:     deps.Ledger,
		books:      deps.Books,
		notifier:   deps.Notifier,
	}
}

// Close stops background workers; queued jobs are abandoned.
func (e *Engine) Close() {
	e.pool.Close()
}

// ------------------------------------------------------

// Action execute one named action for user and return the redirect target.
// Unknown action names fail before any side effect.
func (e *Engine) Action(ctx context.Context, user *model.User, action string, params url.Values) (string, error) {
	if user == nil {
		return "", ErrNoUser
	}

	switch action {
	case ActionDownload:
		return e.actionDownload(ctx, params)
	case ActionDownloadAll:
		return e.actionDownloadAll(ctx, user, params)
	case ActionSubscribe:
		return e.actionSubscribe(ctx, user, params)
	case ActionUnsubscribe:
		return e.actionUnsubscribe(ctx, params)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func (e *Engine) actionDownload(ctx context.Context, params url.Values) (string, error) {
	uri := params.Get(feed.URIParam)
	if uri == "" {
		return "", errors.New("missing uri parameter")
	}

	book, err := e.downloadURI(ctx, uri, contentTypeFor(params.Get("type")))
	if err != nil {
		return "", err
	}

	return "/books/" + strconv.FormatInt(book.ID, 10) + "/file", nil
}

func (e *Engine) actionDownloadAll(ctx context.Context, user *model.User, params url.Values) (string, error) {
	uri := params.Get(feed.URIParam)
	if uri == "" {
		return "", errors.New("missing uri parameter")
	}

	userID := user.ID

	e.pool.Submit(func(ctx context.Context) {
		e.downloadAllTask(ctx, uri, userID)
	})

	return feed.WrapURI("?", uri), nil
}

func (e *Engine) actionSubscribe(ctx context.Context, user *model.User, params url.Values) (string, error) {
	uri := params.Get(feed.URIParam)
	if uri == "" {
		return "", errors.New("missing uri parameter")
	}

	if err := e.Subscribe(ctx, user, uri); err != nil {
		return "", err
	}

	return feed.WrapURI("?", uri), nil
}

func (e *Engine) actionUnsubscribe(ctx context.Context, params url.Values) (string, error) {
	uri := params.Get(feed.URIParam)

	id, err := strconv.ParseInt(params.Get("id"), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid subscription id: %w", err)
	}

	if err := e.subs.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("delete subscription error: %w", err)
	}

	return feed.WrapURI("?", uri), nil
}

// ------------------------------------------------------

// Subscribe add a subscription for uri; idempotent. The initial check is
// scheduled only when a new record was actually created.
func (e *Engine) Subscribe(ctx context.Context, user *model.User, uri string) error {
	existing, err := e.subs.FindByLink(ctx, uri)
	if err != nil {
		return fmt.Errorf("find subscription error: %w", err)
	}

	if existing != nil {
		zerolog.Ctx(ctx).Debug().Object("subscription", existing).
			Msg("already subscribed")

		return nil
	}

	sub, err := e.subs.Add(ctx, uri, user.ID)
	if err != nil {
		return fmt.Errorf("add subscription error: %w", err)
	}

	zerolog.Ctx(ctx).Info().Object("library", e.lib).Object("subscription", sub).
		Msg("subscription created")

	e.pool.Submit(func(ctx context.Context) {
		if err := e.CheckSubscription(ctx, sub); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Object("subscription", sub).
				Msg("initial subscription check failed")
		}
	})

	return nil
}

// CheckSubscription re-walk the subscription feed, download entries not yet
// in the ledger and notify the owner when anything was attempted.
func (e *Engine) CheckSubscription(ctx context.Context, sub *model.Subscription) error {
	entries, err := e.paginator.CollectAll(ctx, sub.Link)
	if err != nil {
		return fmt.Errorf("walk feed error: %w", err)
	}

	fresh, err := e.unsavedEntries(ctx, entries, FB2ContentType)
	if err != nil {
		return err
	}

	report := e.downloadEntries(ctx, fresh, FB2ContentType)
	if report.HasResult() {
		e.notify(ctx, report.Message(), sub.UserID)
	}

	return nil
}

// CheckSubscriptions poll every subscription of the library. A failing
// subscription is logged and skipped; it never aborts the pass.
func (e *Engine) CheckSubscriptions(ctx context.Context) error {
	subs, err := e.subs.List(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions error: %w", err)
	}

	for _, sub := range subs {
		if err := e.CheckSubscription(ctx, &sub); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Object("subscription", sub).
				Msg("subscription check failed")
		}
	}

	return nil
}

// ScheduleCheckSubscriptions run CheckSubscriptions on the worker pool.
func (e *Engine) ScheduleCheckSubscriptions() {
	e.pool.Submit(func(ctx context.Context) {
		if err := e.CheckSubscriptions(ctx); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Object("library", e.lib).
				Msg("subscriptions check failed")
		}
	})
}

// unsavedEntries filter entries to those with no candidate link already in
// the dedup ledger, preserving feed order.
func (e *Engine) unsavedEntries(ctx context.Context, entries []feed.Entry, contentType string) ([]feed.Entry, error) {
	var candidates []string

	for i := range entries {
		for _, l := range feed.SelectLinks(&entries[i], contentType) {
			candidates = append(candidates, l.Href)
		}
	}

	if len(candidates) == 0 {
		return entries, nil
	}

	savedIDs, err := e.ledger.FindSavedExtIDs(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("find saved downloads error: %w", err)
	}

	saved := make(map[string]struct{}, len(savedIDs))
	for _, id := range savedIDs {
		saved[id] = struct{}{}
	}

	var fresh []feed.Entry

	for i := range entries {
		seen := false

		for _, l := range feed.SelectLinks(&entries[i], contentType) {
			if _, ok := saved[l.Href]; ok {
				seen = true

				break
			}
		}

		if !seen {
			fresh = append(fresh, entries[i])
		}
	}

	return fresh, nil
}

// ------------------------------------------------------

func (e *Engine) downloadAllTask(ctx context.Context, uri string, userID int64) {
	logger := zerolog.Ctx(ctx)

	entries, err := e.paginator.CollectAll(ctx, uri)
	if err != nil {
		logger.Error().Err(err).Str("uri", uri).Object("library", e.lib).
			Msg("download all: feed walk failed")

		return
	}

	report := e.downloadEntries(ctx, entries, FB2ContentType)
	if report.HasResult() {
		e.notify(ctx, report.Message(), userID)
	}
}

// downloadEntries download every entry and fold the outcomes in feed order.
// Returns nil for an empty entry list; "nothing to do" is distinct from "did
// work and nothing succeeded".
func (e *Engine) downloadEntries(ctx context.Context, entries []feed.Entry, contentType string) *DownloadReport {
	var report *DownloadReport

	for i := range entries {
		report = report.Concat(e.downloadEntry(ctx, &entries[i], contentType))
	}

	return report
}

func (e *Engine) downloadEntry(ctx context.Context, entry *feed.Entry, contentType string) *DownloadReport {
	logger := zerolog.Ctx(ctx)
	links := feed.SelectLinks(entry, contentType)

	switch {
	case len(links) == 0:
		return emptyReport(entry.Title, entry.Authors)

	case len(links) > 1:
		// guessing a link silently is worse than reporting the ambiguity
		logger.Warn().Str("title", entry.Title).Int("links", len(links)).
			Object("library", e.lib).Msg("ambiguous download links")

		msg := fmt.Sprintf("library %s: entry %q has %d candidate links, skipped",
			e.lib.Name, entry.Title, len(links))
		if err := e.notifier.NotifyRole(ctx, msg, model.RoleAdmin); err != nil {
			logger.Error().Err(err).Msg("notify operator error")
		}

		return ambiguousReport(entry.Title, entry.Authors)
	}

	if _, err := e.downloadURI(ctx, links[0].Href, contentType); err != nil {
		logger.Error().Err(err).Str("title", entry.Title).Str("uri", links[0].Href).
			Msg("entry download failed")

		return failedReport(entry.Title, entry.Authors)
	}

	return successReport(entry.Title, entry.Authors)
}

// downloadURI fetch content at uri through the dedup cache, store it and
// record the ledger row.
func (e *Engine) downloadURI(ctx context.Context, uri, contentType string) (*model.Book, error) {
	return e.cache.GetOrFetch(ctx, uri, func(ctx context.Context) (*model.Book, error) {
		fileName, data, err := e.downloader.Download(ctx, uri)
		if err != nil {
			return nil, err
		}

		if fileName == "" {
			fileName = xid.New().String() + extensionFor(contentType)
		}

		book, err := e.books.StoreBook(ctx, fileName, data)
		if err != nil {
			return nil, fmt.Errorf("store book error: %w", err)
		}

		if err := e.ledger.SaveDownload(ctx, uri, book.ID); err != nil {
			return nil, fmt.Errorf("save download record error: %w", err)
		}

		zerolog.Ctx(ctx).Info().Object("book", book).Object("library", e.lib).
			Str("uri", uri).Msg("book downloaded")

		return book, nil
	})
}

func (e *Engine) notify(ctx context.Context, msg string, userID int64) {
	if err := e.notifier.NotifyUser(ctx, msg, userID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).
			Msg("notify user error")
	}
}

// ------------------------------------------------------

// contentTypeFor expand a short type hint from the action protocol into the
// link content type to match.
func contentTypeFor(hint string) string {
	switch hint {
	case "", "fb2":
		return FB2ContentType
	default:
		return hint
	}
}

func extensionFor(contentType string) string {
	if contentType == FB2ContentType {
		return ".fb2"
	}

	return ""
}
