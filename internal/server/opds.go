// opds.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal"
	"github.com/kmwlk/libsync/internal/config"
	"github.com/kmwlk/libsync/internal/feed"
	"github.com/kmwlk/libsync/internal/service"
)

// opdsResource expose configured libraries and their remote catalogs.
type opdsResource struct {
	extlibsSrv *service.ExtLibsSrv
	webroot    string
}

func newOpdsResource(i do.Injector) opdsResource {
	return opdsResource{
		extlibsSrv: do.MustInvoke[*service.ExtLibsSrv](i),
		webroot:    do.MustInvoke[*config.ServerConf](i).MainServer.WebRoot,
	}
}

func (or opdsResource) Routes() *chi.Mux {
	router := chi.NewRouter()

	router.Get("/", wrap(or.listLibraries))
	router.Post("/checkSubscriptions", wrap(or.checkSubscriptions))
	router.Get(`/{libraryid:\d+}`, wrap(or.libraryFeed))
	router.Get(`/{libraryid:\d+}/subscriptions`, wrap(or.librarySubscriptions))
	router.Get(`/{libraryid:\d+}/action/{action:\w+}`, wrap(or.libraryAction))

	return router
}

func (or opdsResource) listLibraries(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	libraries, err := or.extlibsSrv.ListLibraries(ctx)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Error().Err(err).Msg("list libraries error")

		return
	}

	entries := make([]libraryEntry, 0, len(libraries))
	for _, lib := range libraries {
		entries = append(entries, libraryEntry{
			ID:   lib.ID,
			Name: lib.Name,
			Href: or.webroot + "/opds/extlib/" + strconv.FormatInt(lib.ID, 10),
		})
	}

	res := struct {
		Title   string         `json:"title"`
		Entries []libraryEntry `json:"entries"`
	}{
		Title:   "External libraries",
		Entries: entries,
	}

	render.JSON(w, r, &res)
}

func (or opdsResource) libraryFeed(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	libraryid, err := idParam(r, "libraryid")
	if err != nil {
		checkAndWriteError(w, r, err)

		return
	}

	uri, _ := feed.ExtractURI(r.URL.RawQuery)

	page, err := or.extlibsSrv.GetFeed(ctx, libraryid, uri)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Error().Err(err).Int64("library_id", libraryid).Str("uri", uri).
			Msg("get feed error")

		return
	}

	render.JSON(w, r, feedPageResponse(page))
}

func (or opdsResource) libraryAction(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	libraryid, err := idParam(r, "libraryid")
	if err != nil {
		checkAndWriteError(w, r, err)

		return
	}

	user := internal.ContextUser(ctx)
	if user == nil {
		unauthorized(w)

		return
	}

	action := chi.URLParam(r, "action")

	target, err := or.extlibsSrv.Action(ctx, user, libraryid, action, r.URL.Query())
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Warn().Err(err).Int64("library_id", libraryid).Str("action", action).
			Msg("action error")

		return
	}

	http.Redirect(w, r, or.resolveTarget(libraryid, target), http.StatusFound)
}

func (or opdsResource) librarySubscriptions(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	libraryid, err := idParam(r, "libraryid")
	if err != nil {
		checkAndWriteError(w, r, err)

		return
	}

	subs, err := or.extlibsSrv.ListSubscriptions(ctx, libraryid)
	if err != nil {
		checkAndWriteError(w, r, err)
		logger.Error().Err(err).Int64("library_id", libraryid).Msg("list subscriptions error")

		return
	}

	res := make([]subscriptionEntry, 0, len(subs))
	for _, sub := range subs {
		res = append(res, subscriptionEntry{
			ID:     sub.ID,
			Link:   sub.Link,
			UserID: sub.UserID,
		})
	}

	render.JSON(w, r, res)
}

func (or opdsResource) checkSubscriptions(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) {
	if err := or.extlibsSrv.ScheduleCheckAllSubscriptions(ctx); err != nil {
		checkAndWriteError(w, r, err)
		logger.Error().Err(err).Msg("schedule subscriptions check error")

		return
	}

	render.Status(r, http.StatusAccepted)
	render.PlainText(w, r, "scheduled")
}

// resolveTarget map an engine redirect to this server's url space. Feed
// relative targets ("?uri=...") resolve against the library feed page.
func (or opdsResource) resolveTarget(libraryid int64, target string) string {
	if strings.HasPrefix(target, "?") {
		return or.webroot + "/opds/extlib/" + strconv.FormatInt(libraryid, 10) + target
	}

	return or.webroot + target
}

//-------------------------------------------------------------

type libraryEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Href string `json:"href"`
}

type subscriptionEntry struct {
	ID     int64  `json:"id"`
	Link   string `json:"link"`
	UserID int64  `json:"user_id"`
}

type feedLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel,omitempty"`
	Type string `json:"type,omitempty"`
}

type feedEntry struct {
	ID      string     `json:"id,omitempty"`
	Title   string     `json:"title"`
	Updated *time.Time `json:"updated,omitempty"`
	Authors []string   `json:"authors,omitempty"`
	Content []string   `json:"content,omitempty"`
	Links   []feedLink `json:"links"`
}

type feedPage struct {
	Title   string      `json:"title"`
	Entries []feedEntry `json:"entries"`
	Links   []feedLink  `json:"links,omitempty"`
}

func feedPageResponse(page *feed.Page) *feedPage {
	entries := make([]feedEntry, 0, len(page.Entries))
	for _, entry := range page.Entries {
		entries = append(entries, feedEntry{
			ID:      entry.ID,
			Title:   entry.Title,
			Updated: entry.Updated,
			Authors: entry.Authors,
			Content: entry.Content,
			Links:   feedLinksResponse(entry.Links),
		})
	}

	return &feedPage{
		Title:   page.Title,
		Entries: entries,
		Links:   feedLinksResponse(page.Links),
	}
}

func feedLinksResponse(links []feed.Link) []feedLink {
	res := make([]feedLink, 0, len(links))
	for _, l := range links {
		res = append(res, feedLink{Href: l.Href, Rel: l.Rel, Type: l.Type})
	}

	return res
}
