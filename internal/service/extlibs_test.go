package service

//
// extlibs_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/do/v2"

	"github.com/kmwlk/libsync/internal/assert"
	"github.com/kmwlk/libsync/internal/model"
)

func TestLibraries(t *testing.T) {
	ctx, i := prepareTests(t)
	extlibsSrv := do.MustInvoke[*ExtLibsSrv](i)

	_, err := extlibsSrv.GetLibrary(ctx, 1)
	assert.ErrSpec(t, err, ErrUnknownLibrary)

	// invalid configuration is rejected
	_, err = extlibsSrv.AddLibrary(ctx, &model.Library{Name: "", URL: "http://example.com"})
	assert.Err(t, err)

	id, err := extlibsSrv.AddLibrary(ctx, &model.Library{
		Name:     "lib1",
		URL:      "http://lib1.example.com",
		OpdsPath: "/opds",
	})
	assert.NoErr(t, err)
	assert.True(t, id > 0)

	lib, err := extlibsSrv.GetLibrary(ctx, id)
	assert.NoErr(t, err)
	assert.Equal(t, lib.Name, "lib1")
	assert.Equal(t, lib.OpdsPath, "/opds")

	id2 := prepareTestLibrary(ctx, t, i, "lib2")

	libs, err := extlibsSrv.ListLibraries(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, len(libs), 2)

	err = extlibsSrv.DeleteLibrary(ctx, id)
	assert.NoErr(t, err)

	libs, err = extlibsSrv.ListLibraries(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, len(libs), 1)
	assert.Equal(t, libs[0].ID, id2)
}

func TestSubscriptionStore(t *testing.T) {
	ctx, i := prepareTests(t)
	extlibsSrv := do.MustInvoke[*ExtLibsSrv](i)

	uid := prepareTestUser(ctx, t, i, "user1")
	libid := prepareTestLibrary(ctx, t, i, "lib1")

	store := &subscriptionStore{srv: extlibsSrv, libraryID: libid}

	sub, err := store.FindByLink(ctx, "/opds/new")
	assert.NoErr(t, err)
	assert.Nil(t, sub)

	created, err := store.Add(ctx, "/opds/new", uid)
	assert.NoErr(t, err)
	assert.True(t, created.ID > 0)
	assert.Equal(t, created.LibraryID, libid)

	sub, err = store.FindByLink(ctx, "/opds/new")
	assert.NoErr(t, err)
	assert.NotNil(t, sub)
	assert.Equal(t, sub.ID, created.ID)
	assert.Equal(t, sub.UserID, uid)

	subs, err := store.List(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, len(subs), 1)

	assert.NoErr(t, store.Delete(ctx, created.ID))

	// deleting an unknown id is a no-op
	assert.NoErr(t, store.Delete(ctx, created.ID))

	sub, err = store.FindByLink(ctx, "/opds/new")
	assert.NoErr(t, err)
	assert.Nil(t, sub)
}

func TestDownloadLedger(t *testing.T) {
	ctx, i := prepareTests(t)
	extlibsSrv := do.MustInvoke[*ExtLibsSrv](i)
	booksSrv := do.MustInvoke[*BooksSrv](i)

	libid := prepareTestLibrary(ctx, t, i, "lib1")
	ledger := &downloadLedger{srv: extlibsSrv, libraryID: libid}

	found, err := ledger.FindSavedExtIDs(ctx, []string{"/b1.fb2", "/b2.fb2"})
	assert.NoErr(t, err)
	assert.Equal(t, len(found), 0)

	book, err := booksSrv.StoreBook(ctx, "some_title.fb2", []byte("content"))
	assert.NoErr(t, err)

	assert.NoErr(t, ledger.SaveDownload(ctx, "/b1.fb2", book.ID))

	// duplicate record for the same ext id is already-satisfied
	assert.NoErr(t, ledger.SaveDownload(ctx, "/b1.fb2", book.ID))

	found, err = ledger.FindSavedExtIDs(ctx, []string{"/b1.fb2", "/b2.fb2"})
	assert.NoErr(t, err)
	assert.Equal(t, found, []string{"/b1.fb2"})

	// the ledger is per library
	otherlib := prepareTestLibrary(ctx, t, i, "lib2")
	otherLedger := &downloadLedger{srv: extlibsSrv, libraryID: otherlib}

	found, err = otherLedger.FindSavedExtIDs(ctx, []string{"/b1.fb2"})
	assert.NoErr(t, err)
	assert.Equal(t, len(found), 0)
}
