package vault

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
)

func TestGetOrCreateURLSameID(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	c := Candidate{URL: "https://www.example.co.uk/x", Title: "Example"}
	id1, err := v.GetOrCreateURL(ctx, c, record.Uncategorized)
	require.NoError(t, err)
	id2, err := v.GetOrCreateURL(ctx, c, record.Uncategorized)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, v.Store().CountURLs(ctx))

	u, err := v.URLByID(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "example.co.uk", u.Domain)
}

func TestGetOrCreateURLMergePolicy(t *testing.T) {
	t.Parallel()
	v, clk := setupTestVault(t)
	ctx := t.Context()

	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "A"}, record.Uncategorized)
	require.NoError(t, err)

	u, err := v.URLByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, record.Uncategorized, u.Category)
	assert.Zero(t, u.LastCategorized)
	assert.Equal(t, clk.now(), u.FirstSeen)
	assert.Equal(t, clk.now(), u.SavedDate)

	clk.advance(time.Minute)
	_, err = v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "A2"}, record.Useful)
	require.NoError(t, err)

	u, err = v.URLByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A2", u.Title)
	assert.Equal(t, record.Useful, u.Category)
	assert.Equal(t, clk.now(), u.LastCategorized)
	categorizedAt := u.LastCategorized

	clk.advance(time.Minute)
	_, err = v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "A3", Favicon: "ico"}, record.Uncategorized)
	require.NoError(t, err)

	u, err = v.URLByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, record.Useful, u.Category, "category must not regress")
	assert.Equal(t, categorizedAt, u.LastCategorized)
	assert.Equal(t, "ico", u.Favicon)
	assert.Equal(t, clk.now(), u.LastAccessed)

	// store and cache agree.
	stored, err := v.Store().URLByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, u, stored)
}

func TestGetOrCreateURLBackfillsFromCurrentTab(t *testing.T) {
	t.Parallel()
	v, clk := setupTestVault(t)
	ctx := t.Context()

	ct, err := v.GetOrCreateCurrentTab(ctx, TabData{URL: "https://a.com", TabID: 1, WindowID: 1})
	require.NoError(t, err)
	opened := ct.FirstOpened

	clk.advance(time.Hour)
	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "A"}, record.Uncategorized)
	require.NoError(t, err)

	u, err := v.URLByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, opened, u.FirstOpened)
	assert.Equal(t, ct.LastOpened, u.LastOpened)
	assert.Equal(t, clk.now(), u.FirstSeen)
}

func TestGetOrCreateURLRecoversFromRace(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	// a record written behind the cache's back stands in for a concurrent
	// insert that won the race.
	_, err := v.Store().InsertURL(ctx, &record.URL{URL: "https://a.com", Title: "first", Category: record.Important})
	require.NoError(t, err)

	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "second"}, record.Uncategorized)
	require.NoError(t, err)

	u, err := v.URLByURL(ctx, "https://a.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "second", u.Title)
	assert.Equal(t, record.Important, u.Category)
	assert.Equal(t, 1, v.Store().CountURLs(ctx))
}

func TestGetOrCreateURLConcurrent(t *testing.T) {
	t.Parallel()
	store, err := db.Open(t.Context(), fmt.Sprintf("%s/concurrent.db", t.TempDir()))
	require.NoError(t, err)

	v := New(store)
	defer v.Close()
	require.NoError(t, v.Init(t.Context()))

	const n = 8
	ids := make([]int64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = v.GetOrCreateURL(context.Background(), Candidate{
				URL:   "https://race.example.com",
				Title: fmt.Sprintf("t%d", i),
			}, record.Useful)
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	assert.Equal(t, 1, store.CountURLs(t.Context()))
}

func TestGetOrCreateURLValidation(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)

	_, err := v.GetOrCreateURL(t.Context(), Candidate{}, record.Useful)
	require.ErrorIs(t, err, record.ErrURLEmpty)

	_, err = v.GetOrCreateURL(t.Context(), Candidate{URL: "https://a.com"}, record.Category(9))
	require.ErrorIs(t, err, record.ErrInvalidCategory)
}

func TestPointUpdates(t *testing.T) {
	t.Parallel()
	v, clk := setupTestVault(t)
	ctx := t.Context()

	_, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "A"}, record.Uncategorized)
	require.NoError(t, err)

	ok, err := v.UpdateLastAccessed(ctx, "https://missing.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.UpdateURLCategory(ctx, "https://missing.com", record.Useful)
	require.NoError(t, err)
	assert.False(t, ok)

	clk.advance(time.Second)
	ok, err = v.UpdateLastAccessed(ctx, "https://a.com")
	require.NoError(t, err)
	assert.True(t, ok)

	clk.advance(time.Second)
	ok, err = v.UpdateURLCategory(ctx, "https://a.com", record.Important)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.UpdateURLTitle(ctx, "https://a.com", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.UpdateURLFavicon(ctx, "https://a.com", "fav")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := v.URLByURL(ctx, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, record.Important, u.Category)
	assert.Equal(t, clk.now(), u.LastCategorized)
	assert.Equal(t, "new", u.Title)
	assert.Equal(t, "fav", u.Favicon)

	stored, err := v.Store().URLByURL(ctx, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, u, stored)
}

func TestDeleteURLCascades(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	keep, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://keep.com"}, record.Useful)
	require.NoError(t, err)
	gone, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://gone.com"}, record.Useful)
	require.NoError(t, err)

	_, err = v.RecordOpenEvent(ctx, gone, nil)
	require.NoError(t, err)
	_, err = v.RecordCloseEvent(ctx, gone, 100)
	require.NoError(t, err)
	_, err = v.RecordCloseEvent(ctx, keep, 100)
	require.NoError(t, err)

	ok, err := v.DeleteURL(ctx, gone)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := v.Store().CountEvents(ctx, gone)
	require.NoError(t, err)
	assert.Zero(t, n)

	u, err := v.URLByURL(ctx, "https://gone.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	sessions, err := v.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, []int64{keep}, sessions[0].URLIDs)

	ok, err = v.DeleteURL(ctx, gone)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSavedURLsFiltersByCategory(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	for i, c := range []record.Category{record.Uncategorized, record.Ignore, record.Useful, record.Important} {
		_, err := v.GetOrCreateURL(ctx, Candidate{URL: fmt.Sprintf("https://%d.com", i)}, c)
		require.NoError(t, err)
	}

	saved, err := v.SavedURLs(nil, false)
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	saved, err = v.SavedURLs([]record.Category{record.Important}, false)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "https://3.com", saved[0].URL.URL)
	assert.Nil(t, saved[0].CloseEvents)

	all, err := v.AllURLs()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSavedURLsCloseEventsMostRecentFirst(t *testing.T) {
	t.Parallel()
	v, clk := setupTestVault(t)
	ctx := t.Context()

	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com"}, record.Useful)
	require.NoError(t, err)

	for range 3 {
		clk.advance(time.Minute)
		_, err := v.RecordCloseEvent(ctx, id, 0)
		require.NoError(t, err)
	}

	tabs, err := v.AllSavedTabs([]record.Category{record.Useful})
	require.NoError(t, err)
	require.Len(t, tabs, 1)

	es := tabs[0].CloseEvents
	require.Len(t, es, 3)
	assert.Equal(t, clk.now(), tabs[0].LastCloseTime)
	for i := 1; i < len(es); i++ {
		assert.Greater(t, es[i-1].CloseTime, es[i].CloseTime)
	}
}
