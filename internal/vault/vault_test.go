package vault

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
)

var testDBSeq atomic.Int64

// clock is a manual time source in Unix milliseconds.
type clock struct {
	ms atomic.Int64
}

func (c *clock) now() int64 { return c.ms.Load() }

func (c *clock) advance(d time.Duration) { c.ms.Add(d.Milliseconds()) }

// setupTestVault returns an initialized vault over an in-memory store.
func setupTestVault(t *testing.T, opts ...Option) (*Vault, *clock) {
	t.Helper()

	name := fmt.Sprintf("testdb_vault_%d_%d", time.Now().UnixNano(), testDBSeq.Add(1))
	store, err := db.OpenMemory(t.Context(), name)
	require.NoError(t, err)

	c := &clock{}
	c.ms.Store(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())

	v := New(store, append([]Option{WithClock(c.now)}, opts...)...)
	require.NoError(t, v.Init(t.Context()))
	t.Cleanup(v.Close)

	return v, c
}

type fakeArtifacts struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeArtifacts) DeleteArtifactsForURL(_ context.Context, url string) (db.ArtifactsDeleted, error) {
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return db.ArtifactsDeleted{}, errors.New("artifact store offline")
	}

	return db.ArtifactsDeleted{Predictions: 2, TrainingData: 1}, nil
}

func TestInitUninitializedCache(t *testing.T) {
	t.Parallel()
	store, err := db.OpenMemory(t.Context(), fmt.Sprintf("testdb_uninit_%d", time.Now().UnixNano()))
	require.NoError(t, err)

	v := New(store)
	defer v.Close()
	assert.False(t, v.Initialized())

	_, err = v.GetOrCreateURL(t.Context(), Candidate{URL: "https://a.com"}, record.Uncategorized)
	require.ErrorIs(t, err, ErrCacheUninitialized)

	_, err = v.RecordCloseEvent(t.Context(), 1, 0)
	require.ErrorIs(t, err, ErrCacheUninitialized)

	_, err = v.SavedURLs(nil, false)
	require.ErrorIs(t, err, ErrCacheUninitialized)

	_, err = v.AllURLs()
	require.ErrorIs(t, err, ErrCacheUninitialized)

	_, err = v.AllSavedTabs(nil)
	require.ErrorIs(t, err, ErrCacheUninitialized)

	// store reads keep working.
	u, err := v.URLByURL(t.Context(), "https://a.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestInitLoadsExistingRecords(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com", Title: "A"}, record.Useful)
	require.NoError(t, err)
	_, err = v.RecordCloseEvent(ctx, id, 10)
	require.NoError(t, err)
	_, err = v.RecordCloseEvent(ctx, id, 20)
	require.NoError(t, err)

	fresh := New(v.Store())
	require.NoError(t, fresh.Init(ctx))

	saved, err := fresh.SavedURLs([]record.Category{record.Useful}, true)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(20), saved[0].LastCloseTime)
	require.Len(t, saved[0].CloseEvents, 2)
	assert.Equal(t, int64(10), saved[0].CloseEvents[1].CloseTime)
}
