//nolint:paralleltest //test
package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/record"
)

func TestInsertURL(t *testing.T) {
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	u := testSingleURL()
	id, err := r.InsertURL(t.Context(), u)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	got, err := r.URLByURL(t.Context(), u.URL)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = r.InsertURL(t.Context(), &record.URL{})
	assert.ErrorIs(t, err, record.ErrURLEmpty)
}

func TestInsertURLDuplicate(t *testing.T) {
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	_, err := r.InsertURL(t.Context(), testSingleURL())
	require.NoError(t, err)

	_, err = r.InsertURL(t.Context(), testSingleURL())
	assert.ErrorIs(t, err, ErrRecordDuplicate)
	assert.Equal(t, 1, r.CountURLs(t.Context()))
}

func TestMergeURL(t *testing.T) {
	r := testPopulatedDB(t, 3)
	defer teardownthewall(r.DB)
	ctx := t.Context()

	got, err := r.MergeURL(ctx, 2, func(u *record.URL) {
		u.Title = "new title"
		u.Category = record.Important
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)

	stored, err := r.URLByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
	assert.Equal(t, record.Important, stored.Category)

	// fn sees the stored row, not a caller copy.
	_, err = r.MergeURL(ctx, 2, func(u *record.URL) {
		assert.Equal(t, record.Important, u.Category)
		u.URL = "ignored"
	})
	require.NoError(t, err)

	stored, err = r.URLByID(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", stored.URL)

	_, err = r.MergeURL(ctx, 99, func(*record.URL) {})
	require.ErrorIs(t, err, ErrRecordNotFound)

	_, err = r.MergeURL(ctx, 0, func(*record.URL) {})
	require.ErrorIs(t, err, ErrRecordIDNotProvided)
}

func TestPointUpdates(t *testing.T) {
	r := testPopulatedDB(t, 1)
	defer teardownthewall(r.DB)
	ctx := t.Context()
	target := "https://www.example0.com"

	ok, err := r.UpdateLastAccessed(ctx, target, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.UpdateCategory(ctx, target, record.Ignore, 43)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.UpdateTitle(ctx, target, "t")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.UpdateFavicon(ctx, target, "f.ico")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.URLByURL(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(43), got.LastAccessed)
	assert.Equal(t, int64(43), got.LastCategorized)
	assert.Equal(t, record.Ignore, got.Category)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "f.ico", got.Favicon)

	ok, err = r.UpdateLastAccessed(ctx, "https://missing.com", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestURLQueries(t *testing.T) {
	r := testPopulatedDB(t, 4)
	defer teardownthewall(r.DB)
	ctx := t.Context()

	_, err := r.UpdateCategory(ctx, "https://www.example1.com", record.Ignore, 10)
	require.NoError(t, err)
	_, err = r.UpdateCategory(ctx, "https://www.example2.com", record.Ignore, 10)
	require.NoError(t, err)
	_, err = r.UpdateLastAccessed(ctx, "https://www.example2.com", record.Now())
	require.NoError(t, err)

	all, err := r.AllURLs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	ignored, err := r.URLsByCategory(ctx, record.Ignore)
	require.NoError(t, err)
	assert.Len(t, ignored, 2)

	old, err := r.URLsAccessedBefore(ctx, record.Ignore, 1000)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, "https://www.example1.com", old[0].URL)
}

func TestDeleteURLCascade(t *testing.T) {
	r := testPopulatedDB(t, 2)
	defer teardownthewall(r.DB)
	ctx := t.Context()

	require.NoError(t, r.InsertEvents(ctx,
		&record.Event{URLID: 1, CloseTime: 10},
		&record.Event{URLID: 1, CloseTime: 20},
		&record.Event{URLID: 2, CloseTime: 30},
	))

	found, events, err := r.DeleteURL(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), events)

	_, err = r.URLByID(ctx, 1)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	n, err := r.CountEvents(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.CountEvents(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, _, err = r.DeleteURL(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}
