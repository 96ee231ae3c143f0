package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/record"
)

func TestRecordOpenAndCloseEvents(t *testing.T) {
	t.Parallel()
	v, clk := setupTestVault(t)
	ctx := t.Context()

	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com"}, record.Useful)
	require.NoError(t, err)

	tabID := int64(7)
	_, err = v.RecordOpenEvent(ctx, id, &tabID)
	require.NoError(t, err)
	_, err = v.RecordCloseEvent(ctx, id, 0)
	require.NoError(t, err)

	es, err := v.EventsForURL(ctx, id)
	require.NoError(t, err)
	require.Len(t, es, 2)

	assert.Equal(t, clk.now(), es[0].CloseTime)
	assert.Nil(t, es[0].TabID)
	assert.False(t, es[1].Closed())
	require.NotNil(t, es[1].TabID)
	assert.Equal(t, tabID, *es[1].TabID)

	_, err = v.RecordOpenEvent(ctx, 0, nil)
	require.ErrorIs(t, err, record.ErrInvalidID)
}

func TestTabsClosedAt(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	a, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com"}, record.Useful)
	require.NoError(t, err)
	b, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://b.com"}, record.Useful)
	require.NoError(t, err)

	for _, id := range []int64{a, a, b} {
		_, err := v.RecordCloseEvent(ctx, id, 500)
		require.NoError(t, err)
	}

	_, err = v.RecordCloseEvent(ctx, b, 600)
	require.NoError(t, err)

	us, err := v.TabsClosedAt(ctx, 500)
	require.NoError(t, err)
	require.Len(t, us, 2)
	assert.Equal(t, a, us[0].ID)
	assert.Equal(t, b, us[1].ID)

	us, err = v.TabsClosedAt(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, us)
}

func TestRecentSessions(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	a, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com"}, record.Useful)
	require.NoError(t, err)
	b, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://b.com"}, record.Useful)
	require.NoError(t, err)

	closes := []struct {
		id int64
		ts int64
	}{
		{a, 100}, {b, 100}, {a, 200}, {b, 300}, {a, 300},
	}
	for _, c := range closes {
		_, err := v.RecordCloseEvent(ctx, c.id, c.ts)
		require.NoError(t, err)
	}

	sessions, err := v.RecentSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, int64(300), sessions[0].CloseTime)
	assert.Equal(t, 2, sessions[0].Count)
	assert.ElementsMatch(t, []int64{a, b}, sessions[0].URLIDs)
	assert.Equal(t, int64(200), sessions[1].CloseTime)
	assert.Equal(t, []int64{a}, sessions[1].URLIDs)

	sessions, err = v.RecentSessions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)

	sessions, err = v.RecentSessions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestBackfillSessionKeepsOrder(t *testing.T) {
	t.Parallel()
	v, _ := setupTestVault(t)
	ctx := t.Context()

	id, err := v.GetOrCreateURL(ctx, Candidate{URL: "https://a.com"}, record.Important)
	require.NoError(t, err)

	for _, ts := range []int64{200, 100, 300} {
		require.NoError(t, v.BackfillSession(ctx, id, nil, ts))
	}

	saved, err := v.SavedURLs([]record.Category{record.Important}, true)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	got := make([]int64, 0, 3)
	for _, e := range saved[0].CloseEvents {
		got = append(got, e.CloseTime)
	}
	assert.Equal(t, []int64{300, 200, 100}, got)

	n, err := v.Store().CountEvents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
