//nolint:paralleltest //test
package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/record"
)

func TestInsertEvent(t *testing.T) {
	r := testPopulatedDB(t, 1)
	defer teardownthewall(r.DB)
	ctx := t.Context()

	tab := int64(7)
	id, err := r.InsertEvent(ctx, &record.Event{URLID: 1, TabID: &tab, OpenTime: 5})
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = r.InsertEvent(ctx, &record.Event{URLID: 1, CloseTime: 9})
	require.NoError(t, err)

	es, err := r.EventsByURL(ctx, 1)
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, int64(9), es[0].CloseTime)
	assert.Nil(t, es[0].TabID)
	require.NotNil(t, es[1].TabID)
	assert.Equal(t, tab, *es[1].TabID)
	assert.False(t, es[1].Closed())
}

func TestClosedEventsOrder(t *testing.T) {
	r := testPopulatedDB(t, 2)
	defer teardownthewall(r.DB)
	ctx := t.Context()

	require.NoError(t, r.InsertEvents(ctx,
		&record.Event{URLID: 2, CloseTime: 100},
		&record.Event{URLID: 1, CloseTime: 50},
		&record.Event{URLID: 1, OpenTime: 40},
		&record.Event{URLID: 1, CloseTime: 300},
		&record.Event{URLID: 2, CloseTime: 300},
	))

	es, err := r.ClosedEvents(ctx)
	require.NoError(t, err)
	require.Len(t, es, 4)
	assert.Equal(t, []int64{300, 50, 300, 100},
		[]int64{es[0].CloseTime, es[1].CloseTime, es[2].CloseTime, es[3].CloseTime})

	at, err := r.EventsClosedAt(ctx, 300)
	require.NoError(t, err)
	assert.Len(t, at, 2)
}

func TestEventsByCloseTime(t *testing.T) {
	r := testPopulatedDB(t, 1)
	defer teardownthewall(r.DB)
	ctx := t.Context()

	require.NoError(t, r.InsertEvents(ctx,
		&record.Event{URLID: 1, CloseTime: 1},
		&record.Event{URLID: 1, CloseTime: 3},
		&record.Event{URLID: 1, OpenTime: 2},
		&record.Event{URLID: 1, CloseTime: 2},
	))

	seq := r.EventsByCloseTime(ctx)

	var got []int64
	for e, err := range seq {
		require.NoError(t, err)
		got = append(got, e.CloseTime)
	}
	assert.Equal(t, []int64{3, 2, 1}, got)

	// stopping early releases the cursor and the sequence restarts.
	for e, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, int64(3), e.CloseTime)
		break
	}

	n, err := r.CountEvents(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
