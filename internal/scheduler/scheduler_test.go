package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/vault"
)

type countingCleaner struct {
	calls     atomic.Int32
	retention atomic.Int64
}

func (c *countingCleaner) CleanupOldURLs(_ context.Context, r time.Duration) (*vault.CleanupResult, error) {
	c.calls.Add(1)
	c.retention.Store(int64(r))

	return &vault.CleanupResult{URLsDeleted: 1}, nil
}

func TestNewValidates(t *testing.T) {
	t.Parallel()
	_, err := New(&countingCleaner{}, time.Hour, 0)
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New(&countingCleaner{}, 0, time.Hour)
	require.ErrorIs(t, err, vault.ErrInvalidRetention)
}

func TestRunNow(t *testing.T) {
	t.Parallel()
	c := &countingCleaner{}
	s, err := New(c, 48*time.Hour, time.Hour)
	require.NoError(t, err)

	res, err := s.RunNow(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, res.URLsDeleted)
	assert.Equal(t, int64(48*time.Hour), c.retention.Load())

	last, runs := s.Last()
	assert.Same(t, res, last)
	assert.Equal(t, 1, runs)
}

func TestStartRunsImmediately(t *testing.T) {
	t.Parallel()
	c := &countingCleaner{}
	s, err := New(c, time.Hour, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Start(t.Context()))
	defer func() { require.NoError(t, s.Stop()) }()

	assert.Eventually(t, func() bool { return c.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = s.NextRun()
	require.NoError(t, err)
}
