//nolint:paralleltest //test
package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup(t *testing.T) {
	r, err := Open(t.Context(), filepath.Join(t.TempDir(), "main.db"))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.InsertURL(t.Context(), testSingleURL())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backup")
	p, err := r.Backup(t.Context(), dir)
	require.NoError(t, err)
	assert.FileExists(t, p)

	b, err := New(p)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, 1, b.CountURLs(t.Context()))
}

func TestDropSecure(t *testing.T) {
	r := testPopulatedDB(t, 5)
	defer teardownthewall(r.DB)

	require.NoError(t, r.DropSecure(t.Context()))
	assert.Zero(t, r.CountURLs(t.Context()))

	u := testSingleURL()
	id, err := r.InsertURL(t.Context(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
