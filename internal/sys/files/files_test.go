package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSuffix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "tabs.db", EnsureSuffix("tabs", ".db"))
	assert.Equal(t, "tabs.db", EnsureSuffix("tabs.db", ".db"))
	assert.Equal(t, "tabs.sqlite", EnsureSuffix("tabs.sqlite", ".db"))
	assert.Empty(t, EnsureSuffix("", ".db"))
}

func TestTouch(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "nested", "out.csv")

	f, err := Touch(p, false)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, Exists(p))

	_, err = Touch(p, false)
	require.ErrorIs(t, err, ErrFileExists)

	f, err = Touch(p, true)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestExpandHomeDir(t *testing.T) {
	t.Parallel()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), ExpandHomeDir("~/x"))
	assert.Equal(t, "/abs", ExpandHomeDir("/abs"))
}
