package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/config"
)

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("missing file uses defaults", func(t *testing.T) {
		t.Parallel()
		f, err := loadConfigFile(filepath.Join(dir, "none.yml"), false)
		require.NoError(t, err)
		assert.Equal(t, config.Defaults(), f)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(dir, "ok.yml")
		require.NoError(t, os.WriteFile(p, []byte("retention: 7d\n"), 0o600))

		f, err := loadConfigFile(p, false)
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, time.Duration(f.Retention))
	})

	t.Run("invalid file fails", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(p, []byte("retention: 0s\n"), 0o600))

		f, err := loadConfigFile(p, false)
		require.ErrorIs(t, err, config.ErrInvalidRetention)
		assert.Nil(t, f)
		assert.Contains(t, err.Error(), p)
	})

	t.Run("invalid file with overwrite uses defaults", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(dir, "rewrite.yml")
		require.NoError(t, os.WriteFile(p, []byte("retention: soon\n"), 0o600))

		f, err := loadConfigFile(p, true)
		require.NoError(t, err)
		assert.Equal(t, config.Defaults(), f)
	})
}
