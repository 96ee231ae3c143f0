package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/rules"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "config.yml")
	data := `
retention: 7d
sweep_interval: 6h
rules:
  - field: domain
    pattern: youtube.com
    category: ignore
`
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, time.Duration(cfg.Retention))
	assert.Equal(t, 6*time.Hour, time.Duration(cfg.SweepInterval))
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, rules.Rule{Field: rules.FieldDomain, Pattern: "youtube.com", Category: record.Ignore}, cfg.Rules[0])
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	p := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(p, []byte("retention: 0s\n"), 0o600))
	_, err := Load(p)
	require.ErrorIs(t, err, ErrInvalidRetention)

	require.NoError(t, os.WriteFile(p, []byte("retention: soon\n"), 0o600))
	_, err = Load(p)
	require.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "config.yml")
	cfg := Defaults()
	cfg.Rules = []rules.Rule{{Field: rules.FieldURL, Pattern: "*/docs/*", Category: record.Important}}

	require.NoError(t, Write(p, cfg))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestParseDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"1.5d", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
