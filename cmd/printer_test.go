package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

func TestShorten(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "ab…", shorten("abcdef", 3))
	assert.Equal(t, "héllo", shorten("héllo", 5))
}

func TestParseCategories(t *testing.T) {
	t.Parallel()
	cs, err := parseCategories([]string{"useful", "3"})
	require.NoError(t, err)
	assert.Equal(t, []record.Category{record.Useful, record.Important}, cs)

	_, err = parseCategories([]string{"nope"})
	require.ErrorIs(t, err, record.ErrInvalidCategory)
}

func TestPrintSessions(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, printSessions(&buf, []vault.Session{{CloseTime: 1_700_000_000_000, URLIDs: []int64{3, 1}, Count: 2}}))
	assert.Contains(t, buf.String(), "3,1")
	assert.Contains(t, buf.String(), "CLOSED")
}

func TestFormatDate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "-", formatDate(0))
	assert.NotEqual(t, "-", formatDate(1_700_000_000_000))
}
