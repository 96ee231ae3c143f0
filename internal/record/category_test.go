package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	t.Parallel()
	tests := map[string]Category{
		"ignore":         Ignore,
		"Can Close":      Ignore,
		"can be closed":  Ignore,
		"  useful ":      Useful,
		"Save for later": Useful,
		"save later":     Useful,
		"IMPORTANT":      Important,
		"2":              Useful,
		"9":              Uncategorized,
		"whatever":       Uncategorized,
		"":               Uncategorized,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLabel(in), "label %q", in)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()
	c, err := ParseCategory("important")
	require.NoError(t, err)
	assert.Equal(t, Important, c)

	c, err = ParseCategory("1")
	require.NoError(t, err)
	assert.Equal(t, Ignore, c)

	_, err = ParseCategory("later")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestCategoryString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Useful", Useful.String())
	assert.Equal(t, "Category(7)", Category(7).String())
	assert.False(t, Category(7).Valid())
	assert.True(t, Useful.In(Saved...))
	assert.False(t, Uncategorized.In(Saved...))
}
