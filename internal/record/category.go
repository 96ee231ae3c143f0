package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the disposition a user assigns to a URL.
type Category int

const (
	Uncategorized Category = iota
	Ignore
	Useful
	Important
)

// Saved are the categories a user has explicitly assigned.
var Saved = []Category{Ignore, Useful, Important}

func (c Category) String() string {
	switch c {
	case Uncategorized:
		return "Uncategorized"
	case Ignore:
		return "Ignore"
	case Useful:
		return "Useful"
	case Important:
		return "Important"
	}

	return "Category(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Uncategorized, Ignore, Useful, Important:
		return true
	}

	return false
}

// In reports whether c is contained in cs.
func (c Category) In(cs ...Category) bool {
	for _, o := range cs {
		if c == o {
			return true
		}
	}

	return false
}

// labels maps free-form labels found in spreadsheets to a category.
var labels = map[string]Category{
	"ignore":         Ignore,
	"can close":      Ignore,
	"can be closed":  Ignore,
	"useful":         Useful,
	"save for later": Useful,
	"save later":     Useful,
	"important":      Important,
}

// ParseLabel maps a label or numeric category to a Category. Unknown input
// yields Uncategorized.
func ParseLabel(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := labels[s]; ok {
		return c
	}

	if n, err := strconv.Atoi(s); err == nil {
		if c := Category(n); c.Valid() {
			return c
		}
	}

	return Uncategorized
}

// ParseCategory parses the canonical name or number of a category.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range []Category{Uncategorized, Ignore, Useful, Important} {
		if v == strings.ToLower(c.String()) || v == strconv.Itoa(int(c)) {
			return c, nil
		}
	}

	return Uncategorized, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}
