// Package rules assigns categories to tabs from user supplied glob rules.
package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/mateconpizza/tabkeep/internal/record"
)

var (
	ErrInvalidField   = errors.New("invalid rule field")
	ErrInvalidPattern = errors.New("invalid rule pattern")
	ErrEmptyPattern   = errors.New("empty rule pattern")
)

// Field is the part of a tab a rule is matched against.
type Field string

const (
	FieldURL    Field = "url"
	FieldTitle  Field = "title"
	FieldDomain Field = "domain"
)

// Rule maps the tabs whose field matches pattern to a category.
//
// Matching is case-insensitive. A pattern without glob metacharacters
// matches when it is contained in the field.
type Rule struct {
	Field    Field           `yaml:"field"    json:"field"`
	Pattern  string          `yaml:"pattern"  json:"pattern"`
	Category record.Category `yaml:"category" json:"category"`
}

// Validate checks the rule can be compiled.
func (r Rule) Validate() error {
	switch r.Field {
	case FieldURL, FieldTitle, FieldDomain:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, r.Field)
	}

	if strings.TrimSpace(r.Pattern) == "" {
		return ErrEmptyPattern
	}

	if !r.Category.Valid() || r.Category == record.Uncategorized {
		return fmt.Errorf("%w: %d", record.ErrInvalidCategory, r.Category)
	}

	if _, err := compile(r.Pattern); err != nil {
		return err
	}

	return nil
}

// UnmarshalYAML accepts the category by name or number.
func (r *Rule) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Field    Field  `yaml:"field"`
		Pattern  string `yaml:"pattern"`
		Category string `yaml:"category"`
	}

	if err := n.Decode(&raw); err != nil {
		return err
	}

	c, err := record.ParseCategory(raw.Category)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}

	r.Field = Field(strings.ToLower(string(raw.Field)))
	r.Pattern = raw.Pattern
	r.Category = c

	return nil
}

// Row is a tab to classify.
type Row struct {
	URL    string
	Title  string
	Domain string
}

func (r Row) field(f Field) string {
	switch f {
	case FieldURL:
		return r.URL
	case FieldTitle:
		return r.Title
	case FieldDomain:
		return r.Domain
	}

	return ""
}

// Matcher compiles rule patterns once and reuses them. Patterns that fail
// to compile are remembered, logged once and skipped.
type Matcher struct {
	mu       sync.Mutex
	compiled map[string]glob.Glob
	invalid  map[string]error
}

// NewMatcher returns an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		compiled: make(map[string]glob.Glob),
		invalid:  make(map[string]error),
	}
}

func compile(pattern string) (glob.Glob, error) {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if !strings.ContainsAny(p, "*?[]{}") {
		p = "*" + p + "*"
	}

	g, err := glob.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}

	return g, nil
}

func (m *Matcher) glob(pattern string) (glob.Glob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.compiled[pattern]; ok {
		return g, nil
	}

	if err, ok := m.invalid[pattern]; ok {
		return nil, err
	}

	g, err := compile(pattern)
	if err != nil {
		slog.Warn("skipping rule with invalid pattern", "pattern", pattern, "error", err)
		m.invalid[pattern] = err

		return nil, err
	}

	m.compiled[pattern] = g

	return g, nil
}

// Match returns the category of the first rule matching row.
func (m *Matcher) Match(row Row, rules []Rule) (record.Category, bool) {
	for _, r := range rules {
		g, err := m.glob(r.Pattern)
		if err != nil {
			continue
		}

		if g.Match(strings.ToLower(row.field(r.Field))) {
			return r.Category, true
		}
	}

	return record.Uncategorized, false
}

// Classify groups rows by the category of the first rule each one matches.
// Rows matching no rule are left out.
func (m *Matcher) Classify(rows []Row, rules []Rule) map[record.Category][]Row {
	out := make(map[record.Category][]Row)
	for _, row := range rows {
		if c, ok := m.Match(row, rules); ok {
			out[c] = append(out[c], row)
		}
	}

	return out
}

// Load decodes a YAML list of rules and validates each one.
func Load(data []byte) ([]Rule, error) {
	var rs []Rule
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}

	for i, r := range rs {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}

	return rs, nil
}
