package port

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/rules"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

// Status is the outcome of an imported row.
type Status string

const (
	StatusImported            Status = "imported"
	StatusDuplicate           Status = "duplicate"
	StatusNeedsCategorization Status = "needs-categorization"
	StatusError               Status = "error"
)

// Settings configures an import.
type Settings struct {
	Rules   []rules.Rule
	Matcher Classifier // defaults to rules.NewMatcher
}

// RowError is a failure on a single CSV row.
type RowError struct {
	Line int
	URL  string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.URL, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// MarshalJSON renders the wrapped error as text.
func (e *RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line  int    `json:"line"`
		URL   string `json:"url"`
		Error string `json:"error"`
	}{e.Line, e.URL, e.Err.Error()})
}

// RowDetail describes what happened to a row.
type RowDetail struct {
	Line     int
	URL      string
	Title    string
	Category record.Category
	Status   Status
	ByRule   bool
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported            int
	Duplicates          int
	NeedsCategorization int
	CategorizedByRules  int
	Errors              []*RowError
	Details             []RowDetail
}

// ImportCSV reads rows from r into t. The header must carry a title and a
// url column; otherwise nothing is imported. Rows that cannot be
// categorized are reported, not imported.
func ImportCSV(ctx context.Context, t Target, r io.Reader, s Settings) (*ImportResult, error) {
	rr := newRecordReader(r)
	header, _, err := rr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}

		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := detectColumns(header)
	if err != nil {
		return nil, err
	}

	if s.Matcher == nil {
		s.Matcher = rules.NewMatcher()
	}

	res := &ImportResult{}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		row, line, err := rr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if errors.Is(err, ErrReadInput) {
			return res, err
		}

		if err != nil {
			res.fail(line, "", err)
			continue
		}

		importRow(ctx, t, cols, row, line, s, res)
	}

	slog.Info("import finished",
		"imported", res.Imported,
		"duplicates", res.Duplicates,
		"needs_categorization", res.NeedsCategorization,
		"by_rules", res.CategorizedByRules,
		"errors", len(res.Errors),
	)

	return res, nil
}

func (res *ImportResult) fail(line int, url string, err error) {
	slog.Warn("import row failed", "line", line, "url", url, "error", err)
	res.Errors = append(res.Errors, &RowError{Line: line, URL: url, Err: err})
	res.Details = append(res.Details, RowDetail{Line: line, URL: url, Status: StatusError})
}

func importRow(ctx context.Context, t Target, cols columns, row []string, line int, s Settings, res *ImportResult) {
	url := field(row, cols.url)
	if url == "" {
		return
	}

	d := RowDetail{Line: line, URL: url, Title: field(row, cols.title)}

	existing, err := t.URLByURL(ctx, url)
	if err != nil {
		res.fail(line, url, err)
		return
	}

	if existing != nil {
		d.Category = existing.Category
		d.Status = StatusDuplicate
		res.Duplicates++
		res.Details = append(res.Details, d)

		return
	}

	domain := field(row, cols.domain)
	if domain == "" {
		domain = record.ExtractDomain(url)
	}

	d.Category = record.ParseLabel(field(row, cols.category))
	if d.Category == record.Uncategorized && len(s.Rules) > 0 {
		d.Category, d.ByRule = classify(s, rules.Row{URL: url, Title: d.Title, Domain: domain})
	}

	switch d.Category {
	case record.Uncategorized:
		d.Status = StatusNeedsCategorization
		res.NeedsCategorization++
		res.Details = append(res.Details, d)

		return
	case record.Ignore, record.Useful, record.Important:
	}

	id, err := t.GetOrCreateURL(ctx, vault.Candidate{URL: url, Title: d.Title, Domain: domain}, d.Category)
	if err != nil {
		res.fail(line, url, err)
		return
	}

	if ts, ok := cols.closedAt(row); ok {
		tabID := importTabID
		if err := t.BackfillSession(ctx, id, &tabID, ts); err != nil {
			res.fail(line, url, err)
			return
		}
	}

	d.Status = StatusImported
	res.Imported++
	if d.ByRule {
		res.CategorizedByRules++
	}
	res.Details = append(res.Details, d)
}

// classify returns the category of the first rule matching row.
func classify(s Settings, row rules.Row) (record.Category, bool) {
	matched := s.Matcher.Classify([]rules.Row{row}, s.Rules)
	for _, r := range s.Rules {
		if len(matched[r.Category]) > 0 {
			return r.Category, true
		}
	}

	return record.Uncategorized, false
}
