// Package port imports and exports url records as CSV.
package port

import (
	"context"
	"errors"

	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/rules"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrMissingColumns = errors.New("missing required columns")
	ErrReadInput      = errors.New("reading input")
)

// importTabID marks the events backfilled by an import.
const importTabID int64 = -1

// Source provides the records to export.
type Source interface {
	SavedURLs(cats []record.Category, includeEvents bool) ([]*vault.SavedURL, error)
}

// MLSource provides the latest ML prediction of a url.
type MLSource interface {
	PredictionFor(ctx context.Context, url string) (*db.Prediction, error)
}

// Target receives imported records.
type Target interface {
	URLByURL(ctx context.Context, url string) (*record.URL, error)
	GetOrCreateURL(ctx context.Context, c vault.Candidate, cat record.Category) (int64, error)
	BackfillSession(ctx context.Context, urlID int64, tabID *int64, closeTime int64) error
}

// Classifier groups rows by the category of the rules they match.
type Classifier interface {
	Classify(rows []rules.Row, rs []rules.Rule) map[record.Category][]rules.Row
}

var (
	_ Source     = (*vault.Vault)(nil)
	_ Target     = (*vault.Vault)(nil)
	_ MLSource   = (*db.ArtifactStore)(nil)
	_ Classifier = (*rules.Matcher)(nil)
)
