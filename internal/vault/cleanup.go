package vault

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
)

// CleanupResult summarizes a retention sweep.
type CleanupResult struct {
	URLsDeleted         int
	EventsDeleted       int
	PredictionsDeleted  int
	TrainingDataDeleted int
	Errors              []error
}

// expires reports whether records of c are collected by age.
func expires(c record.Category) bool {
	switch c {
	case record.Ignore:
		return true
	case record.Uncategorized, record.Useful, record.Important:
		return false
	}

	return false
}

// CleanupUncategorizedRecords deletes every Uncategorized record with its
// events and ML artifacts, and returns the number of records deleted.
//
// Artifact failures are logged and do not stop the sweep.
func (v *Vault) CleanupUncategorizedRecords(ctx context.Context) (int, error) {
	us, err := v.store.URLsByCategory(ctx, record.Uncategorized)
	if err != nil {
		return 0, fmt.Errorf("cleanup uncategorized: %w", err)
	}

	var deleted int
	for _, u := range us {
		found, _, err := v.deleteURL(ctx, u.ID)
		if err != nil {
			return deleted, fmt.Errorf("cleanup uncategorized %q: %w", u.URL, err)
		}

		if found {
			deleted++
		}

		if _, err := v.deleteArtifacts(ctx, u.URL); err != nil {
			slog.Warn("deleting ML artifacts", "url", u.URL, "error", err)
		}
	}

	slog.Info("cleanup uncategorized", "deleted", deleted)

	return deleted, nil
}

// CleanupOldURLs deletes the records collected by age whose last access is
// older than retention, with their events and ML artifacts. Useful and
// Important records are never collected.
//
// A failure on one url is recorded in the result and the sweep continues.
func (v *Vault) CleanupOldURLs(ctx context.Context, retention time.Duration) (*CleanupResult, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRetention, retention)
	}

	cutoff := v.now() - retention.Milliseconds()
	res := &CleanupResult{}

	for _, c := range []record.Category{record.Uncategorized, record.Ignore, record.Useful, record.Important} {
		if !expires(c) {
			continue
		}

		us, err := v.store.URLsAccessedBefore(ctx, c, cutoff)
		if err != nil {
			return res, fmt.Errorf("cleanup old urls: %w", err)
		}

		for _, u := range us {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			v.expireURL(ctx, u, res)
		}
	}

	slog.Info("cleanup old urls",
		"urls", res.URLsDeleted,
		"events", res.EventsDeleted,
		"predictions", res.PredictionsDeleted,
		"training", res.TrainingDataDeleted,
		"errors", len(res.Errors),
	)

	return res, nil
}

func (v *Vault) expireURL(ctx context.Context, u *record.URL, res *CleanupResult) {
	found, events, err := v.deleteURL(ctx, u.ID)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("delete %q: %w", u.URL, err))
		return
	}

	if found {
		res.URLsDeleted++
	}

	res.EventsDeleted += int(events)

	d, err := v.deleteArtifacts(ctx, u.URL)
	if err != nil {
		slog.Warn("deleting ML artifacts", "url", u.URL, "error", err)
		res.Errors = append(res.Errors, fmt.Errorf("artifacts %q: %w", u.URL, err))

		return
	}

	res.PredictionsDeleted += d.Predictions
	res.TrainingDataDeleted += d.TrainingData
}

func (v *Vault) deleteArtifacts(ctx context.Context, url string) (db.ArtifactsDeleted, error) {
	if v.artifacts == nil {
		return db.ArtifactsDeleted{}, nil
	}

	return v.artifacts.DeleteArtifactsForURL(ctx, url)
}
