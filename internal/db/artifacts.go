package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/tabkeep/internal/record"
)

// ArtifactsDeleted counts the ML artifacts removed for a url.
type ArtifactsDeleted struct {
	Predictions  int
	TrainingData int
}

// Prediction is the latest ML prediction stored for a url.
type Prediction struct {
	URL        string          `db:"url"`
	Category   record.Category `db:"category"`
	Confidence float64         `db:"confidence"`
	CreatedAt  int64           `db:"created_at"`
}

// ArtifactStore keeps the ML predictions and training samples.
type ArtifactStore struct {
	r *SQLite
}

// NewArtifactStore returns an artifact store sharing the database of r.
func NewArtifactStore(r *SQLite) *ArtifactStore {
	return &ArtifactStore{r: r}
}

// AddPrediction stores a prediction for url.
func (a *ArtifactStore) AddPrediction(ctx context.Context, p *Prediction) error {
	if p.CreatedAt == 0 {
		p.CreatedAt = record.Now()
	}

	return a.r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
		INSERT INTO predictions (url, category, confidence, created_at)
		VALUES (:url, :category, :confidence, :created_at)`, p)
		if err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}

		return nil
	})
}

// AddTrainingSample stores a training sample labelling url with c.
func (a *ArtifactStore) AddTrainingSample(ctx context.Context, url string, c record.Category) error {
	return a.r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO training_data (url, category, created_at) VALUES (?, ?, ?)",
			url, c, record.Now())
		if err != nil {
			return fmt.Errorf("insert training sample: %w", err)
		}

		return nil
	})
}

// PredictionFor returns the most recent prediction of url, nil when none.
func (a *ArtifactStore) PredictionFor(ctx context.Context, url string) (*Prediction, error) {
	var p Prediction
	err := a.r.DB.GetContext(ctx, &p, `
		SELECT url, category, confidence, created_at
		FROM predictions
		WHERE url = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("prediction for %q: %w", url, err)
	}

	return &p, nil
}

// DeleteArtifactsForURL removes every prediction and training sample of url.
func (a *ArtifactStore) DeleteArtifactsForURL(ctx context.Context, url string) (ArtifactsDeleted, error) {
	var d ArtifactsDeleted
	err := a.r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM predictions WHERE url = ?", url)
		if err != nil {
			return fmt.Errorf("delete predictions: %w", err)
		}

		n, err := affected(res)
		if err != nil {
			return err
		}

		d.Predictions = int(n)

		res, err = tx.ExecContext(ctx, "DELETE FROM training_data WHERE url = ?", url)
		if err != nil {
			return fmt.Errorf("delete training data: %w", err)
		}

		if n, err = affected(res); err != nil {
			return err
		}

		d.TrainingData = int(n)

		return nil
	})
	if err != nil {
		return ArtifactsDeleted{}, err
	}

	slog.Debug("deleted artifacts", "url", url, "predictions", d.Predictions, "training", d.TrainingData)

	return d, nil
}
