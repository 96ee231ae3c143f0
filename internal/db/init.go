package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// tablesAndSchemas all tables and their schema.
var tablesAndSchemas = []Schema{
	schemaURLs,
	schemaEvents,
	schemaCurrentTabs,
	schemaPredictions,
	schemaTrainingData,
}

// Init creates the required tables and indices.
func (r *SQLite) Init(ctx context.Context) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range tablesAndSchemas {
			if err := r.tableCreate(ctx, tx, s.Name, s.SQL); err != nil {
				return fmt.Errorf("creating %q table: %w", s.Name, err)
			}

			for _, idx := range s.Index {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return fmt.Errorf("creating %q index: %w", s.Name, err)
				}
			}
		}

		return nil
	})
}

// IsInitialized returns true if every table exists.
func (r *SQLite) IsInitialized() bool {
	for _, s := range tablesAndSchemas {
		exists, err := tableExists(r, s.Name)
		if err != nil || !exists {
			slog.Warn("table does not exist", "name", s.Name)
			return false
		}
	}

	return true
}

// tableCreate creates a new table with the specified name in the SQLite database.
func (r *SQLite) tableCreate(ctx context.Context, tx *sqlx.Tx, name Table, schema string) error {
	slog.Debug("creating table", "name", name)

	_, err := tx.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	return nil
}

// tableExists checks whether a table with the specified name exists in the SQLite database.
func tableExists(r *SQLite, t Table) (bool, error) {
	var count int
	err := r.DB.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", t)
	if err != nil {
		slog.Error("checking if table exists", "name", t, "error", err)
		return false, fmt.Errorf("tableExists: %w", err)
	}

	return count > 0, nil
}
