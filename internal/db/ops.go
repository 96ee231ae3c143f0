package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
)

// Default date format for backup names.
const defaultDateFormat = "20060102-150405"

// Backup writes a consistent copy of the database into dir and returns the
// backup path.
func (r *SQLite) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w", err)
	}

	// destPath -> dir/20060102-150405_dbName.db
	destPath := filepath.Join(dir, fmt.Sprintf("%s_%s", time.Now().Format(defaultDateFormat), r.Name()))
	slog.Info("creating SQLite backup", "src", r.Cfg.Fullpath(), "dest", destPath)

	if fileExists(destPath) {
		return "", fmt.Errorf("%w: %q", ErrBackupExists, destPath)
	}

	if _, err := r.DB.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	if err := verifySQLiteIntegrity(destPath); err != nil {
		return "", err
	}

	return destPath, nil
}

// Vacuum rebuilds the database file, repacking it into a minimal amount of
// disk space.
func (r *SQLite) Vacuum(ctx context.Context) error {
	slog.Debug("vacuuming database")

	if _, err := r.DB.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// DropSecure removes every record and resets the id sequences.
func (r *SQLite) DropSecure(ctx context.Context) error {
	tables := make([]Table, 0, len(tablesAndSchemas))
	for _, t := range tablesAndSchemas {
		tables = append(tables, t.Name)
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, t := range tables {
			slog.Debug("deleting records from table", "table", t)

			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t)); err != nil {
				return fmt.Errorf("%w", err)
			}
		}

		return resetSQLiteSequence(ctx, tx, tables...)
	})
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return r.Vacuum(ctx)
}

// verifySQLiteIntegrity checks the integrity of the SQLite database.
func verifySQLiteIntegrity(path string) error {
	slog.Debug("verifying SQLite integrity", "path", path)

	db, err := OpenDatabase(path)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing db", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check;").Scan(&result); err != nil {
		return fmt.Errorf("%w: %w", ErrDBCorrupted, err)
	}

	if result != "ok" {
		return fmt.Errorf("%w: integrity check: %q", ErrDBCorrupted, result)
	}

	return nil
}

// resetSQLiteSequence resets the SQLite sequence for the given table.
func resetSQLiteSequence(ctx context.Context, tx *sqlx.Tx, tables ...Table) error {
	for _, t := range tables {
		slog.Debug("resetting sqlite sequence", "table", t)

		if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name=?", t); err != nil {
			return fmt.Errorf("resetting sqlite sequence: %w", err)
		}
	}

	return nil
}

// count counts the number of rows in the specified table.
func (r *SQLite) count(ctx context.Context, t Table) int {
	var n int
	if err := r.DB.QueryRowxContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&n); err != nil {
		return 0
	}

	return n
}

// fileExists checks if a file exists.
func fileExists(s string) bool {
	_, err := os.Stat(s)
	return !os.IsNotExist(err)
}

func ensureDBSuffix(s string) string {
	const suffix = ".db"
	if s == "" || filepath.Ext(s) != "" {
		return s
	}

	return s + suffix
}
