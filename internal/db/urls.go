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

// InsertURL creates a new url record and sets its ID.
//
// A url that already exists yields ErrRecordDuplicate.
func (r *SQLite) InsertURL(ctx context.Context, u *record.URL) (int64, error) {
	if u.URL == "" {
		return 0, record.ErrURLEmpty
	}

	var id int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
		INSERT INTO urls (
			url,
			title,
			domain,
			category,
			first_seen,
			last_categorized,
			last_accessed,
			favicon,
			saved_date,
			first_opened,
			last_opened
		) VALUES (
			:url,
			:title,
			:domain,
			:category,
			:first_seen,
			:last_categorized,
			:last_accessed,
			:favicon,
			:saved_date,
			:first_opened,
			:last_opened
		)`, u)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrRecordDuplicate, u.URL)
			}

			return fmt.Errorf("insert url: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	u.ID = id
	slog.Debug("inserted url", "id", id, "url", u.URL)

	return id, nil
}

// MergeURL applies fn to the record with id inside one transaction, so the
// read and the write see no concurrent writer. The row is written back only
// when fn changed it. It returns the merged record.
func (r *SQLite) MergeURL(ctx context.Context, id int64, fn func(u *record.URL)) (*record.URL, error) {
	if id == 0 {
		return nil, ErrRecordIDNotProvided
	}

	var merged record.URL
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var cur record.URL
		if err := tx.GetContext(ctx, &cur, "SELECT * FROM urls WHERE id = ?", id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w with id: %d", ErrRecordNotFound, id)
			}

			return fmt.Errorf("MergeURL %w: %w", ErrRecordScan, err)
		}

		merged = cur
		fn(&merged)
		merged.ID, merged.URL = cur.ID, cur.URL
		if merged == cur {
			return nil
		}

		return updateURL(ctx, tx, &merged)
	})
	if err != nil {
		return nil, err
	}

	return &merged, nil
}

// updateURL writes every field of u to the record with u.ID.
func updateURL(ctx context.Context, tx *sqlx.Tx, u *record.URL) error {
	res, err := tx.NamedExecContext(ctx, `
	UPDATE urls SET
		title = :title,
		domain = :domain,
		category = :category,
		first_seen = :first_seen,
		last_categorized = :last_categorized,
		last_accessed = :last_accessed,
		favicon = :favicon,
		saved_date = :saved_date,
		first_opened = :first_opened,
		last_opened = :last_opened
	WHERE id = :id`, u)
	if err != nil {
		return fmt.Errorf("update url: %w", err)
	}

	n, err := affected(res)
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w with id: %d", ErrRecordNotFound, u.ID)
	}

	return nil
}

// UpdateLastAccessed sets last_accessed of url, reporting whether a record
// was updated.
func (r *SQLite) UpdateLastAccessed(ctx context.Context, url string, ts int64) (bool, error) {
	return r.execURLUpdate(ctx, "UPDATE urls SET last_accessed = ? WHERE url = ?", ts, url)
}

// UpdateCategory sets the category and last_categorized of url.
func (r *SQLite) UpdateCategory(ctx context.Context, url string, c record.Category, ts int64) (bool, error) {
	return r.execURLUpdate(ctx,
		"UPDATE urls SET category = ?, last_categorized = ?, last_accessed = ? WHERE url = ?",
		c, ts, ts, url)
}

// UpdateTitle sets the title of url.
func (r *SQLite) UpdateTitle(ctx context.Context, url, title string) (bool, error) {
	return r.execURLUpdate(ctx, "UPDATE urls SET title = ? WHERE url = ?", title, url)
}

// UpdateFavicon sets the favicon of url.
func (r *SQLite) UpdateFavicon(ctx context.Context, url, favicon string) (bool, error) {
	return r.execURLUpdate(ctx, "UPDATE urls SET favicon = ? WHERE url = ?", favicon, url)
}

func (r *SQLite) execURLUpdate(ctx context.Context, q string, args ...any) (bool, error) {
	var n int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("%w", err)
		}

		n, err = affected(res)

		return err
	})
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// URLByURL returns the record of url.
func (r *SQLite) URLByURL(ctx context.Context, url string) (*record.URL, error) {
	var u record.URL
	err := r.DB.GetContext(ctx, &u, "SELECT * FROM urls WHERE url = ?", url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w with url: %s", ErrRecordNotFound, url)
		}

		return nil, fmt.Errorf("URLByURL %w: %w", ErrRecordScan, err)
	}

	return &u, nil
}

// URLByID returns the record with id.
func (r *SQLite) URLByID(ctx context.Context, id int64) (*record.URL, error) {
	var u record.URL
	err := r.DB.GetContext(ctx, &u, "SELECT * FROM urls WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w with id: %d", ErrRecordNotFound, id)
		}

		return nil, fmt.Errorf("URLByID %w: %w", ErrRecordScan, err)
	}

	return &u, nil
}

// AllURLs returns every url record ordered by id.
func (r *SQLite) AllURLs(ctx context.Context) ([]*record.URL, error) {
	return r.urlsBySQL(ctx, "SELECT * FROM urls ORDER BY id ASC")
}

// URLsByCategory returns the records with category c.
func (r *SQLite) URLsByCategory(ctx context.Context, c record.Category) ([]*record.URL, error) {
	return r.urlsBySQL(ctx, "SELECT * FROM urls WHERE category = ? ORDER BY id ASC", c)
}

// URLsAccessedBefore returns the records with category c whose last access
// is older than cutoff.
func (r *SQLite) URLsAccessedBefore(ctx context.Context, c record.Category, cutoff int64) ([]*record.URL, error) {
	return r.urlsBySQL(ctx,
		"SELECT * FROM urls WHERE category = ? AND last_accessed < ? ORDER BY last_accessed ASC", c, cutoff)
}

// DeleteURL removes the record with id and every event referencing it in a
// single transaction. It returns whether the record existed and the number
// of deleted events.
func (r *SQLite) DeleteURL(ctx context.Context, id int64) (bool, int64, error) {
	var found bool
	var events int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE url_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}

		if events, err = affected(res); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, "DELETE FROM urls WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		n, err := affected(res)
		found = n > 0

		return err
	})
	if err != nil {
		return false, 0, err
	}

	slog.Debug("deleted url", "id", id, "found", found, "events", events)

	return found, events, nil
}

// CountURLs returns the number of url records.
func (r *SQLite) CountURLs(ctx context.Context) int {
	return r.count(ctx, tableURLs)
}

func (r *SQLite) urlsBySQL(ctx context.Context, q string, args ...any) ([]*record.URL, error) {
	var us []*record.URL
	if err := r.DB.SelectContext(ctx, &us, q, args...); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return us, nil
}
