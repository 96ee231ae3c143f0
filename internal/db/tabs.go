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

// InsertCurrentTab creates a current tab record and sets its ID.
func (r *SQLite) InsertCurrentTab(ctx context.Context, t *record.CurrentTab) (int64, error) {
	if t.URL == "" {
		return 0, record.ErrURLEmpty
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
		INSERT INTO current_tabs (
			url,
			title,
			domain,
			favicon,
			first_opened,
			last_opened,
			last_accessed,
			open_count,
			tab_ids,
			window_ids,
			tab_open_times
		) VALUES (
			:url,
			:title,
			:domain,
			:favicon,
			:first_opened,
			:last_opened,
			:last_accessed,
			:open_count,
			:tab_ids,
			:window_ids,
			:tab_open_times
		)`, t)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrRecordDuplicate, t.URL)
			}

			return fmt.Errorf("insert current tab: %w", err)
		}

		t.ID, err = res.LastInsertId()

		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("inserted current tab", "id", t.ID, "url", t.URL)

	return t.ID, nil
}

// ModifyCurrentTab applies fn to the record of url inside one transaction.
// A record left without tabs is deleted and nil is returned in its place.
func (r *SQLite) ModifyCurrentTab(ctx context.Context, url string, fn func(t *record.CurrentTab)) (*record.CurrentTab, error) {
	var out *record.CurrentTab
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var t record.CurrentTab
		if err := tx.GetContext(ctx, &t, "SELECT * FROM current_tabs WHERE url = ?", url); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w with url: %s", ErrRecordNotFound, url)
			}

			return fmt.Errorf("ModifyCurrentTab %w: %w", ErrRecordScan, err)
		}

		fn(&t)
		t.URL = url
		t.OpenCount = len(t.TabIDs)

		if t.OpenCount == 0 {
			_, err := tx.ExecContext(ctx, "DELETE FROM current_tabs WHERE url = ?", url)
			if err != nil {
				return fmt.Errorf("delete current tab: %w", err)
			}

			return nil
		}

		if err := updateCurrentTab(ctx, tx, &t); err != nil {
			return err
		}
		out = &t

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// StripWindowID removes windowID from every record holding it, in a single
// transaction, and returns the records touched.
func (r *SQLite) StripWindowID(ctx context.Context, windowID int64) ([]*record.CurrentTab, error) {
	var touched []*record.CurrentTab
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var ts []*record.CurrentTab
		if err := tx.SelectContext(ctx, &ts, "SELECT * FROM current_tabs ORDER BY id ASC"); err != nil {
			return fmt.Errorf("%w", err)
		}

		for _, t := range ts {
			var removed bool
			if t.WindowIDs, removed = t.WindowIDs.Remove(windowID); !removed {
				continue
			}

			_, err := tx.NamedExecContext(ctx,
				"UPDATE current_tabs SET window_ids = :window_ids WHERE url = :url", t)
			if err != nil {
				return fmt.Errorf("update current tab %q: %w", t.URL, err)
			}
			touched = append(touched, t)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return touched, nil
}

// updateCurrentTab writes every field of t to the record with t.URL.
func updateCurrentTab(ctx context.Context, tx *sqlx.Tx, t *record.CurrentTab) error {
	res, err := tx.NamedExecContext(ctx, `
	UPDATE current_tabs SET
		title = :title,
		domain = :domain,
		favicon = :favicon,
		first_opened = :first_opened,
		last_opened = :last_opened,
		last_accessed = :last_accessed,
		open_count = :open_count,
		tab_ids = :tab_ids,
		window_ids = :window_ids,
		tab_open_times = :tab_open_times
	WHERE url = :url`, t)
	if err != nil {
		return fmt.Errorf("update current tab: %w", err)
	}

	n, err := affected(res)
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w with url: %s", ErrRecordNotFound, t.URL)
	}

	return nil
}

// CurrentTabByURL returns the current tab record of url.
func (r *SQLite) CurrentTabByURL(ctx context.Context, url string) (*record.CurrentTab, error) {
	var t record.CurrentTab
	err := r.DB.GetContext(ctx, &t, "SELECT * FROM current_tabs WHERE url = ?", url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w with url: %s", ErrRecordNotFound, url)
		}

		return nil, fmt.Errorf("CurrentTabByURL %w: %w", ErrRecordScan, err)
	}

	return &t, nil
}

// AllCurrentTabs returns every current tab record.
func (r *SQLite) AllCurrentTabs(ctx context.Context) ([]*record.CurrentTab, error) {
	var ts []*record.CurrentTab
	if err := r.DB.SelectContext(ctx, &ts, "SELECT * FROM current_tabs ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return ts, nil
}
