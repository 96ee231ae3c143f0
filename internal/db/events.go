package db

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/tabkeep/internal/record"
)

const insertEventQuery = `
	INSERT INTO events (
		url_id,
		tab_id,
		open_time,
		close_time
	) VALUES (
		:url_id,
		:tab_id,
		:open_time,
		:close_time
	)`

// InsertEvent appends an event and sets its ID.
func (r *SQLite) InsertEvent(ctx context.Context, e *record.Event) (int64, error) {
	if err := r.InsertEvents(ctx, e); err != nil {
		return 0, err
	}

	return e.ID, nil
}

// InsertEvents appends events in a single transaction.
func (r *SQLite) InsertEvents(ctx context.Context, es ...*record.Event) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range es {
			res, err := tx.NamedExecContext(ctx, insertEventQuery, e)
			if err != nil {
				return fmt.Errorf("insert event: %w", err)
			}

			if e.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("%w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("inserted events", "count", len(es))

	return nil
}

// EventsByURL returns the events of urlID, most recently closed first.
func (r *SQLite) EventsByURL(ctx context.Context, urlID int64) ([]*record.Event, error) {
	return r.eventsBySQL(ctx,
		"SELECT * FROM events WHERE url_id = ? ORDER BY close_time DESC, id DESC", urlID)
}

// ClosedEvents returns every event with a close time, grouped by url and
// most recently closed first.
func (r *SQLite) ClosedEvents(ctx context.Context) ([]*record.Event, error) {
	return r.eventsBySQL(ctx,
		"SELECT * FROM events WHERE close_time > 0 ORDER BY url_id ASC, close_time DESC, id DESC")
}

// EventsClosedAt returns the events whose close time equals ts.
func (r *SQLite) EventsClosedAt(ctx context.Context, ts int64) ([]*record.Event, error) {
	return r.eventsBySQL(ctx, "SELECT * FROM events WHERE close_time = ? ORDER BY id ASC", ts)
}

// CountEvents returns the number of events of urlID.
func (r *SQLite) CountEvents(ctx context.Context, urlID int64) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM events WHERE url_id = ?", urlID); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return n, nil
}

// EventsByCloseTime iterates the closed events from the most recent close
// time. The cursor is opened lazily on the first iteration and released when
// the loop ends, so the sequence can be ranged over more than once.
//
// The store must not be written while the loop body runs.
func (r *SQLite) EventsByCloseTime(ctx context.Context) iter.Seq2[*record.Event, error] {
	return func(yield func(*record.Event, error) bool) {
		rows, err := r.DB.QueryxContext(ctx,
			"SELECT * FROM events WHERE close_time > 0 ORDER BY close_time DESC, id DESC")
		if err != nil {
			yield(nil, fmt.Errorf("events cursor: %w", err))
			return
		}

		defer func() {
			if err := rows.Close(); err != nil {
				slog.Error("closing events cursor", "error", err)
			}
		}()

		for rows.Next() {
			var e record.Event
			if err := rows.StructScan(&e); err != nil {
				yield(nil, fmt.Errorf("%w: %w", ErrRecordScan, err))
				return
			}

			if !yield(&e, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("events cursor: %w", err))
		}
	}
}

func (r *SQLite) eventsBySQL(ctx context.Context, q string, args ...any) ([]*record.Event, error) {
	var es []*record.Event
	if err := r.DB.SelectContext(ctx, &es, q, args...); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return es, nil
}
