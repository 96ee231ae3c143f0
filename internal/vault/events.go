package vault

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mateconpizza/tabkeep/internal/record"
)

// Session groups the urls closed at the same instant.
type Session struct {
	CloseTime int64
	URLIDs    []int64
	Count     int
}

// RecordOpenEvent appends an open event for urlID.
func (v *Vault) RecordOpenEvent(ctx context.Context, urlID int64, tabID *int64) (int64, error) {
	if urlID <= 0 {
		return 0, fmt.Errorf("%w: %d", record.ErrInvalidID, urlID)
	}

	e := &record.Event{
		URLID:    urlID,
		TabID:    tabID,
		OpenTime: v.now(),
	}

	id, err := v.store.InsertEvent(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("open event: %w", err)
	}

	return id, nil
}

// RecordCloseEvent appends a close event for urlID at closeTime, or now when
// closeTime is zero.
//
// Close events are recorded as they happen, so the event goes to the head of
// the cached bucket.
func (v *Vault) RecordCloseEvent(ctx context.Context, urlID, closeTime int64) (int64, error) {
	if err := v.requireCache(); err != nil {
		return 0, err
	}

	if urlID <= 0 {
		return 0, fmt.Errorf("%w: %d", record.ErrInvalidID, urlID)
	}

	if closeTime == 0 {
		closeTime = v.now()
	}

	e := &record.Event{
		URLID:     urlID,
		CloseTime: closeTime,
	}

	id, err := v.store.InsertEvent(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("close event: %w", err)
	}

	v.cache.PrependEvent(e)

	return id, nil
}

// BackfillSession stores a finished session of urlID closed at closeTime,
// keeping the cached bucket ordered. Used by imports, where close times
// arrive out of order.
func (v *Vault) BackfillSession(ctx context.Context, urlID int64, tabID *int64, closeTime int64) error {
	if err := v.requireCache(); err != nil {
		return err
	}

	open := &record.Event{URLID: urlID, TabID: tabID, OpenTime: closeTime}
	closed := &record.Event{URLID: urlID, TabID: tabID, CloseTime: closeTime}
	if err := v.store.InsertEvents(ctx, open, closed); err != nil {
		return fmt.Errorf("backfill session: %w", err)
	}

	v.cache.InsertEvent(closed)

	return nil
}

// TabsClosedAt returns the records of the urls closed exactly at closeTime,
// one per url.
func (v *Vault) TabsClosedAt(ctx context.Context, closeTime int64) ([]*record.URL, error) {
	es, err := v.store.EventsClosedAt(ctx, closeTime)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(es))
	us := make([]*record.URL, 0, len(es))
	for _, e := range es {
		if _, ok := seen[e.URLID]; ok {
			continue
		}
		seen[e.URLID] = struct{}{}

		u, err := v.URLByID(ctx, e.URLID)
		if err != nil {
			return nil, err
		}

		if u == nil {
			slog.Warn("event references a missing url", "event", e.ID, "url_id", e.URLID)
			continue
		}

		us = append(us, u)
	}

	return us, nil
}

// RecentSessions returns up to limit sessions, most recent first.
func (v *Vault) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		return nil, nil
	}

	var sessions []Session
	for e, err := range v.store.EventsByCloseTime(ctx) {
		if err != nil {
			return nil, err
		}

		n := len(sessions)
		if n > 0 && sessions[n-1].CloseTime == e.CloseTime {
			sessions[n-1].URLIDs = append(sessions[n-1].URLIDs, e.URLID)
			sessions[n-1].Count++

			continue
		}

		if n == limit {
			break
		}

		sessions = append(sessions, Session{
			CloseTime: e.CloseTime,
			URLIDs:    []int64{e.URLID},
			Count:     1,
		})
	}

	return sessions, nil
}

// EventsForURL returns the stored events of urlID, most recently closed
// first.
func (v *Vault) EventsForURL(ctx context.Context, urlID int64) ([]*record.Event, error) {
	return v.store.EventsByURL(ctx, urlID)
}
