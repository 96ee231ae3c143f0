// Package record contains the records persisted by the store.
package record

import (
	"slices"
	"time"
)

// URL is the canonical entry for one unique URL.
//
// Timestamps are Unix milliseconds; zero means unset.
type URL struct {
	ID              int64    `db:"id"               json:"id"`
	URL             string   `db:"url"              json:"url"`
	Title           string   `db:"title"            json:"title"`
	Domain          string   `db:"domain"           json:"domain"`
	Category        Category `db:"category"         json:"category"`
	FirstSeen       int64    `db:"first_seen"       json:"first_seen"`
	LastCategorized int64    `db:"last_categorized" json:"last_categorized"`
	LastAccessed    int64    `db:"last_accessed"    json:"last_accessed"`
	Favicon         string   `db:"favicon"          json:"favicon"`
	SavedDate       int64    `db:"saved_date"       json:"saved_date"`
	FirstOpened     int64    `db:"first_opened"     json:"first_opened"`
	LastOpened      int64    `db:"last_opened"      json:"last_opened"`
}

// Clone returns a copy of u.
func (u *URL) Clone() *URL {
	if u == nil {
		return nil
	}

	c := *u

	return &c
}

// Event is an open or close session of a URL.
type Event struct {
	ID        int64  `db:"id"         json:"id"`
	URLID     int64  `db:"url_id"     json:"url_id"`
	TabID     *int64 `db:"tab_id"     json:"tab_id"`
	OpenTime  int64  `db:"open_time"  json:"open_time"`
	CloseTime int64  `db:"close_time" json:"close_time"`
}

// Closed reports whether the event carries a close time.
func (e *Event) Closed() bool {
	return e.CloseTime > 0
}

// CurrentTab tracks the live browser tabs showing a URL.
type CurrentTab struct {
	ID           int64     `db:"id"             json:"id"`
	URL          string    `db:"url"            json:"url"`
	Title        string    `db:"title"          json:"title"`
	Domain       string    `db:"domain"         json:"domain"`
	Favicon      string    `db:"favicon"        json:"favicon"`
	FirstOpened  int64     `db:"first_opened"   json:"first_opened"`
	LastOpened   int64     `db:"last_opened"    json:"last_opened"`
	LastAccessed int64     `db:"last_accessed"  json:"last_accessed"`
	OpenCount    int       `db:"open_count"     json:"open_count"`
	TabIDs       IDSet     `db:"tab_ids"        json:"tab_ids"`
	WindowIDs    IDSet     `db:"window_ids"     json:"window_ids"`
	TabOpenTimes OpenTimes `db:"tab_open_times" json:"tab_open_times"`
}

// Clone returns a deep copy of t.
func (t *CurrentTab) Clone() *CurrentTab {
	if t == nil {
		return nil
	}

	c := *t
	c.TabIDs = slices.Clone(t.TabIDs)
	c.WindowIDs = slices.Clone(t.WindowIDs)
	c.TabOpenTimes = make(OpenTimes, len(t.TabOpenTimes))
	for k, v := range t.TabOpenTimes {
		c.TabOpenTimes[k] = v
	}

	return &c
}

// HasTab reports whether tabID is tracked.
func (t *CurrentTab) HasTab(tabID int64) bool {
	return t.TabIDs.Has(tabID)
}

// Now returns the current time in Unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// Time converts a Unix milliseconds value to time, zero stays zero.
func Time(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}
