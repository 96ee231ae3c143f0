// Package cache keeps an in-memory projection of the store for constant
// time lookups.
package cache

import (
	"cmp"
	"slices"
	"sync"

	"github.com/mateconpizza/tabkeep/internal/record"
)

// Cache indexes url records by url and id, closed events by url id and
// current tabs by url.
//
// Closed event buckets are ordered from the most recent close time.
type Cache struct {
	mu          sync.RWMutex
	byURL       map[string]*record.URL
	byID        map[int64]*record.URL
	events      map[int64][]*record.Event
	currentTabs map[string]*record.CurrentTab
	initialized bool
}

// New returns an empty, uninitialized cache.
func New() *Cache {
	c := &Cache{}
	c.reset()

	return c
}

func (c *Cache) reset() {
	c.byURL = make(map[string]*record.URL)
	c.byID = make(map[int64]*record.URL)
	c.events = make(map[int64][]*record.Event)
	c.currentTabs = make(map[string]*record.CurrentTab)
}

// Rebuild replaces every index with the given records and marks the cache
// initialized. events must be ordered by close time descending per url.
func (c *Cache) Rebuild(urls []*record.URL, events []*record.Event, tabs []*record.CurrentTab) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	for _, u := range urls {
		c.byURL[u.URL] = u
		c.byID[u.ID] = u
	}

	for _, e := range events {
		if !e.Closed() {
			continue
		}
		c.events[e.URLID] = append(c.events[e.URLID], e)
	}

	for _, t := range tabs {
		c.currentTabs[t.URL] = t
	}

	c.initialized = true
}

// Invalidate drops every entry and marks the cache uninitialized.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.initialized = false
}

// Initialized reports whether the last rebuild succeeded.
func (c *Cache) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.initialized
}

// URL returns a copy of the record of url.
func (c *Cache) URL(url string) (*record.URL, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.byURL[url]

	return u.Clone(), ok
}

// URLByID returns a copy of the record with id.
func (c *Cache) URLByID(id int64) (*record.URL, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.byID[id]

	return u.Clone(), ok
}

// PutURL stores a copy of u in both url indices.
func (c *Cache) PutURL(u *record.URL) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := u.Clone()
	if old, ok := c.byID[u.ID]; ok && old.URL != u.URL {
		delete(c.byURL, old.URL)
	}

	c.byURL[cp.URL] = cp
	c.byID[cp.ID] = cp
}

// DeleteURL purges every index entry of the record with id.
func (c *Cache) DeleteURL(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u, ok := c.byID[id]; ok {
		delete(c.byURL, u.URL)
	}

	delete(c.byID, id)
	delete(c.events, id)
}

// URLs returns copies of the records whose category is in cs, or every
// record when cs is empty, ordered by id.
func (c *Cache) URLs(cs ...record.Category) []*record.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()

	us := make([]*record.URL, 0, len(c.byID))
	for _, u := range c.byID {
		if len(cs) > 0 && !u.Category.In(cs...) {
			continue
		}
		us = append(us, u.Clone())
	}

	slices.SortFunc(us, func(a, b *record.URL) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return us
}

// Len returns the number of cached url records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.byID)
}

// PrependEvent puts a closed event at the head of its url bucket.
func (c *Cache) PrependEvent(e *record.Event) {
	if !e.Closed() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *e
	c.events[e.URLID] = append([]*record.Event{&cp}, c.events[e.URLID]...)
}

// InsertEvent puts a closed event in its url bucket keeping the bucket
// ordered by close time.
func (c *Cache) InsertEvent(e *record.Event) {
	if !e.Closed() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *e
	bucket := c.events[e.URLID]
	i, _ := slices.BinarySearchFunc(bucket, e.CloseTime, func(ev *record.Event, t int64) int {
		return cmp.Compare(t, ev.CloseTime)
	})
	c.events[e.URLID] = slices.Insert(bucket, i, &cp)
}

// Events returns a copy of the closed events bucket of urlID.
func (c *Cache) Events(urlID int64) []*record.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket := c.events[urlID]
	es := make([]*record.Event, 0, len(bucket))
	for _, e := range bucket {
		cp := *e
		es = append(es, &cp)
	}

	return es
}

// CurrentTab returns a copy of the current tab of url.
func (c *Cache) CurrentTab(url string) (*record.CurrentTab, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.currentTabs[url]

	return t.Clone(), ok
}

// PutCurrentTab stores a copy of t.
func (c *Cache) PutCurrentTab(t *record.CurrentTab) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentTabs[t.URL] = t.Clone()
}

// DeleteCurrentTab drops the current tab of url.
func (c *Cache) DeleteCurrentTab(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.currentTabs, url)
}

// CurrentTabs returns copies of every current tab.
func (c *Cache) CurrentTabs() []*record.CurrentTab {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ts := make([]*record.CurrentTab, 0, len(c.currentTabs))
	for _, t := range c.currentTabs {
		ts = append(ts, t.Clone())
	}

	slices.SortFunc(ts, func(a, b *record.CurrentTab) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return ts
}

// FindCurrentTab returns the current tab with the lowest id satisfying fn.
func (c *Cache) FindCurrentTab(fn func(*record.CurrentTab) bool) (*record.CurrentTab, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var found *record.CurrentTab
	for _, t := range c.currentTabs {
		if (found == nil || t.ID < found.ID) && fn(t) {
			found = t
		}
	}

	if found == nil {
		return nil, false
	}

	return found.Clone(), true
}
