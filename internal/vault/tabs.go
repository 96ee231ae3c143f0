package vault

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
)

// TabData describes a browser tab showing a url.
type TabData struct {
	URL      string
	Title    string
	Favicon  string
	TabID    int64
	WindowID int64
}

// GetOrCreateCurrentTab tracks the tab in d, creating the record of d.URL
// when missing.
func (v *Vault) GetOrCreateCurrentTab(ctx context.Context, d TabData) (*record.CurrentTab, error) {
	if d.URL == "" {
		return nil, record.ErrURLEmpty
	}

	now := v.now()
	merge := func(t *record.CurrentTab) { mergeTab(t, d, now) }

	v.mu.Lock()
	defer v.mu.Unlock()

	t, err := v.modifyCurrentTab(ctx, d.URL, merge)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, db.ErrRecordNotFound) {
		return nil, err
	}

	t = &record.CurrentTab{
		URL:          d.URL,
		Title:        d.Title,
		Domain:       record.ExtractDomain(d.URL),
		Favicon:      d.Favicon,
		FirstOpened:  now,
		LastOpened:   now,
		LastAccessed: now,
		OpenCount:    1,
		TabIDs:       record.IDSet{d.TabID},
		WindowIDs:    record.IDSet{d.WindowID},
		TabOpenTimes: record.OpenTimes{d.TabID: now},
	}

	_, err = v.store.InsertCurrentTab(ctx, t)
	if err == nil {
		v.cache.PutCurrentTab(t)
		return t, nil
	}

	if !errors.Is(err, db.ErrRecordDuplicate) {
		return nil, err
	}

	slog.Debug("current tab created concurrently, merging", "url", d.URL)

	return v.modifyCurrentTab(ctx, d.URL, merge)
}

// mergeTab adds the tab in d to t.
func mergeTab(t *record.CurrentTab, d TabData, now int64) {
	if d.Title != "" {
		t.Title = d.Title
	}

	if d.Favicon != "" {
		t.Favicon = d.Favicon
	}

	t.LastOpened = now
	t.LastAccessed = now
	t.TabIDs, _ = t.TabIDs.Add(d.TabID)
	t.WindowIDs, _ = t.WindowIDs.Add(d.WindowID)

	if t.TabOpenTimes == nil {
		t.TabOpenTimes = record.OpenTimes{}
	}

	if _, ok := t.TabOpenTimes[d.TabID]; !ok {
		t.TabOpenTimes[d.TabID] = now
	}
}

// modifyCurrentTab runs fn on the stored record of url and mirrors the
// outcome into the cache. The caller holds v.mu.
func (v *Vault) modifyCurrentTab(ctx context.Context, url string, fn func(t *record.CurrentTab)) (*record.CurrentTab, error) {
	t, err := v.store.ModifyCurrentTab(ctx, url, fn)
	if err != nil {
		return nil, err
	}

	if t == nil {
		v.cache.DeleteCurrentTab(url)
		return nil, nil
	}

	v.cache.PutCurrentTab(t)

	return t, nil
}

// AddTabToCurrentTab tracks another tab showing url.
func (v *Vault) AddTabToCurrentTab(ctx context.Context, url string, tabID, windowID int64) (*record.CurrentTab, error) {
	return v.GetOrCreateCurrentTab(ctx, TabData{URL: url, TabID: tabID, WindowID: windowID})
}

// RemoveTabFromCurrentTab stops tracking tabID for url. It reports true when
// the last tab was removed and the record deleted.
func (v *Vault) RemoveTabFromCurrentTab(ctx context.Context, url string, tabID int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, err := v.modifyCurrentTab(ctx, url, func(t *record.CurrentTab) {
		t.TabIDs, _ = t.TabIDs.Remove(tabID)
		delete(t.TabOpenTimes, tabID)
	})
	if errors.Is(err, db.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if t == nil {
		slog.Debug("current tab closed", "url", url)
		return true, nil
	}

	return false, nil
}

// RemoveWindowFromCurrentTabs strips windowID from every record and returns
// the number of records touched.
//
// Tab ids are left in place; the tab tracker reconciles them when it
// receives the close events of the window's tabs.
func (v *Vault) RemoveWindowFromCurrentTabs(ctx context.Context, windowID int64) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	touched, err := v.store.StripWindowID(ctx, windowID)
	if err != nil {
		return 0, err
	}

	for _, t := range touched {
		v.cache.PutCurrentTab(t)
	}

	return len(touched), nil
}

// FindCurrentTabByTabID returns the record tracking tabID, nil when none.
func (v *Vault) FindCurrentTabByTabID(ctx context.Context, tabID int64) (*record.CurrentTab, error) {
	if v.cache.Initialized() {
		t, _ := v.cache.FindCurrentTab(func(t *record.CurrentTab) bool {
			return t.HasTab(tabID)
		})

		return t, nil
	}

	ts, err := v.store.AllCurrentTabs(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range ts {
		if t.HasTab(tabID) {
			return t, nil
		}
	}

	return nil, nil
}

// AllCurrentTabs returns every tracked record.
func (v *Vault) AllCurrentTabs(ctx context.Context) ([]*record.CurrentTab, error) {
	if v.cache.Initialized() {
		return v.cache.CurrentTabs(), nil
	}

	return v.store.AllCurrentTabs(ctx)
}
