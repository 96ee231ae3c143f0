package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
)

// Candidate describes a url seen by the user.
type Candidate struct {
	URL     string
	Title   string
	Domain  string // derived from URL when empty
	Favicon string
}

// SavedURL is a url record with its close history attached.
type SavedURL struct {
	*record.URL
	LastCloseTime int64
	CloseEvents   []*record.Event
}

// GetOrCreateURL returns the id of the record of c.URL, creating it when
// missing. An existing record is merged with c: the title is replaced, the
// category only when cat is not Uncategorized.
func (v *Vault) GetOrCreateURL(ctx context.Context, c Candidate, cat record.Category) (int64, error) {
	if err := v.requireCache(); err != nil {
		return 0, err
	}

	if c.URL == "" {
		return 0, record.ErrURLEmpty
	}

	if !cat.Valid() {
		return 0, fmt.Errorf("%w: %d", record.ErrInvalidCategory, cat)
	}

	if u, ok := v.cache.URL(c.URL); ok {
		return v.mergeURL(ctx, u.ID, c, cat, v.now())
	}

	u := v.newURL(c, cat)

	v.mu.Lock()
	id, err := v.store.InsertURL(ctx, u)
	if err == nil {
		v.cache.PutURL(u)
	}
	v.mu.Unlock()

	if err == nil {
		return id, nil
	}

	if !errors.Is(err, db.ErrRecordDuplicate) {
		return 0, err
	}

	// another caller created the record between the lookup and the insert.
	slog.Debug("url created concurrently, merging", "url", c.URL)

	existing, err := v.store.URLByURL(ctx, c.URL)
	if err != nil {
		return 0, fmt.Errorf("re-read %q: %w", c.URL, err)
	}

	return v.mergeURL(ctx, existing.ID, c, cat, v.now())
}

func (v *Vault) newURL(c Candidate, cat record.Category) *record.URL {
	now := v.now()
	u := &record.URL{
		URL:          c.URL,
		Title:        c.Title,
		Domain:       c.Domain,
		Category:     cat,
		FirstSeen:    now,
		LastAccessed: now,
		Favicon:      c.Favicon,
		SavedDate:    now,
		FirstOpened:  now,
		LastOpened:   now,
	}

	if u.Domain == "" {
		u.Domain = record.ExtractDomain(c.URL)
	}

	if cat != record.Uncategorized {
		u.LastCategorized = now
	}

	if ct, ok := v.cache.CurrentTab(c.URL); ok {
		if ct.FirstOpened > 0 {
			u.FirstOpened = ct.FirstOpened
		}
		if ct.LastOpened > 0 {
			u.LastOpened = ct.LastOpened
		}
	}

	return u
}

// mergeURL merges c into the stored record with id. The merge runs on the
// row read inside the write transaction, so a concurrent categorization is
// never overwritten by a stale copy.
func (v *Vault) mergeURL(ctx context.Context, id int64, c Candidate, cat record.Category, now int64) (int64, error) {
	ct, hasTab := v.cache.CurrentTab(c.URL)

	v.mu.Lock()
	defer v.mu.Unlock()

	u, err := v.store.MergeURL(ctx, id, func(u *record.URL) {
		u.Title = c.Title
		u.LastAccessed = now

		if cat != record.Uncategorized && cat != u.Category {
			u.Category = cat
			u.LastCategorized = now
		}

		if c.Favicon != "" && c.Favicon != u.Favicon {
			u.Favicon = c.Favicon
		}

		if u.Domain == "" {
			u.Domain = record.ExtractDomain(u.URL)
		}

		if hasTab {
			if ct.FirstOpened > 0 && (u.FirstOpened == 0 || ct.FirstOpened < u.FirstOpened) {
				u.FirstOpened = ct.FirstOpened
			}
			if ct.LastOpened > 0 {
				u.LastOpened = ct.LastOpened
			}
		}
	})
	if err != nil {
		return 0, fmt.Errorf("merge %q: %w", c.URL, err)
	}

	v.cache.PutURL(u)

	return u.ID, nil
}

// UpdateLastAccessed stamps the last access of url. It reports false when
// no record exists.
func (v *Vault) UpdateLastAccessed(ctx context.Context, url string) (bool, error) {
	now := v.now()

	v.mu.Lock()
	defer v.mu.Unlock()

	ok, err := v.store.UpdateLastAccessed(ctx, url, now)
	if err != nil || !ok {
		return false, err
	}

	v.patchCached(url, func(u *record.URL) {
		u.LastAccessed = now
	})

	return true, nil
}

// UpdateURLCategory sets the category of url. It reports false when no
// record exists.
func (v *Vault) UpdateURLCategory(ctx context.Context, url string, cat record.Category) (bool, error) {
	if !cat.Valid() {
		return false, fmt.Errorf("%w: %d", record.ErrInvalidCategory, cat)
	}

	now := v.now()

	v.mu.Lock()
	defer v.mu.Unlock()

	ok, err := v.store.UpdateCategory(ctx, url, cat, now)
	if err != nil || !ok {
		return false, err
	}

	v.patchCached(url, func(u *record.URL) {
		u.Category = cat
		u.LastCategorized = now
		u.LastAccessed = now
	})

	return true, nil
}

// UpdateURLTitle sets the title of url. It reports false when no record
// exists.
func (v *Vault) UpdateURLTitle(ctx context.Context, url, title string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ok, err := v.store.UpdateTitle(ctx, url, title)
	if err != nil || !ok {
		return false, err
	}

	v.patchCached(url, func(u *record.URL) {
		u.Title = title
	})

	return true, nil
}

// UpdateURLFavicon sets the favicon of url. It reports false when no record
// exists.
func (v *Vault) UpdateURLFavicon(ctx context.Context, url, favicon string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ok, err := v.store.UpdateFavicon(ctx, url, favicon)
	if err != nil || !ok {
		return false, err
	}

	v.patchCached(url, func(u *record.URL) {
		u.Favicon = favicon
	})

	return true, nil
}

func (v *Vault) patchCached(url string, fn func(u *record.URL)) {
	u, ok := v.cache.URL(url)
	if !ok {
		return
	}

	fn(u)
	v.cache.PutURL(u)
}

// DeleteURL removes the record with id and its events, and purges the
// cache. It reports false when no record existed.
func (v *Vault) DeleteURL(ctx context.Context, id int64) (bool, error) {
	found, events, err := v.deleteURL(ctx, id)
	if err != nil {
		return false, err
	}

	slog.Info("deleted url", "id", id, "found", found, "events", events)

	return found, nil
}

func (v *Vault) deleteURL(ctx context.Context, id int64) (bool, int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	found, events, err := v.store.DeleteURL(ctx, id)
	if err != nil {
		return false, 0, err
	}

	v.cache.DeleteURL(id)

	return found, events, nil
}

// SavedURLs returns the cached records whose category is in cats, every
// saved category when cats is empty.
func (v *Vault) SavedURLs(cats []record.Category, includeEvents bool) ([]*SavedURL, error) {
	if err := v.requireCache(); err != nil {
		return nil, err
	}

	if len(cats) == 0 {
		cats = record.Saved
	}

	us := v.cache.URLs(cats...)
	saved := make([]*SavedURL, 0, len(us))
	for _, u := range us {
		s := &SavedURL{URL: u}
		if includeEvents {
			s.CloseEvents = v.cache.Events(u.ID)
			if len(s.CloseEvents) > 0 {
				s.LastCloseTime = s.CloseEvents[0].CloseTime
			}
		}
		saved = append(saved, s)
	}

	return saved, nil
}

// AllURLs returns every cached record.
func (v *Vault) AllURLs() ([]*record.URL, error) {
	if err := v.requireCache(); err != nil {
		return nil, err
	}

	return v.cache.URLs(), nil
}

// AllSavedTabs returns the saved records in cats with their close history.
func (v *Vault) AllSavedTabs(cats []record.Category) ([]*SavedURL, error) {
	return v.SavedURLs(cats, true)
}

// URLByID returns the record with id, nil when missing.
func (v *Vault) URLByID(ctx context.Context, id int64) (*record.URL, error) {
	if u, ok := v.cache.URLByID(id); ok {
		return u, nil
	}

	u, err := v.store.URLByID(ctx, id)
	if errors.Is(err, db.ErrRecordNotFound) {
		return nil, nil
	}

	return u, err
}

// URLByURL returns the record of url, nil when missing.
func (v *Vault) URLByURL(ctx context.Context, url string) (*record.URL, error) {
	if u, ok := v.cache.URL(url); ok {
		return u, nil
	}

	if v.cache.Initialized() {
		return nil, nil
	}

	u, err := v.store.URLByURL(ctx, url)
	if errors.Is(err, db.ErrRecordNotFound) {
		return nil, nil
	}

	return u, err
}
