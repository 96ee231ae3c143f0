// Package vault implements the url catalog, event log, current tab registry
// and retention sweeps on top of the store and its in-memory cache.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mateconpizza/tabkeep/internal/cache"
	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
)

var (
	ErrCacheUninitialized = errors.New("cache not initialized")
	ErrUnknownURL         = errors.New("unknown url record")
	ErrInvalidRetention   = errors.New("invalid retention")
)

// Artifacts removes the ML artifacts derived from a url.
type Artifacts interface {
	DeleteArtifactsForURL(ctx context.Context, url string) (db.ArtifactsDeleted, error)
}

// Vault owns the store and keeps the cache consistent with it. Every
// mutation writes the store first and patches the cache afterwards, holding
// mu across both so cache patches land in commit order.
type Vault struct {
	store     *db.SQLite
	cache     *cache.Cache
	artifacts Artifacts
	now       func() int64
	mu        sync.Mutex
	closeOnce sync.Once
}

type Option func(*Vault)

// WithArtifacts sets the ML artifact collaborator used by the sweeps.
func WithArtifacts(a Artifacts) Option {
	return func(v *Vault) {
		v.artifacts = a
	}
}

// WithClock replaces the source of the current time in Unix milliseconds.
func WithClock(fn func() int64) Option {
	return func(v *Vault) {
		v.now = fn
	}
}

// New returns a vault over store. The cache stays empty until Init.
func New(store *db.SQLite, opts ...Option) *Vault {
	v := &Vault{
		store: store,
		cache: cache.New(),
		now:   record.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Init rebuilds the cache from a full scan of the store. When it fails the
// vault stays usable for store reads but cache dependent operations return
// ErrCacheUninitialized.
func (v *Vault) Init(ctx context.Context) error {
	var (
		urls   []*record.URL
		events []*record.Event
		tabs   []*record.CurrentTab
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		urls, err = v.store.AllURLs(ctx)
		return err
	})
	g.Go(func() (err error) {
		events, err = v.store.ClosedEvents(ctx)
		return err
	})
	g.Go(func() (err error) {
		tabs, err = v.store.AllCurrentTabs(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		v.cache.Invalidate()
		slog.Error("populating cache", "error", err)

		return fmt.Errorf("populating cache: %w", err)
	}

	v.cache.Rebuild(urls, events, tabs)
	slog.Debug("cache populated", "urls", len(urls), "events", len(events), "tabs", len(tabs))

	return nil
}

// Initialized reports whether the cache was populated.
func (v *Vault) Initialized() bool {
	return v.cache.Initialized()
}

// Store returns the underlying store.
func (v *Vault) Store() *db.SQLite {
	return v.store
}

// Close closes the store once.
func (v *Vault) Close() {
	v.closeOnce.Do(v.store.Close)
}

func (v *Vault) requireCache() error {
	if !v.cache.Initialized() {
		return ErrCacheUninitialized
	}

	return nil
}
