// Package db provides the SQLite store for url, event and current tab records.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	MaxOpenConns    = 10        // Maximum number of open connections
	MaxIdleConns    = 5         // Maximum number of idle connections
	MaxLifetimeConn = time.Hour // Maximum connection lifetime
)

type Table string

// SQLite is the durable store.
type SQLite struct {
	DB        *sqlx.DB `json:"-"`
	Cfg       *Cfg     `json:"db"`
	closeOnce sync.Once
}

// Name returns the name of the SQLite database.
func (r *SQLite) Name() string {
	return r.Cfg.Name
}

// Close closes the SQLite database connection and logs any errors encountered.
func (r *SQLite) Close() {
	s := r.Name()
	r.closeOnce.Do(func() {
		if err := r.DB.Close(); err != nil {
			slog.Error("closing database", "name", s, "error", err)
		} else {
			slog.Debug("database closed", "name", s)
		}
	})
}

func newSQLite(db *sqlx.DB, cfg *Cfg) *SQLite {
	return &SQLite{
		DB:  db,
		Cfg: cfg,
	}
}

// New returns a store from an existing database path.
func New(p string) (*SQLite, error) {
	return newRepository(p, func(path string) error {
		slog.Debug("new repo: checking if database exists", "path", path)

		if !fileExists(path) {
			return fmt.Errorf("%w: %q", ErrDBNotFound, path)
		}

		return nil
	})
}

// Open returns a store at the provided path, creating the database and its
// tables when missing.
func Open(ctx context.Context, p string) (*SQLite, error) {
	r, err := newRepository(p, func(string) error { return nil })
	if err != nil {
		return nil, err
	}

	if err := r.Init(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("init %q: %w", p, err)
	}

	return r, nil
}

// OpenMemory returns an initialized store backed by a private in-memory
// database.
func OpenMemory(ctx context.Context, name string) (*SQLite, error) {
	c := &Cfg{Name: name}
	db, err := OpenDatabase(fmt.Sprintf("file:%s?mode=memory", name))
	if err != nil {
		return nil, err
	}

	r := newSQLite(db, c)
	if err := r.Init(ctx); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func newRepository(p string, validate func(string) error) (*SQLite, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: %q", ErrDBNotFound, p)
	}

	p = ensureDBSuffix(p)
	if err := validate(p); err != nil {
		return nil, err
	}

	c, err := NewSQLiteCfg(p)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	db, err := OpenDatabase(p)
	if err != nil {
		slog.Error("NewRepo", "error", err, "path", p)
		return nil, err
	}

	return newSQLite(db, c), nil
}

// buildSQLiteDSN appends the query parameters to the database path.
func buildSQLiteDSN(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return fmt.Sprintf("%s%s%s", path, separator, params.Encode())
}

// OpenDatabase opens a SQLite database at the specified path and verifies
// the connection, returning the database handle or an error.
func OpenDatabase(path string) (*sqlx.DB, error) {
	slog.Debug("opening database", "path", path)
	isMemory := strings.Contains(path, "mode=memory") || path == ":memory:"

	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_txlock", "immediate")
	if !isMemory {
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_pragma", "synchronous(NORMAL)")
	}

	db, err := sqlx.Open("sqlite", buildSQLiteDSN(path, params))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(MaxLifetimeConn)

	if isMemory {
		// every connection to a memory database must stay the same one.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%w: on ping context", err)
	}

	return db, nil
}

// Cfg represents the configuration for a SQLite database.
type Cfg struct {
	Name string `json:"name"` // Name of the SQLite database
	Path string `json:"path"` // Path to the SQLite database
}

// Fullpath returns the full path to the SQLite database.
func (c *Cfg) Fullpath() string {
	return filepath.Join(c.Path, c.Name)
}

// NewSQLiteCfg returns the default settings for the database.
func NewSQLiteCfg(p string) (*Cfg, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", p, err)
	}

	return &Cfg{
		Path: filepath.Dir(abs),
		Name: ensureDBSuffix(filepath.Base(abs)),
	}, nil
}
