// Package scraper fetches the title and favicon of web pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/semaphore"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrBadStatus         = errors.New("unexpected status")
)

// maxBody caps the bytes read from a response.
const maxBody = 10 * 1024 * 1024

// Page holds the metadata read from a page.
type Page struct {
	URL     string
	Title   string
	Favicon string
}

// Result is the outcome of fetching a single url.
type Result struct {
	Page *Page
	Err  error
}

// Scraper fetches pages over HTTP.
type Scraper struct {
	client  *http.Client
	workers int64
}

type Option func(*Scraper)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.client = c
	}
}

// WithWorkers sets the number of concurrent fetches.
func WithWorkers(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.workers = int64(n)
		}
	}
}

func New(opts ...Option) *Scraper {
	s := &Scraper{
		workers: 8,
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func setHeaders(r *http.Request) {
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0")
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// Fetch downloads raw and reads its title and favicon. A missing favicon
// link falls back to /favicon.ico on the same host.
func (s *Scraper) Fetch(ctx context.Context, raw string) (*Page, error) {
	base, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}

	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, base.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("request %q: %w", raw, err)
	}
	setHeaders(req)

	start := time.Now()
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", raw, err)
	}

	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("closing response body", "url", raw, "error", err)
		}
	}()

	slog.Debug("received response", "url", raw, "status", res.StatusCode, "duration", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d %q", ErrBadStatus, res.StatusCode, raw)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("parse html %q: %w", raw, err)
	}

	// redirects change the base favicons resolve against.
	if res.Request != nil && res.Request.URL != nil {
		base = res.Request.URL
	}

	return &Page{
		URL:     raw,
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Favicon: favicon(doc, base),
	}, nil
}

func favicon(doc *goquery.Document, base *url.URL) string {
	var href string
	doc.Find("link[rel]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, rel := range strings.Fields(strings.ToLower(sel.AttrOr("rel", ""))) {
			if rel == "icon" {
				href = strings.TrimSpace(sel.AttrOr("href", ""))
				return href == ""
			}
		}

		return true
	})

	if href == "" {
		href = "/favicon.ico"
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return base.ResolveReference(ref).String()
}

// FetchAll fetches every url concurrently, bounded by the number of
// workers. Results keep the order of urls.
func (s *Scraper) FetchAll(ctx context.Context, urls []string) []Result {
	var (
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(s.workers)
		out = make([]Result, len(urls))
	)

	for i, u := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			out[i] = Result{Err: fmt.Errorf("acquiring semaphore: %w", err)}
			continue
		}

		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer sem.Release(1)

			p, err := s.Fetch(ctx, u)
			if err != nil {
				slog.Warn("scraping error", "url", u, "error", err)
			}
			out[i] = Result{Page: p, Err: err}
		}(i, u)
	}

	wg.Wait()

	return out
}
