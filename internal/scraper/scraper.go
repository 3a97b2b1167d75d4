// Package scraper collects the current promotion products from the
// Albert Heijn bonus pages. It prefers a plain HTTP fetch and falls back
// to a real browser when the page turns out to be rendered client-side.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bonuskar/internal/config"
	"bonuskar/internal/logging"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// fetchConcurrency bounds parallel section fetches.
const fetchConcurrency = 4

// Product is one scraped promotion.
type Product struct {
	Title         string `json:"title"`
	Price         string `json:"price"`
	CurrentPrice  string `json:"current_price"`
	OriginalPrice string `json:"original_price"`
	Discount      int    `json:"discount"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	ProductURL    string `json:"product_url"`
}

// Options controls a single scrape run.
type Options struct {
	// UseCache reads the product cache when it is still fresh.
	UseCache bool
	// PreferLightweight tries the plain HTTP fetch before the browser.
	PreferLightweight bool
}

// DefaultOptions enables the cache and the lightweight fetch.
func DefaultOptions() Options {
	return Options{UseCache: true, PreferLightweight: true}
}

// Scraper fetches and caches bonus products.
type Scraper struct {
	cfg    *config.Config
	client *http.Client
	now    func() time.Time

	// extra section URLs fetched alongside the main bonus page
	sections []string

	mu sync.Mutex
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClock overrides the wall clock, used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) { s.client = client }
}

// WithSections adds extra bonus section URLs to fetch alongside the main
// page.
func WithSections(urls ...string) Option {
	return func(s *Scraper) { s.sections = append(s.sections, urls...) }
}

// New returns a Scraper for the given configuration.
func New(cfg *config.Config, options ...Option) *Scraper {
	s := &Scraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.GetRequestTimeout()},
		now:    time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Scrape returns the current bonus products. Resolution order: fresh
// cache, lightweight HTTP fetch, browser. The result is cached on every
// successful fetch.
func (s *Scraper) Scrape(ctx context.Context, opts Options) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.UseCache {
		if products, ok := s.loadCache(); ok {
			logging.Scraper("Using %d cached products", len(products))
			return products, nil
		}
	}

	if opts.PreferLightweight {
		products, err := s.scrapeLightweight(ctx)
		if err != nil {
			logging.ScraperWarn("Lightweight scrape failed: %v", err)
		} else if len(products) > 0 {
			logging.Scraper("Lightweight scrape found %d products", len(products))
			s.saveCache(products)
			return products, nil
		} else {
			logging.Scraper("Lightweight scrape found no products, page is likely client-rendered")
		}
	}

	products, err := s.scrapeBrowser(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser scrape: %w", err)
	}
	logging.Scraper("Browser scrape found %d products", len(products))
	s.saveCache(products)
	return products, nil
}

// scrapeLightweight fetches the bonus page plus configured section pages
// concurrently and extracts promotion cards from the static HTML.
func (s *Scraper) scrapeLightweight(ctx context.Context) ([]Product, error) {
	urls := append([]string{s.cfg.AH.BonusURL}, s.sections...)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	pages := make([][]Product, len(urls))
	for i, url := range urls {
		g.Go(func() error {
			body, err := s.fetch(ctx, url)
			if err != nil {
				return err
			}
			products, err := extractProducts(body, s.cfg.AH.BaseURL)
			if err != nil {
				return fmt.Errorf("parse %s: %w", url, err)
			}
			pages[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var products []Product
	seen := map[string]struct{}{}
	for _, page := range pages {
		for _, product := range page {
			if _, dup := seen[product.Title]; dup {
				continue
			}
			seen[product.Title] = struct{}{}
			products = append(products, product)
			if len(products) == s.cfg.Scraper.MaxProducts {
				return products, nil
			}
		}
	}
	return products, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// ErrNoProducts reports a scrape that completed without finding anything.
var ErrNoProducts = errors.New("no bonus products found")
