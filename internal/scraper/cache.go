package scraper

import (
	"encoding/json"
	"os"
	"time"

	"bonuskar/internal/logging"
)

// cacheFile is the on-disk cache shape. Files without a timestamp are
// treated as expired.
type cacheFile struct {
	Timestamp time.Time `json:"timestamp"`
	Products  []Product `json:"products"`
}

// loadCache returns the cached products when the cache file exists, parses
// and is younger than the configured expiry.
func (s *Scraper) loadCache() ([]Product, bool) {
	data, err := os.ReadFile(s.cfg.Files.ProductCache)
	if err != nil {
		return nil, false
	}

	var cache cacheFile
	if err := json.Unmarshal(data, &cache); err != nil {
		logging.ScraperWarn("Ignoring unreadable product cache %s: %v", s.cfg.Files.ProductCache, err)
		return nil, false
	}
	if cache.Timestamp.IsZero() || len(cache.Products) == 0 {
		return nil, false
	}

	expiry := cache.Timestamp.Add(s.cfg.GetCacheExpiry())
	if !s.now().Before(expiry) {
		logging.ScraperDebug("Product cache expired at %s", expiry.Format(time.RFC3339))
		return nil, false
	}
	return cache.Products, true
}

func (s *Scraper) saveCache(products []Product) {
	data, err := json.MarshalIndent(cacheFile{Timestamp: s.now(), Products: products}, "", "  ")
	if err != nil {
		logging.ScraperWarn("Failed to encode product cache: %v", err)
		return
	}
	if err := os.WriteFile(s.cfg.Files.ProductCache, data, 0644); err != nil {
		logging.ScraperWarn("Failed to write product cache %s: %v", s.cfg.Files.ProductCache, err)
		return
	}
	logging.ScraperDebug("Cached %d products to %s", len(products), s.cfg.Files.ProductCache)
}

// DeleteCache removes the product cache file, typically after a completed
// cart run so the next run sees fresh promotions.
func (s *Scraper) DeleteCache() error {
	err := os.Remove(s.cfg.Files.ProductCache)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
