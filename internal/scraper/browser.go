package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"bonuskar/internal/logging"
)

// cookieAcceptSelectors cover the variants of the AH cookie dialog.
var cookieAcceptSelectors = []string{
	"//button[@data-testhook='cookie-consent-accept']",
	"//button[@data-testid='cookie-accept']",
	"//button[contains(text(), 'Accepteren')]",
	"//button[contains(text(), 'Accept')]",
	"//button[@aria-label='Accepteren']",
}

const (
	maxScrollAttempts = 50
	// stop scrolling after this many consecutive rounds without new cards
	maxStableRounds = 3
	scrollSettle    = 1500 * time.Millisecond
)

// scrapeBrowser renders the bonus page in a real browser, loads every
// promotion card by scrolling, and extracts products from the final DOM.
func (s *Scraper) scrapeBrowser(ctx context.Context) ([]Product, error) {
	controlURL, err := launcher.New().Headless(s.cfg.Scraper.Headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: s.cfg.AH.BonusURL})
	if err != nil {
		return nil, fmt.Errorf("open bonus page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load bonus page: %w", err)
	}

	acceptCookies(page)
	loadAllCards(page)

	rendered, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}

	products, err := extractProducts([]byte(rendered), s.cfg.AH.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	if len(products) > s.cfg.Scraper.MaxProducts {
		products = products[:s.cfg.Scraper.MaxProducts]
	}
	return products, nil
}

func acceptCookies(page *rod.Page) {
	for _, selector := range cookieAcceptSelectors {
		button, err := page.Timeout(3 * time.Second).ElementX(selector)
		if err != nil {
			continue
		}
		if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
			logging.BrowserWarn("Cookie accept click failed: %v", err)
			continue
		}
		logging.Browser("Cookie dialog accepted")
		time.Sleep(time.Second)
		return
	}
	logging.BrowserWarn("Cookie dialog not found, continuing anyway")
}

// loadAllCards scrolls until the promotion card count stops growing,
// clicking the load-more button when scrolling alone stalls.
func loadAllCards(page *rod.Page) {
	lastCount := 0
	stableRounds := 0

	for attempt := 0; attempt < maxScrollAttempts; attempt++ {
		if _, err := page.Eval("() => window.scrollTo(0, document.body.scrollHeight)"); err != nil {
			logging.BrowserWarn("Scroll failed: %v", err)
			return
		}
		time.Sleep(scrollSettle)

		cards, err := page.Elements("[data-testhook='promotion-card']")
		if err != nil {
			continue
		}
		count := len(cards)

		if count == lastCount {
			stableRounds++
			if stableRounds >= maxStableRounds {
				if clickLoadMore(page) {
					stableRounds = 0
					continue
				}
				logging.Browser("All cards loaded, total %d", count)
				return
			}
		} else {
			stableRounds = 0
		}
		lastCount = count
	}
	logging.BrowserWarn("Scroll attempt limit reached with %d cards", lastCount)
}

func clickLoadMore(page *rod.Page) bool {
	button, err := page.Timeout(2 * time.Second).ElementX(
		"//button[contains(text(), 'Meer laden') or contains(text(), 'Load more')]")
	if err != nil {
		return false
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false
	}
	time.Sleep(2 * time.Second)
	return true
}
