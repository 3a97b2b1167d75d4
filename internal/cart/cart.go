// Package cart drives a real browser to put selected bonus products into
// the AH.nl shopping cart. The browser runs headful by default so the
// user can log in and watch the run.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"bonuskar/internal/history"
	"bonuskar/internal/logging"
)

// Result reports one batch cart run. A run succeeds when at least one
// product made it into the cart; individual failures never abort the batch.
type Result struct {
	Success        bool     `json:"success"`
	Added          int      `json:"added_count"`
	Failed         int      `json:"failed_count"`
	FailedProducts []string `json:"failed_products"`
	Message        string   `json:"message"`
}

// ProgressFunc is invoked after each product attempt.
type ProgressFunc func(title string, ok bool)

// addToCartSelectors are tried in order on a product page.
var addToCartSelectors = []string{
	"[data-testhook='add-to-cart-button']",
	"[data-test-id='add-to-cart']",
	"button[aria-label*='toevoegen']",
	"button[title*='toevoegen']",
	"button[aria-label*='winkelmandje']",
}

// loginIndicatorSelectors detect a logged-out session.
var loginIndicatorSelectors = []string{
	"a[href*='inloggen']",
	"[data-testhook='login-button']",
}

var searchBoxSelectors = []string{
	"[data-testhook='search-input']",
	"input[placeholder*='Zoeken']",
	"input[type='search']",
}

var cartButtonSelectors = []string{
	"[data-testhook='cart-button']",
	"[aria-label*='winkelmandje']",
	"a[href*='/winkelmandje']",
}

// Automation owns a browser session for cart operations.
type Automation struct {
	baseURL  string
	headless bool

	browser *rod.Browser
	page    *rod.Page

	// WaitForLogin blocks until the user finished logging in manually.
	// Overridable so tests and non-interactive runs skip the prompt.
	WaitForLogin func()
}

// New creates an Automation. The browser is launched lazily on first use.
func New(baseURL string, headless bool) *Automation {
	return &Automation{
		baseURL:  baseURL,
		headless: headless,
	}
}

func (a *Automation) ensureStarted(ctx context.Context) error {
	if a.browser != nil {
		return nil
	}

	controlURL, err := launcher.New().Headless(a.headless).Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: a.baseURL})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("open %s: %w", a.baseURL, err)
	}
	_ = page.WaitLoad()

	a.browser = browser
	a.page = page

	a.acceptCookies()
	a.ensureLoggedIn()
	return nil
}

func (a *Automation) acceptCookies() {
	button, err := a.page.Timeout(5 * time.Second).ElementX(
		"//button[contains(text(), 'Accepteren') or contains(text(), 'Accept')]")
	if err != nil {
		return
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err == nil {
		logging.Cart("Cookie dialog accepted")
		time.Sleep(time.Second)
	}
}

// ensureLoggedIn looks for login affordances and, when found, hands
// control to the user until they confirm they are logged in.
func (a *Automation) ensureLoggedIn() {
	for _, selector := range loginIndicatorSelectors {
		if _, err := a.page.Timeout(2 * time.Second).Element(selector); err == nil {
			logging.Cart("Not logged in, waiting for manual login")
			if a.WaitForLogin != nil {
				a.WaitForLogin()
			}
			return
		}
	}
}

// AddItems adds each item to the cart: by product URL when present,
// otherwise via search. Failures are recorded per item.
func (a *Automation) AddItems(ctx context.Context, items []history.Item, progress ProgressFunc) (Result, error) {
	if err := a.ensureStarted(ctx); err != nil {
		return Result{Message: err.Error()}, err
	}

	logging.Cart("Adding %d products to cart", len(items))

	return runBatch(items, func(item history.Item) bool {
		ok := a.addItem(item)
		// Pace the clicks; the site throttles rapid cart mutations.
		time.Sleep(time.Second)
		return ok
	}, progress), nil
}

// runBatch attempts every item and tallies the outcome.
func runBatch(items []history.Item, add func(history.Item) bool, progress ProgressFunc) Result {
	var added int
	var failed []string
	for _, item := range items {
		ok := add(item)
		if ok {
			added++
		} else {
			failed = append(failed, item.Title)
			logging.CartWarn("Failed to add %q", item.Title)
		}
		if progress != nil {
			progress(item.Title, ok)
		}
	}
	return buildResult(len(items), added, failed)
}

func (a *Automation) addItem(item history.Item) bool {
	if item.ProductURL != "" {
		if a.openProduct(item.ProductURL) && clickUnits(item.Quantity, a.clickAddToCart) {
			return true
		}
	}
	return a.searchProduct(item.Title) && clickUnits(item.Quantity, a.clickAddToCart)
}

// clickUnits presses the add button once per requested unit. The item
// counts as added when the first press lands; a failed repeat press
// leaves fewer units in the cart and is only logged.
func clickUnits(quantity int, click func() bool) bool {
	if quantity < 1 {
		quantity = 1
	}
	if !click() {
		return false
	}
	for unit := 1; unit < quantity; unit++ {
		if !click() {
			logging.CartWarn("Added %d of %d units", unit, quantity)
			break
		}
	}
	return true
}

func (a *Automation) openProduct(productURL string) bool {
	if len(productURL) < 4 || productURL[:4] != "http" {
		productURL = a.baseURL + productURL
	}
	if err := a.page.Navigate(productURL); err != nil {
		logging.CartWarn("Navigate to %s failed: %v", productURL, err)
		return false
	}
	_ = a.page.WaitLoad()
	return true
}

func (a *Automation) searchProduct(title string) bool {
	if err := a.page.Navigate(a.baseURL); err != nil {
		return false
	}
	_ = a.page.WaitLoad()

	for _, selector := range searchBoxSelectors {
		box, err := a.page.Timeout(3 * time.Second).Element(selector)
		if err != nil {
			continue
		}
		if err := box.Input(title); err != nil {
			continue
		}
		if err := box.Type(input.Enter); err != nil {
			continue
		}
		_ = a.page.WaitLoad()

		card, err := a.page.Timeout(5 * time.Second).Element("[data-testhook='product-card']")
		if err != nil {
			return false
		}
		if err := card.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return false
		}
		_ = a.page.WaitLoad()
		return true
	}
	return false
}

func (a *Automation) clickAddToCart() bool {
	for _, selector := range addToCartSelectors {
		button, err := a.page.Timeout(3 * time.Second).Element(selector)
		if err != nil {
			continue
		}
		if err := button.ScrollIntoView(); err == nil {
			time.Sleep(500 * time.Millisecond)
		}
		if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		time.Sleep(time.Second)
		return true
	}
	return false
}

// ViewCart opens the cart page.
func (a *Automation) ViewCart(ctx context.Context) error {
	if err := a.ensureStarted(ctx); err != nil {
		return err
	}

	for _, selector := range cartButtonSelectors {
		button, err := a.page.Timeout(2 * time.Second).Element(selector)
		if err != nil {
			continue
		}
		if err := button.Click(proto.InputMouseButtonLeft, 1); err == nil {
			return nil
		}
	}

	if err := a.page.Navigate(a.baseURL + "/winkelmandje"); err != nil {
		return fmt.Errorf("open cart page: %w", err)
	}
	return nil
}

// Close shuts the browser down. In headful mode the caller usually skips
// this so the user can inspect the cart.
func (a *Automation) Close() error {
	a.page = nil
	if a.browser == nil {
		return nil
	}
	err := a.browser.Close()
	a.browser = nil
	return err
}

func buildResult(total, added int, failed []string) Result {
	return Result{
		Success:        added > 0,
		Added:          added,
		Failed:         len(failed),
		FailedProducts: failed,
		Message:        fmt.Sprintf("Successfully added %d/%d products", added, total),
	}
}
