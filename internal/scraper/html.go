package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// extractProducts parses a bonus page. An embedded application/json blob
// with a product list wins over DOM extraction when present.
func extractProducts(body []byte, baseURL string) ([]Product, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if products := productsFromEmbeddedJSON(root); len(products) > 0 {
		return products, nil
	}

	var products []Product
	for _, card := range findAll(root, func(n *html.Node) bool {
		return attr(n, "data-testhook") == "promotion-card"
	}) {
		if product, ok := productFromCard(card, baseURL); ok {
			products = append(products, product)
		}
	}
	return products, nil
}

// productsFromEmbeddedJSON probes script tags for a JSON object carrying a
// "products" array.
func productsFromEmbeddedJSON(root *html.Node) []Product {
	for _, script := range findAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script" && attr(n, "type") == "application/json"
	}) {
		var payload struct {
			Products []Product `json:"products"`
		}
		if err := json.Unmarshal([]byte(textContent(script)), &payload); err != nil {
			continue
		}
		if len(payload.Products) > 0 {
			return payload.Products
		}
	}
	return nil
}

func productFromCard(card *html.Node, baseURL string) (Product, bool) {
	title := cardTitle(card)
	if title == "" {
		return Product{}, false
	}

	product := Product{Title: title, Description: title}
	product.Price, product.CurrentPrice, product.OriginalPrice, product.Discount = cardPrice(card)

	if desc := findFirst(card, func(n *html.Node) bool {
		return attr(n, "data-testhook") == "card-description"
	}); desc != nil {
		if text := strings.TrimSpace(textContent(desc)); text != "" {
			product.Description = text
		}
	}

	if img := findFirst(card, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "img"
	}); img != nil {
		product.ImageURL = attr(img, "src")
		if product.ImageURL == "" {
			product.ImageURL = attr(img, "data-src")
		}
	}

	if link := findFirst(card, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" && attr(n, "href") != ""
	}); link != nil {
		product.ProductURL = absoluteURL(attr(link, "href"), baseURL)
	}

	return product, true
}

func cardTitle(card *html.Node) string {
	node := findFirst(card, func(n *html.Node) bool {
		return attr(n, "data-testhook") == "promotion-card-title"
	})
	if node == nil {
		node = findFirst(card, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return false
			}
			switch n.Data {
			case "h1", "h2", "h3", "h4":
				return true
			}
			return false
		})
	}
	if node == nil {
		return ""
	}
	return strings.TrimSpace(textContent(node))
}

// cardPrice reads the price attributes and renders the original display
// format: "€X (was €Y, discount Z%)".
func cardPrice(card *html.Node) (formatted, current, original string, discount int) {
	node := findFirst(card, func(n *html.Node) bool {
		return attr(n, "data-testhook") == "price"
	})
	if node == nil {
		return "Unknown", "", "", 0
	}

	now := attr(node, "data-testpricenow")
	was := attr(node, "data-testpricewas")

	if now != "" {
		current = "€" + now
	}
	if was != "" {
		original = "€" + was
	}

	switch {
	case now != "" && was != "":
		nowVal, nowErr := strconv.ParseFloat(now, 64)
		wasVal, wasErr := strconv.ParseFloat(was, 64)
		if nowErr == nil && wasErr == nil && wasVal > 0 {
			discount = int(math.Round((wasVal - nowVal) / wasVal * 100))
			formatted = fmt.Sprintf("€%s (was €%s, discount %d%%)", now, was, discount)
		} else {
			formatted = fmt.Sprintf("€%s (was €%s)", now, was)
		}
	case now != "":
		formatted = "€" + now
	default:
		formatted = strings.TrimSpace(textContent(node))
		if formatted == "" {
			formatted = "Unknown"
		}
	}
	return formatted, current, original, discount
}

func absoluteURL(href, baseURL string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

func attr(n *html.Node, name string) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			found = append(found, n)
			// promotion cards do not nest
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return found
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
