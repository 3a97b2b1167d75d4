package bucket

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"bonuskar/internal/history"
	"bonuskar/internal/logging"
	"bonuskar/internal/scraper"
)

// Bucket names, in display order.
var BucketNames = []string{
	history.BucketEssentials,
	history.BucketMeat,
	history.BucketVegetables,
	history.BucketFruit,
	history.BucketSnacks,
	history.BucketBeverages,
	history.DefaultCategory,
}

// maxPerBucket caps how many products one bucket holds.
const maxPerBucket = 10

// promptProductLimit caps how many products enter the LLM prompt.
const promptProductLimit = 100

// promptHistoryLimit caps how many history lists enter the LLM prompt.
const promptHistoryLimit = 3

// Buckets maps a bucket name to its selected items.
type Buckets map[string][]history.Item

// Generator classifies products into buckets via an LLM, with a keyword
// fallback when no client is available or the response is unusable.
type Generator struct {
	client LLMClient
}

// NewGenerator returns a Generator. A nil client selects the keyword
// fallback for every run.
func NewGenerator(client LLMClient) *Generator {
	return &Generator{client: client}
}

// llmItem is one entry of the LLM's JSON response.
type llmItem struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// Generate classifies the products. userPrompt optionally carries
// "Shopping Requirements:" and "Must-buy Items:" sections; recentHistory
// gives the LLM purchase-volume context.
func (g *Generator) Generate(ctx context.Context, products []scraper.Product, userPrompt string, recentHistory []history.ShoppingList) (Buckets, error) {
	if g.client == nil {
		logging.Bucket("No LLM client configured, using keyword buckets")
		return KeywordBuckets(products), nil
	}

	prompt := buildPrompt(products, userPrompt, recentHistory)

	response, err := g.client.Complete(ctx, prompt)
	if err != nil {
		logging.BucketError("LLM completion failed, using keyword buckets: %v", err)
		return KeywordBuckets(products), nil
	}

	buckets, err := g.parseResponse(response, products)
	if err != nil {
		logging.BucketWarn("Unusable LLM response, using keyword buckets: %v", err)
		return KeywordBuckets(products), nil
	}
	return buckets, nil
}

// parseResponse extracts the JSON object from the completion and maps each
// entry back to a scraped product. Entries that match no product are
// dropped.
func (g *Generator) parseResponse(response string, products []scraper.Product) (Buckets, error) {
	raw, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var parsed map[string][]llmItem
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode bucket json: %w", err)
	}

	buckets := Buckets{}
	for name, entries := range parsed {
		items := []history.Item{}
		for _, entry := range entries {
			product, ok := findProduct(products, entry.Title)
			if !ok {
				logging.BucketWarn("Dropping unmatched product %q from bucket %s", entry.Title, name)
				continue
			}
			item := itemFromProduct(product, name)
			if entry.Quantity > 0 {
				item.Quantity = entry.Quantity
			}
			item.Reason = entry.Reason
			items = append(items, item)
		}
		buckets[name] = items
	}
	return buckets, nil
}

// extractJSON returns the substring from the first '{' to the last '}',
// tolerating prose or code fences around the object.
func extractJSON(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return response[start : end+1], nil
}

// findProduct matches by bidirectional case-insensitive title containment.
func findProduct(products []scraper.Product, title string) (scraper.Product, bool) {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return scraper.Product{}, false
	}
	for _, product := range products {
		candidate := strings.ToLower(product.Title)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return product, true
		}
	}
	return scraper.Product{}, false
}

func itemFromProduct(product scraper.Product, bucketName string) history.Item {
	return history.Item{
		Title:         product.Title,
		Price:         product.Price,
		Quantity:      1,
		Category:      bucketName,
		Discount:      product.Discount,
		Description:   product.Description,
		ImageURL:      product.ImageURL,
		ProductURL:    product.ProductURL,
		CurrentPrice:  product.CurrentPrice,
		OriginalPrice: product.OriginalPrice,
	}
}

// Flatten returns all bucket items in display order, known buckets first.
func (b Buckets) Flatten() []history.Item {
	var items []history.Item
	for _, name := range bucketOrder(b) {
		items = append(items, b[name]...)
	}
	return items
}

// Format renders the buckets for terminal output.
func Format(buckets Buckets) string {
	displayNames := map[string]string{
		history.BucketEssentials: "Essentials",
		history.BucketMeat:       "Meat",
		history.BucketVegetables: "Vegetables",
		history.BucketFruit:      "Fruit",
		history.BucketSnacks:     "Snacks",
		history.BucketBeverages:  "Beverages",
		history.DefaultCategory:  "Other",
	}

	var b strings.Builder
	b.WriteString("Shopping List Classification\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for _, name := range bucketOrder(buckets) {
		display := displayNames[name]
		if display == "" {
			display = name
		}
		items := buckets[name]
		fmt.Fprintf(&b, "%s (%d items):\n", display, len(items))
		for _, item := range items {
			quantity := ""
			if item.Quantity > 1 {
				quantity = fmt.Sprintf(" x%d", item.Quantity)
			}
			fmt.Fprintf(&b, "   - %s%s | %s\n", item.Title, quantity, item.Price)
			if item.Reason != "" {
				fmt.Fprintf(&b, "     Reason: %s\n", item.Reason)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// bucketOrder lists the known bucket names first, then any extra names the
// LLM invented, sorted for deterministic output.
func bucketOrder(buckets Buckets) []string {
	var order []string
	known := map[string]struct{}{}
	for _, name := range BucketNames {
		known[name] = struct{}{}
		if _, ok := buckets[name]; ok {
			order = append(order, name)
		}
	}

	var extras []string
	for name := range buckets {
		if _, ok := known[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}
