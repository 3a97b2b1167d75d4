package bucket

import (
	"strings"

	"bonuskar/internal/history"
	"bonuskar/internal/scraper"
)

// bucketKeywords drives the no-LLM fallback classification. Dutch and
// English forms both match because scraped titles mix languages.
var bucketKeywords = []struct {
	name     string
	keywords []string
}{
	{history.BucketEssentials, []string{"melk", "milk", "eieren", "eggs", "brood", "bread", "boter", "butter"}},
	{history.BucketMeat, []string{"vlees", "meat", "kip", "chicken", "vis", "fish", "gehakt"}},
	{history.BucketVegetables, []string{"groente", "vegetable", "tomaat", "tomato", "ui", "onion", "wortel"}},
	{history.BucketFruit, []string{"fruit", "appel", "apple", "banaan", "banana", "sinaasappel"}},
	{history.BucketSnacks, []string{"snack", "chips", "koek", "snoep", "chocolate"}},
	{history.BucketBeverages, []string{"drank", "drink", "sap", "juice", "water", "cola"}},
}

// KeywordBuckets classifies products by title keywords, the fallback used
// when no LLM is available. Every bucket name is present in the result,
// each capped at ten products; unmatched products land in "other".
func KeywordBuckets(products []scraper.Product) Buckets {
	buckets := Buckets{}
	for _, name := range BucketNames {
		buckets[name] = []history.Item{}
	}

	for _, product := range products {
		title := strings.ToLower(product.Title)
		name := history.DefaultCategory

	match:
		for _, entry := range bucketKeywords {
			for _, keyword := range entry.keywords {
				if strings.Contains(title, keyword) {
					name = entry.name
					break match
				}
			}
		}

		if len(buckets[name]) < maxPerBucket {
			buckets[name] = append(buckets[name], itemFromProduct(product, name))
		}
	}
	return buckets
}
