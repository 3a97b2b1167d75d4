// Package history implements the embedded shopping-history store: a single
// JSON document persisted to one file, with derived indexes and query
// support over past shopping lists.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// SchemaVersion tags the canonical on-disk document shape.
const SchemaVersion = "1.0"

// Defaults for item fields, declared once.
const (
	DefaultCategory = "other"
	DefaultQuantity = 1
)

// Bucket names written into Item.Category by the bucket generator. The
// store accepts any category string; these are the classification vocabulary.
const (
	BucketEssentials = "essentials"
	BucketMeat       = "meat"
	BucketVegetables = "vegetables"
	BucketFruit      = "fruit"
	BucketSnacks     = "snacks"
	BucketBeverages  = "beverages"
)

// Item is one product entry within a shopping list. Title and price come
// from the producer (scraper or bucket generator); the remaining fields are
// carried unchanged. The store does not validate price formatting or
// currency.
type Item struct {
	Title         string `json:"title"`
	Price         string `json:"price,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	Category      string `json:"category,omitempty"`
	Discount      int    `json:"discount,omitempty"`
	Description   string `json:"description,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	ProductURL    string `json:"product_url,omitempty"`
	CurrentPrice  string `json:"current_price,omitempty"`
	OriginalPrice string `json:"original_price,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// withDefaults returns a copy of the item with absent fields defaulted.
// Only absent (zero) values are filled in; the store accepts whatever else
// the producer hands it.
func (it Item) withDefaults() Item {
	if it.Quantity == 0 {
		it.Quantity = DefaultQuantity
	}
	if it.Category == "" {
		it.Category = DefaultCategory
	}
	return it
}

// ShoppingList is one recorded shopping event: a dated set of items plus
// notes. TotalItems always equals len(Items) after every mutation.
type ShoppingList struct {
	ID         string    `json:"id"`
	Date       Timestamp `json:"date"`
	Items      []Item    `json:"items"`
	Notes      string    `json:"notes,omitempty"`
	TotalItems int       `json:"total_items"`
}

// Metadata records document lifecycle timestamps.
type Metadata struct {
	CreatedAt   Timestamp `json:"created_at"`
	LastUpdated Timestamp `json:"last_updated"`
}

// Indexes are derived mappings from a key to the sorted set of list ids
// containing it. They are persisted for inspection but always rebuilt from
// Lists on load, never trusted as authoritative.
type Indexes struct {
	ByDate     map[string][]string `json:"by_date"`
	ByProduct  map[string][]string `json:"by_product"`
	ByCategory map[string][]string `json:"by_category"`
}

// Document is the whole persisted store state.
type Document struct {
	Version  string         `json:"version"`
	Metadata Metadata       `json:"metadata"`
	Lists    []ShoppingList `json:"lists"`
	Indexes  Indexes        `json:"indexes"`
}

func emptyDocument(now time.Time) Document {
	return Document{
		Version: SchemaVersion,
		Metadata: Metadata{
			CreatedAt:   Timestamp{now},
			LastUpdated: Timestamp{now},
		},
		Lists:   []ShoppingList{},
		Indexes: emptyIndexes(),
	}
}

// Timestamp is a time.Time that accepts the ISO-8601 layouts found in
// history files written by earlier versions (which serialized naive local
// timestamps without a zone offset).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// DayKey returns the date-only form (YYYY-MM-DD) used by the date index.
func (t Timestamp) DayKey() string {
	return t.Format("2006-01-02")
}

// productKey folds an item title into its index key: NFC-normalized and
// lowercased, so composed and decomposed spellings of the same product name
// share one entry.
func productKey(title string) string {
	return strings.ToLower(norm.NFC.String(title))
}

// categoryKey folds a category the same way, defaulting absent categories.
func categoryKey(category string) string {
	if category == "" {
		category = DefaultCategory
	}
	return strings.ToLower(norm.NFC.String(category))
}
