package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// legacyList is the loosely-typed shape of one entry in the legacy file
// format: a bare JSON array of lists instead of a keyed document.
type legacyList struct {
	Date  Timestamp `json:"date"`
	Items []Item    `json:"items"`
	Notes string    `json:"notes"`
}

// decodeDocument parses raw file content, which is polymorphic over two
// shapes: the canonical Document object, or a legacy bare array. Legacy
// content is migrated in place; migration reshapes, never drops data.
func decodeDocument(data []byte, now func() time.Time, newID func() string) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("empty file")
	}

	if trimmed[0] == '[' {
		var legacy []legacyList
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return Document{}, fmt.Errorf("parse legacy array: %w", err)
		}
		return migrateLegacy(legacy, now, newID), nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	if doc.Lists == nil {
		doc.Lists = []ShoppingList{}
	}
	if doc.Version == "" {
		doc.Version = SchemaVersion
	}
	return doc, nil
}

// migrateLegacy wraps legacy entries in a fresh canonical Document. Each
// entry gets a newly generated id; date defaults to now when absent, items
// to empty, and total_items is recomputed from the item count.
func migrateLegacy(legacy []legacyList, now func() time.Time, newID func() string) Document {
	doc := emptyDocument(now())
	for _, entry := range legacy {
		list := ShoppingList{
			ID:    newID(),
			Date:  entry.Date,
			Items: entry.Items,
			Notes: entry.Notes,
		}
		if list.Date.IsZero() {
			list.Date = Timestamp{now()}
		}
		if list.Items == nil {
			list.Items = []Item{}
		}
		list.TotalItems = len(list.Items)
		doc.Lists = append(doc.Lists, list)
	}
	return doc
}
