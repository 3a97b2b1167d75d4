package history

import (
	"fmt"
	"strings"
)

// formatMaxItems caps how many items one list renders before eliding.
const formatMaxItems = 10

// FormatRecentLists renders a human-readable summary of the last n lists,
// used as prompt context for the bucket generator and for CLI output.
func (s *Store) FormatRecentLists(n int) string {
	recent := s.Recent(n)
	if len(recent) == 0 {
		return "No shopping history recorded.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent %d shopping list(s)\n", len(recent))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for i, list := range recent {
		fmt.Fprintf(&b, "#%d  %s  [id %s]\n", i+1, list.Date.DayKey(), shortID(list.ID))
		fmt.Fprintf(&b, "    items: %d\n", len(list.Items))
		if list.Notes != "" {
			fmt.Fprintf(&b, "    notes: %s\n", list.Notes)
		}
		for j, item := range list.Items {
			if j == formatMaxItems {
				fmt.Fprintf(&b, "      ... %d more item(s)\n", len(list.Items)-formatMaxItems)
				break
			}
			price := item.Price
			if price == "" {
				price = "price unknown"
			}
			fmt.Fprintf(&b, "      - %s (%s)\n", item.Title, price)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
