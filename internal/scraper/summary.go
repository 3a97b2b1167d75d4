package scraper

import (
	"fmt"
	"sort"
	"strings"
)

// Summary renders a discount-tier overview of the scraped products.
func Summary(products []Product) string {
	if len(products) == 0 {
		return "No discount products found"
	}

	var high, medium, low int
	for _, p := range products {
		switch {
		case p.Discount >= 30:
			high++
		case p.Discount >= 10:
			medium++
		case p.Discount > 0:
			low++
		}
	}

	var b strings.Builder
	b.WriteString("AH.nl Discount Products Summary\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total products: %d\n\n", len(products))
	fmt.Fprintf(&b, "High discount (>=30%%): %d products\n", high)
	fmt.Fprintf(&b, "Medium discount (10-29%%): %d products\n", medium)
	fmt.Fprintf(&b, "Low discount (<10%%): %d products\n\n", low)

	ranked := make([]Product, len(products))
	copy(ranked, products)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Discount > ranked[j].Discount
	})
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	b.WriteString("Top 10 discounts:\n")
	for i, p := range ranked {
		fmt.Fprintf(&b, "  %d. %s - %s\n", i+1, p.Title, p.Price)
	}
	return b.String()
}
