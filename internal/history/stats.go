package history

import (
	"math"
	"sort"
)

// ProductCount is one entry in the top-products ranking.
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DateRange spans the first and last list dates, date-only.
type DateRange struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Stats summarizes the whole store.
type Stats struct {
	TotalLists          int            `json:"total_lists"`
	TotalItems          int            `json:"total_items"`
	AverageItemsPerList float64        `json:"average_items_per_list"`
	TopProducts         []ProductCount `json:"top_products"`
	DateRange           *DateRange     `json:"date_range,omitempty"`
}

// Statistics computes aggregate statistics over all lists. The average is
// rounded to two decimals and zero for an empty store; top products are
// ranked by purchase-occurrence count, ties broken by first-seen order.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalLists:  len(s.doc.Lists),
		TopProducts: []ProductCount{},
	}

	counts := map[string]int{}
	var order []string
	for _, list := range s.doc.Lists {
		stats.TotalItems += len(list.Items)
		for _, item := range list.Items {
			if item.Title == "" {
				continue
			}
			key := productKey(item.Title)
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	if stats.TotalLists > 0 {
		avg := float64(stats.TotalItems) / float64(stats.TotalLists)
		stats.AverageItemsPerList = math.Round(avg*100) / 100
	}

	// Stable sort over first-seen order keeps ties deterministic.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	for _, key := range order {
		stats.TopProducts = append(stats.TopProducts, ProductCount{Name: key, Count: counts[key]})
		if len(stats.TopProducts) == 10 {
			break
		}
	}

	for _, list := range s.doc.Lists {
		day := list.Date.DayKey()
		if stats.DateRange == nil {
			stats.DateRange = &DateRange{First: day, Last: day}
			continue
		}
		if day < stats.DateRange.First {
			stats.DateRange.First = day
		}
		if day > stats.DateRange.Last {
			stats.DateRange.Last = day
		}
	}

	return stats
}
