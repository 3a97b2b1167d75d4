package history

import "sort"

func emptyIndexes() Indexes {
	return Indexes{
		ByDate:     map[string][]string{},
		ByProduct:  map[string][]string{},
		ByCategory: map[string][]string{},
	}
}

// rebuildIndexes derives the three secondary indexes from scratch. It scans
// every list exactly once and is the sole producer of index content; no
// incremental maintenance is performed anywhere. Id sets come out sorted so
// consecutive saves of the same document are byte-identical.
func rebuildIndexes(lists []ShoppingList) Indexes {
	byDate := map[string]map[string]struct{}{}
	byProduct := map[string]map[string]struct{}{}
	byCategory := map[string]map[string]struct{}{}

	add := func(index map[string]map[string]struct{}, key, id string) {
		set, ok := index[key]
		if !ok {
			set = map[string]struct{}{}
			index[key] = set
		}
		set[id] = struct{}{}
	}

	for _, list := range lists {
		add(byDate, list.Date.DayKey(), list.ID)
		for _, item := range list.Items {
			if item.Title != "" {
				add(byProduct, productKey(item.Title), list.ID)
			}
			add(byCategory, categoryKey(item.Category), list.ID)
		}
	}

	return Indexes{
		ByDate:     flatten(byDate),
		ByProduct:  flatten(byProduct),
		ByCategory: flatten(byCategory),
	}
}

func flatten(index map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(index))
	for key, set := range index {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[key] = ids
	}
	return out
}
