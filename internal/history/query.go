package history

import (
	"sort"
	"strings"
)

// ByID returns the list with the given id.
func (s *Store) ByID(id string) (ShoppingList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byIDLocked(id)
}

func (s *Store) byIDLocked(id string) (ShoppingList, bool) {
	for _, list := range s.doc.Lists {
		if list.ID == id {
			return list, true
		}
	}
	return ShoppingList{}, false
}

// Recent returns up to n lists, most recent first.
func (s *Store) Recent(n int) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := sortedByDateDesc(s.doc.Lists)
	if n >= 0 && n < len(results) {
		results = results[:n]
	}
	return results
}

// Latest returns the most recent list.
func (s *Store) Latest() (ShoppingList, bool) {
	recent := s.Recent(1)
	if len(recent) == 0 {
		return ShoppingList{}, false
	}
	return recent[0], true
}

// QueryByDay returns all lists whose date falls on the given day
// (YYYY-MM-DD), using the date index.
func (s *Store) QueryByDay(day string) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByDateDesc(s.collectLocked(s.doc.Indexes.ByDate[day]))
}

// QueryByDateRange returns all lists whose date-only string falls within
// [from, to] inclusive. An empty bound is unbounded on that side, so an
// empty from and to returns every list.
func (s *Store) QueryByDateRange(from, to string) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []ShoppingList
	for _, list := range s.doc.Lists {
		day := list.Date.DayKey()
		if from != "" && day < from {
			continue
		}
		if to != "" && day > to {
			continue
		}
		results = append(results, list)
	}
	return sortedByDateDesc(results)
}

// QueryByProduct returns all lists containing an item whose title matches
// the given name by bidirectional substring containment: "melk" matches
// "AH Halfvolle melk" and vice versa. Both sides are case-folded unless
// caseSensitive is set.
func (s *Store) QueryByProduct(name string, caseSensitive bool) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !caseSensitive {
		name = strings.ToLower(name)
	}

	ids := map[string]struct{}{}
	for key, keyIDs := range s.doc.Indexes.ByProduct {
		if strings.Contains(key, name) || strings.Contains(name, key) {
			for _, id := range keyIDs {
				ids[id] = struct{}{}
			}
		}
	}

	var results []ShoppingList
	for id := range ids {
		if list, ok := s.byIDLocked(id); ok {
			results = append(results, list)
		}
	}
	return sortedByDateDesc(results)
}

// QueryByCategory returns all lists containing an item with the given
// category. The match is exact and case-insensitive.
func (s *Store) QueryByCategory(category string) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByDateDesc(s.collectLocked(s.doc.Indexes.ByCategory[categoryKey(category)]))
}

// QueryByNotes returns all lists whose notes contain the keyword,
// case-insensitively.
func (s *Store) QueryByNotes(keyword string) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword = strings.ToLower(keyword)
	var results []ShoppingList
	for _, list := range s.doc.Lists {
		if strings.Contains(strings.ToLower(list.Notes), keyword) {
			results = append(results, list)
		}
	}
	return sortedByDateDesc(results)
}

// Search returns the union of lists matching the query in any item title,
// the notes, or any item category, case-insensitively and de-duplicated by
// list id.
func (s *Store) Search(query string) []ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	seen := map[string]struct{}{}
	var results []ShoppingList

	for _, list := range s.doc.Lists {
		if _, ok := seen[list.ID]; ok {
			continue
		}
		if listMatches(list, query) {
			seen[list.ID] = struct{}{}
			results = append(results, list)
		}
	}
	return sortedByDateDesc(results)
}

func listMatches(list ShoppingList, query string) bool {
	if strings.Contains(strings.ToLower(list.Notes), query) {
		return true
	}
	for _, item := range list.Items {
		if strings.Contains(strings.ToLower(item.Title), query) {
			return true
		}
		if strings.Contains(strings.ToLower(item.Category), query) {
			return true
		}
	}
	return false
}

func (s *Store) collectLocked(ids []string) []ShoppingList {
	var results []ShoppingList
	for _, id := range ids {
		if list, ok := s.byIDLocked(id); ok {
			results = append(results, list)
		}
	}
	return results
}

// sortedByDateDesc returns a sorted copy; the input is never reordered in
// place because it may alias the document's own slice.
func sortedByDateDesc(lists []ShoppingList) []ShoppingList {
	results := make([]ShoppingList, len(lists))
	copy(results, lists)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date.Time)
	})
	return results
}
