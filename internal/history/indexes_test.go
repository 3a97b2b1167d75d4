package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireIndexFidelity asserts that the store's current indexes equal a
// fresh full rescan of its lists. Index staleness is a bug, never a
// tolerated state.
func requireIndexFidelity(t *testing.T, s *Store) {
	t.Helper()
	if diff := cmp.Diff(rebuildIndexes(s.doc.Lists), s.doc.Indexes); diff != "" {
		t.Fatalf("indexes diverge from full rescan (-rescan +current):\n%s", diff)
	}
}

func TestRebuildIndexesEmpty(t *testing.T) {
	idx := rebuildIndexes(nil)
	assert.Empty(t, idx.ByDate)
	assert.Empty(t, idx.ByProduct)
	assert.Empty(t, idx.ByCategory)
}

func TestRebuildIndexesKeys(t *testing.T) {
	lists := []ShoppingList{
		{
			ID:   "a",
			Date: parseTS(t, "2024-01-15T09:00:00Z"),
			Items: []Item{
				{Title: "AH Halfvolle Melk", Category: "Essentials"},
				{Title: "Brood"},
			},
		},
		{
			ID:    "b",
			Date:  parseTS(t, "2024-01-15T21:00:00Z"),
			Items: []Item{{Title: "AH Halfvolle Melk", Category: "essentials"}},
		},
	}

	idx := rebuildIndexes(lists)

	// Titles and categories are folded to lowercase; both lists land on
	// the same day key, id sets sorted.
	assert.Equal(t, []string{"a", "b"}, idx.ByDate["2024-01-15"])
	assert.Equal(t, []string{"a", "b"}, idx.ByProduct["ah halfvolle melk"])
	assert.Equal(t, []string{"a"}, idx.ByProduct["brood"])
	assert.Equal(t, []string{"a", "b"}, idx.ByCategory["essentials"])
	assert.Equal(t, []string{"a"}, idx.ByCategory["other"], "absent category defaults")
}

func TestRebuildIndexesIsIdempotent(t *testing.T) {
	lists := []ShoppingList{
		{ID: "a", Date: parseTS(t, "2024-01-15T09:00:00Z"), Items: itemsOf("Melk", "Melk")},
	}
	first := rebuildIndexes(lists)
	second := rebuildIndexes(lists)
	assert.Empty(t, cmp.Diff(first, second))

	// Duplicate titles within one list still yield a single id entry.
	assert.Equal(t, []string{"a"}, first.ByProduct["melk"])
}

func TestIndexFidelityAcrossMutations(t *testing.T) {
	s, _ := newTestStore(t)
	requireIndexFidelity(t, s)

	idA, err := s.Add(itemsOf("Melk", "Brood"), "week1")
	require.NoError(t, err)
	requireIndexFidelity(t, s)

	idB, err := s.Add([]Item{{Title: "Kipfilet", Category: "meat"}}, "week2")
	require.NoError(t, err)
	requireIndexFidelity(t, s)

	_, err = s.Update(idA, itemsOf("Kaas"), nil)
	require.NoError(t, err)
	requireIndexFidelity(t, s)

	_, err = s.Delete(idB)
	require.NoError(t, err)
	requireIndexFidelity(t, s)

	// Stale keys must be gone after the rebuilds.
	assert.NotContains(t, s.doc.Indexes.ByProduct, "melk")
	assert.NotContains(t, s.doc.Indexes.ByCategory, "meat")
	assert.Contains(t, s.doc.Indexes.ByProduct, "kaas")
}
