package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileYieldsEmptyStore(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Latest()
	assert.False(t, ok)
}

func TestAddAssignsIDAndDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	id, err := s.Add([]Item{{Title: "Milk", Price: "€1.50"}}, "weekly")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, ok := s.ByID(id)
	require.True(t, ok)
	assert.Equal(t, 1, list.TotalItems)
	assert.Equal(t, "weekly", list.Notes)
	assert.Equal(t, DefaultQuantity, list.Items[0].Quantity)
	assert.Equal(t, DefaultCategory, list.Items[0].Category)
	assert.Equal(t, "€1.50", list.Items[0].Price)
}

func TestAddKeepsProducerValues(t *testing.T) {
	s, _ := newTestStore(t)

	// The store accepts whatever shape the producer hands it, including
	// values it would not generate itself.
	id, err := s.Add([]Item{{Title: "Kipfilet", Quantity: 3, Category: "meat", Reason: "on sale"}}, "")
	require.NoError(t, err)

	list, _ := s.ByID(id)
	assert.Equal(t, 3, list.Items[0].Quantity)
	assert.Equal(t, "meat", list.Items[0].Category)
	assert.Equal(t, "on sale", list.Items[0].Reason)
}

func TestDeleteUnknownIDLeavesListsUnchanged(t *testing.T) {
	s, _ := newTestStore(t)
	idA, err := s.Add(itemsOf("Milk"), "")
	require.NoError(t, err)

	removed, err := s.Delete("no-such-id")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, s.Len())

	list, ok := s.ByID(idA)
	require.True(t, ok)
	assert.Equal(t, "Milk", list.Items[0].Title)
}

func TestDeleteRemovesList(t *testing.T) {
	s, _ := newTestStore(t)
	idA, err := s.Add(itemsOf("Milk"), "")
	require.NoError(t, err)
	idB, err := s.Add(itemsOf("Bread"), "")
	require.NoError(t, err)

	removed, err := s.Delete(idA)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.ByID(idA)
	assert.False(t, ok)
	_, ok = s.ByID(idB)
	assert.True(t, ok)
}

func TestUpdateUnknownIDReturnsFalse(t *testing.T) {
	s, _ := newTestStore(t)

	ok, err := s.Update("missing", itemsOf("Milk"), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestUpdateItemsRefreshesDateAndKeepsNotes(t *testing.T) {
	s, clock := newTestStore(t)
	id, err := s.Add(itemsOf("Milk"), "original notes")
	require.NoError(t, err)
	before, _ := s.ByID(id)

	clock.Set(testStart.Add(48 * time.Hour))
	ok, err := s.Update(id, itemsOf("Bread", "Eggs", "Cheese"), nil)
	require.NoError(t, err)
	require.True(t, ok)

	after, _ := s.ByID(id)
	assert.Equal(t, 3, after.TotalItems)
	assert.Len(t, after.Items, 3)
	assert.Equal(t, "original notes", after.Notes, "notes must be untouched when not supplied")
	assert.True(t, after.Date.After(before.Date.Time), "date must be refreshed")
}

func TestUpdateNotesOnlyKeepsItems(t *testing.T) {
	s, _ := newTestStore(t)
	id, err := s.Add(itemsOf("Milk", "Bread"), "old")
	require.NoError(t, err)

	notes := "new notes"
	ok, err := s.Update(id, nil, &notes)
	require.NoError(t, err)
	require.True(t, ok)

	after, _ := s.ByID(id)
	assert.Equal(t, "new notes", after.Notes)
	assert.Equal(t, 2, after.TotalItems)
	assert.Len(t, after.Items, 2)
}

// End-to-end scenario: two lists sharing a product, exercised through the
// mutation API, queries, and statistics together.
func TestAddQueryStatisticsScenario(t *testing.T) {
	s, clock := newTestStore(t)

	idA, err := s.Add([]Item{{Title: "Milk", Price: "€1.50"}}, "week1")
	require.NoError(t, err)

	clock.Set(testStart.Add(7 * 24 * time.Hour))
	idB, err := s.Add([]Item{
		{Title: "Chicken", Price: "€4"},
		{Title: "Milk", Price: "€1.50"},
	}, "week2")
	require.NoError(t, err)

	recent := s.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, idB, recent[0].ID)

	matches := s.QueryByProduct("milk", false)
	require.Len(t, matches, 2)
	assert.Equal(t, idB, matches[0].ID)
	assert.Equal(t, idA, matches[1].ID)

	stats := s.Statistics()
	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, ProductCount{Name: "milk", Count: 2}, stats.TopProducts[0])
}
