package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedWeeks records one list per week for four weeks and returns the ids
// oldest-first.
func seedWeeks(t *testing.T, s *Store, clock interface{ Set(time.Time) }) []string {
	t.Helper()
	var ids []string
	weeks := []struct {
		day   string
		items []Item
		notes string
	}{
		{"2024-01-01", []Item{{Title: "AH Halfvolle melk", Price: "€1.19", Category: "essentials"}}, "new year stock"},
		{"2024-01-08", []Item{{Title: "Kipfilet", Category: "meat"}, {Title: "Broccoli", Category: "vegetables"}}, "meal prep"},
		{"2024-01-15", []Item{{Title: "melk"}, {Title: "Chips", Category: "snacks"}}, "movie night"},
		{"2024-01-22", []Item{{Title: "Sinaasappels", Category: "fruit"}}, ""},
	}
	for _, week := range weeks {
		day, err := time.Parse("2006-01-02", week.day)
		require.NoError(t, err)
		clock.Set(day.Add(18 * time.Hour))
		id, err := s.Add(week.items, week.notes)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestRecentOrderingAndTruncation(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	all := s.Recent(10)
	require.Len(t, all, 4, "Recent returns min(n, total)")
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.After(all[i-1].Date.Time), "dates must be non-increasing")
	}
	assert.Equal(t, ids[3], all[0].ID)
	assert.Equal(t, ids[0], all[3].ID)

	two := s.Recent(2)
	require.Len(t, two, 2)
	assert.Equal(t, ids[3], two[0].ID)
	assert.Equal(t, ids[2], two[1].ID)

	assert.Empty(t, s.Recent(0))
}

func TestLatest(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, ids[3], latest.ID)
}

func TestQueryByDay(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	matches := s.QueryByDay("2024-01-08")
	require.Len(t, matches, 1)
	assert.Equal(t, ids[1], matches[0].ID)

	assert.Empty(t, s.QueryByDay("2024-02-01"))
}

func TestQueryByDateRange(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	mid := s.QueryByDateRange("2024-01-08", "2024-01-15")
	require.Len(t, mid, 2)
	assert.Equal(t, ids[2], mid[0].ID, "descending by date")
	assert.Equal(t, ids[1], mid[1].ID)

	// Bounds are inclusive and an absent bound is unbounded.
	assert.Len(t, s.QueryByDateRange("2024-01-15", ""), 2)
	assert.Len(t, s.QueryByDateRange("", "2024-01-08"), 2)
	assert.Len(t, s.QueryByDateRange("", ""), 4)
}

func TestQueryByProductBidirectionalContainment(t *testing.T) {
	s, clock := newTestStore(t)
	seedWeeks(t, s, clock)

	// Short query against long stored title.
	matches := s.QueryByProduct("melk", false)
	require.Len(t, matches, 2)

	// Long query against short stored title: "melk" (week 3) is a
	// substring of the query, so it matches too.
	matches = s.QueryByProduct("AH Halfvolle melk", false)
	require.Len(t, matches, 2)

	assert.Empty(t, s.QueryByProduct("zeep", false))
}

func TestQueryByProductCaseSensitive(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Add([]Item{{Title: "Melk"}}, "")
	require.NoError(t, err)

	// Index keys are folded at build time, so only the query side changes.
	assert.Len(t, s.QueryByProduct("Melk", true), 0)
	assert.Len(t, s.QueryByProduct("melk", true), 1)
	assert.Len(t, s.QueryByProduct("MELK", false), 1)
}

func TestQueryByCategory(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	meat := s.QueryByCategory("MEAT")
	require.Len(t, meat, 1)
	assert.Equal(t, ids[1], meat[0].ID)

	// Items without a category land in the default bucket.
	other := s.QueryByCategory("other")
	require.Len(t, other, 1)
	assert.Equal(t, ids[2], other[0].ID)

	assert.Empty(t, s.QueryByCategory("beverages"))
}

func TestQueryByNotes(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	matches := s.QueryByNotes("MEAL")
	require.Len(t, matches, 1)
	assert.Equal(t, ids[1], matches[0].ID)

	assert.Empty(t, s.QueryByNotes("barbecue"))
}

func TestSearchUnionDeduplicatesByID(t *testing.T) {
	s, clock := newTestStore(t)
	clock.Set(testStart)

	// One list matching on title, notes and category at once must appear
	// exactly once.
	id, err := s.Add([]Item{{Title: "snack mix", Category: "snacks"}}, "snacks for friday")
	require.NoError(t, err)

	matches := s.Search("snack")
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ID)
}

func TestSearchSpansTitlesNotesCategories(t *testing.T) {
	s, clock := newTestStore(t)
	ids := seedWeeks(t, s, clock)

	// "meat" appears only as a category; "meal" only in notes; "melk"
	// only in titles.
	byCategory := s.Search("meat")
	require.Len(t, byCategory, 1)
	assert.Equal(t, ids[1], byCategory[0].ID)

	byNotes := s.Search("movie")
	require.Len(t, byNotes, 1)
	assert.Equal(t, ids[2], byNotes[0].ID)

	byTitle := s.Search("melk")
	assert.Len(t, byTitle, 2)
}
