package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bonuskar/internal/testutil"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	// A fixed clock makes last_updated identical across saves, so the
	// round trip must reproduce the file byte for byte.
	clock := testutil.NewClock(testStart, 0)
	path := filepath.Join(t.TempDir(), "shopping_history.json")

	s, err := Open(path, WithClock(clock.Now), WithIDGenerator(testutil.SequentialIDs()))
	require.NoError(t, err)
	_, err = s.Add([]Item{{Title: "Melk", Price: "€1.19", Category: "essentials"}}, "week 1")
	require.NoError(t, err)
	_, err = s.Add(itemsOf("Brood", "Kaas"), "week 2")
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	reopened, err := Open(path, WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, reopened.Save())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSaveWritesCanonicalDocument(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Add([]Item{{Title: "AH Halfvolle melk", Price: "€1.19"}}, "")
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, SchemaVersion, doc.Version)
	require.Len(t, doc.Lists, 1)
	assert.Equal(t, 1, doc.Lists[0].TotalItems)

	// Indexes are persisted alongside the lists for inspection.
	assert.Contains(t, doc.Indexes.ByProduct, "ah halfvolle melk")
	assert.Contains(t, doc.Indexes.ByCategory, "other")
	assert.Contains(t, doc.Indexes.ByDate, doc.Lists[0].Date.DayKey())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.Add(itemsOf("Melk"), "")
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(s.Path()), entries[0].Name())
}

func TestSaveReportsFailureButKeepsMemory(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Add(itemsOf("Melk"), "")
	require.NoError(t, err)

	// Replace the backing path with a directory so the rename must fail.
	blocked := filepath.Join(filepath.Dir(s.Path()), "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "sub"), 0755))
	s.path = filepath.Join(blocked, "sub")

	id, err := s.Add(itemsOf("Brood"), "")
	require.Error(t, err, "write failure must be reported")
	require.NotEmpty(t, id)

	// The mutation is still applied in memory; retrying Save on a good
	// path is the recovery route.
	assert.Equal(t, 2, s.Len())
	_, ok := s.ByID(id)
	assert.True(t, ok)

	s.path = filepath.Join(blocked, "retry.json")
	require.NoError(t, s.Save())
}
