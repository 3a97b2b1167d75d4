package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bonuskar/internal/testutil"
)

var testStart = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// newTestStore opens a store on a fresh temp file with a deterministic
// clock and sequential list ids.
func newTestStore(t *testing.T) (*Store, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(testStart, time.Minute)
	s, err := Open(
		filepath.Join(t.TempDir(), "shopping_history.json"),
		WithClock(clock.Now),
		WithIDGenerator(testutil.SequentialIDs()),
	)
	require.NoError(t, err)
	return s, clock
}

func parseTS(t *testing.T, value string) Timestamp {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return Timestamp{parsed}
}

func itemsOf(titles ...string) []Item {
	items := make([]Item, len(titles))
	for i, title := range titles {
		items[i] = Item{Title: title, Price: "€1.00"}
	}
	return items
}
