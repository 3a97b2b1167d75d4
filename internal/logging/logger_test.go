package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLoggerIsNoOp(t *testing.T) {
	require.NoError(t, Initialize(Options{Enabled: false}))
	defer CloseAll()

	l := Get(CategoryStore)
	// Must not panic and must not create any files.
	l.Info("hello %s", "world")
	l.Error("boom")
}

func TestCategoryFileCreated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir, Level: "debug", Enabled: true}))
	defer CloseAll()

	Store("stored %d lists", 3)
	StoreDebug("detail")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_store.log"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] stored 3 lists")
	assert.Contains(t, string(data), "[DEBUG] detail")
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir, Level: "warn", Enabled: true}))
	defer CloseAll()

	l := Get(CategoryScraper)
	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")
	l.Error("kept as well")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "[WARN] kept")
	assert.Contains(t, string(data), "[ERROR] kept as well")
}

// Level reads may race with a reconfiguring Initialize; the race detector
// flags any unsynchronized access here.
func TestConcurrentLoggingAndInitialize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir, Level: "info", Enabled: true}))
	defer CloseAll()

	l := Get(CategoryCart)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Debug("detail %d", j)
				l.Info("progress %d", j)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, Initialize(Options{Dir: dir, Level: "debug", Enabled: true}))
	}()
	wg.Wait()
}
