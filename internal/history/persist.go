package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bonuskar/internal/logging"
)

// loadDocument reads the backing file if present. A missing, unreadable or
// corrupt file degrades to an empty document with a warning; load never
// fails the caller.
func loadDocument(path string, now func() time.Time, newID func() string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.StoreWarn("failed to read %s: %v, starting empty", path, err)
		}
		return emptyDocument(now())
	}

	doc, err := decodeDocument(data, now, newID)
	if err != nil {
		logging.StoreWarn("failed to parse %s: %v, starting empty", path, err)
		return emptyDocument(now())
	}
	return doc
}

// saveDocument serializes the document and writes it atomically: the bytes
// go to a temp file in the target directory which is then renamed over the
// destination, so a crash mid-write never corrupts the previous durable
// state.
func saveDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
