package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bonuskar/internal/logging"
)

// Store owns the in-memory document and its backing file. Construction
// loads and migrates the file and rebuilds all indexes; every mutating
// method rebuilds the indexes and persists synchronously. An internal
// RWMutex serializes mutations against reads, so a single Store can be
// shared within one process; concurrent access to the same file from
// multiple processes is not supported.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  Document

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the list id generator, for deterministic tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open loads the history file at path (migrating legacy content) and
// returns a ready store. A missing or corrupt file yields an empty store,
// not an error.
func Open(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history file path required")
	}

	s := &Store{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range options {
		opt(s)
	}

	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	s.doc = loadDocument(path, s.now, s.newID)
	s.doc.Indexes = rebuildIndexes(s.doc.Lists)
	logging.Store("opened %s: %d lists", path, len(s.doc.Lists))
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of recorded lists.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Lists)
}

// Add records a new shopping list with the given items and notes,
// timestamped now. The new list id is always returned; a non-nil error
// means the mutation is applied in memory but not yet durable, and Save
// may be retried.
func (s *Store) Add(items []Item, notes string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := make([]Item, len(items))
	for i, item := range items {
		normalized[i] = item.withDefaults()
	}

	list := ShoppingList{
		ID:         s.newID(),
		Date:       Timestamp{s.now()},
		Items:      normalized,
		Notes:      notes,
		TotalItems: len(normalized),
	}
	s.doc.Lists = append(s.doc.Lists, list)
	err := s.commitLocked()
	logging.Store("added list %s (%d items)", list.ID, list.TotalItems)
	return list.ID, err
}

// Delete removes the list with the given id. It reports whether a removal
// occurred; an unknown id is an expected outcome, not an error. The
// document is only rewritten when something was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Lists[:0]
	removed := false
	for _, list := range s.doc.Lists {
		if list.ID == id {
			removed = true
			continue
		}
		kept = append(kept, list)
	}
	if !removed {
		return false, nil
	}
	s.doc.Lists = kept
	err := s.commitLocked()
	logging.Store("deleted list %s", id)
	return true, err
}

// Update replaces the items and/or notes of an existing list and refreshes
// its date to now. A nil items slice leaves the items untouched; a nil
// notes pointer leaves the notes untouched. Reports false when id is not
// found.
func (s *Store) Update(id string, items []Item, notes *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Lists {
		if s.doc.Lists[i].ID != id {
			continue
		}
		if items != nil {
			normalized := make([]Item, len(items))
			for j, item := range items {
				normalized[j] = item.withDefaults()
			}
			s.doc.Lists[i].Items = normalized
			s.doc.Lists[i].TotalItems = len(normalized)
		}
		if notes != nil {
			s.doc.Lists[i].Notes = *notes
		}
		s.doc.Lists[i].Date = Timestamp{s.now()}
		err := s.commitLocked()
		logging.Store("updated list %s", id)
		return true, err
	}
	return false, nil
}

// Save persists the current document. Mutating methods call this
// implicitly; it is exposed so callers can retry after a reported write
// failure.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked()
}

// commitLocked rebuilds the indexes and writes the document. The in-memory
// state is kept even when the write fails: the caller is told the change
// is not yet durable and retrying Save is the recovery path.
func (s *Store) commitLocked() error {
	s.doc.Indexes = rebuildIndexes(s.doc.Lists)
	s.doc.Metadata.LastUpdated = Timestamp{s.now()}
	if err := saveDocument(s.path, s.doc); err != nil {
		logging.StoreError("save %s: %v", s.path, err)
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
