// Package store caches the most recently loaded collections and holds the
// per-view filter and page selections.
package store

import (
	"sync"
	"time"

	"abbaytv/portal/internal/models"
)

// Store caches the four collections. Each SetCollection replaces the previous
// snapshot wholesale; there is no merging. Writes come from loads and the
// refresh loop while handlers read, hence the lock.
type Store struct {
	mu          sync.RWMutex
	collections map[models.Collection][]models.Record
	generations map[models.Collection]uint64
	loadedAt    map[models.Collection]time.Time
	now         func() time.Time
}

// New creates an empty store. Every collection reads as an empty list until loaded.
func New() *Store {
	return &Store{
		collections: make(map[models.Collection][]models.Record),
		generations: make(map[models.Collection]uint64),
		loadedAt:    make(map[models.Collection]time.Time),
		now:         time.Now,
	}
}

// SetCollection replaces a collection and bumps its generation.
func (s *Store) SetCollection(name models.Collection, items []models.Record) {
	if items == nil {
		items = []models.Record{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[name] = items
	s.generations[name]++
	s.loadedAt[name] = s.now()
}

// Collection returns the current snapshot. Callers must not modify it.
func (s *Store) Collection(name models.Collection) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.collections[name]
	if !ok {
		return []models.Record{}
	}
	return items
}

// Snapshot returns a collection together with its generation, read atomically.
func (s *Store) Snapshot(name models.Collection) ([]models.Record, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.collections[name]
	if !ok {
		items = []models.Record{}
	}
	return items, s.generations[name]
}

// Generation counts how many times a collection has been replaced.
func (s *Store) Generation(name models.Collection) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[name]
}

// LoadedAt reports when a collection was last replaced; ok is false if never.
func (s *Store) LoadedAt(name models.Collection) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.loadedAt[name]
	return t, ok
}
