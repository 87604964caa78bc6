// Package state owns the in-memory university list shared by every request.
package state

import (
	"sync"
	"time"

	"github.com/unirank/rankbrowser/internal/model"
)

// Universities is the single source of truth for lookups by English name.
// Replace is its only mutation; readers always see one complete list.
type Universities struct {
	mu       sync.RWMutex
	list     []model.University
	byName   map[string]int
	loadedAt time.Time
}

// NewUniversities creates an empty store.
func NewUniversities() *Universities {
	return &Universities{byName: map[string]int{}}
}

// Replace swaps in a freshly fetched list.
func (s *Universities) Replace(list []model.University) {
	byName := make(map[string]int, len(list))
	for i, u := range list {
		// First occurrence wins, matching a front-to-back find.
		if _, dup := byName[u.Name()]; !dup {
			byName[u.Name()] = i
		}
	}

	s.mu.Lock()
	s.list = list
	s.byName = byName
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// All returns the current list. Callers must not modify it.
func (s *Universities) All() []model.University {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list
}

// Find resolves an exact English name.
func (s *Universities) Find(name string) (model.University, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.list[i], true
}

// Len returns the number of universities held.
func (s *Universities) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

// Loaded reports whether a list has been stored, and when.
func (s *Universities) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loadedAt.IsZero(), s.loadedAt
}
