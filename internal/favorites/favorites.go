// Package favorites tracks the products a visitor has hearted.
package favorites

import (
	"sort"
	"sync"
)

// Set is a visitor's favorite product ids. The zero value is ready to use and
// safe for concurrent use. Nothing is persisted.
type Set struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// Toggle flips membership of id and reports whether it is now a favorite.
func (s *Set) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is a favorite.
func (s *Set) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IDs returns the favorites in sorted order.
func (s *Set) IDs() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}
