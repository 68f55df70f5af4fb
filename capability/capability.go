// Package capability tracks optional dependencies linked into the process.
//
// A package that provides an optional capability registers its name from
// init, the same way database/sql drivers register themselves. Features
// gated on that capability then ask whether the name is present instead of
// importing the provider directly.
package capability

import (
	"slices"
	"sync"
)

// Checker answers whether a named capability is available
type Checker interface {
	Present(name string) bool
}

// Set is a concurrency-safe set of capability names.
// The zero value is an empty set ready to use; a nil *Set reports nothing present.
type Set struct {
	names map[string]struct{}
	mu    sync.RWMutex
}

// NewSet creates a set holding names
func NewSet(names ...string) *Set {
	s := &Set{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.names[name] = struct{}{}
	}
	return s
}

// Register marks name as present. Empty names are ignored.
func (s *Set) Register(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	s.names[name] = struct{}{}
}

// Present reports whether name has been registered
func (s *Set) Present(name string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// Names returns the registered names in sorted order
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name := range s.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var defaultSet = NewSet()

// Register marks name as present in the process-wide set
func Register(name string) {
	defaultSet.Register(name)
}

// Default returns the process-wide capability set
func Default() *Set {
	return defaultSet
}
