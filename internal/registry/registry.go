// Package registry keeps named plugins (renderers, format adapters) behind a
// lock, remembering the order they were added in.
package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Named is anything that can be keyed by name.
type Named interface {
	Name() string
}

// Set holds items keyed by Name. Keys may be case folded.
type Set[T Named] struct {
	kind string
	fold bool

	mu    sync.RWMutex
	items map[string]T
	order []string
}

// New returns an empty set. kind names the items in error messages.
func New[T Named](kind string, foldCase bool) *Set[T] {
	return &Set[T]{kind: kind, fold: foldCase, items: map[string]T{}}
}

// Key normalizes a lookup name.
func (s *Set[T]) Key(name string) string {
	name = strings.TrimSpace(name)
	if s.fold {
		name = strings.ToLower(name)
	}
	return name
}

// Add stores item under its key. Nil items, empty names and duplicates fail.
func (s *Set[T]) Add(item T) error {
	if any(item) == nil {
		return fmt.Errorf("%s is required", s.kind)
	}
	key := s.Key(item.Name())
	if key == "" {
		return fmt.Errorf("%s name is required", s.kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.items[key]; dup {
		return fmt.Errorf("%s %q already registered", s.kind, key)
	}
	s.items[key] = item
	s.order = append(s.order, key)
	return nil
}

// Lookup returns the item stored under name.
func (s *Set[T]) Lookup(name string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[s.Key(name)]
	return item, ok
}

// Names lists the keys alphabetically.
func (s *Set[T]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := slices.Clone(s.order)
	slices.Sort(names)
	return names
}

// Ordered returns the items in the order they were added.
func (s *Set[T]) Ordered() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.items[key])
	}
	return out
}
