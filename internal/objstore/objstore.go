// Package objstore implements an ID-keyed object table. Holding an ID
// instead of a pointer lets a remote party refer to an object without
// keeping it alive: once the object is deleted, lookups fail.
package objstore

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Store[T any] struct {
	m       sync.RWMutex
	objects map[uint32]T
	nextID  uint32
}

func New[T any](start uint32) *Store[T] {
	return &Store[T]{
		objects: make(map[uint32]T),
		nextID:  start,
	}
}

// Add assigns a fresh ID, calls create with it and stores the result.
// The object is not visible to Get until create has returned, so IDs
// never change once an object can be looked up.
func (s *Store[T]) Add(create func(id uint32) T) T {
	s.m.Lock()
	defer s.m.Unlock()

	id := s.nextID
	s.nextID++

	obj := create(id)
	s.objects[id] = obj
	return obj
}

func (s *Store[T]) Get(id uint32) (obj T, ok bool) {
	s.m.RLock()
	defer s.m.RUnlock()

	obj, ok = s.objects[id]
	return obj, ok
}

// Delete removes the object with the given ID and returns it. Only one
// of any number of concurrent callers gets ok == true for a given ID.
func (s *Store[T]) Delete(id uint32) (obj T, ok bool) {
	s.m.Lock()
	defer s.m.Unlock()

	obj, ok = s.objects[id]
	delete(s.objects, id)
	return obj, ok
}

// All returns every stored object, ordered by ID.
func (s *Store[T]) All() []T {
	s.m.RLock()
	objects := maps.Clone(s.objects)
	s.m.RUnlock()

	return sorted(objects)
}

func sorted[T any](objects map[uint32]T) []T {
	ids := make([]uint32, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	r := make([]T, 0, len(ids))
	for _, id := range ids {
		r = append(r, objects[id])
	}
	return r
}

// Clear removes every object and returns them, ordered by ID.
func (s *Store[T]) Clear() []T {
	s.m.Lock()
	objects := s.objects
	s.objects = make(map[uint32]T)
	s.m.Unlock()

	return sorted(objects)
}

func (s *Store[T]) Len() int {
	s.m.RLock()
	defer s.m.RUnlock()
	return len(s.objects)
}
