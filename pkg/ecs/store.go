package ecs

import "slices"

// Store holds one component type for any number of entities.
// Iteration follows insertion order until the first removal; removal swaps
// the last element into the hole.
type Store[T any] struct {
	sparse map[uint32]int
	dense  []Entity
	values []T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		sparse: make(map[uint32]int),
	}
}

// Set attaches or replaces the component of e. A component left behind by
// an older generation of the same ID is dropped.
func (s *Store[T]) Set(e Entity, v T) {
	if i, ok := s.index(e); ok {
		s.values[i] = v
		return
	}

	if i, ok := s.sparse[e.ID]; ok {
		s.Remove(s.dense[i])
	}

	s.sparse[e.ID] = len(s.dense)
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
}

// Get returns a pointer to the component of e. The pointer is valid until
// the next Set or Remove on this store.
func (s *Store[T]) Get(e Entity) (*T, bool) {
	i, ok := s.index(e)
	if !ok {
		return nil, false
	}

	return &s.values[i], true
}

func (s *Store[T]) Has(e Entity) bool {
	_, ok := s.index(e)
	return ok
}

// Remove detaches the component of e, reporting whether it had one.
func (s *Store[T]) Remove(e Entity) bool {
	i, ok := s.index(e)
	if !ok {
		return false
	}

	last := len(s.dense) - 1
	if i != last {
		s.dense[i] = s.dense[last]
		s.values[i] = s.values[last]
		s.sparse[s.dense[i].ID] = i
	}

	var zero T

	s.values[last] = zero
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	delete(s.sparse, e.ID)

	return true
}

func (s *Store[T]) Len() int {
	return len(s.dense)
}

// Entities returns a snapshot of the entities holding this component.
func (s *Store[T]) Entities() []Entity {
	return slices.Clone(s.dense)
}

// Each calls fn for every component until fn returns false.
// fn must not add or remove components of this store.
func (s *Store[T]) Each(fn func(e Entity, v *T) bool) {
	for i := range s.dense {
		if !fn(s.dense[i], &s.values[i]) {
			return
		}
	}
}

func (s *Store[T]) index(e Entity) (int, bool) {
	i, ok := s.sparse[e.ID]
	if !ok || s.dense[i] != e {
		return 0, false
	}

	return i, true
}

// Join calls fn for every entity holding components in both a and b.
func Join[A, B any](a *Store[A], b *Store[B], fn func(e Entity, va *A, vb *B) bool) {
	a.Each(func(e Entity, va *A) bool {
		vb, ok := b.Get(e)
		if !ok {
			return true
		}

		return fn(e, va, vb)
	})
}

// Tags is a component store without payload.
type Tags = Store[struct{}]

func NewTags() *Tags {
	return NewStore[struct{}]()
}
