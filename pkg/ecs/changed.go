package ecs

// ChangedSet partitions entities touched during a tick into spawned, changed
// and removed. An entity is in at most one of the three at a time.
type ChangedSet struct {
	spawned orderedSet
	changed orderedSet
	removed orderedSet
}

func NewChangedSet() *ChangedSet {
	return &ChangedSet{
		spawned: newOrderedSet(),
		changed: newOrderedSet(),
		removed: newOrderedSet(),
	}
}

// Spawn records e as new this tick.
func (c *ChangedSet) Spawn(e Entity) {
	c.changed.remove(e)
	c.removed.remove(e)
	c.spawned.add(e)
}

// Change records e as modified. Entities spawned this tick stay spawned.
func (c *ChangedSet) Change(e Entity) {
	if c.spawned.has(e) || c.removed.has(e) {
		return
	}

	c.changed.add(e)
}

// Remove records e as gone. An entity spawned and removed within the same
// tick was never observed and is dropped entirely.
func (c *ChangedSet) Remove(e Entity) {
	c.changed.remove(e)

	if c.spawned.remove(e) {
		return
	}

	c.removed.add(e)
}

func (c *ChangedSet) Spawned() []Entity { return c.spawned.items }
func (c *ChangedSet) Changed() []Entity { return c.changed.items }
func (c *ChangedSet) Removed() []Entity { return c.removed.items }

// Len returns the total number of recorded entities.
func (c *ChangedSet) Len() int {
	return len(c.spawned.items) + len(c.changed.items) + len(c.removed.items)
}

// Clear empties all three sets.
func (c *ChangedSet) Clear() {
	c.spawned.clear()
	c.changed.clear()
	c.removed.clear()
}

type orderedSet struct {
	index map[Entity]int
	items []Entity
}

func newOrderedSet() orderedSet {
	return orderedSet{index: make(map[Entity]int)}
}

func (s *orderedSet) has(e Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *orderedSet) add(e Entity) {
	if s.has(e) {
		return
	}

	s.index[e] = len(s.items)
	s.items = append(s.items, e)
}

func (s *orderedSet) remove(e Entity) bool {
	i, ok := s.index[e]
	if !ok {
		return false
	}

	copy(s.items[i:], s.items[i+1:])
	s.items = s.items[:len(s.items)-1]
	delete(s.index, e)

	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}

	return true
}

func (s *orderedSet) clear() {
	s.items = s.items[:0]

	for e := range s.index {
		delete(s.index, e)
	}
}
