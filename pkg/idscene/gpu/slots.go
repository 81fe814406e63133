package gpu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/ecs"
)

// slotMap binds entities of one kind to single-record allocations.
type slotMap struct {
	kind  string
	alloc *Allocator
	slots map[ecs.Entity]Allocation
}

func newSlotMap(kind string, capacity uint32) *slotMap {
	return &slotMap{
		kind:  kind,
		alloc: NewAllocator(capacity),
		slots: make(map[ecs.Entity]Allocation),
	}
}

// allocate gives a freshly spawned entity its slot.
func (m *slotMap) allocate(e ecs.Entity) (Allocation, error) {
	if _, ok := m.slots[e]; ok {
		panic(fmt.Sprintf("gpu: spawned %s %s already has a slot", m.kind, e))
	}

	a, err := m.alloc.Allocate(1)
	if err != nil {
		return Allocation{}, errors.Wrapf(err, "failed to allocate %s %s", m.kind, e)
	}

	m.slots[e] = a

	return a, nil
}

// slot returns the slot of a tracked entity. A changed entity without a
// slot means the change set and the buffers went out of sync.
func (m *slotMap) slot(e ecs.Entity) Allocation {
	a, ok := m.slots[e]
	if !ok {
		panic(fmt.Sprintf("gpu: %s %s has no slot", m.kind, e))
	}

	return a
}

func (m *slotMap) lookup(e ecs.Entity) (Allocation, bool) {
	a, ok := m.slots[e]
	return a, ok
}

// free releases the slot of e, if it has one, and returns it.
func (m *slotMap) free(e ecs.Entity) (Allocation, bool) {
	a, ok := m.slots[e]
	if !ok {
		return Allocation{}, false
	}

	m.alloc.Free(a)
	delete(m.slots, e)

	return a, true
}

func (m *slotMap) len() int {
	return len(m.slots)
}

// highest is one past the highest occupied record, the instance count a
// draw over the whole array needs.
func (m *slotMap) highest() uint32 {
	var n uint32
	for _, a := range m.slots {
		n = max(n, a.end())
	}

	return n
}
