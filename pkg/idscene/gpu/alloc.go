package gpu

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Allocation is a range of records inside a buffer.
type Allocation struct {
	Offset uint32
	Size   uint32
}

func (a Allocation) end() uint32 {
	return a.Offset + a.Size
}

// Allocator hands out ranges of a fixed-size array. It is first-fit over a
// free list sorted by offset, and neighbouring free ranges are merged, so
// freed ranges are reused lowest offset first.
type Allocator struct {
	capacity uint32
	used     uint32
	free     []Allocation
}

func NewAllocator(capacity uint32) *Allocator {
	a := &Allocator{capacity: capacity}
	if capacity > 0 {
		a.free = []Allocation{{Offset: 0, Size: capacity}}
	}

	return a
}

// Allocate reserves size consecutive records.
func (a *Allocator) Allocate(size uint32) (Allocation, error) {
	if size == 0 {
		return Allocation{}, errors.Wrap(ErrInvalidBufferSize, "allocation of 0 records")
	}

	for i, f := range a.free {
		if f.Size < size {
			continue
		}

		alloc := Allocation{Offset: f.Offset, Size: size}

		if f.Size == size {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = Allocation{Offset: f.Offset + size, Size: f.Size - size}
		}

		a.used += size

		return alloc, nil
	}

	return Allocation{}, errors.Wrapf(ErrOutOfSpace, "no range of %d records (%d of %d used)", size, a.used, a.capacity)
}

// Free returns alloc to the allocator. Freeing a range that is not fully
// allocated corrupts the free list and panics.
func (a *Allocator) Free(alloc Allocation) {
	if alloc.Size == 0 || alloc.end() > a.capacity || alloc.end() < alloc.Offset {
		panic(fmt.Sprintf("gpu: free of invalid range %+v (capacity %d)", alloc, a.capacity))
	}

	i := sort.Search(len(a.free), func(i int) bool {
		return a.free[i].Offset >= alloc.Offset
	})

	if (i > 0 && a.free[i-1].end() > alloc.Offset) || (i < len(a.free) && alloc.end() > a.free[i].Offset) {
		panic(fmt.Sprintf("gpu: double free of range %+v", alloc))
	}

	a.used -= alloc.Size

	mergePrev := i > 0 && a.free[i-1].end() == alloc.Offset
	mergeNext := i < len(a.free) && alloc.end() == a.free[i].Offset

	switch {
	case mergePrev && mergeNext:
		a.free[i-1].Size += alloc.Size + a.free[i].Size
		a.free = append(a.free[:i], a.free[i+1:]...)
	case mergePrev:
		a.free[i-1].Size += alloc.Size
	case mergeNext:
		a.free[i] = Allocation{Offset: alloc.Offset, Size: alloc.Size + a.free[i].Size}
	default:
		a.free = append(a.free, Allocation{})
		copy(a.free[i+1:], a.free[i:])
		a.free[i] = alloc
	}
}

func (a *Allocator) Capacity() uint32 {
	return a.capacity
}

// Used returns the number of allocated records.
func (a *Allocator) Used() uint32 {
	return a.used
}

// FreeRanges returns the number of disjoint free ranges.
func (a *Allocator) FreeRanges() int {
	return len(a.free)
}
