// Package collision provides a static bounding volume hierarchy over 2D boxes.
package collision

import (
	"sort"

	"github.com/saiko-tech/idscene/pkg/geom"
)

const maxLeafItems = 4

// Item is a value stored in the tree together with its bounds.
type Item[T any] struct {
	Bounds geom.Bounds
	Value  T
}

type node struct {
	bounds geom.Bounds
	// children index into nodes, or into items when negative (-i-1 for the
	// first item, count in leafCount)
	left, right int32
	leafCount   int32
}

// BVH is an immutable bounding volume hierarchy.
// It is safe for concurrent queries once built.
type BVH[T any] struct {
	nodes []node
	items []Item[T]
}

// Build constructs a tree over items. Items with invalid bounds must be
// filtered out by the caller; they would never match a query anyway.
func Build[T any](items []Item[T]) *BVH[T] {
	t := &BVH[T]{
		items: append([]Item[T](nil), items...),
	}

	if len(t.items) > 0 {
		t.nodes = make([]node, 0, 2*len(t.items)/maxLeafItems+1)
		t.build(0, len(t.items))
	}

	return t
}

func (t *BVH[T]) build(start, end int) int32 {
	b := geom.EmptyBounds()
	for _, it := range t.items[start:end] {
		b = b.Union(it.Bounds)
	}

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{bounds: b})

	if end-start <= maxLeafItems {
		t.nodes[idx].left = -int32(start) - 1
		t.nodes[idx].leafCount = int32(end - start)

		return idx
	}

	// split at the median of the longer axis
	axis := 0
	if size := b.Size(); size.Y() > size.X() {
		axis = 1
	}

	span := t.items[start:end]
	sort.SliceStable(span, func(i, j int) bool {
		return span[i].Bounds.Center()[axis] < span[j].Bounds.Center()[axis]
	})

	mid := start + (end-start)/2
	left := t.build(start, mid)
	right := t.build(mid, end)

	t.nodes[idx].left = left
	t.nodes[idx].right = right

	return idx
}

// Len returns the number of items in the tree.
func (t *BVH[T]) Len() int {
	return len(t.items)
}

// Bounds returns the union of all item bounds.
func (t *BVH[T]) Bounds() geom.Bounds {
	if len(t.nodes) == 0 {
		return geom.EmptyBounds()
	}

	return t.nodes[0].bounds
}

// ForEachOverlap calls fn for every item whose bounds overlap query until fn
// returns false.
func (t *BVH[T]) ForEachOverlap(query geom.Bounds, fn func(item Item[T]) bool) {
	if len(t.nodes) == 0 {
		return
	}

	stack := []int32{0}

	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !n.bounds.Overlaps(query) {
			continue
		}

		if n.leafCount > 0 {
			first := int(-n.left - 1)

			for _, it := range t.items[first : first+int(n.leafCount)] {
				if it.Bounds.Overlaps(query) && !fn(it) {
					return
				}
			}

			continue
		}

		stack = append(stack, n.right, n.left)
	}
}

// Overlapping collects every item value whose bounds overlap query.
func (t *BVH[T]) Overlapping(query geom.Bounds) []T {
	var out []T

	t.ForEachOverlap(query, func(it Item[T]) bool {
		out = append(out, it.Value)
		return true
	})

	return out
}
