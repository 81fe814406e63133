package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

type winding int

const (
	clockwise winding = iota
	counterClockwise
)

// MinimumCycleBasis returns the closed loops of g as ordered vertex index
// lists. g is not modified.
//
// Loops are extracted starting from the lowest (x, then y) vertex still in
// play. The first step from a fresh vertex picks the most clockwise turn
// relative to straight down, every later step the most counter-clockwise turn.
// After each walk its first edge is removed and any dangling filaments left
// behind are retired. Loops of fewer than three vertices are discarded.
// Graphs with fewer than three vertices have no loops.
func MinimumCycleBasis(g *Graph) [][]int {
	if len(g.Vertices) < 3 {
		return nil
	}

	w := cycleWalker{
		vertices:    g.Vertices,
		adjacency:   make([][]int, len(g.adjacency)),
		gravestones: make([]bool, len(g.Vertices)),
	}

	for i, adj := range g.adjacency {
		w.adjacency[i] = append([]int(nil), adj...)
	}

	var cycles [][]int

	for {
		v := w.smallestVertex()
		if v == 0 && w.gravestones[0] {
			break
		}

		walk := reduceWalk(w.closedWalkFrom(v))
		if len(walk) < 2 {
			w.gravestones[v] = true
			continue
		}

		w.removeEdge(walk[0], walk[1])
		w.removeFilamentAt(walk[0])
		w.removeFilamentAt(walk[1])

		if len(walk) > 2 {
			cycles = append(cycles, walk)
		}
	}

	return cycles
}

type cycleWalker struct {
	vertices    []mgl32.Vec2
	adjacency   [][]int
	gravestones []bool
}

// smallestVertex returns the live vertex with the lowest x, ties broken by y.
// It returns 0 when every vertex is retired.
func (w *cycleWalker) smallestVertex() int {
	best := 0

	for i, p := range w.vertices {
		if w.gravestones[i] {
			continue
		}

		if w.gravestones[best] {
			best = i
			continue
		}

		q := w.vertices[best]
		if p.X() < q.X() || (p.X() == q.X() && p.Y() < q.Y()) {
			best = i
		}
	}

	return best
}

// closedWalkFrom follows the winding rule from v until it gets back to v.
// A walk that revisits any other vertex is abandoned and returned empty.
func (w *cycleWalker) closedWalkFrom(v int) []int {
	var (
		walk []int
		prev = -1
		curr = v
	)

	for {
		if curr != v && contains(walk, curr) {
			return nil
		}

		walk = append(walk, curr)
		next := w.next(curr, prev)
		prev, curr = curr, next

		if curr == v {
			return walk
		}
	}
}

func (w *cycleWalker) next(curr, prev int) int {
	adj := w.adjacency[curr]
	if len(adj) == 1 {
		return adj[0]
	}

	dir := clockwise
	if prev >= 0 {
		dir = counterClockwise
	}

	return w.bestByWinding(prev, curr, dir)
}

// bestByWinding picks the neighbour of curr (never prev) turning furthest in
// dir. Without a previous vertex the incoming direction is straight down.
func (w *cycleWalker) bestByWinding(prev, curr int, dir winding) int {
	pCurr := w.vertices[curr]

	dCurr := mgl32.Vec2{0, -1}
	if prev >= 0 {
		dCurr = pCurr.Sub(w.vertices[prev])
	}

	best := curr

	for _, v := range w.adjacency[curr] {
		if v == prev {
			continue
		}

		if best == curr || betterByWinding(w.vertices[v], w.vertices[best], pCurr, dCurr, dir) {
			best = v
		}
	}

	return best
}

// betterByWinding reports whether candidate turns further in dir than soFar
// when leaving curr along dCurr.
func betterByWinding(candidate, soFar, curr, dCurr mgl32.Vec2, dir winding) bool {
	d := candidate.Sub(curr)
	dSoFar := soFar.Sub(curr)

	convex := dSoFar.Dot(dCurr) > 0
	curr2v := perpDot(dCurr, d)
	soFar2v := perpDot(dSoFar, d)

	if dir == clockwise {
		return (convex && (curr2v >= 0 || soFar2v >= 0)) ||
			(!convex && curr2v >= 0 && soFar2v >= 0)
	}

	return (!convex && (curr2v < 0 || soFar2v < 0)) ||
		(convex && curr2v < 0 && soFar2v < 0)
}

func perpDot(a, b mgl32.Vec2) float32 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// reduceWalk drops the interior of any sub-loop the walk revisits.
func reduceWalk(walk []int) []int {
	for i := 1; i < len(walk); i++ {
		dup := lastIndex(walk, walk[i])
		if dup > i {
			walk = append(walk[:i+1], walk[dup:]...)
		}
	}

	return walk
}

func (w *cycleWalker) removeEdge(a, b int) {
	w.adjacency[a] = without(w.adjacency[a], b)
	w.adjacency[b] = without(w.adjacency[b], a)
}

// removeFilamentAt retires v and the dangling chain it starts, if any.
func (w *cycleWalker) removeFilamentAt(v int) {
	curr := v

	for len(w.adjacency[curr]) < 2 {
		w.gravestones[curr] = true

		if len(w.adjacency[curr]) != 1 {
			return
		}

		next := w.adjacency[curr][0]
		w.removeEdge(curr, next)
		curr = next
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}

	return false
}

func lastIndex(s []int, v int) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return i
		}
	}

	return -1
}

func without(s []int, v int) []int {
	out := s[:0]

	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}

	return out
}
