// Package geom turns Doom sector outlines into drawable triangle meshes.
//
// A sector arrives as an unordered bag of line segments. Graph collects them,
// MinimumCycleBasis extracts the closed loops, ComposeShapes nests the loops
// into outlines with holes and PolygonShape.Tessellate triangulates each one.
package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Graph is an undirected planar graph.
// Neighbours are kept in edge insertion order; the cycle walk depends on it
// when two candidates wind equally.
type Graph struct {
	Vertices  []mgl32.Vec2
	adjacency [][]int
}

// NewGraph creates a graph over vertices with the given undirected edges.
// Edges referencing vertices out of range panic.
func NewGraph(vertices []mgl32.Vec2, edges [][2]int) *Graph {
	g := &Graph{
		Vertices:  vertices,
		adjacency: make([][]int, len(vertices)),
	}

	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}

	return g
}

// AddEdge connects a and b. Repeated edges are kept.
func (g *Graph) AddEdge(a, b int) {
	g.adjacency[a] = append(g.adjacency[a], b)
	g.adjacency[b] = append(g.adjacency[b], a)
}

// Neighbours returns the vertices adjacent to v in insertion order.
func (g *Graph) Neighbours(v int) []int {
	return g.adjacency[v]
}

// GraphBuilder assembles a Graph from segments, merging endpoints that share
// exact coordinates.
type GraphBuilder struct {
	vertices []mgl32.Vec2
	index    map[mgl32.Vec2]int
	edges    [][2]int
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		index: make(map[mgl32.Vec2]int),
	}
}

// AddVertex returns the index of p, inserting it if unseen.
func (b *GraphBuilder) AddVertex(p mgl32.Vec2) int {
	if i, ok := b.index[p]; ok {
		return i
	}

	i := len(b.vertices)
	b.vertices = append(b.vertices, p)
	b.index[p] = i

	return i
}

func (b *GraphBuilder) AddSegment(start, end mgl32.Vec2) {
	b.edges = append(b.edges, [2]int{b.AddVertex(start), b.AddVertex(end)})
}

func (b *GraphBuilder) Graph() *Graph {
	return NewGraph(b.vertices, b.edges)
}

// DetectPolygons extracts every closed loop of g as a polygon.
func (g *Graph) DetectPolygons() []Polygon {
	cycles := MinimumCycleBasis(g)
	polygons := make([]Polygon, 0, len(cycles))

	for _, cycle := range cycles {
		points := make([]mgl32.Vec2, len(cycle))
		for i, v := range cycle {
			points[i] = g.Vertices[v]
		}

		polygons = append(polygons, Polygon{Points: points})
	}

	return polygons
}
