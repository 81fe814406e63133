package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestMinimumCycleBasis(t *testing.T) {
	t.Parallel()

	square := []mgl32.Vec2{{-10, -10}, {-10, 10}, {10, -10}, {10, 10}}

	tests := []struct {
		name     string
		vertices []mgl32.Vec2
		edges    [][2]int
		expected [][]int
	}{
		{
			name:     "too few vertices",
			vertices: []mgl32.Vec2{{0, 0}, {1, 0}},
			edges:    [][2]int{{0, 1}},
			expected: nil,
		},
		{
			name:     "square",
			vertices: square,
			edges:    [][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}},
			expected: [][]int{{0, 1, 3, 2}},
		},
		{
			name: "square in square joined by a filament",
			vertices: append(append([]mgl32.Vec2{}, square...),
				mgl32.Vec2{-5, -5}, mgl32.Vec2{-5, 5}, mgl32.Vec2{5, -5}, mgl32.Vec2{5, 5}),
			edges: [][2]int{
				{0, 1}, {1, 3}, {3, 2}, {2, 0},
				{4, 5}, {5, 7}, {7, 6}, {6, 4},
				{0, 4},
			},
			expected: [][]int{{0, 1, 3, 2}, {4, 5, 7, 6}},
		},
		{
			name:     "square split by a diagonal",
			vertices: square,
			edges:    [][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}, {0, 3}},
			expected: [][]int{{0, 1, 3}, {0, 3, 2}},
		},
		{
			name:     "square with a dangling line",
			vertices: append(append([]mgl32.Vec2{}, square...), mgl32.Vec2{20, 20}),
			edges:    [][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}, {3, 4}},
			expected: [][]int{{0, 1, 3, 2}},
		},
		{
			name:     "open chain",
			vertices: []mgl32.Vec2{{0, 0}, {1, 0}, {2, 1}},
			edges:    [][2]int{{0, 1}, {1, 2}},
			expected: nil,
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			g := NewGraph(test.vertices, test.edges)
			assert.Equalf(t, test.expected, MinimumCycleBasis(g), "unexpected cycles for %s", test.name)
		})
	}
}

func TestMinimumCycleBasisKeepsGraph(t *testing.T) {
	t.Parallel()

	g := NewGraph([]mgl32.Vec2{{0, 0}, {0, 1}, {1, 0}}, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	MinimumCycleBasis(g)

	assert.Equal(t, []int{1, 2}, g.Neighbours(0))
	assert.Equal(t, []int{0, 2}, g.Neighbours(1))
}

func TestGraphBuilderMergesEndpoints(t *testing.T) {
	t.Parallel()

	b := NewGraphBuilder()
	b.AddSegment(mgl32.Vec2{0, 0}, mgl32.Vec2{0, 64})
	b.AddSegment(mgl32.Vec2{0, 64}, mgl32.Vec2{64, 0})
	b.AddSegment(mgl32.Vec2{64, 0}, mgl32.Vec2{0, 0})

	g := b.Graph()
	assert.Len(t, g.Vertices, 3)

	polygons := g.DetectPolygons()
	assert.Len(t, polygons, 1)
	assert.Len(t, polygons[0].Points, 3)
}
