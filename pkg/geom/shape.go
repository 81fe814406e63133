package geom

// PolygonShape is an outline with zero or more holes cut out of it.
type PolygonShape struct {
	Polygon Polygon
	Holes   []Polygon
}

type shapeNode struct {
	holes []int
}

// ComposeShapes nests polygons by containment and returns one shape per
// outline. Loops at odd depth become holes of their parent; loops at even
// depth (islands inside holes) start shapes of their own.
func ComposeShapes(polygons []Polygon) []PolygonShape {
	nodes := make([]shapeNode, len(polygons))
	isHole := make([]bool, len(polygons))

	for i, candidate := range polygons {
		for j := range polygons {
			if i == j {
				continue
			}

			if k, ok := innermostContainer(nodes, polygons, j, candidate); ok {
				nodes[k].holes = append(nodes[k].holes, i)
				isHole[i] = true

				break
			}
		}
	}

	var shapes []PolygonShape

	for i := range nodes {
		if !isHole[i] {
			shapes = collectShapes(nodes, polygons, i, 0, shapes)
		}
	}

	return shapes
}

// innermostContainer descends from index into its known holes and returns the
// deepest polygon containing candidate.
func innermostContainer(nodes []shapeNode, polygons []Polygon, index int, candidate Polygon) (int, bool) {
	if !candidate.IsInside(polygons[index]) {
		return 0, false
	}

	for _, hole := range nodes[index].holes {
		if k, ok := innermostContainer(nodes, polygons, hole, candidate); ok {
			return k, true
		}
	}

	return index, true
}

func collectShapes(nodes []shapeNode, polygons []Polygon, index, depth int, out []PolygonShape) []PolygonShape {
	node := nodes[index]

	if depth%2 == 0 {
		holes := make([]Polygon, len(node.holes))
		for i, h := range node.holes {
			holes[i] = polygons[h]
		}

		out = append(out, PolygonShape{
			Polygon: polygons[index],
			Holes:   holes,
		})
	}

	for _, hole := range node.holes {
		out = collectShapes(nodes, polygons, hole, depth+1, out)
	}

	return out
}
