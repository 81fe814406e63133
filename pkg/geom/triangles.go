package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Triangles is an indexed triangle list. Indices come in groups of three.
type Triangles struct {
	Points  []mgl32.Vec2
	Indices []uint32
}

func (t Triangles) Bounds() Bounds {
	return BoundsOf(t.Points)
}

// HasPoint reports whether any triangle contains point.
func (t Triangles) HasPoint(point mgl32.Vec2) bool {
	for i := 0; i+2 < len(t.Indices); i += 3 {
		a := t.Points[t.Indices[i]]
		b := t.Points[t.Indices[i+1]]
		c := t.Points[t.Indices[i+2]]

		if PointInTriangle(point, a, b, c) {
			return true
		}
	}

	return false
}

// PointInTriangle is a barycentric containment test, edges inclusive.
// Degenerate triangles never contain anything.
func PointInTriangle(point, a, b, c mgl32.Vec2) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := point.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	invDenom := 1 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return u >= 0 && v >= 0 && u+v <= 1
}
