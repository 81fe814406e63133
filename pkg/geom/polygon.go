package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Polygon is a closed ring of points. The last point connects back to the first.
type Polygon struct {
	Points []mgl32.Vec2
}

func (p Polygon) Bounds() Bounds {
	return BoundsOf(p.Points)
}

// SignedArea is positive for counter-clockwise rings in a y-up frame.
func (p Polygon) SignedArea() float32 {
	var sum float32

	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		sum += a.X()*b.Y() - b.X()*a.Y()
	}

	return sum / 2
}

// HasPoint reports whether point lies strictly inside p.
// Points on an edge or vertex may go either way; callers treat that as outside.
func (p Polygon) HasPoint(point mgl32.Vec2) bool {
	return PointInPolygon(point, p.Points)
}

// IsInside reports whether every point of p lies inside other.
func (p Polygon) IsInside(other Polygon) bool {
	for _, point := range p.Points {
		if !other.HasPoint(point) {
			return false
		}
	}

	return true
}

// PointInPolygon is a crossing-number test. Doom geometry is full of holes
// that share vertices with their outline, so boundary points are answered
// with false rather than guessed.
func PointInPolygon(point mgl32.Vec2, polygon []mgl32.Vec2) bool {
	if len(polygon) < 3 {
		return false
	}

	k := 0

	for i, p := range polygon {
		next := polygon[(i+1)%len(polygon)]

		v1 := p.Y() - point.Y()
		v2 := next.Y() - point.Y()

		if (v1 < 0 && v2 < 0) || (v1 > 0 && v2 > 0) {
			continue
		}

		u1 := p.X() - point.X()
		u2 := next.X() - point.X()

		switch {
		case v2 > 0 && v1 <= 0:
			f := u1*v2 - u2*v1
			if f > 0 {
				k++
			} else if f == 0 {
				return false
			}
		case v1 > 0 && v2 <= 0:
			f := u1*v2 - u2*v1
			if f < 0 {
				k++
			} else if f == 0 {
				return false
			}
		case v2 == 0 && v1 < 0:
			if u1*v2-u2*v1 == 0 {
				return false
			}
		case v1 == 0 && v2 < 0:
			if u1*v2-u2*v1 == 0 {
				return false
			}
		case v1 == 0 && v2 == 0:
			if u2 <= 0 && u1 >= 0 {
				return false
			} else if u1 <= 0 && u2 >= 0 {
				return false
			}
		}
	}

	return k%2 != 0
}
