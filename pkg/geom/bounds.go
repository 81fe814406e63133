package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is a 2D axis-aligned bounding box.
type Bounds struct {
	Min, Max mgl32.Vec2
}

// EmptyBounds returns an inverted box that the first Extend call overwrites.
func EmptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec2{mgl32.MaxValue, mgl32.MaxValue},
		Max: mgl32.Vec2{-mgl32.MaxValue, -mgl32.MaxValue},
	}
}

// PointBounds returns a zero-area box at p.
func PointBounds(p mgl32.Vec2) Bounds {
	return Bounds{Min: p, Max: p}
}

// BoundsOf returns the extents of points.
// The result is invalid (see IsValid) when points is empty.
func BoundsOf(points []mgl32.Vec2) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b = b.Extend(p)
	}

	return b
}

func (b Bounds) Extend(p mgl32.Vec2) Bounds {
	for i := 0; i < 2; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}

		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}

	return b
}

func (b Bounds) Union(other Bounds) Bounds {
	return b.Extend(other.Min).Extend(other.Max)
}

// IsValid reports whether Min <= Max on both axes.
func (b Bounds) IsValid() bool {
	return b.Min.X() <= b.Max.X() && b.Min.Y() <= b.Max.Y()
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p mgl32.Vec2) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y()
}

// Overlaps reports whether b and other share at least one point.
func (b Bounds) Overlaps(other Bounds) bool {
	return b.Min.X() <= other.Max.X() && b.Max.X() >= other.Min.X() &&
		b.Min.Y() <= other.Max.Y() && b.Max.Y() >= other.Min.Y()
}

func (b Bounds) Center() mgl32.Vec2 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Size() mgl32.Vec2 {
	return b.Max.Sub(b.Min)
}
