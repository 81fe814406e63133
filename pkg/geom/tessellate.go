package geom

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/tchayen/triangolatte"
)

// ErrDegenerateShape is returned when a shape cannot be triangulated.
var ErrDegenerateShape = errors.New("degenerate polygon shape")

// Tessellate triangulates the shape. Holes are bridged into the outline and
// the result is ear-clipped, so the ring orientation of the input does not
// matter.
func (s PolygonShape) Tessellate() (Triangles, error) {
	if len(s.Polygon.Points) < 3 {
		return Triangles{}, errors.Wrapf(ErrDegenerateShape, "outline has %d points", len(s.Polygon.Points))
	}

	ccw := s.Polygon.SignedArea() > 0

	// clockwise outlines are tried first, then the mirror image
	tris, err := s.tessellateOriented(!ccw)
	if err == nil {
		return tris, nil
	}

	tris, retryErr := s.tessellateOriented(ccw)
	if retryErr != nil {
		return Triangles{}, err
	}

	return tris, nil
}

func (s PolygonShape) tessellateOriented(reverseOutline bool) (Triangles, error) {
	contours := make([][]triangolatte.Point, 0, len(s.Holes)+1)
	contours = append(contours, toPoints(s.Polygon, reverseOutline))

	outlineCCW := (s.Polygon.SignedArea() > 0) != reverseOutline

	for _, hole := range s.Holes {
		if len(hole.Points) < 3 {
			continue
		}

		// holes wind against the outline
		holeCCW := hole.SignedArea() > 0
		contours = append(contours, toPoints(hole, holeCCW == outlineCCW))
	}

	points := contours[0]

	if len(contours) > 1 {
		var err error

		points, err = triangolatte.JoinHoles(contours)
		if err != nil {
			return Triangles{}, errors.Wrap(err, "failed to join holes")
		}
	}

	coords, err := triangolatte.Polygon(points)
	if err != nil {
		return Triangles{}, errors.Wrap(err, "failed to triangulate")
	}

	if want := (len(points) - 2) * 6; len(coords) != want {
		return Triangles{}, errors.Wrapf(ErrDegenerateShape, "got %d triangles, expected %d", len(coords)/6, want/6)
	}

	return indexTriangles(coords), nil
}

func toPoints(p Polygon, reverse bool) []triangolatte.Point {
	out := make([]triangolatte.Point, len(p.Points))

	for i, v := range p.Points {
		j := i
		if reverse {
			j = len(p.Points) - 1 - i
		}

		out[j] = triangolatte.Point{X: float64(v.X()), Y: float64(v.Y())}
	}

	return out
}

// indexTriangles turns flat x,y triangle coordinates into an indexed list,
// sharing points with identical coordinates.
func indexTriangles(coords []float64) Triangles {
	var (
		tris  Triangles
		index = make(map[mgl32.Vec2]uint32)
	)

	for i := 0; i+1 < len(coords); i += 2 {
		p := mgl32.Vec2{float32(coords[i]), float32(coords[i+1])}

		idx, ok := index[p]
		if !ok {
			idx = uint32(len(tris.Points))
			index[p] = idx
			tris.Points = append(tris.Points, p)
		}

		tris.Indices = append(tris.Indices, idx)
	}

	return tris
}
