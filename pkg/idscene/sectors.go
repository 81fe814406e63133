package idscene

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/geom"
	"github.com/saiko-tech/idscene/pkg/wad"
)

// TessellationError is returned when a sector's geometry cannot be
// triangulated. Polygon is the outline of the offending shape.
type TessellationError struct {
	Sector  int
	Shape   int
	Polygon []mgl32.Vec2
	Err     error
}

func (e TessellationError) Error() string {
	return fmt.Sprintf("failed to tessellate shape %d of sector %d (%d points): %v", e.Shape, e.Sector, len(e.Polygon), e.Err)
}

func (e TessellationError) Unwrap() error {
	return e.Err
}

// sectorBuild is the result of building one sector off the entity store.
type sectorBuild struct {
	ok bool

	sector  Sector
	ceiling TextureRef
	floor   TextureRef

	hasCeiling bool
	hasFloor   bool
}

// sectorEdges lists, per sector, the segments of every linedef touching one
// of its sidedefs. Linedefs with both sides in the same sector appear twice.
func sectorEdges(m *wad.Map) [][][2]mgl32.Vec2 {
	linedefsBySidedef := make([][]int, len(m.Sidedefs))

	for i, l := range m.Linedefs {
		if s, ok := l.LeftSidedef(); ok {
			linedefsBySidedef[s] = append(linedefsBySidedef[s], i)
		}

		if s, ok := l.RightSidedef(); ok {
			linedefsBySidedef[s] = append(linedefsBySidedef[s], i)
		}
	}

	edges := make([][][2]mgl32.Vec2, len(m.Sectors))

	for s, side := range m.Sidedefs {
		for _, li := range linedefsBySidedef[s] {
			l := m.Linedefs[li]
			start := m.Vertices[l.StartVertex]
			end := m.Vertices[l.EndVertex]

			edges[side.Sector] = append(edges[side.Sector], [2]mgl32.Vec2{
				{float32(start.X), float32(start.Y)},
				{float32(end.X), float32(end.Y)},
			})
		}
	}

	return edges
}

// buildSectors triangulates every sector in parallel. Results keep the order
// of the SECTORS lump; the first failure aborts the whole build.
func buildSectors(m *wad.Map, workers int, log *slog.Logger) ([]sectorBuild, error) {
	edges := sectorEdges(m)
	builds := make([]sectorBuild, len(m.Sectors))

	var g errgroup.Group

	g.SetLimit(workers)

	for i := range m.Sectors {
		if len(edges[i]) == 0 {
			log.Warn("sector has no sidedefs", slog.Int("sector", i))
			continue
		}

		g.Go(func() error {
			b, err := buildSector(i, m.Sectors[i], edges[i])
			if err != nil {
				return err
			}

			builds[i] = b

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var tessErr TessellationError
		if errors.As(err, &tessErr) {
			log.Error("failed to tessellate sector",
				slog.Int("sector", tessErr.Sector),
				slog.Int("shape", tessErr.Shape),
				slog.Any("polygon", tessErr.Polygon))
		}

		return nil, err
	}

	return builds, nil
}

func buildSector(index int, rec wad.Sector, edges [][2]mgl32.Vec2) (sectorBuild, error) {
	gb := geom.NewGraphBuilder()
	for _, e := range edges {
		gb.AddSegment(e[0], e[1])
	}

	shapes := geom.ComposeShapes(gb.Graph().DetectPolygons())

	triangles := make([]geom.Triangles, 0, len(shapes))

	for si, shape := range shapes {
		tris, err := shape.Tessellate()
		if err != nil {
			return sectorBuild{}, TessellationError{
				Sector:  index,
				Shape:   si,
				Polygon: shape.Polygon.Points,
				Err:     err,
			}
		}

		triangles = append(triangles, tris)
	}

	b := sectorBuild{
		ok: true,
		sector: Sector{
			Index:         index,
			Triangles:     ecs.NewTracked(triangles),
			FloorHeight:   rec.FloorHeight,
			CeilingHeight: rec.CeilingHeight,
			LightLevel:    rec.LightLevel,
			SpecialType:   rec.SpecialType,
			Tag:           rec.Tag,
		},
	}

	b.ceiling, b.hasCeiling = flatRef(rec.CeilingFlat)
	b.floor, b.hasFloor = flatRef(rec.FloorFlat)

	return b, nil
}

func (b sectorBuild) animated(anims *AnimationStateMap) bool {
	return (b.hasCeiling && anims.Contains(b.ceiling)) || (b.hasFloor && anims.Contains(b.floor))
}

// spawnSectors builds and spawns one entity per sector that has geometry.
func (w *World) spawnSectors(workers int) error {
	builds, err := buildSectors(w.Map, workers, w.log)
	if err != nil {
		return errors.Wrap(err, "failed to build sectors")
	}

	for _, b := range builds {
		if !b.ok {
			continue
		}

		e := w.spawn()

		w.Sectors.Set(e, b.sector)

		if b.hasCeiling {
			w.Textures.Set(e, b.ceiling)
		}

		if b.hasFloor {
			w.FloorTextures.Set(e, b.floor)
		}

		if b.animated(w.Animations) {
			w.Animated.Set(e, struct{}{})
		}
	}

	return nil
}
