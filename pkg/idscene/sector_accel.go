package idscene

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/geom"
	"github.com/saiko-tech/idscene/pkg/geom/collision"
)

// SectorAccel finds the sector containing a point. It is built once after
// the sectors are spawned and is read-only afterwards, so any number of
// goroutines may query it as long as the sector geometry is left alone.
type SectorAccel struct {
	bvh     *collision.BVH[ecs.Entity]
	sectors *ecs.Store[Sector]
}

// NewSectorAccel indexes the bounding box of every sector. Sectors without
// triangles have no valid box; they are logged and left out.
func NewSectorAccel(sectors *ecs.Store[Sector], log *slog.Logger) *SectorAccel {
	items := make([]collision.Item[ecs.Entity], 0, sectors.Len())

	sectors.Each(func(e ecs.Entity, s *Sector) bool {
		b := s.Bounds()
		if !b.IsValid() {
			log.Warn("sector has invalid bounding box", slog.Int("sector", s.Index), slog.String("entity", e.String()))
			return true
		}

		items = append(items, collision.Item[ecs.Entity]{Bounds: b, Value: e})

		return true
	})

	return &SectorAccel{
		bvh:     collision.Build(items),
		sectors: sectors,
	}
}

// Query returns the first sector whose triangles contain p. Bounding boxes
// only select candidates.
func (a *SectorAccel) Query(p mgl32.Vec2) (ecs.Entity, bool) {
	var (
		found ecs.Entity
		ok    bool
	)

	a.bvh.ForEachOverlap(geom.PointBounds(p), func(item collision.Item[ecs.Entity]) bool {
		s, exists := a.sectors.Get(item.Value)
		if !exists || !s.HasPoint(p) {
			return true
		}

		found, ok = item.Value, true

		return false
	})

	return found, ok
}

// Len returns the number of indexed sectors.
func (a *SectorAccel) Len() int {
	return a.bvh.Len()
}

// FloorHeight returns the floor height of the sector containing p.
func (a *SectorAccel) FloorHeight(p mgl32.Vec2) (int16, bool) {
	e, ok := a.Query(p)
	if !ok {
		return 0, false
	}

	s, _ := a.sectors.Get(e)

	return s.FloorHeight, true
}
