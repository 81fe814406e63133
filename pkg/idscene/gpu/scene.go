package gpu

import (
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/idscene"
)

// Scene owns the buffers of one World. Think must run once per tick,
// between World.Think and World.ThinkEnd.
type Scene struct {
	Sectors *SectorData
	Walls   *WallData
	Things  *ThingData

	uniforms *RecordBuffer[idscene.CVarUniforms]
	images   *imageResolver
	log      *slog.Logger
	ticks    int
}

// NewScene creates every buffer up front. images may be nil, in which case
// only the sky resolves.
func NewScene(sub Substrate, images ImageLookup, opts ...Option) (*Scene, error) {
	o := buildOptions(opts)
	resolver := newImageResolver(images, o.logger)

	sectors, err := newSectorData(sub, o, resolver)
	if err != nil {
		return nil, err
	}

	walls, err := newWallData(sub, o, resolver)
	if err != nil {
		sectors.release()
		return nil, err
	}

	things, err := newThingData(sub, o, resolver)
	if err != nil {
		sectors.release()
		walls.release()

		return nil, err
	}

	uniforms, err := NewRecordBuffer[idscene.CVarUniforms](sub, o.label+" uniforms", 1, gputypes.BufferUsageUniform)
	if err != nil {
		sectors.release()
		walls.release()
		things.release()

		return nil, errors.Wrap(err, "failed to create uniforms")
	}

	return &Scene{
		Sectors:  sectors,
		Walls:    walls,
		Things:   things,
		uniforms: uniforms,
		images:   resolver,
		log:      o.logger,
	}, nil
}

// Think drains the change set of w into the buffers. Sectors go first so
// walls can translate sector indices.
func (s *Scene) Think(w *idscene.World) error {
	if err := s.Sectors.Think(w); err != nil {
		return errors.Wrap(err, "failed to update sectors")
	}

	if err := s.Walls.Think(w, s.Sectors); err != nil {
		return errors.Wrap(err, "failed to update walls")
	}

	if err := s.Things.Think(w); err != nil {
		return errors.Wrap(err, "failed to update things")
	}

	if err := s.uniforms.Write(0, w.CVars.Uniforms()); err != nil {
		return errors.Wrap(err, "failed to update uniforms")
	}

	s.ticks++

	return nil
}

// Uniforms holds the render cvars.
func (s *Scene) Uniforms() *RecordBuffer[idscene.CVarUniforms] {
	return s.uniforms
}

// Stats summarizes the scene.
type Stats struct {
	Ticks         int
	Sectors       int
	Walls         int
	Things        int
	MeshVertices  uint32
	MeshIndices   uint32
	MeshRebuilds  int
	MissingImages int
}

func (s *Scene) Stats() Stats {
	return Stats{
		Ticks:         s.ticks,
		Sectors:       s.Sectors.Len(),
		Walls:         s.Walls.Len(),
		Things:        s.Things.Len(),
		MeshVertices:  s.Sectors.VertexCount(),
		MeshIndices:   s.Sectors.IndexCount(),
		MeshRebuilds:  s.Sectors.Rebuilds(),
		MissingImages: s.images.missingCount(),
	}
}

// LogValue makes Stats loggable as a group.
func (st Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ticks", st.Ticks),
		slog.Int("sectors", st.Sectors),
		slog.Int("walls", st.Walls),
		slog.Int("things", st.Things),
		slog.Any("mesh_vertices", st.MeshVertices),
		slog.Any("mesh_indices", st.MeshIndices),
		slog.Int("mesh_rebuilds", st.MeshRebuilds),
		slog.Int("missing_images", st.MissingImages))
}

// Release destroys every buffer of the scene.
func (s *Scene) Release() {
	s.Sectors.release()
	s.Walls.release()
	s.Things.release()
	s.uniforms.Release()

	s.log.Debug("released scene buffers", slog.Int("ticks", s.ticks))
}
