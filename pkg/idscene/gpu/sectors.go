package gpu

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/idscene"
)

// SectorVertex is one vertex of the shared floor and ceiling mesh.
// StorageIndex points at the SectorRecord of the owning sector.
type SectorVertex struct {
	Position     mgl32.Vec2
	StorageIndex uint32
}

// SectorRecord is the per-sector storage record.
type SectorRecord struct {
	FloorHeight   float32
	CeilingHeight float32
	CeilingImage  uint32
	FloorImage    uint32
	LightLevel    uint32
}

// SectorData mirrors sector entities. Records are updated in place; the
// mesh is rebuilt from every live sector whenever any geometry changes.
type SectorData struct {
	records  *RecordBuffer[SectorRecord]
	vertices *RecordBuffer[SectorVertex]
	indices  *RecordBuffer[uint32]

	slots   *slotMap
	byIndex map[int]uint32
	indexOf map[ecs.Entity]int

	images *imageResolver
	log    *slog.Logger

	vertexCount uint32
	indexCount  uint32
	rebuilds    int
}

func newSectorData(sub Substrate, o options, images *imageResolver) (*SectorData, error) {
	records, err := NewRecordBuffer[SectorRecord](sub, o.label+" sector records", o.capacity.Sectors, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sector records")
	}

	vertices, err := NewRecordBuffer[SectorVertex](sub, o.label+" sector vertices", o.capacity.SectorVertices, gputypes.BufferUsageVertex)
	if err != nil {
		records.Release()
		return nil, errors.Wrap(err, "failed to create sector vertices")
	}

	indices, err := NewRecordBuffer[uint32](sub, o.label+" sector indices", o.capacity.SectorIndices, gputypes.BufferUsageIndex)
	if err != nil {
		records.Release()
		vertices.Release()

		return nil, errors.Wrap(err, "failed to create sector indices")
	}

	return &SectorData{
		records:  records,
		vertices: vertices,
		indices:  indices,
		slots:    newSlotMap("sector", o.capacity.Sectors),
		byIndex:  make(map[int]uint32),
		indexOf:  make(map[ecs.Entity]int),
		images:   images,
		log:      o.logger,
	}, nil
}

// Think applies the change set of w.
func (d *SectorData) Think(w *idscene.World) error {
	changes := w.Changes()
	dirty := false

	for _, e := range changes.Removed() {
		if _, ok := d.slots.free(e); !ok {
			continue
		}

		if index, ok := d.indexOf[e]; ok {
			delete(d.byIndex, index)
			delete(d.indexOf, e)
		}

		dirty = true
	}

	for _, e := range changes.Spawned() {
		changed, err := d.update(w, e, true)
		if err != nil {
			return err
		}

		dirty = dirty || changed
	}

	for _, e := range changes.Changed() {
		changed, err := d.update(w, e, false)
		if err != nil {
			return err
		}

		dirty = dirty || changed
	}

	if dirty {
		return d.rebuild(w)
	}

	return nil
}

// update writes the record of e and reports whether its geometry changed.
// Entities without a Sector component are ignored.
func (d *SectorData) update(w *idscene.World, e ecs.Entity, spawned bool) (bool, error) {
	s, ok := w.Sectors.Get(e)
	if !ok {
		return false, nil
	}

	var slot Allocation

	if spawned {
		var err error

		slot, err = d.slots.allocate(e)
		if err != nil {
			return false, err
		}
	} else {
		slot = d.slots.slot(e)
	}

	d.byIndex[s.Index] = slot.Offset
	d.indexOf[e] = s.Index

	ceiling, hasCeiling := w.Textures.Get(e)
	floor, hasFloor := w.FloorTextures.Get(e)

	err := d.records.Write(slot.Offset, SectorRecord{
		FloorHeight:   float32(s.FloorHeight),
		CeilingHeight: float32(s.CeilingHeight),
		CeilingImage:  d.images.offset(ceiling, hasCeiling),
		FloorImage:    d.images.offset(floor, hasFloor),
		LightLevel:    uint32(s.LightLevel),
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to write sector %d", s.Index)
	}

	return spawned || s.Triangles.Changed(), nil
}

// rebuild regenerates the whole mesh. Editing the triangles of a single
// sector in place is not supported.
func (d *SectorData) rebuild(w *idscene.World) error {
	var (
		vertices []SectorVertex
		indices  []uint32
	)

	w.Sectors.Each(func(e ecs.Entity, s *idscene.Sector) bool {
		slot := d.slots.slot(e)

		for _, t := range s.Triangles.Get() {
			base := uint32(len(vertices))

			for _, p := range t.Points {
				vertices = append(vertices, SectorVertex{Position: p, StorageIndex: slot.Offset})
			}

			for _, i := range t.Indices {
				indices = append(indices, base+i)
			}
		}

		return true
	})

	if err := d.vertices.WriteAt(0, vertices); err != nil {
		return errors.Wrap(err, "failed to write sector vertices")
	}

	if err := d.indices.WriteAt(0, indices); err != nil {
		return errors.Wrap(err, "failed to write sector indices")
	}

	d.vertexCount = uint32(len(vertices))
	d.indexCount = uint32(len(indices))
	d.rebuilds++

	d.log.Debug("rebuilt sector mesh",
		slog.Int("sectors", d.slots.len()),
		slog.Int("vertices", len(vertices)),
		slog.Int("indices", len(indices)))

	return nil
}

// SlotForSectorIndex translates a level sector index into the record index
// walls and vertices refer to. Asking for an untracked sector panics.
func (d *SectorData) SlotForSectorIndex(index int) uint32 {
	slot, ok := d.byIndex[index]
	if !ok {
		panic(fmt.Sprintf("gpu: sector %d has no slot", index))
	}

	return slot
}

func (d *SectorData) Records() *RecordBuffer[SectorRecord]  { return d.records }
func (d *SectorData) Vertices() *RecordBuffer[SectorVertex] { return d.vertices }
func (d *SectorData) Indices() *RecordBuffer[uint32]        { return d.indices }

// IndexCount is the number of indices of the current mesh.
func (d *SectorData) IndexCount() uint32 {
	return d.indexCount
}

func (d *SectorData) VertexCount() uint32 {
	return d.vertexCount
}

// Rebuilds counts full mesh rebuilds.
func (d *SectorData) Rebuilds() int {
	return d.rebuilds
}

func (d *SectorData) Len() int {
	return d.slots.len()
}

func (d *SectorData) release() {
	d.records.Release()
	d.vertices.Release()
	d.indices.Release()
}
