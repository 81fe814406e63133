package gpu

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/idscene"
)

// NoBackSector is the back sector of one-sided walls.
const NoBackSector = math.MaxUint32

// WallRecord is the per-wall instance record. Sector and BackSector are
// sector record indices, not level sector indices.
type WallRecord struct {
	Kind       uint32
	Start      mgl32.Vec2
	End        mgl32.Vec2
	Sector     uint32
	BackSector uint32
	Image      uint32
	XOffset    float32
	YOffset    float32
	Flags      uint32
}

// WallData mirrors wall entities into an instance array.
type WallData struct {
	records *RecordBuffer[WallRecord]
	quad    *RecordBuffer[mgl32.Vec2]
	slots   *slotMap
	images  *imageResolver
}

func newWallData(sub Substrate, o options, images *imageResolver) (*WallData, error) {
	records, err := NewRecordBuffer[WallRecord](sub, o.label+" wall records", o.capacity.Walls, gputypes.BufferUsageStorage|gputypes.BufferUsageVertex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create wall records")
	}

	quad, err := newQuadBuffer(sub, o.label+" wall quad")
	if err != nil {
		records.Release()
		return nil, errors.Wrap(err, "failed to create wall quad")
	}

	return &WallData{
		records: records,
		quad:    quad,
		slots:   newSlotMap("wall", o.capacity.Walls),
		images:  images,
	}, nil
}

// Think applies the change set of w. Sector indices are translated through
// sectors, which must have seen this tick already.
func (d *WallData) Think(w *idscene.World, sectors *SectorData) error {
	changes := w.Changes()

	// freed slots stay inside the instance range; a zero record is a
	// degenerate quad
	for _, e := range changes.Removed() {
		slot, ok := d.slots.free(e)
		if !ok {
			continue
		}

		if err := d.records.Write(slot.Offset, WallRecord{}); err != nil {
			return errors.Wrapf(err, "failed to clear wall %s", e)
		}
	}

	for _, e := range changes.Spawned() {
		if err := d.update(w, sectors, e, true); err != nil {
			return err
		}
	}

	for _, e := range changes.Changed() {
		if err := d.update(w, sectors, e, false); err != nil {
			return err
		}
	}

	return nil
}

func (d *WallData) update(w *idscene.World, sectors *SectorData, e ecs.Entity, spawned bool) error {
	wall, ok := w.Walls.Get(e)
	if !ok {
		return nil
	}

	var slot Allocation

	if spawned {
		var err error

		slot, err = d.slots.allocate(e)
		if err != nil {
			return err
		}
	} else {
		slot = d.slots.slot(e)
	}

	back := uint32(NoBackSector)
	if two, ok := w.TwoSided.Get(e); ok {
		back = sectors.SlotForSectorIndex(two.BackSectorIndex)
	}

	texture, hasTexture := w.Textures.Get(e)

	err := d.records.Write(slot.Offset, WallRecord{
		Kind:       uint32(wall.Kind),
		Start:      wall.Start,
		End:        wall.End,
		Sector:     sectors.SlotForSectorIndex(wall.SectorIndex),
		BackSector: back,
		Image:      d.images.offset(texture, hasTexture),
		XOffset:    float32(wall.XOffset),
		YOffset:    float32(wall.YOffset),
		Flags:      uint32(wall.Flags),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write wall %s", e)
	}

	return nil
}

func (d *WallData) Records() *RecordBuffer[WallRecord] { return d.records }
func (d *WallData) Quad() *RecordBuffer[mgl32.Vec2]    { return d.quad }

// InstanceCount is the number of instances a draw over all walls needs.
// Free slots below it hold zero records.
func (d *WallData) InstanceCount() uint32 {
	return d.slots.highest()
}

func (d *WallData) Len() int {
	return d.slots.len()
}

func (d *WallData) release() {
	d.records.Release()
	d.quad.Release()
}
