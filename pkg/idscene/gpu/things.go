package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/idscene"
)

// ThingRecord is the per-thing instance record.
type ThingRecord struct {
	Type       uint32
	SpawnFlags uint32
	Flags      uint32
	Position   mgl32.Vec3
	Yaw        float32
	Radius     uint32
	Height     uint32
	Image      uint32
}

// ThingData mirrors thing entities into an instance array.
type ThingData struct {
	records *RecordBuffer[ThingRecord]
	quad    *RecordBuffer[mgl32.Vec2]
	slots   *slotMap
	images  *imageResolver
}

func newThingData(sub Substrate, o options, images *imageResolver) (*ThingData, error) {
	records, err := NewRecordBuffer[ThingRecord](sub, o.label+" thing records", o.capacity.Things, gputypes.BufferUsageStorage|gputypes.BufferUsageVertex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create thing records")
	}

	quad, err := newQuadBuffer(sub, o.label+" thing quad")
	if err != nil {
		records.Release()
		return nil, errors.Wrap(err, "failed to create thing quad")
	}

	return &ThingData{
		records: records,
		quad:    quad,
		slots:   newSlotMap("thing", o.capacity.Things),
		images:  images,
	}, nil
}

// Think applies the change set of w.
func (d *ThingData) Think(w *idscene.World) error {
	changes := w.Changes()

	// freed slots stay inside the instance range; a zero record is a
	// degenerate quad
	for _, e := range changes.Removed() {
		slot, ok := d.slots.free(e)
		if !ok {
			continue
		}

		if err := d.records.Write(slot.Offset, ThingRecord{}); err != nil {
			return errors.Wrapf(err, "failed to clear thing %s", e)
		}
	}

	for _, e := range changes.Spawned() {
		if err := d.update(w, e, true); err != nil {
			return err
		}
	}

	for _, e := range changes.Changed() {
		if err := d.update(w, e, false); err != nil {
			return err
		}
	}

	return nil
}

func (d *ThingData) update(w *idscene.World, e ecs.Entity, spawned bool) error {
	thing, ok := w.Things.Get(e)
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

	rec := ThingRecord{
		Type:       uint32(thing.Type),
		SpawnFlags: uint32(thing.SpawnFlags),
		Flags:      uint32(thing.Flags),
		Radius:     thing.Radius,
		Height:     thing.Height,
	}

	if pos, ok := w.Positions.Get(e); ok {
		rec.Position = pos.Pos
		rec.Yaw = pos.Yaw
	}

	sprite, hasSprite := w.Textures.Get(e)
	rec.Image = d.images.offset(sprite, hasSprite)

	if err := d.records.Write(slot.Offset, rec); err != nil {
		return errors.Wrapf(err, "failed to write thing %s", e)
	}

	return nil
}

func (d *ThingData) Records() *RecordBuffer[ThingRecord] { return d.records }
func (d *ThingData) Quad() *RecordBuffer[mgl32.Vec2]     { return d.quad }

// InstanceCount is the number of instances a draw over all things needs.
func (d *ThingData) InstanceCount() uint32 {
	return d.slots.highest()
}

func (d *ThingData) Len() int {
	return d.slots.len()
}

func (d *ThingData) release() {
	d.records.Release()
	d.quad.Release()
}
