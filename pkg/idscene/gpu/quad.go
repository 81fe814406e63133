package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// unitQuad is two triangles over [0,1]^2. Walls and things are drawn as
// instances of it; the vertex shader stretches it using the instance record.
var unitQuad = []mgl32.Vec2{
	{0, 0}, {1, 0}, {0, 1},
	{0, 1}, {1, 0}, {1, 1},
}

func newQuadBuffer(sub Substrate, label string) (*RecordBuffer[mgl32.Vec2], error) {
	quad, err := NewRecordBuffer[mgl32.Vec2](sub, label, uint32(len(unitQuad)), gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}

	if err := quad.WriteAt(0, unitQuad); err != nil {
		quad.Release()
		return nil, errors.Wrapf(err, "failed to upload %s", label)
	}

	return quad, nil
}
