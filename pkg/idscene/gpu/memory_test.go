package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySubstrate(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()

	buf, err := sub.CreateBuffer("test", 6, gputypes.BufferUsageStorage)
	require.NoError(t, err)

	assert.Equal(t, "test", buf.Label())
	assert.Equal(t, uint64(8), buf.Size(), "sizes are 4-byte aligned")
	assert.NotZero(t, buf.Usage()&gputypes.BufferUsageCopyDst)

	require.NoError(t, sub.WriteBuffer(buf, 4, []byte{1, 2, 3, 4}))
	assert.ErrorIs(t, sub.WriteBuffer(buf, 6, []byte{1, 2, 3}), ErrOutOfRange)

	data, err := sub.Contents(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4}, data)

	other := NewMemorySubstrate()
	assert.ErrorIs(t, other.WriteBuffer(buf, 0, []byte{1}), ErrForeignBuffer)

	_, err = sub.CreateBuffer("empty", 0, gputypes.BufferUsageStorage)
	assert.ErrorIs(t, err, ErrInvalidBufferSize)

	assert.Equal(t, MemoryStats{Writes: 1, BytesWritten: 4, LiveBuffers: 1}, sub.Stats())

	sub.DestroyBuffer(buf)
	assert.ErrorIs(t, sub.WriteBuffer(buf, 0, []byte{1}), ErrBufferDestroyed)
	assert.Zero(t, sub.Stats().LiveBuffers)
}

func TestRecordBuffer(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()

	records, err := NewRecordBuffer[WallRecord](sub, "walls", 4, gputypes.BufferUsageStorage)
	require.NoError(t, err)

	assert.Equal(t, uint64(44), records.Stride())
	assert.Equal(t, uint64(4*44), records.Buffer().Size())

	err = records.Write(2, WallRecord{
		Kind:       uint32(1),
		Start:      mgl32.Vec2{0, 64},
		End:        mgl32.Vec2{64, 64},
		Sector:     3,
		BackSector: NoBackSector,
		Image:      8,
		XOffset:    -4,
	})
	require.NoError(t, err)

	data, err := sub.Contents(records.Buffer())
	require.NoError(t, err)

	rec := data[2*44 : 3*44]
	word := func(i int) uint32 { return binary.LittleEndian.Uint32(rec[i*4:]) }

	assert.Equal(t, uint32(1), word(0))
	assert.Equal(t, float32(64), math.Float32frombits(word(2)))
	assert.Equal(t, float32(64), math.Float32frombits(word(3)))
	assert.Equal(t, uint32(3), word(5))
	assert.Equal(t, uint32(math.MaxUint32), word(6))
	assert.Equal(t, uint32(8), word(7))
	assert.Equal(t, float32(-4), math.Float32frombits(word(8)))

	assert.Zero(t, data[0], "other records are untouched")

	assert.ErrorIs(t, records.WriteAt(3, make([]WallRecord, 2)), ErrOutOfSpace)
	assert.NoError(t, records.WriteAt(4, nil))

	_, err = NewRecordBuffer[[]uint32](sub, "dynamic", 4, gputypes.BufferUsageStorage)
	assert.Error(t, err)
}
