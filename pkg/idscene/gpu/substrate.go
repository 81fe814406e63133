package gpu

import (
	"github.com/gogpu/gputypes"
)

// copyAlignment is the granularity of buffer sizes and write offsets.
const copyAlignment = 4

// Buffer is a byte-addressable region owned by a Substrate.
type Buffer interface {
	Label() string
	Size() uint64
	Usage() gputypes.BufferUsage
}

// Substrate creates buffers and patch-writes them. Writes are queued; a
// substrate never promises that a write is visible to the GPU by the time
// WriteBuffer returns.
type Substrate interface {
	CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	DestroyBuffer(buf Buffer)
}

func alignSize(size uint64) uint64 {
	if r := size % copyAlignment; r != 0 {
		size += copyAlignment - r
	}

	return size
}
