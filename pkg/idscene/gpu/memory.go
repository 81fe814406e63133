package gpu

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// MemorySubstrate keeps buffers in host memory. It backs headless runs and
// tests, and records how much was written.
type MemorySubstrate struct {
	mu           sync.Mutex
	writes       int
	bytesWritten uint64
	live         int
}

func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{}
}

type memoryBuffer struct {
	owner     *MemorySubstrate
	label     string
	usage     gputypes.BufferUsage
	data      []byte
	destroyed bool
}

func (b *memoryBuffer) Label() string               { return b.label }
func (b *memoryBuffer) Size() uint64                { return uint64(len(b.data)) }
func (b *memoryBuffer) Usage() gputypes.BufferUsage { return b.usage }

func (m *MemorySubstrate) CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (Buffer, error) {
	if size == 0 {
		return nil, errors.Wrapf(ErrInvalidBufferSize, "buffer %q", label)
	}

	m.mu.Lock()
	m.live++
	m.mu.Unlock()

	return &memoryBuffer{
		owner: m,
		label: label,
		usage: usage | gputypes.BufferUsageCopyDst,
		data:  make([]byte, alignSize(size)),
	}, nil
}

func (m *MemorySubstrate) buffer(buf Buffer) (*memoryBuffer, error) {
	b, ok := buf.(*memoryBuffer)
	if !ok || b.owner != m {
		return nil, ErrForeignBuffer
	}

	if b.destroyed {
		return nil, errors.Wrapf(ErrBufferDestroyed, "buffer %q", b.label)
	}

	return b, nil
}

func (m *MemorySubstrate) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, err := m.buffer(buf)
	if err != nil {
		return err
	}

	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return errors.Wrapf(ErrOutOfRange, "buffer %q: %d bytes at %d, size %d", b.label, len(data), offset, len(b.data))
	}

	copy(b.data[offset:], data)

	m.mu.Lock()
	m.writes++
	m.bytesWritten += uint64(len(data))
	m.mu.Unlock()

	return nil
}

func (m *MemorySubstrate) DestroyBuffer(buf Buffer) {
	b, err := m.buffer(buf)
	if err != nil {
		return
	}

	b.destroyed = true
	b.data = nil

	m.mu.Lock()
	m.live--
	m.mu.Unlock()
}

// Contents returns the bytes of buf. The slice aliases the buffer.
func (m *MemorySubstrate) Contents(buf Buffer) ([]byte, error) {
	b, err := m.buffer(buf)
	if err != nil {
		return nil, err
	}

	return b.data, nil
}

// MemoryStats summarizes the activity of a MemorySubstrate.
type MemoryStats struct {
	Writes       int
	BytesWritten uint64
	LiveBuffers  int
}

func (m *MemorySubstrate) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MemoryStats{
		Writes:       m.writes,
		BytesWritten: m.bytesWritten,
		LiveBuffers:  m.live,
	}
}
