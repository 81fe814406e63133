package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/pkg/errors"
)

// HALSubstrate creates buffers on a wgpu HAL device and writes them through
// its queue.
type HALSubstrate struct {
	device hal.Device
	queue  hal.Queue
}

func NewHALSubstrate(device hal.Device, queue hal.Queue) *HALSubstrate {
	return &HALSubstrate{device: device, queue: queue}
}

type halBuffer struct {
	owner     *HALSubstrate
	raw       hal.Buffer
	label     string
	size      uint64
	usage     gputypes.BufferUsage
	destroyed bool
}

func (b *halBuffer) Label() string               { return b.label }
func (b *halBuffer) Size() uint64                { return b.size }
func (b *halBuffer) Usage() gputypes.BufferUsage { return b.usage }

func (s *HALSubstrate) CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (Buffer, error) {
	if size == 0 {
		return nil, errors.Wrapf(ErrInvalidBufferSize, "buffer %q", label)
	}

	usage |= gputypes.BufferUsageCopyDst
	size = alignSize(size)

	raw, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer %q", label)
	}

	return &halBuffer{owner: s, raw: raw, label: label, size: size, usage: usage}, nil
}

func (s *HALSubstrate) buffer(buf Buffer) (*halBuffer, error) {
	b, ok := buf.(*halBuffer)
	if !ok || b.owner != s {
		return nil, ErrForeignBuffer
	}

	if b.destroyed {
		return nil, errors.Wrapf(ErrBufferDestroyed, "buffer %q", b.label)
	}

	return b, nil
}

func (s *HALSubstrate) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, err := s.buffer(buf)
	if err != nil {
		return err
	}

	if offset+uint64(len(data)) > b.size {
		return errors.Wrapf(ErrOutOfRange, "buffer %q: %d bytes at %d, size %d", b.label, len(data), offset, b.size)
	}

	if len(data) == 0 {
		return nil
	}

	if err := s.queue.WriteBuffer(b.raw, offset, data); err != nil {
		return errors.Wrapf(err, "failed to write buffer %q", b.label)
	}

	return nil
}

func (s *HALSubstrate) DestroyBuffer(buf Buffer) {
	b, err := s.buffer(buf)
	if err != nil {
		return
	}

	b.destroyed = true
	s.device.DestroyBuffer(b.raw)
}

// RawBuffer returns the HAL buffer behind buf, for bind group creation.
func RawBuffer(buf Buffer) (hal.Buffer, bool) {
	b, ok := buf.(*halBuffer)
	if !ok || b.destroyed {
		return nil, false
	}

	return b.raw, true
}
