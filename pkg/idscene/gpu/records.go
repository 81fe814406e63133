package gpu

import (
	"encoding/binary"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// RecordBuffer is a fixed-capacity array of T on a Substrate. T must be a
// fixed-size type made of 4-byte fields; records are encoded little-endian
// with no padding.
type RecordBuffer[T any] struct {
	sub      Substrate
	buf      Buffer
	stride   uint64
	capacity uint32
}

func NewRecordBuffer[T any](sub Substrate, label string, capacity uint32, usage gputypes.BufferUsage) (*RecordBuffer[T], error) {
	var zero T

	stride := binary.Size(zero)
	if stride <= 0 {
		return nil, errors.Errorf("gpu: %T has no fixed size", zero)
	}

	buf, err := sub.CreateBuffer(label, uint64(stride)*uint64(capacity), usage)
	if err != nil {
		return nil, err
	}

	return &RecordBuffer[T]{
		sub:      sub,
		buf:      buf,
		stride:   uint64(stride),
		capacity: capacity,
	}, nil
}

func encodeRecords[T any](records ...T) ([]byte, error) {
	data, err := binary.Append(nil, binary.LittleEndian, records)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode records")
	}

	return data, nil
}

// Write stores v at index.
func (r *RecordBuffer[T]) Write(index uint32, v T) error {
	return r.WriteAt(index, []T{v})
}

// WriteAt stores values starting at index.
func (r *RecordBuffer[T]) WriteAt(index uint32, values []T) error {
	if uint64(index)+uint64(len(values)) > uint64(r.capacity) {
		return errors.Wrapf(ErrOutOfSpace, "%s: %d records at %d, capacity %d", r.buf.Label(), len(values), index, r.capacity)
	}

	if len(values) == 0 {
		return nil
	}

	data, err := encodeRecords(values...)
	if err != nil {
		return err
	}

	return r.sub.WriteBuffer(r.buf, uint64(index)*r.stride, data)
}

func (r *RecordBuffer[T]) Buffer() Buffer {
	return r.buf
}

// Stride is the encoded size of one record in bytes.
func (r *RecordBuffer[T]) Stride() uint64 {
	return r.stride
}

func (r *RecordBuffer[T]) Capacity() uint32 {
	return r.capacity
}

func (r *RecordBuffer[T]) Release() {
	r.sub.DestroyBuffer(r.buf)
}
