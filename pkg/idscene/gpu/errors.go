// Package gpu mirrors the entities of an idscene.World into flat GPU buffers.
//
// Each entity kind owns a fixed-capacity record array, a range allocator and
// a handle-to-slot map. Every tick the World's ChangedSet is drained: removed
// entities give their slot back, spawned ones get a fresh slot and changed
// ones are rewritten in place. Sector geometry is the exception; any geometry
// change rebuilds the whole vertex and index mesh.
package gpu

import (
	"github.com/pkg/errors"
)

var (
	// ErrOutOfSpace is returned when an allocator or buffer has no room left.
	ErrOutOfSpace = errors.New("gpu: out of space")

	// ErrOutOfRange is returned for writes past the end of a buffer.
	ErrOutOfRange = errors.New("gpu: write out of buffer range")

	// ErrInvalidBufferSize is returned when creating a zero-sized buffer.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrBufferDestroyed is returned when writing to a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrForeignBuffer is returned when a buffer is used with a substrate
	// that did not create it.
	ErrForeignBuffer = errors.New("gpu: buffer belongs to another substrate")
)
