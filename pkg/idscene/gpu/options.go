package gpu

import (
	"log/slog"

	"github.com/saiko-tech/idscene/pkg/idscene"
)

// Capacity sizes the record arrays of a Scene. Buffers never grow; a level
// that outgrows them fails its tick with ErrOutOfSpace.
type Capacity struct {
	Sectors uint32
	Walls   uint32
	Things  uint32

	SectorVertices uint32
	SectorIndices  uint32
}

// DefaultCapacity fits any level the 16-bit map format can express: every
// linedef side carries at most three wall sections.
func DefaultCapacity() Capacity {
	return Capacity{
		Sectors:        65535,
		Walls:          65535 * 2 * 3,
		Things:         65535,
		SectorVertices: 1 << 20,
		SectorIndices:  3 << 20,
	}
}

// Option configures a Scene.
type Option func(*options)

type options struct {
	capacity Capacity
	label    string
	logger   *slog.Logger
}

func buildOptions(opts []Option) options {
	o := options{
		capacity: DefaultCapacity(),
		label:    "idscene",
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = idscene.Logger()
	}

	return o
}

// WithCapacity replaces the default record capacities.
func WithCapacity(c Capacity) Option {
	return func(o *options) {
		o.capacity = c
	}
}

// WithLabel sets the prefix of every buffer label.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
