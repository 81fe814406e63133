package idscene

import (
	"log/slog"
	"runtime"
)

// Option configures level construction.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	workers int
}

func defaultOptions() options {
	return options{
		logger:  nil, // falls back to Logger()
		workers: runtime.GOMAXPROCS(0),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = Logger()
	}

	if o.workers < 1 {
		o.workers = 1
	}

	return o
}

// WithLogger overrides the package logger for one world.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWorkers bounds how many sectors are tessellated in parallel.
// Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
