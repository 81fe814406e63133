package ecs

// Tracked wraps a component field and remembers whether it was written since
// the last ClearChanged.
type Tracked[T any] struct {
	value   T
	changed bool
}

// NewTracked returns a value that starts out changed, so the first consumer
// sees it.
func NewTracked[T any](v T) Tracked[T] {
	return Tracked[T]{value: v, changed: true}
}

func (t *Tracked[T]) Get() T {
	return t.value
}

func (t *Tracked[T]) Set(v T) {
	t.value = v
	t.changed = true
}

func (t *Tracked[T]) Changed() bool {
	return t.changed
}

func (t *Tracked[T]) ClearChanged() {
	t.changed = false
}
