// Package ecs is a small sparse-set entity store.
//
// Entities are generational handles. Components live in typed Stores owned by
// the caller, so a "query" is iterating one store and probing the others.
package ecs

import (
	"fmt"
)

// Entity is a generational handle. A handle is never reused while alive;
// despawning bumps the version so stale handles stop resolving.
type Entity struct {
	ID      uint32
	Version uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%d.%d", e.ID, e.Version)
}

// Registry hands out entity handles.
// It is not safe for concurrent use.
type Registry struct {
	versions []uint32
	alive    []bool
	free     []uint32
	count    int
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Spawn() Entity {
	var id uint32

	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = uint32(len(r.versions))
		r.versions = append(r.versions, 0)
		r.alive = append(r.alive, false)
	}

	r.alive[id] = true
	r.count++

	return Entity{ID: id, Version: r.versions[id]}
}

// Despawn retires e. It reports false if e was not alive.
func (r *Registry) Despawn(e Entity) bool {
	if !r.Alive(e) {
		return false
	}

	r.alive[e.ID] = false
	r.versions[e.ID]++
	r.free = append(r.free, e.ID)
	r.count--

	return true
}

func (r *Registry) Alive(e Entity) bool {
	return int(e.ID) < len(r.versions) && r.alive[e.ID] && r.versions[e.ID] == e.Version
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return r.count
}
