// Package idscene turns a Doom-format level into a live set of entities:
// triangulated sectors, wall sections, things and the player, plus the
// per-tick bookkeeping that lets renderers mirror them incrementally.
package idscene

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/gameconfig"
	"github.com/saiko-tech/idscene/pkg/wad"
)

// AnimationInterval is the number of ticks between animation frames.
const AnimationInterval = 20

// World is a loaded level.
//
// Sectors, walls and things are entities. Textures holds the ceiling flat of
// a sector, the texture of a wall and the sprite of a thing; FloorTextures
// only exists on sectors. A World is not safe for concurrent use.
type World struct {
	Map        *wad.Map
	Config     *gameconfig.Config
	Animations *AnimationStateMap
	CVars      *CVars

	Registry      *ecs.Registry
	Sectors       *ecs.Store[Sector]
	Walls         *ecs.Store[Wall]
	TwoSided      *ecs.Store[WallTwoSided]
	Things        *ecs.Store[Thing]
	Positions     *ecs.Store[WorldPos]
	Textures      *ecs.Store[TextureRef]
	FloorTextures *ecs.Store[TextureRef]
	Animated      *ecs.Tags

	Accel  *SectorAccel
	Player ecs.Entity

	changes *ecs.ChangedSet
	tick    uint64
	log     *slog.Logger
}

// LoadWorld parses mapName from archive and builds its world.
func LoadWorld(archive *wad.Archive, mapName string, cfg *gameconfig.Config, opts ...Option) (*World, error) {
	o := buildOptions(opts)

	m, err := archive.ParseMap(mapName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse map %q", mapName)
	}

	anims, err := LoadAnimationStateMap(archive, cfg, o.logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load animations")
	}

	return NewWorld(m, cfg, anims, opts...)
}

// NewWorld builds a world from already parsed map records. Every entity it
// creates is recorded as spawned, so the first tick uploads everything.
//
// Construction is all or nothing: a sector that cannot be tessellated or a
// map without a player start fails the whole level.
func NewWorld(m *wad.Map, cfg *gameconfig.Config, anims *AnimationStateMap, opts ...Option) (*World, error) {
	o := buildOptions(opts)
	start := time.Now()

	w := &World{
		Map:        m,
		Config:     cfg,
		Animations: anims,
		CVars:      DefaultCVars(),

		Registry:      ecs.NewRegistry(),
		Sectors:       ecs.NewStore[Sector](),
		Walls:         ecs.NewStore[Wall](),
		TwoSided:      ecs.NewStore[WallTwoSided](),
		Things:        ecs.NewStore[Thing](),
		Positions:     ecs.NewStore[WorldPos](),
		Textures:      ecs.NewStore[TextureRef](),
		FloorTextures: ecs.NewStore[TextureRef](),
		Animated:      ecs.NewTags(),

		changes: ecs.NewChangedSet(),
		log:     o.logger,
	}

	w.spawnWalls()

	if err := w.spawnSectors(o.workers); err != nil {
		return nil, err
	}

	// things need the accelerator for their height
	w.Accel = NewSectorAccel(w.Sectors, w.log)

	w.spawnThings()

	player, err := w.spawnPlayer()
	if err != nil {
		return nil, err
	}

	w.Player = player

	w.log.Info("loaded level",
		slog.String("map", m.Name),
		slog.Int("entities", w.Registry.Len()),
		slog.Int("sectors", w.Sectors.Len()),
		slog.Int("walls", w.Walls.Len()),
		slog.Int("things", w.Things.Len()),
		slog.Duration("setup", time.Since(start)))

	return w, nil
}

func (w *World) spawn() ecs.Entity {
	e := w.Registry.Spawn()
	w.changes.Spawn(e)

	return e
}

// Despawn removes e and all of its components.
func (w *World) Despawn(e ecs.Entity) bool {
	if !w.Registry.Despawn(e) {
		return false
	}

	w.Sectors.Remove(e)
	w.Walls.Remove(e)
	w.TwoSided.Remove(e)
	w.Things.Remove(e)
	w.Positions.Remove(e)
	w.Textures.Remove(e)
	w.FloorTextures.Remove(e)
	w.Animated.Remove(e)

	w.changes.Remove(e)

	return true
}

// MarkChanged records that the state of e was modified outside of Think.
func (w *World) MarkChanged(e ecs.Entity) {
	if w.Registry.Alive(e) {
		w.changes.Change(e)
	}
}

// EditSector runs fn on the sector of e and records the change. Replacing
// the triangles through Triangles.Set flags the edit as a topology change.
func (w *World) EditSector(e ecs.Entity, fn func(s *Sector)) bool {
	s, ok := w.Sectors.Get(e)
	if !ok {
		return false
	}

	fn(s)
	w.changes.Change(e)

	return true
}

// WithPlayerPos calls fn with the player's position.
func (w *World) WithPlayerPos(fn func(pos *WorldPos)) error {
	pos, ok := w.Positions.Get(w.Player)
	if !ok {
		return errors.Errorf("player %s has no position", w.Player)
	}

	fn(pos)
	w.changes.Change(w.Player)

	return nil
}

// TextureRefs returns every texture the world can show, animation frames
// included, without duplicates and in a stable order.
func (w *World) TextureRefs() []TextureRef {
	seen := make(map[TextureRef]struct{})

	var refs []TextureRef

	add := func(ref TextureRef) {
		if _, ok := seen[ref]; !ok {
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	for _, store := range []*ecs.Store[TextureRef]{w.Textures, w.FloorTextures} {
		store.Each(func(_ ecs.Entity, ref *TextureRef) bool {
			add(*ref)
			return true
		})
	}

	for _, ref := range w.Animations.Keys() {
		add(ref)
	}

	return refs
}

// Changes returns what happened since the last ThinkEnd.
func (w *World) Changes() *ecs.ChangedSet {
	return w.changes
}

// Tick returns the number of completed Think calls.
func (w *World) Tick() uint64 {
	return w.tick
}

// Think advances the world by one tick. Consumers of Changes run after
// Think and before ThinkEnd.
func (w *World) Think() {
	w.tick++

	if w.tick%AnimationInterval == 0 {
		w.animate()
	}
}

// ThinkEnd finishes the tick: the change set is cleared and geometry edits
// are considered consumed.
func (w *World) ThinkEnd() {
	w.changes.Clear()

	w.Sectors.Each(func(_ ecs.Entity, s *Sector) bool {
		s.Triangles.ClearChanged()
		return true
	})
}

// animate moves every animated texture to its next frame.
func (w *World) animate() {
	w.Animated.Each(func(e ecs.Entity, _ *struct{}) bool {
		changed := advance(w.Textures, e, w.Animations)
		if advance(w.FloorTextures, e, w.Animations) {
			changed = true
		}

		if changed {
			w.changes.Change(e)
		}

		return true
	})
}

func advance(store *ecs.Store[TextureRef], e ecs.Entity, anims *AnimationStateMap) bool {
	ref, ok := store.Get(e)
	if !ok {
		return false
	}

	next, ok := anims.Next(*ref)
	if !ok {
		return false
	}

	*ref = next

	return true
}
