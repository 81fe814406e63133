package idscene

import (
	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/ecs"
)

// PlayerStartType is the thing type of the player 1 start.
const PlayerStartType = 1

var ErrNoPlayerStart = errors.New("no player start found")

// spawnThings creates an entity for every map thing the game config knows.
// Unknown types are skipped.
func (w *World) spawnThings() {
	for _, t := range w.Map.Things {
		def, ok := w.Config.Thing(t.Type)
		if !ok {
			continue
		}

		e := w.spawn()

		w.Things.Set(e, Thing{
			Type:       t.Type,
			SpawnFlags: t.SpawnFlags,
			Flags:      def.Flags,
			Radius:     def.Radius,
			Height:     def.Height,
			Sprite:     def.Sprite,
		})
		w.Positions.Set(e, thingPos(t.X, t.Y, t.Angle, w.Accel.FloorHeight))

		// sprites are looked up by name plus idle frame, e.g. POSSA
		if def.Sprite != "" {
			name := def.Sprite
			if len(def.Sequence.Frames) > 0 {
				name += def.Sequence.Frames[0]
			}

			w.Textures.Set(e, SpriteTexture(name))
		}
	}
}

// spawnPlayer places the player at the first player 1 start.
func (w *World) spawnPlayer() (ecs.Entity, error) {
	for _, t := range w.Map.Things {
		if t.Type != PlayerStartType {
			continue
		}

		e := w.spawn()
		w.Positions.Set(e, thingPos(t.X, t.Y, t.Angle, w.Accel.FloorHeight))

		return e, nil
	}

	return ecs.Entity{}, errors.Wrapf(ErrNoPlayerStart, "map %s", w.Map.Name)
}
