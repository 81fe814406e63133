package idscene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/idscene/pkg/wad"
)

// spawnWalls creates up to three wall entities per linedef side. One-sided
// lines only have a middle section.
func (w *World) spawnWalls() {
	m := w.Map

	for _, l := range m.Linedefs {
		left, hasLeft := l.LeftSidedef()
		right, hasRight := l.RightSidedef()

		var leftSide, rightSide *wad.Sidedef
		if hasLeft {
			leftSide = &m.Sidedefs[left]
		}

		if hasRight {
			rightSide = &m.Sidedefs[right]
		}

		// the left side faces the other way, so its vertices are swapped
		if leftSide != nil {
			w.spawnSide(l, leftSide, rightSide, true)
		}

		if rightSide != nil {
			w.spawnSide(l, rightSide, leftSide, false)
		}
	}
}

func (w *World) spawnSide(l wad.Linedef, side, other *wad.Sidedef, flip bool) {
	startIndex, endIndex := l.StartVertex, l.EndVertex
	if flip {
		startIndex, endIndex = endIndex, startIndex
	}

	start := w.Map.Vertices[startIndex]
	end := w.Map.Vertices[endIndex]

	wall := Wall{
		Start:       mgl32.Vec2{float32(start.X), float32(start.Y)},
		End:         mgl32.Vec2{float32(end.X), float32(end.Y)},
		Flags:       l.Flags,
		SectorIndex: int(side.Sector),
		XOffset:     side.XOffset,
		YOffset:     side.YOffset,
	}

	w.spawnWall(wall, WallMiddle, side.MiddleTexture, other)

	// upper and lower sections only exist between two sectors
	if other == nil {
		return
	}

	w.spawnWall(wall, WallLower, side.LowerTexture, other)
	w.spawnWall(wall, WallUpper, upperTexture(w.Map, side, other), other)
}

// upperTexture applies the sky hack: an upper section between two sky
// sectors, or one left blank in front of a lower sky ceiling, shows the sky.
func upperTexture(m *wad.Map, side, other *wad.Sidedef) string {
	front := m.Sectors[side.Sector]
	back := m.Sectors[other.Sector]

	frontSky := strings.EqualFold(front.CeilingFlat, SkyFlatName)
	backSky := strings.EqualFold(back.CeilingFlat, SkyFlatName)

	if side.UpperTexture == NoTexture && back.CeilingHeight < front.CeilingHeight && backSky {
		return SkyTextureName
	}

	if frontSky && backSky {
		return SkyTextureName
	}

	return side.UpperTexture
}

func (w *World) spawnWall(wall Wall, kind WallKind, texture string, other *wad.Sidedef) {
	ref, ok := wallRef(texture)
	if !ok {
		return
	}

	wall.Kind = kind

	e := w.spawn()
	w.Walls.Set(e, wall)
	w.Textures.Set(e, ref)

	if other != nil {
		w.TwoSided.Set(e, WallTwoSided{BackSectorIndex: int(other.Sector)})
	}

	if w.Animations.Contains(ref) {
		w.Animated.Set(e, struct{}{})
	}
}
