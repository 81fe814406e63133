package idscene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/gameconfig"
	"github.com/saiko-tech/idscene/pkg/geom"
)

// Sector is a level region with a floor and a ceiling.
type Sector struct {
	// Index of the sector in the map's SECTORS lump.
	Index int

	// Triangles is shared by floor and ceiling.
	Triangles ecs.Tracked[[]geom.Triangles]

	FloorHeight   int16
	CeilingHeight int16
	LightLevel    int16

	SpecialType uint16
	Tag         uint16
}

// Bounds is the union of the bounds of all triangles. It is invalid for a
// sector without triangles.
func (s *Sector) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, t := range s.Triangles.Get() {
		b = b.Union(t.Bounds())
	}

	return b
}

func (s *Sector) HasPoint(p mgl32.Vec2) bool {
	for _, t := range s.Triangles.Get() {
		if t.HasPoint(p) {
			return true
		}
	}

	return false
}

// WallKind is the section of a sidedef a wall entity draws.
type WallKind uint32

const (
	WallUpper WallKind = iota
	WallMiddle
	WallLower
)

func (k WallKind) String() string {
	switch k {
	case WallUpper:
		return "upper"
	case WallMiddle:
		return "middle"
	case WallLower:
		return "lower"
	default:
		return fmt.Sprintf("WallKind(%d)", uint32(k))
	}
}

// Wall is one textured section of one side of a linedef. Start and End are
// ordered so the wall faces into its own sector.
type Wall struct {
	Kind WallKind

	Start mgl32.Vec2
	End   mgl32.Vec2

	Flags       uint16
	SectorIndex int

	XOffset int16
	YOffset int16
}

// WallTwoSided marks walls with a sector behind them.
type WallTwoSided struct {
	BackSectorIndex int
}

// Thing is a map thing with a known definition.
type Thing struct {
	Type       uint16
	SpawnFlags uint16

	Flags  gameconfig.ThingFlags
	Radius uint32
	Height uint32
	Sprite string
}

// WorldPos places things and the player. Yaw is in degrees clockwise from
// north, pitch in degrees between -89 and 89.
type WorldPos struct {
	Pos   mgl32.Vec3
	Yaw   float32
	Pitch float32
}

// thingPos converts map coordinates into world space: the map's y becomes z
// and the height comes from the floor of the containing sector, 0 outside
// every sector.
func thingPos(x, y int16, angle uint16, floorHeight func(mgl32.Vec2) (int16, bool)) WorldPos {
	xz := mgl32.Vec2{float32(x), float32(y)}

	var height float32
	if h, ok := floorHeight(xz); ok {
		height = float32(h)
	}

	// counter-clockwise from east to clockwise from north
	yaw := mgl32.RadToDeg(-mgl32.DegToRad(float32(angle)) - math.Pi/2)

	return WorldPos{
		Pos: mgl32.Vec3{xz.X(), height, xz.Y()},
		Yaw: yaw,
	}
}

func (p *WorldPos) rotation() mgl32.Quat {
	yaw := mgl32.QuatRotate(mgl32.DegToRad(p.Yaw), mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(mgl32.DegToRad(p.Pitch), mgl32.Vec3{1, 0, 0})

	return yaw.Mul(pitch).Normalize()
}

// Translate moves by delta given in view space.
func (p *WorldPos) Translate(delta mgl32.Vec3) {
	p.Pos = p.Pos.Add(p.rotation().Rotate(delta))
}

// TranslateXZ moves by delta given in view space without leaving the
// horizontal plane.
func (p *WorldPos) TranslateXZ(delta mgl32.Vec3) {
	d := p.rotation().Rotate(delta)
	d[1] = 0

	p.Pos = p.Pos.Add(d)
}

// Rotate turns by the given amounts in degrees.
func (p *WorldPos) Rotate(pitch, yaw float32) {
	p.Pitch = mgl32.Clamp(p.Pitch-pitch, -89, 89)
	p.Yaw = float32(math.Mod(float64(p.Yaw-yaw), 360))
}
