package idscene

import (
	"fmt"
	"strings"
)

const (
	// SkyFlatName marks a ceiling (or floor) that shows the sky.
	SkyFlatName = "F_SKY1"
	// SkyTextureName marks a wall that shows the sky.
	SkyTextureName = "SKY1"
	// NoTexture is the WAD spelling of "nothing here".
	NoTexture = "-"
)

type TextureKind uint8

const (
	TextureSky TextureKind = iota
	TextureFlat
	TextureWall
	TextureSprite
)

func (k TextureKind) String() string {
	switch k {
	case TextureSky:
		return "sky"
	case TextureFlat:
		return "flat"
	case TextureWall:
		return "wall"
	case TextureSprite:
		return "sprite"
	default:
		return fmt.Sprintf("TextureKind(%d)", uint8(k))
	}
}

// TextureRef names an image. Two refs are equal when kind and name match,
// which makes TextureRef usable as the key into image tables.
type TextureRef struct {
	Kind TextureKind
	Name string
}

// SkyTexture is the ref for anything rendered as sky. It carries no name.
var SkyTexture = TextureRef{Kind: TextureSky}

func FlatTexture(name string) TextureRef {
	return TextureRef{Kind: TextureFlat, Name: strings.ToUpper(name)}
}

func WallTexture(name string) TextureRef {
	return TextureRef{Kind: TextureWall, Name: strings.ToUpper(name)}
}

func SpriteTexture(name string) TextureRef {
	return TextureRef{Kind: TextureSprite, Name: strings.ToUpper(name)}
}

func (t TextureRef) IsSky() bool {
	return t.Kind == TextureSky
}

func (t TextureRef) String() string {
	if t.IsSky() {
		return "sky"
	}

	return t.Kind.String() + ":" + t.Name
}

// flatRef maps a sector flat name to its ref. ok is false for NoTexture.
func flatRef(name string) (ref TextureRef, ok bool) {
	switch strings.ToUpper(name) {
	case NoTexture, "":
		return TextureRef{}, false
	case SkyFlatName:
		return SkyTexture, true
	default:
		return FlatTexture(name), true
	}
}

// wallRef maps a sidedef texture name to its ref. ok is false for NoTexture.
func wallRef(name string) (ref TextureRef, ok bool) {
	switch strings.ToUpper(name) {
	case NoTexture, "":
		return TextureRef{}, false
	case SkyTextureName:
		return SkyTexture, true
	default:
		return WallTexture(name), true
	}
}
