package gameconfig

import (
	"crypto/sha256"
	"encoding/hex"
)

// Game identifies an IWAD family.
type Game uint8

const (
	// Doom covers DOOM, DOOM II and FreeDoom.
	Doom Game = iota + 1
	Heretic
	Chex
)

func (g Game) String() string {
	switch g {
	case Doom:
		return "DOOM"
	case Heretic:
		return "Heretic"
	case Chex:
		return "Chex Quest"
	default:
		return "unknown"
	}
}

// sha256 of the ENDOOM or ENDTEXT lump of each IWAD
var endTextHashes = map[string]Game{
	"6c37f5a1ad9cbb7110da91e26a52dd8b8021151cac148c83177bb6e78417fedf": Doom,
	"1cf281dbb13912b00b597bad4e84cfcef90c175f0869745a429a5e976a088cc2": Doom, // DOOM II
	"41d70f3fffaa451aa73be1729bdb0bc5c6c82871fb1e4e5659bd15387973d707": Doom, // FreeDoom
	"b3f74949bba7ade6473164cfba8c4ca1e75771504f411dfceeef804d17f522ff": Heretic,
	"a1db19b007ec74054182283e1d6b1bc317d75e3d84a697530fe75614aecaa387": Chex,
}

// DetectGame identifies the game from the contents of its ENDOOM or ENDTEXT lump.
func DetectGame(endText []byte) (Game, bool) {
	sum := sha256.Sum256(endText)
	g, ok := endTextHashes[hex.EncodeToString(sum[:])]

	return g, ok
}
