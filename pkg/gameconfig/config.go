// Package gameconfig holds per-game data that is not stored in the WAD itself:
// animated texture ranges and thing definitions.
package gameconfig

import (
	"embed"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

var ErrInvalidConfig = errors.New("invalid game config")

// Range names the first and last frame of an animation, inclusive.
type Range struct {
	Start, End string
}

func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return err
	}

	if len(pair) != 2 {
		return errors.Wrapf(ErrInvalidConfig, "line %d: range needs 2 names, got %d", value.Line, len(pair))
	}

	r.Start, r.End = strings.ToUpper(pair[0]), strings.ToUpper(pair[1])

	return nil
}

// ThingFlags map to the "Class" column on the Doom wiki thing tables.
type ThingFlags uint32

const (
	ThingArtifact    ThingFlags = 1 << iota // A
	ThingPickup                             // P
	ThingWeapon                             // W
	ThingMonster                            // M
	ThingObstacle                           // O
	ThingShootable                          // *
	ThingUpperPegged                        // ^ hangs from the ceiling
)

var thingFlagCodes = map[rune]ThingFlags{
	'A': ThingArtifact,
	'P': ThingPickup,
	'W': ThingWeapon,
	'M': ThingMonster,
	'O': ThingObstacle,
	'*': ThingShootable,
	'^': ThingUpperPegged,
}

// ParseThingFlags decodes a class string such as "M*".
func ParseThingFlags(s string) (ThingFlags, error) {
	var flags ThingFlags

	for _, c := range s {
		f, ok := thingFlagCodes[c]
		if !ok {
			return 0, errors.Wrapf(ErrInvalidConfig, "unknown thing flag %q", c)
		}

		flags |= f
	}

	return flags, nil
}

func (f ThingFlags) Has(flag ThingFlags) bool {
	return f&flag != 0
}

func (f *ThingFlags) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseThingFlags(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}

	*f = parsed

	return nil
}

// Sequence lists sprite frames. A trailing '+' marks that the thing has
// frames used during gameplay beyond the idle sequence.
type Sequence struct {
	Frames           []string
	HasGameplayFrame bool
}

func ParseSequence(s string) Sequence {
	var seq Sequence

	for _, c := range s {
		if c == '+' {
			seq.HasGameplayFrame = true
			continue
		}

		seq.Frames = append(seq.Frames, string(c))
	}

	return seq
}

func (s *Sequence) UnmarshalYAML(value *yaml.Node) error {
	*s = ParseSequence(value.Value)
	return nil
}

// Thing describes a thing type.
type Thing struct {
	Type        uint16     `yaml:"type"`
	Flags       ThingFlags `yaml:"flags"`
	Radius      uint32     `yaml:"radius"`
	Height      uint32     `yaml:"height"`
	Sprite      string     `yaml:"sprite"`
	Sequence    Sequence   `yaml:"sequence"`
	Description string     `yaml:"description"`
}

// Config is the game data for one game family.
type Config struct {
	Walls  []Range `yaml:"walls"`
	Flats  []Range `yaml:"flats"`
	Things []Thing `yaml:"things"`

	thingsByType map[uint16]*Thing
}

// Parse decodes a YAML game config.
func Parse(data []byte) (*Config, error) {
	var c Config

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to parse game config")
	}

	c.thingsByType = make(map[uint16]*Thing, len(c.Things))

	for i := range c.Things {
		t := &c.Things[i]
		if _, ok := c.thingsByType[t.Type]; ok {
			return nil, errors.Wrapf(ErrInvalidConfig, "thing type %d defined twice", t.Type)
		}

		c.thingsByType[t.Type] = t
	}

	return &c, nil
}

// Thing returns the definition of a thing type.
func (c *Config) Thing(thingType uint16) (*Thing, bool) {
	t, ok := c.thingsByType[thingType]
	return t, ok
}

// ForGame returns the embedded config for game.
func ForGame(game Game) (*Config, error) {
	name := "doom"
	if game == Heretic {
		name = "heretic"
	}

	data, err := configFiles.ReadFile("config/" + name + ".yaml")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config for %s", game)
	}

	return Parse(data)
}
