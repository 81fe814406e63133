package wad

import (
	"github.com/pkg/errors"
)

// NoSidedef marks an absent side of a linedef.
const NoSidedef = 0xFFFF

type Thing struct {
	X, Y int16
	// Angle is in degrees, counter-clockwise from east.
	Angle      uint16
	Type       uint16
	SpawnFlags uint16
}

type Sector struct {
	FloorHeight   int16
	CeilingHeight int16
	FloorFlat     string
	CeilingFlat   string
	LightLevel    int16
	SpecialType   uint16
	Tag           uint16
}

type Sidedef struct {
	XOffset, YOffset int16
	UpperTexture     string
	LowerTexture     string
	MiddleTexture    string
	Sector           uint16
}

type Linedef struct {
	StartVertex uint16
	EndVertex   uint16
	// Flags are game and engine dependent.
	Flags    uint16
	LineType uint16
	Tag      uint16
	Right    uint16
	Left     uint16
}

// RightSidedef returns the front side index, if any.
func (l Linedef) RightSidedef() (int, bool) {
	return int(l.Right), l.Right != NoSidedef
}

// LeftSidedef returns the back side index, if any.
func (l Linedef) LeftSidedef() (int, bool) {
	return int(l.Left), l.Left != NoSidedef
}

func (l Linedef) TwoSided() bool {
	return l.Right != NoSidedef && l.Left != NoSidedef
}

type Vertex struct {
	X, Y int16
}

// Map holds the records of one level.
type Map struct {
	Name     string
	Things   []Thing
	Sectors  []Sector
	Sidedefs []Sidedef
	Linedefs []Linedef
	Vertices []Vertex
}

type rawSector struct {
	FloorHeight   int16
	CeilingHeight int16
	FloorFlat     name8
	CeilingFlat   name8
	LightLevel    int16
	SpecialType   uint16
	Tag           uint16
}

type rawSidedef struct {
	XOffset, YOffset int16
	Upper            name8
	Lower            name8
	Middle           name8
	Sector           uint16
}

// ParseMap decodes the records of the named map and checks that every index
// they hold is in range.
func (a *Archive) ParseMap(name string) (*Map, error) {
	ns := MapNamespace(name)

	lumps, ok := a.namespaces[ns]
	if !ok {
		return nil, errors.Wrapf(ErrMapDoesNotExist, "%s", name)
	}

	var missing []string

	for _, l := range orderedMapLumps {
		if _, ok := lumps[l]; !ok {
			missing = append(missing, l)
		}
	}

	if len(missing) > 0 {
		return nil, MissingLumpsError{Map: ns.Map, MissingLumps: missing}
	}

	m := &Map{Name: ns.Map}

	var err error

	m.Things, err = readRecords[Thing](lumps["THINGS"])
	if err != nil {
		return nil, err
	}

	m.Linedefs, err = readRecords[Linedef](lumps["LINEDEFS"])
	if err != nil {
		return nil, err
	}

	m.Vertices, err = readRecords[Vertex](lumps["VERTEXES"])
	if err != nil {
		return nil, err
	}

	rawSectors, err := readRecords[rawSector](lumps["SECTORS"])
	if err != nil {
		return nil, err
	}

	m.Sectors = make([]Sector, len(rawSectors))
	for i, s := range rawSectors {
		m.Sectors[i] = Sector{
			FloorHeight:   s.FloorHeight,
			CeilingHeight: s.CeilingHeight,
			FloorFlat:     s.FloorFlat.String(),
			CeilingFlat:   s.CeilingFlat.String(),
			LightLevel:    s.LightLevel,
			SpecialType:   s.SpecialType,
			Tag:           s.Tag,
		}
	}

	rawSidedefs, err := readRecords[rawSidedef](lumps["SIDEDEFS"])
	if err != nil {
		return nil, err
	}

	m.Sidedefs = make([]Sidedef, len(rawSidedefs))
	for i, s := range rawSidedefs {
		m.Sidedefs[i] = Sidedef{
			XOffset:       s.XOffset,
			YOffset:       s.YOffset,
			UpperTexture:  s.Upper.String(),
			LowerTexture:  s.Lower.String(),
			MiddleTexture: s.Middle.String(),
			Sector:        s.Sector,
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks that linedefs reference existing vertices and sidedefs and
// that sidedefs reference existing sectors.
func (m *Map) Validate() error {
	for i, s := range m.Sidedefs {
		if int(s.Sector) >= len(m.Sectors) {
			return errors.Wrapf(ErrInvalidReference, "map %s: sidedef %d references sector %d of %d", m.Name, i, s.Sector, len(m.Sectors))
		}
	}

	for i, l := range m.Linedefs {
		if int(l.StartVertex) >= len(m.Vertices) || int(l.EndVertex) >= len(m.Vertices) {
			return errors.Wrapf(ErrInvalidReference, "map %s: linedef %d references vertices %d-%d of %d", m.Name, i, l.StartVertex, l.EndVertex, len(m.Vertices))
		}

		for _, side := range []uint16{l.Right, l.Left} {
			if side != NoSidedef && int(side) >= len(m.Sidedefs) {
				return errors.Wrapf(ErrInvalidReference, "map %s: linedef %d references sidedef %d of %d", m.Name, i, side, len(m.Sidedefs))
			}
		}
	}

	return nil
}
