// Package wad reads id Software WAD archives: the lump directory, lump
// namespaces, map records and texture definitions.
//
// The format is documented in The Unofficial DOOM Specs and
// https://zdoom.org/wiki/WAD.
package wad

import (
	"bytes"
	"encoding/binary"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// NamespaceKind classifies a block of lumps.
type NamespaceKind uint8

const (
	NamespaceGlobal NamespaceKind = iota
	NamespaceMap
	NamespacePatch
	NamespaceSprite
	NamespaceFlat
)

// Namespace identifies a block of lumps. Map is only set for NamespaceMap.
type Namespace struct {
	Kind NamespaceKind
	Map  string
}

var (
	GlobalNamespace = Namespace{Kind: NamespaceGlobal}
	PatchNamespace  = Namespace{Kind: NamespacePatch}
	SpriteNamespace = Namespace{Kind: NamespaceSprite}
	FlatNamespace   = Namespace{Kind: NamespaceFlat}
)

func MapNamespace(name string) Namespace {
	return Namespace{Kind: NamespaceMap, Map: strings.ToUpper(name)}
}

var (
	// map lumps that must follow the marker in this order
	orderedMapLumps = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS"}

	// map lumps that may appear between the ordered ones
	optionalMapLumps = map[string]bool{
		"SEGS":     true,
		"SSECTORS": true,
		"NODES":    true,
		"REJECT":   true,
		"BLOCKMAP": true,
	}
)

type header struct {
	Magic     [4]byte
	NumLumps  int32
	DirOffset int32
}

type directoryEntry struct {
	Offset int32
	Size   int32
	Name   name8
}

// Archive is a parsed WAD file.
type Archive struct {
	IsIWAD bool

	// LumpNamesInOrder lists every directory entry as it appears on disk.
	// Animation ranges for flats are resolved against this order.
	LumpNamesInOrder []string

	namespaces map[Namespace]map[string]Lump
}

// ReadFile parses the WAD at path.
func ReadFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", path)
	}

	return Parse(data)
}

// Parse parses a WAD held in memory. Lumps share data.
func Parse(data []byte) (*Archive, error) {
	var h header

	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidHeader, err.Error())
	}

	magic := string(h.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, errors.Wrapf(ErrInvalidHeader, "unknown magic %q", magic)
	}

	dirSize := int64(h.NumLumps) * int64(binary.Size(directoryEntry{}))
	if h.NumLumps < 0 || h.DirOffset < 0 || int64(h.DirOffset)+dirSize > int64(len(data)) {
		return nil, errors.Wrapf(ErrInvalidHeader, "directory (%d lumps at %d) exceeds file size %d", h.NumLumps, h.DirOffset, len(data))
	}

	entries, err := readRecords[directoryEntry](Lump{
		Name: "directory",
		data: data[h.DirOffset : int64(h.DirOffset)+dirSize],
	})
	if err != nil {
		return nil, err
	}

	lumps := make([]Lump, len(entries))

	for i, e := range entries {
		end := int64(e.Offset) + int64(e.Size)
		if e.Offset < 0 || e.Size < 0 || end > int64(len(data)) {
			return nil, errors.Wrapf(ErrCorruptedLump, "%s: range %d+%d exceeds file size %d", e.Name, e.Offset, e.Size, len(data))
		}

		lumps[i] = Lump{
			Name: e.Name.String(),
			data: data[e.Offset:end],
		}
	}

	a := &Archive{
		IsIWAD:     magic == "IWAD",
		namespaces: make(map[Namespace]map[string]Lump),
	}

	if err := a.index(lumps); err != nil {
		return nil, err
	}

	return a, nil
}

// index sorts lumps into namespaces. A lump directly followed by THINGS opens
// a map namespace, which stays open while the canonical map lumps keep coming.
func (a *Archive) index(lumps []Lump) error {
	var (
		curr    = GlobalNamespace
		mapLump = 0
	)

	a.LumpNamesInOrder = make([]string, 0, len(lumps))

	for i, lump := range lumps {
		name := strings.ToUpper(lump.Name)
		a.LumpNamesInOrder = append(a.LumpNamesInOrder, lump.Name)

		if i+1 < len(lumps) && strings.ToUpper(lumps[i+1].Name) == "THINGS" {
			curr = MapNamespace(name)
			mapLump = -1
		}

		switch name {
		case "P_START", "PP_START":
			curr = PatchNamespace
		case "S_START", "SS_START":
			curr = SpriteNamespace
		case "F_START", "FF_START":
			curr = FlatNamespace
		}

		if curr.Kind == NamespaceMap {
			switch {
			case mapLump == -1:
				mapLump = 0
			case mapLump < len(orderedMapLumps) && name == orderedMapLumps[mapLump]:
				mapLump++
			case optionalMapLumps[name]:
			case mapLump != len(orderedMapLumps):
				return errors.Wrapf(ErrCorruptedLump, "map %s: expected %s, found %s", curr.Map, orderedMapLumps[mapLump], name)
			default:
				curr = GlobalNamespace
			}
		}

		ns, ok := a.namespaces[curr]
		if !ok {
			ns = make(map[string]Lump)
			a.namespaces[curr] = ns
		}

		ns[name] = lump

		switch name {
		case "P_END", "PP_END", "S_END", "SS_END", "F_END", "FF_END":
			curr = GlobalNamespace
		}
	}

	return nil
}

// Lump returns the named lump from namespace ns.
func (a *Archive) Lump(ns Namespace, name string) (Lump, error) {
	lump, ok := a.namespaces[ns][strings.ToUpper(name)]
	if !ok {
		return Lump{}, errors.Wrapf(ErrMissingLump, "%s", name)
	}

	return lump, nil
}

// LumpNames returns the names in ns, sorted.
func (a *Archive) LumpNames(ns Namespace) []string {
	names := make([]string, 0, len(a.namespaces[ns]))
	for name := range a.namespaces[ns] {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// MapNames returns the names of all maps in the archive, sorted.
func (a *Archive) MapNames() []string {
	var names []string

	for ns := range a.namespaces {
		if ns.Kind == NamespaceMap {
			names = append(names, ns.Map)
		}
	}

	sort.Strings(names)

	return names
}

// EndText returns the ENDOOM or ENDTEXT lump, used to tell games apart.
func (a *Archive) EndText() ([]byte, bool) {
	for _, name := range []string{"ENDOOM", "ENDTEXT"} {
		if lump, err := a.Lump(GlobalNamespace, name); err == nil {
			return lump.Bytes(), true
		}
	}

	return nil, false
}
