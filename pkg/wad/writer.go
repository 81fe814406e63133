package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Writer assembles a WAD in memory.
type Writer struct {
	iwad    bool
	entries []directoryEntry
	data    bytes.Buffer
}

func NewWriter(iwad bool) *Writer {
	w := &Writer{iwad: iwad}
	// header is patched in by Bytes
	w.data.Write(make([]byte, binary.Size(header{})))

	return w
}

// AddLump appends a lump. Names longer than 8 bytes are truncated.
func (w *Writer) AddLump(name string, data []byte) {
	w.entries = append(w.entries, directoryEntry{
		Offset: int32(w.data.Len()),
		Size:   int32(len(data)),
		Name:   toName8(name),
	})
	w.data.Write(data)
}

// AddRecords appends a lump holding fixed-size records. It panics if
// records has no fixed-size encoding.
func (w *Writer) AddRecords(name string, records any) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, records); err != nil {
		panic(fmt.Sprintf("wad: cannot encode %s records: %v", name, err))
	}

	w.AddLump(name, buf.Bytes())
}

// AddMap appends a map marker followed by its record lumps.
func (w *Writer) AddMap(m *Map) {
	sectors := make([]rawSector, len(m.Sectors))
	for i, s := range m.Sectors {
		sectors[i] = rawSector{
			FloorHeight:   s.FloorHeight,
			CeilingHeight: s.CeilingHeight,
			FloorFlat:     toName8(s.FloorFlat),
			CeilingFlat:   toName8(s.CeilingFlat),
			LightLevel:    s.LightLevel,
			SpecialType:   s.SpecialType,
			Tag:           s.Tag,
		}
	}

	sidedefs := make([]rawSidedef, len(m.Sidedefs))
	for i, s := range m.Sidedefs {
		sidedefs[i] = rawSidedef{
			XOffset: s.XOffset,
			YOffset: s.YOffset,
			Upper:   toName8(s.UpperTexture),
			Lower:   toName8(s.LowerTexture),
			Middle:  toName8(s.MiddleTexture),
			Sector:  s.Sector,
		}
	}

	w.AddLump(m.Name, nil)
	w.AddRecords("THINGS", nonNil(m.Things))
	w.AddRecords("LINEDEFS", nonNil(m.Linedefs))
	w.AddRecords("SIDEDEFS", sidedefs)
	w.AddRecords("VERTEXES", nonNil(m.Vertices))
	w.AddRecords("SECTORS", sectors)
}

// AddTextures appends PNAMES and a TEXTURE1 lump describing textures.
// Patches are numbered in order of first use.
func (w *Writer) AddTextures(textures []Texture) {
	var (
		patchNames []string
		patchIndex = make(map[string]uint16)
		body       bytes.Buffer
		offsets    = make([]int32, len(textures))
		headerSize = 4 + 4*len(textures)
	)

	for i, t := range textures {
		offsets[i] = int32(headerSize + body.Len())

		_ = binary.Write(&body, binary.LittleEndian, rawTextureHeader{
			Name:     toName8(t.Name),
			Width:    t.Width,
			Height:   t.Height,
			NumPatch: uint16(len(t.Patches)),
		})

		for _, p := range t.Patches {
			idx, ok := patchIndex[p.Patch]
			if !ok {
				idx = uint16(len(patchNames))
				patchIndex[p.Patch] = idx
				patchNames = append(patchNames, p.Patch)
			}

			_ = binary.Write(&body, binary.LittleEndian, rawTexturePatch{
				XOffset: p.XOffset,
				YOffset: p.YOffset,
				Patch:   idx,
			})
		}
	}

	var pnames bytes.Buffer

	_ = binary.Write(&pnames, binary.LittleEndian, uint32(len(patchNames)))
	for _, n := range patchNames {
		name := toName8(n)
		pnames.Write(name[:])
	}

	var tex bytes.Buffer

	_ = binary.Write(&tex, binary.LittleEndian, uint32(len(textures)))
	_ = binary.Write(&tex, binary.LittleEndian, offsets)
	tex.Write(body.Bytes())

	w.AddLump("PNAMES", pnames.Bytes())
	w.AddLump("TEXTURE1", tex.Bytes())
}

// Bytes returns the finished archive. The writer may keep being used.
func (w *Writer) Bytes() []byte {
	var out bytes.Buffer

	out.Write(w.data.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, w.entries)

	magic := [4]byte{'P', 'W', 'A', 'D'}
	if w.iwad {
		magic = [4]byte{'I', 'W', 'A', 'D'}
	}

	var h bytes.Buffer

	_ = binary.Write(&h, binary.LittleEndian, header{
		Magic:     magic,
		NumLumps:  int32(len(w.entries)),
		DirOffset: int32(w.data.Len()),
	})

	result := out.Bytes()
	copy(result, h.Bytes())

	return result
}

func toName8(s string) name8 {
	var n name8

	copy(n[:], strings.ToUpper(s))

	return n
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
