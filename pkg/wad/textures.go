package wad

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// TexturePatch places a patch inside a composite wall texture.
type TexturePatch struct {
	XOffset, YOffset int16
	Patch            string
}

// Texture is a composite wall texture from TEXTURE1 or TEXTURE2.
type Texture struct {
	Name string
	// Priority is set for TEXTURE1 entries (the shareware set).
	Priority bool
	Width    uint16
	Height   uint16
	Patches  []TexturePatch
}

type rawTextureHeader struct {
	Name      name8
	Masked    int32
	Width     uint16
	Height    uint16
	ColumnDir int32
	NumPatch  uint16
}

type rawTexturePatch struct {
	XOffset  int16
	YOffset  int16
	Patch    uint16
	StepDir  int16
	Colormap int16
}

// PatchNames decodes PNAMES.
func (a *Archive) PatchNames() ([]string, error) {
	lump, err := a.Lump(GlobalNamespace, "PNAMES")
	if err != nil {
		return nil, err
	}

	data := lump.Bytes()
	if len(data) < 4 || len(data)%8 != 4 {
		return nil, errors.Wrapf(ErrCorruptedLump, "PNAMES: size %d", len(data))
	}

	count := binary.LittleEndian.Uint32(data)
	if uint64(len(data)) != uint64(count)*8+4 {
		return nil, errors.Wrapf(ErrCorruptedLump, "PNAMES: %d names in %d bytes", count, len(data))
	}

	names, err := readRecords[name8](Lump{Name: lump.Name, data: data[4:]})
	if err != nil {
		return nil, err
	}

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}

	return out, nil
}

// Textures decodes TEXTURE1 and TEXTURE2 in declaration order. A name defined
// twice keeps its first position and the later definition.
func (a *Archive) Textures() ([]Texture, error) {
	var lumps []Lump

	for _, name := range []string{"TEXTURE1", "TEXTURE2"} {
		if lump, err := a.Lump(GlobalNamespace, name); err == nil {
			lumps = append(lumps, lump)
		}
	}

	if len(lumps) == 0 {
		return nil, errors.Wrap(ErrMissingLump, "TEXTURE1")
	}

	patchNames, err := a.PatchNames()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read patch names")
	}

	var (
		textures []Texture
		position = make(map[string]int)
	)

	for _, lump := range lumps {
		parsed, err := parseTextureLump(lump, patchNames)
		if err != nil {
			return nil, err
		}

		for _, tex := range parsed {
			key := strings.ToUpper(tex.Name)
			if i, ok := position[key]; ok {
				textures[i] = tex
				continue
			}

			position[key] = len(textures)
			textures = append(textures, tex)
		}
	}

	return textures, nil
}

// TextureNames returns the wall texture names in declaration order.
// Animation ranges for walls are resolved against this order.
func (a *Archive) TextureNames() ([]string, error) {
	textures, err := a.Textures()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(textures))
	for i, t := range textures {
		names[i] = t.Name
	}

	return names, nil
}

func parseTextureLump(lump Lump, patchNames []string) ([]Texture, error) {
	data := lump.Bytes()
	if len(data) < 4 {
		return nil, errors.Wrapf(ErrCorruptedLump, "%s: size %d", lump.Name, len(data))
	}

	count := int(binary.LittleEndian.Uint32(data))
	if count < 0 || 4+count*4 > len(data) {
		return nil, errors.Wrapf(ErrCorruptedLump, "%s: %d textures in %d bytes", lump.Name, count, len(data))
	}

	offsets := make([]int32, count)

	err := binary.Read(bytes.NewReader(data[4:4+count*4]), binary.LittleEndian, offsets)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s offsets", lump.Name)
	}

	textures := make([]Texture, 0, count)

	for i, off := range offsets {
		if off < 0 || int(off) >= len(data) {
			return nil, errors.Wrapf(ErrCorruptedLump, "%s: texture %d at offset %d", lump.Name, i, off)
		}

		r := bytes.NewReader(data[off:])

		var h rawTextureHeader
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			return nil, errors.Wrapf(ErrCorruptedLump, "%s: texture %d: %v", lump.Name, i, err)
		}

		patches := make([]rawTexturePatch, h.NumPatch)
		if err := binary.Read(r, binary.LittleEndian, patches); err != nil {
			return nil, errors.Wrapf(ErrCorruptedLump, "%s: texture %s patches: %v", lump.Name, h.Name, err)
		}

		tex := Texture{
			Name:     h.Name.String(),
			Priority: strings.EqualFold(lump.Name, "TEXTURE1"),
			Width:    h.Width,
			Height:   h.Height,
			Patches:  make([]TexturePatch, len(patches)),
		}

		for j, p := range patches {
			if int(p.Patch) >= len(patchNames) {
				return nil, errors.Wrapf(ErrInvalidReference, "texture %s references patch %d of %d", tex.Name, p.Patch, len(patchNames))
			}

			tex.Patches[j] = TexturePatch{
				XOffset: p.XOffset,
				YOffset: p.YOffset,
				Patch:   patchNames[p.Patch],
			}
		}

		textures = append(textures, tex)
	}

	return textures, nil
}
