package gpu

import (
	"encoding/binary"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/idscene"
	"github.com/saiko-tech/idscene/pkg/wad"
)

const (
	// MagicOffsetInvalid is the image offset of anything without an image.
	MagicOffsetInvalid uint32 = 0
	// MagicOffsetSky is the image offset of the sky.
	MagicOffsetSky uint32 = 8

	flatSize = 64
)

// ImageLookup resolves a texture to the byte offset of its decoded image in
// image storage.
type ImageLookup interface {
	Lookup(ref idscene.TextureRef) (uint32, bool)
}

// ImageTable is an ImageLookup backed by a map. The sky is always present.
type ImageTable struct {
	offsets map[idscene.TextureRef]uint32
	size    uint32
}

func NewImageTable() *ImageTable {
	return &ImageTable{
		offsets: map[idscene.TextureRef]uint32{idscene.SkyTexture: MagicOffsetSky},
		size:    MagicOffsetSky,
	}
}

func (t *ImageTable) Add(ref idscene.TextureRef, offset uint32) {
	t.offsets[ref] = offset
}

func (t *ImageTable) Lookup(ref idscene.TextureRef) (uint32, bool) {
	o, ok := t.offsets[ref]
	return o, ok
}

func (t *ImageTable) Len() int {
	return len(t.offsets)
}

// StorageSize is the number of bytes the laid out images occupy.
func (t *ImageTable) StorageSize() uint32 {
	return t.size
}

// place appends an image of w*h palette indices behind its 8 byte header.
func (t *ImageTable) place(ref idscene.TextureRef, w, h uint32) {
	offset := uint32(alignSize(uint64(t.size)))
	t.offsets[ref] = offset
	t.size = offset + 8 + w*h
}

// BuildImageTable lays out image storage for refs the way the palette image
// buffer is packed: offset 0 is reserved for "no image", the sky texture
// comes first at MagicOffsetSky, then every image as width, height (u32
// each) followed by its pixels, 4-byte aligned. Images are not decoded; only
// their sizes are read from the archive. Refs without an image are left out.
func BuildImageTable(archive *wad.Archive, refs []idscene.TextureRef) (*ImageTable, error) {
	t := NewImageTable()

	textures, err := archive.Textures()
	if err != nil && !errors.Is(err, wad.ErrMissingLump) {
		return nil, errors.Wrap(err, "failed to read textures")
	}

	sizes := make(map[string][2]uint32, len(textures))
	for _, tex := range textures {
		sizes[tex.Name] = [2]uint32{uint32(tex.Width), uint32(tex.Height)}
	}

	// an empty image keeps the sky slot reserved when SKY1 is missing
	sky := sizes[idscene.SkyTextureName]
	t.place(idscene.SkyTexture, sky[0], sky[1])

	for _, ref := range refs {
		if _, ok := t.offsets[ref]; ok {
			continue
		}

		switch ref.Kind {
		case idscene.TextureFlat:
			if _, err := archive.Lump(wad.FlatNamespace, ref.Name); err == nil {
				t.place(ref, flatSize, flatSize)
			}
		case idscene.TextureWall:
			if s, ok := sizes[ref.Name]; ok {
				t.place(ref, s[0], s[1])
			}
		case idscene.TextureSprite:
			if w, h, ok := spriteSize(archive, ref.Name); ok {
				t.place(ref, w, h)
			}
		}
	}

	return t, nil
}

// spriteSize reads the picture header of a sprite lump. Sprites are stored
// per rotation, so NAMEF looks for NAMEF0 and then NAMEF1.
func spriteSize(archive *wad.Archive, name string) (w, h uint32, ok bool) {
	for _, suffix := range []string{"", "0", "1"} {
		lump, err := archive.Lump(wad.SpriteNamespace, name+suffix)
		if err != nil || lump.Size() < 4 {
			continue
		}

		b := lump.Bytes()

		return uint32(binary.LittleEndian.Uint16(b[0:2])), uint32(binary.LittleEndian.Uint16(b[2:4])), true
	}

	return 0, 0, false
}

// imageResolver turns texture components into image offsets. Misses degrade
// to MagicOffsetInvalid and are logged once per texture.
type imageResolver struct {
	lookup  ImageLookup
	log     *slog.Logger
	missing map[idscene.TextureRef]struct{}
}

func newImageResolver(lookup ImageLookup, log *slog.Logger) *imageResolver {
	if lookup == nil {
		lookup = NewImageTable()
	}

	return &imageResolver{
		lookup:  lookup,
		log:     log,
		missing: make(map[idscene.TextureRef]struct{}),
	}
}

// offset resolves ref; has is false for entities without that texture.
func (r *imageResolver) offset(ref *idscene.TextureRef, has bool) uint32 {
	if !has {
		return MagicOffsetInvalid
	}

	if ref.IsSky() {
		return MagicOffsetSky
	}

	if o, ok := r.lookup.Lookup(*ref); ok {
		return o
	}

	if _, seen := r.missing[*ref]; !seen {
		r.missing[*ref] = struct{}{}
		r.log.Warn("texture not found", slog.String("texture", ref.String()))
	}

	return MagicOffsetInvalid
}

func (r *imageResolver) missingCount() int {
	return len(r.missing)
}
