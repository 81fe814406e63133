package wad

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"testing"

	vpk "github.com/galaco/vpk2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMap(name string) *Map {
	return &Map{
		Name: name,
		Things: []Thing{
			{X: 32, Y: 32, Angle: 90, Type: 1, SpawnFlags: 7},
		},
		Sectors: []Sector{
			{FloorHeight: 0, CeilingHeight: 128, FloorFlat: "FLOOR4_8", CeilingFlat: "F_SKY1", LightLevel: 160},
		},
		Sidedefs: []Sidedef{
			{MiddleTexture: "STARTAN3", UpperTexture: "-", LowerTexture: "-"},
		},
		Linedefs: []Linedef{
			{StartVertex: 0, EndVertex: 1, Right: 0, Left: NoSidedef},
			{StartVertex: 1, EndVertex: 2, Right: 0, Left: NoSidedef},
			{StartVertex: 2, EndVertex: 3, Right: 0, Left: NoSidedef},
			{StartVertex: 3, EndVertex: 0, Right: 0, Left: NoSidedef},
		},
		Vertices: []Vertex{{0, 0}, {0, 64}, {64, 64}, {64, 0}},
	}
}

func testArchive() []byte {
	w := NewWriter(true)
	w.AddLump("PLAYPAL", make([]byte, 768))
	w.AddMap(testMap("E1M1"))
	w.AddLump("F_START", nil)
	w.AddLump("NUKAGE1", make([]byte, 4096))
	w.AddLump("NUKAGE2", make([]byte, 4096))
	w.AddLump("F_END", nil)
	w.AddTextures([]Texture{
		{Name: "STARTAN3", Width: 128, Height: 128, Patches: []TexturePatch{{Patch: "SW11_1"}}},
		{Name: "BLODGR1", Width: 64, Height: 128, Patches: []TexturePatch{{Patch: "SW11_1"}, {XOffset: 32, Patch: "WALL02_1"}}},
	})
	w.AddLump("ENDOOM", []byte("bye"))

	return w.Bytes()
}

func TestParse(t *testing.T) {
	t.Parallel()

	a, err := Parse(testArchive())
	require.NoError(t, err)

	assert.True(t, a.IsIWAD)
	assert.Equal(t, []string{"E1M1"}, a.MapNames())
	assert.Equal(t, []string{
		"PLAYPAL", "E1M1", "THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS",
		"F_START", "NUKAGE1", "NUKAGE2", "F_END", "PNAMES", "TEXTURE1", "ENDOOM",
	}, a.LumpNamesInOrder)
	assert.Equal(t, []string{"F_END", "F_START", "NUKAGE1", "NUKAGE2"}, a.LumpNames(FlatNamespace))

	_, err = a.Lump(GlobalNamespace, "NUKAGE1")
	assert.ErrorIs(t, err, ErrMissingLump, "flats are not global")

	lump, err := a.Lump(FlatNamespace, "nukage2")
	require.NoError(t, err)
	assert.Equal(t, 4096, lump.Size())

	end, ok := a.EndText()
	assert.True(t, ok)
	assert.Equal(t, []byte("bye"), end)
}

func TestParseMap(t *testing.T) {
	t.Parallel()

	a, err := Parse(testArchive())
	require.NoError(t, err)

	m, err := a.ParseMap("e1m1")
	require.NoError(t, err)

	assert.Equal(t, testMap("E1M1"), m)

	_, err = a.ParseMap("MAP01")
	assert.ErrorIs(t, err, ErrMapDoesNotExist)
}

func TestParseInvalidHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("IWAD")},
		{"magic", append([]byte("ZWAD"), make([]byte, 8)...)},
		{"directory past end", append([]byte("PWAD\x01\x00\x00\x00\xff\x00\x00\x00"), make([]byte, 4)...)},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(test.data)
			assert.ErrorIsf(t, err, ErrInvalidHeader, "parsing %s", test.name)
		})
	}
}

func TestParseCorruptedMapOrder(t *testing.T) {
	t.Parallel()

	w := NewWriter(false)
	w.AddLump("MAP01", nil)
	w.AddLump("THINGS", nil)
	w.AddLump("SIDEDEFS", nil)

	_, err := Parse(w.Bytes())
	assert.ErrorIs(t, err, ErrCorruptedLump)
}

func TestParseMapOptionalLumpsAndTrailingGlobals(t *testing.T) {
	t.Parallel()

	m := testMap("MAP01")

	w := NewWriter(false)
	w.AddLump("MAP01", nil)
	w.AddRecords("THINGS", m.Things)
	w.AddRecords("LINEDEFS", m.Linedefs)
	w.AddRecords("SIDEDEFS", []rawSidedef{{Upper: toName8("-"), Lower: toName8("-"), Middle: toName8("STARTAN3")}})
	w.AddRecords("VERTEXES", m.Vertices)
	w.AddLump("SEGS", nil)
	w.AddLump("SSECTORS", nil)
	w.AddLump("NODES", nil)
	w.AddRecords("SECTORS", []rawSector{{CeilingHeight: 128, FloorFlat: toName8("FLOOR4_8"), CeilingFlat: toName8("F_SKY1"), LightLevel: 160}})
	w.AddLump("REJECT", nil)
	w.AddLump("BLOCKMAP", nil)
	w.AddLump("DEMO1", []byte{1})

	a, err := Parse(w.Bytes())
	require.NoError(t, err)

	assert.False(t, a.IsIWAD)

	_, err = a.Lump(GlobalNamespace, "DEMO1")
	assert.NoError(t, err, "lumps after a map return to the global namespace")

	parsed, err := a.ParseMap("MAP01")
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestParseMapMissingLumps(t *testing.T) {
	t.Parallel()

	w := NewWriter(false)
	w.AddLump("MAP01", nil)
	w.AddLump("THINGS", nil)
	w.AddLump("LINEDEFS", nil)

	a, err := Parse(w.Bytes())
	require.NoError(t, err)

	_, err = a.ParseMap("MAP01")
	assert.ErrorIs(t, err, ErrMissingLump)

	var missing MissingLumpsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"SIDEDEFS", "VERTEXES", "SECTORS"}, missing.MissingLumps)
}

func TestParseMapCorruptedRecords(t *testing.T) {
	t.Parallel()

	w := NewWriter(false)
	w.AddLump("MAP01", nil)
	w.AddLump("THINGS", make([]byte, 11))
	w.AddLump("LINEDEFS", nil)
	w.AddLump("SIDEDEFS", nil)
	w.AddLump("VERTEXES", nil)
	w.AddLump("SECTORS", nil)

	a, err := Parse(w.Bytes())
	require.NoError(t, err)

	_, err = a.ParseMap("MAP01")
	assert.ErrorIs(t, err, ErrCorruptedLump)
}

func TestMapValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(m *Map)
	}{
		{"sidedef sector", func(m *Map) { m.Sidedefs[0].Sector = 3 }},
		{"linedef vertex", func(m *Map) { m.Linedefs[2].EndVertex = 9 }},
		{"linedef sidedef", func(m *Map) { m.Linedefs[1].Left = 5 }},
	}

	assert.NoError(t, testMap("E1M1").Validate())

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			m := testMap("E1M1")
			test.mutate(m)

			assert.ErrorIsf(t, m.Validate(), ErrInvalidReference, "validating %s", test.name)
		})
	}
}

func TestLinedefSides(t *testing.T) {
	t.Parallel()

	l := Linedef{Right: 4, Left: NoSidedef}

	right, ok := l.RightSidedef()
	assert.True(t, ok)
	assert.Equal(t, 4, right)

	_, ok = l.LeftSidedef()
	assert.False(t, ok)
	assert.False(t, l.TwoSided())
}

func TestTextures(t *testing.T) {
	t.Parallel()

	a, err := Parse(testArchive())
	require.NoError(t, err)

	names, err := a.TextureNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"STARTAN3", "BLODGR1"}, names)

	textures, err := a.Textures()
	require.NoError(t, err)
	assert.Equal(t, []TexturePatch{{Patch: "SW11_1"}, {XOffset: 32, Patch: "WALL02_1"}}, textures[1].Patches)
	assert.True(t, textures[1].Priority)

	patches, err := a.PatchNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"SW11_1", "WALL02_1"}, patches)
}

func TestTexturesMissing(t *testing.T) {
	t.Parallel()

	w := NewWriter(false)
	w.AddLump("PLAYPAL", nil)

	a, err := Parse(w.Bytes())
	require.NoError(t, err)

	_, err = a.TextureNames()
	assert.ErrorIs(t, err, ErrMissingLump)
}

func TestWriterAddRecordsRejectsDynamicTypes(t *testing.T) {
	t.Parallel()

	w := NewWriter(false)

	assert.Panics(t, func() { w.AddRecords("THINGS", []string{"not", "fixed"}) })
	assert.NotPanics(t, func() { w.AddRecords("THINGS", []Thing{{Type: 1}}) })
}

func TestFileSystem(t *testing.T) {
	t.Parallel()

	data := testArchive()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doom1.wad"), data, 0o600))

	var zipBuf bytes.Buffer

	zw := zip.NewWriter(&zipBuf)
	f, err := zw.Create("Maps/FREEDOOM.WAD")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(zipBuf.Bytes()), int64(zipBuf.Len()))
	require.NoError(t, err)

	fs := NewFileSystem([]string{dir}, []*zip.Reader{zr}, nil)

	a, err := fs.ReadArchive("doom1.wad")
	require.NoError(t, err)
	assert.Equal(t, []string{"E1M1"}, a.MapNames())

	a, err = fs.ReadArchive("maps/freedoom.wad")
	require.NoError(t, err, "zip lookup is case-insensitive")
	assert.True(t, a.IsIWAD)

	_, err = fs.ReadArchive("heretic.wad")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

// writeVPK writes a version 2 VPK holding a single file stored in the
// directory tree as preload data.
func writeVPK(t *testing.T, path, dir, base, ext string, data []byte) {
	t.Helper()

	require.Less(t, len(data), 1<<16)

	var tree bytes.Buffer

	for _, s := range []string{ext, dir, base} {
		tree.WriteString(s)
		tree.WriteByte(0)
	}

	require.NoError(t, binary.Write(&tree, binary.LittleEndian, struct {
		CRC          uint32
		PreloadBytes uint16
		ArchiveIndex int16
		Offset       uint32
		Length       uint32
		Terminator   uint16
	}{
		CRC:          crc32.ChecksumIEEE(data),
		PreloadBytes: uint16(len(data)),
		ArchiveIndex: 0x7fff,
		Terminator:   0xffff,
	}))
	tree.Write(data)
	tree.Write([]byte{0, 0, 0})

	var out bytes.Buffer

	header := []uint32{0x55aa1234, 2, uint32(tree.Len()), 0, 0, 0, 0}
	require.NoError(t, binary.Write(&out, binary.LittleEndian, header))
	out.Write(tree.Bytes())

	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o600))
}

type vpkEntry struct {
	rel  string
	data []byte
}

func (e vpkEntry) Rel() string { return e.rel }

func (e vpkEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func TestFileSystemVPK(t *testing.T) {
	t.Parallel()

	data := testArchive()
	dir := t.TempDir()

	pak := filepath.Join(dir, "pak01.vpk")
	writeVPK(t, pak, "maps", "doom2", "wad", data)

	vpks, err := OpenVPKs([]string{pak})
	require.NoError(t, err)
	require.Len(t, vpks, 1)
	assert.Equal(t, []string{"maps/doom2.wad"}, vpks[0].Paths())

	fs := NewFileSystem([]string{t.TempDir()}, nil, vpks)

	a, err := fs.ReadArchive("Maps/DOOM2.WAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"E1M1"}, a.MapNames())
	assert.True(t, a.IsIWAD)

	_, err = fs.ReadArchive("maps/doom.wad")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestOpenVPKsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	v1 := filepath.Join(dir, "v1.vpk")
	require.NoError(t, vpk.Create(vpk.SingleVPKCreator(v1), []vpk.Entry{
		vpkEntry{rel: "maps/doom2.wad", data: testArchive()},
	}, -1))

	garbage := filepath.Join(dir, "garbage.vpk")
	require.NoError(t, os.WriteFile(garbage, []byte("PWAD not a vpk at all"), 0o600))

	tests := []struct {
		name  string
		paths []string
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing",
			paths: []string{filepath.Join(dir, "missing.vpk")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name:  "missing multi part",
			paths: []string{filepath.Join(dir, "pak01_dir.vpk")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name:  "unsupported version",
			paths: []string{v1},
			check: func(t *testing.T, err error) {
				var version vpk.ErrUnsupportedVersion
				require.ErrorAs(t, err, &version)
				assert.EqualValues(t, 1, version)
			},
		},
		{
			name:  "bad magic",
			paths: []string{garbage},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, vpk.ErrInvalidMagic)
			},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			vpks, err := OpenVPKs(tt.paths)
			require.Error(t, err)
			assert.Nil(t, vpks)
			assert.Contains(t, err.Error(), filepath.Base(tt.paths[0]))
			tt.check(t, err)
		})
	}
}
