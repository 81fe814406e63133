package gpu

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiko-tech/idscene/pkg/ecs"
	"github.com/saiko-tech/idscene/pkg/gameconfig"
	"github.com/saiko-tech/idscene/pkg/geom"
	"github.com/saiko-tech/idscene/pkg/idscene"
	"github.com/saiko-tech/idscene/pkg/wad"
)

const sceneConfig = `
walls:
  - [BLODGR1, BLODGR2]
flats:
  - [NUKAGE1, NUKAGE2]
things:
  - {type: 3004, flags: "M*", radius: 20, height: 56, sprite: POSS, sequence: "AB+"}
`

// sceneMap is two 64x64 sky rooms joined by the two-sided linedef 2. Sector
// 0 has an animated floor.
func sceneMap() *wad.Map {
	return &wad.Map{
		Name: "E1M1",
		Things: []wad.Thing{
			{X: 32, Y: 32, Angle: 90, Type: idscene.PlayerStartType},
			{X: 96, Y: 32, Type: 3004},
			{X: 100, Y: 40, Type: 3004},
		},
		Sectors: []wad.Sector{
			{FloorHeight: 0, CeilingHeight: 128, FloorFlat: "NUKAGE1", CeilingFlat: idscene.SkyFlatName, LightLevel: 160},
			{FloorHeight: 16, CeilingHeight: 96, FloorFlat: "FLOOR4_8", CeilingFlat: idscene.SkyFlatName, LightLevel: 192},
		},
		Sidedefs: []wad.Sidedef{
			{MiddleTexture: "STARTAN3", UpperTexture: "-", LowerTexture: "-", Sector: 0},
			{MiddleTexture: "STARTAN3", UpperTexture: "-", LowerTexture: "-", Sector: 0},
			{MiddleTexture: "-", UpperTexture: "-", LowerTexture: "STEP1", Sector: 0},
			{MiddleTexture: "-", UpperTexture: "BLODGR1", LowerTexture: "-", Sector: 1},
			{MiddleTexture: "STARTAN3", UpperTexture: "-", LowerTexture: "-", Sector: 0},
			{MiddleTexture: "BLODGR1", UpperTexture: "-", LowerTexture: "-", Sector: 1},
			{MiddleTexture: "STARTAN3", UpperTexture: "-", LowerTexture: "-", Sector: 1},
			{MiddleTexture: "STARTAN3", UpperTexture: "-", LowerTexture: "-", Sector: 1},
		},
		Linedefs: []wad.Linedef{
			{StartVertex: 0, EndVertex: 1, Right: 0, Left: wad.NoSidedef},
			{StartVertex: 1, EndVertex: 2, Right: 1, Left: wad.NoSidedef},
			{StartVertex: 2, EndVertex: 3, Right: 2, Left: 3, Flags: 4},
			{StartVertex: 3, EndVertex: 0, Right: 4, Left: wad.NoSidedef},
			{StartVertex: 2, EndVertex: 4, Right: 5, Left: wad.NoSidedef},
			{StartVertex: 4, EndVertex: 5, Right: 6, Left: wad.NoSidedef},
			{StartVertex: 5, EndVertex: 3, Right: 7, Left: wad.NoSidedef},
		},
		Vertices: []wad.Vertex{{0, 0}, {0, 64}, {64, 64}, {64, 0}, {128, 64}, {128, 0}},
	}
}

func sceneWorld(t *testing.T) *idscene.World {
	t.Helper()

	cfg, err := gameconfig.Parse([]byte(sceneConfig))
	require.NoError(t, err)

	anims := idscene.NewAnimationStateMap(cfg, []string{"NUKAGE1", "NUKAGE2"}, []string{"BLODGR1", "BLODGR2"}, idscene.Logger())

	w, err := idscene.NewWorld(sceneMap(), cfg, anims)
	require.NoError(t, err)

	return w
}

func sceneImages() *ImageTable {
	table := NewImageTable()
	table.Add(idscene.WallTexture("STARTAN3"), 100)
	table.Add(idscene.WallTexture("BLODGR1"), 200)
	table.Add(idscene.WallTexture("BLODGR2"), 300)
	table.Add(idscene.FlatTexture("NUKAGE1"), 400)
	table.Add(idscene.FlatTexture("NUKAGE2"), 500)
	table.Add(idscene.FlatTexture("FLOOR4_8"), 600)
	table.Add(idscene.SpriteTexture("POSSA"), 700)

	return table
}

func smallCapacity() Capacity {
	return Capacity{Sectors: 8, Walls: 32, Things: 8, SectorVertices: 64, SectorIndices: 128}
}

func newTestScene(t *testing.T, sub *MemorySubstrate) *Scene {
	t.Helper()

	scene, err := NewScene(sub, sceneImages(), WithCapacity(smallCapacity()), WithLabel("test"))
	require.NoError(t, err)

	return scene
}

func tick(t *testing.T, w *idscene.World, scene *Scene) {
	t.Helper()

	w.Think()
	require.NoError(t, scene.Think(w))
	w.ThinkEnd()
}

func readRecord[T any](t *testing.T, sub *MemorySubstrate, records *RecordBuffer[T], index uint32) T {
	t.Helper()

	data, err := sub.Contents(records.Buffer())
	require.NoError(t, err)

	var v T

	offset := uint64(index) * records.Stride()
	require.NoError(t, binary.Read(bytes.NewReader(data[offset:offset+records.Stride()]), binary.LittleEndian, &v))

	return v
}

func sectorEntity(t *testing.T, w *idscene.World, index int) ecs.Entity {
	t.Helper()

	for _, e := range w.Sectors.Entities() {
		if s, _ := w.Sectors.Get(e); s.Index == index {
			return e
		}
	}

	require.Failf(t, "missing sector", "sector %d", index)

	return ecs.Entity{}
}

func TestSceneFirstTick(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	w := sceneWorld(t)
	scene := newTestScene(t, sub)

	tick(t, w, scene)

	stats := scene.Stats()
	assert.Equal(t, 1, stats.Ticks)
	assert.Equal(t, 2, stats.Sectors)
	assert.Equal(t, 9, stats.Walls)
	assert.Equal(t, 2, stats.Things, "the player has no thing record")
	assert.Equal(t, uint32(8), stats.MeshVertices)
	assert.Equal(t, uint32(12), stats.MeshIndices)
	assert.Equal(t, 1, stats.MeshRebuilds)
	assert.Equal(t, 1, stats.MissingImages, "STEP1 has no image")

	assert.Equal(t, uint32(9), scene.Walls.InstanceCount())
	assert.Equal(t, uint32(2), scene.Things.InstanceCount())

	west := sectorEntity(t, w, 0)
	westSlot := scene.Sectors.SlotForSectorIndex(0)

	rec := readRecord(t, sub, scene.Sectors.Records(), westSlot)
	assert.Equal(t, SectorRecord{
		FloorHeight:   0,
		CeilingHeight: 128,
		CeilingImage:  MagicOffsetSky,
		FloorImage:    400,
		LightLevel:    160,
	}, rec)

	// every mesh vertex points at a live sector record
	for i := uint32(0); i < stats.MeshVertices; i++ {
		v := readRecord(t, sub, scene.Sectors.Vertices(), i)
		assert.Contains(t, []uint32{westSlot, scene.Sectors.SlotForSectorIndex(1)}, v.StorageIndex)
	}

	assert.Equal(t, westSlot, scene.Sectors.slots.slot(west).Offset)

	uniforms := readRecord(t, sub, scene.Uniforms(), 0)
	assert.Equal(t, w.CVars.Uniforms(), uniforms)
	assert.Equal(t, uint32(4), uniforms.MSAA)

	// nothing changed, nothing rebuilt
	tick(t, w, scene)
	assert.Equal(t, 1, scene.Stats().MeshRebuilds)
}

func TestSceneWallRecords(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	w := sceneWorld(t)
	scene := newTestScene(t, sub)

	tick(t, w, scene)

	west := scene.Sectors.SlotForSectorIndex(0)
	east := scene.Sectors.SlotForSectorIndex(1)

	var oneSided, twoSided int

	w.Walls.Each(func(e ecs.Entity, wall *idscene.Wall) bool {
		rec := readRecord(t, sub, scene.Walls.Records(), scene.Walls.slots.slot(e).Offset)

		assert.Equal(t, uint32(wall.Kind), rec.Kind)
		assert.Equal(t, wall.Start, rec.Start)
		assert.Equal(t, wall.End, rec.End)

		if !w.TwoSided.Has(e) {
			oneSided++

			assert.Equal(t, uint32(NoBackSector), rec.BackSector)
			assert.Contains(t, []uint32{100, 200}, rec.Image, "one-sided walls are STARTAN3 or BLODGR1")

			return true
		}

		twoSided++

		switch wall.SectorIndex {
		case 0:
			assert.Equal(t, west, rec.Sector)
			assert.Equal(t, east, rec.BackSector)
		case 1:
			assert.Equal(t, east, rec.Sector)
			assert.Equal(t, west, rec.BackSector)
		}

		if wall.Kind == idscene.WallUpper {
			assert.Equal(t, MagicOffsetSky, rec.Image, "upper walls between sky sectors")
		}

		if wall.Kind == idscene.WallLower {
			assert.Equal(t, MagicOffsetInvalid, rec.Image, "STEP1 has no image")
			assert.Equal(t, uint32(4), rec.Flags)
		}

		return true
	})

	assert.Equal(t, 6, oneSided)
	assert.Equal(t, 3, twoSided)
}

func TestSceneAnimationUpdatesInPlace(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	w := sceneWorld(t)
	scene := newTestScene(t, sub)

	tick(t, w, scene)

	slot := scene.Sectors.SlotForSectorIndex(0)
	writes := sub.Stats().Writes

	for w.Tick() < idscene.AnimationInterval-1 {
		tick(t, w, scene)
	}

	assert.Equal(t, 400, int(readRecord(t, sub, scene.Sectors.Records(), slot).FloorImage))
	assert.Equal(t, writes+int(w.Tick()-1), sub.Stats().Writes, "idle ticks only write uniforms")

	tick(t, w, scene)

	assert.Equal(t, 500, int(readRecord(t, sub, scene.Sectors.Records(), slot).FloorImage))
	assert.Equal(t, 1, scene.Stats().MeshRebuilds, "texture changes keep the mesh")
}

func TestSceneTopologyRebuild(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	w := sceneWorld(t)
	scene := newTestScene(t, sub)

	tick(t, w, scene)

	east := sectorEntity(t, w, 1)
	require.True(t, w.EditSector(east, func(s *idscene.Sector) {
		s.Triangles.Set([]geom.Triangles{})
	}))

	tick(t, w, scene)

	stats := scene.Stats()
	assert.Equal(t, 2, stats.MeshRebuilds)
	assert.Equal(t, uint32(4), stats.MeshVertices)
	assert.Equal(t, uint32(6), stats.MeshIndices)

	west := scene.Sectors.SlotForSectorIndex(0)
	for i := uint32(0); i < stats.MeshVertices; i++ {
		assert.Equal(t, west, readRecord(t, sub, scene.Sectors.Vertices(), i).StorageIndex)
	}

	// a plain attribute edit does not rebuild
	require.True(t, w.EditSector(east, func(s *idscene.Sector) {
		s.LightLevel = 255
	}))

	tick(t, w, scene)

	assert.Equal(t, 2, scene.Stats().MeshRebuilds)
	assert.Equal(t, uint32(255), readRecord(t, sub, scene.Sectors.Records(), scene.Sectors.SlotForSectorIndex(1)).LightLevel)
}

func TestSceneDespawn(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	w := sceneWorld(t)
	scene := newTestScene(t, sub)

	tick(t, w, scene)

	things := w.Things.Entities()
	require.Len(t, things, 2)

	first := scene.Things.slots.slot(things[0])
	require.True(t, w.Despawn(things[0]))

	tick(t, w, scene)

	assert.Equal(t, 1, scene.Things.Len())

	_, ok := scene.Things.slots.lookup(things[0])
	assert.False(t, ok)

	assert.Equal(t, uint32(2), scene.Things.InstanceCount(), "the live thing still sits in slot 1")
	assert.Zero(t, readRecord(t, sub, scene.Things.Records(), first.Offset), "the freed record is cleared")
	assert.NotZero(t, readRecord(t, sub, scene.Things.Records(), scene.Things.slots.slot(things[1]).Offset))

	a, err := scene.Things.slots.alloc.Allocate(1)
	require.NoError(t, err)
	assert.Equal(t, first, a, "the freed slot is handed out again")
}

func TestSceneDespawnWallClearsRecord(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	w := sceneWorld(t)
	scene := newTestScene(t, sub)

	tick(t, w, scene)

	walls := w.Walls.Entities()
	slot := scene.Walls.slots.slot(walls[0])
	require.NotZero(t, readRecord(t, sub, scene.Walls.Records(), slot.Offset))

	require.True(t, w.Despawn(walls[0]))
	tick(t, w, scene)

	assert.Equal(t, 8, scene.Walls.Len())
	assert.Equal(t, uint32(9), scene.Walls.InstanceCount())
	assert.Zero(t, readRecord(t, sub, scene.Walls.Records(), slot.Offset))
}

func TestSceneChangedWithoutSlot(t *testing.T) {
	t.Parallel()

	w := sceneWorld(t)
	scene := newTestScene(t, NewMemorySubstrate())

	// the spawns of the first tick never reach the scene
	w.Think()
	w.ThinkEnd()

	w.MarkChanged(w.Things.Entities()[0])

	assert.Panics(t, func() { _ = scene.Think(w) })
}

func TestSceneOutOfSpace(t *testing.T) {
	t.Parallel()

	c := smallCapacity()
	c.Walls = 4

	scene, err := NewScene(NewMemorySubstrate(), sceneImages(), WithCapacity(c))
	require.NoError(t, err)

	err = scene.Think(sceneWorld(t))
	assert.ErrorIs(t, err, ErrOutOfSpace)
}

func TestSceneRelease(t *testing.T) {
	t.Parallel()

	sub := NewMemorySubstrate()
	scene := newTestScene(t, sub)

	// sector records, vertices, indices, two records + quads, uniforms
	assert.Equal(t, 8, sub.Stats().LiveBuffers)

	scene.Release()
	assert.Zero(t, sub.Stats().LiveBuffers)
}
