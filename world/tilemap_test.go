package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
)

const testMap = `{
	"tile_width": 16,
	"tile_height": 16,
	"width": 4,
	"height": 4,
	"columns": 8,
	"layers": [
		{"z": 0, "tiles": [{"x": 0, "y": 0, "id": 0}, {"x": 1, "y": 0, "id": 9}]},
		{"z": 1, "tiles": [{"x": 2, "y": 3, "id": 3}]}
	]
}`

func writeTilemap(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTilemapRegisters(t *testing.T) {
	w := newTestWorld()
	path := writeTilemap(t, testMap)

	if err := w.LoadTilemap(keys.New("dungeon"), path, keys.New("tiles")); err != nil {
		t.Fatal(err)
	}

	def, ok := w.Tilemaps.Get(keys.New("dungeon"))
	if !ok {
		t.Fatal("tilemap not registered")
	}
	if def.TileWidth != 16 || def.Columns != 8 || len(def.Layers) != 2 {
		t.Errorf("def = %+v", def)
	}
	if def.Atlas != keys.New("tiles") {
		t.Error("atlas key not attached")
	}
}

func TestLoadTilemapRejectsBadFiles(t *testing.T) {
	w := newTestWorld()

	if err := w.LoadTilemap(keys.New("x"), "missing.json", keys.New("a")); err == nil {
		t.Error("missing file accepted")
	}

	bad := writeTilemap(t, `{"tile_width": 0, "tile_height": 16, "columns": 4}`)
	if err := w.LoadTilemap(keys.New("x"), bad, keys.New("a")); err == nil {
		t.Error("non-positive tile size accepted")
	}
}

func TestTilemapCommandSpawnsTiles(t *testing.T) {
	w := newTestWorld()
	path := writeTilemap(t, testMap)
	if err := w.LoadTilemap(keys.New("dungeon"), path, keys.New("tiles")); err != nil {
		t.Fatal(err)
	}

	w.Queues.PushTilemap(TilemapCommand{ID: "dungeon", OriginX: 100, OriginY: 200})
	w.DrainFrame()

	type tile struct {
		x, y, ox, oy float32
		z            int
	}
	var tiles []tile
	filter := ecs.NewFilter2[components.MapPosition, components.Sprite](w.ECS)
	query := filter.Query()
	for query.Next() {
		pos, sprite := query.Get()
		z := w.ZIndices.Get(query.Entity()).Value
		tiles = append(tiles, tile{pos.X, pos.Y, sprite.OffsetX, sprite.OffsetY, z})
	}
	if len(tiles) != 3 {
		t.Fatalf("tiles = %d, want 3", len(tiles))
	}

	// Tile id 9 in an 8-column atlas sits at column 1, row 1.
	found := false
	for _, tl := range tiles {
		if approx32(tl.x, 116) && approx32(tl.y, 200) {
			found = true
			if !approx32(tl.ox, 16) || !approx32(tl.oy, 16) {
				t.Errorf("atlas offset = (%v, %v), want (16, 16)", tl.ox, tl.oy)
			}
			if tl.z != 0 {
				t.Errorf("z = %d, want layer 0", tl.z)
			}
		}
	}
	if !found {
		t.Error("no tile at the expected position (116, 200)")
	}
}

func TestTilemapCommandUnloadedIsNoOp(t *testing.T) {
	w := newTestWorld()

	w.Queues.PushTilemap(TilemapCommand{ID: "nowhere"})
	w.DrainFrame()

	n := 0
	filter := ecs.NewFilter1[components.Sprite](w.ECS)
	query := filter.Query()
	for query.Next() {
		n++
	}
	if n != 0 {
		t.Errorf("tiles = %d, want 0 for an unloaded map", n)
	}
}
