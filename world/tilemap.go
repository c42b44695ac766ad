package world

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
)

// LoadTilemap parses a tilemap file and registers it under id. The atlas
// texture must be loaded separately.
func (w *World) LoadTilemap(id keys.Key, path string, atlas keys.Key) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tilemap: %w", err)
	}
	var def TilemapDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return fmt.Errorf("parse tilemap %s: %w", path, err)
	}
	if def.TileWidth <= 0 || def.TileHeight <= 0 {
		return fmt.Errorf("tilemap %s: non-positive tile size", path)
	}
	if def.Columns <= 0 {
		return fmt.Errorf("tilemap %s: non-positive atlas columns", path)
	}
	def.Atlas = atlas
	w.Tilemaps.Register(id, def)
	return nil
}

// applyTilemap spawns one static sprite entity per tile of a loaded map.
func (w *World) applyTilemap(c *TilemapCommand) {
	def, ok := w.Tilemaps.Get(keys.New(c.ID))
	if !ok {
		w.Log.Warn("spawn for unloaded tilemap", zap.String("id", c.ID))
		return
	}
	tw := float32(def.TileWidth)
	th := float32(def.TileHeight)
	for _, layer := range def.Layers {
		for _, tile := range layer.Tiles {
			e := w.NewEntity()
			w.Positions.Add(e, &components.MapPosition{
				X: c.OriginX + float32(tile.X)*tw,
				Y: c.OriginY + float32(tile.Y)*th,
			})
			w.ZIndices.Add(e, &components.ZIndex{Value: layer.Z})
			w.Sprites.Add(e, &components.Sprite{
				Texture: def.Atlas,
				Width:   tw,
				Height:  th,
				OffsetX: float32(tile.ID%def.Columns) * tw,
				OffsetY: float32(tile.ID/def.Columns) * th,
			})
		}
	}
}
