package systems

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
	"github.com/lumen2d/lumen/world"
)

// gridCell is one legend entry of a layout file.
type gridCell struct {
	Texture  string             `json:"texture"`
	Width    float32            `json:"width"`
	Height   float32            `json:"height"`
	Collider bool               `json:"collider"`
	Scalars  map[string]float32 `json:"scalars"`
	Integers map[string]int64   `json:"integers"`
	Flags    []string           `json:"flags"`
}

// gridFile is the on-disk layout format: a character grid plus a legend
// mapping each character to the cell it expands into.
type gridFile struct {
	OriginX    float32             `json:"origin_x"`
	OriginY    float32             `json:"origin_y"`
	CellWidth  float32             `json:"cell_width"`
	CellHeight float32             `json:"cell_height"`
	Rows       []string            `json:"rows"`
	Legend     map[string]gridCell `json:"legend"`
}

func loadGridFile(path string) (*gridFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var gf gridFile
	if err := json.Unmarshal(raw, &gf); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if gf.CellWidth <= 0 || gf.CellHeight <= 0 {
		return nil, fmt.Errorf("layout %s: non-positive cell size", path)
	}
	return &gf, nil
}

// GridLayouts expands unexpanded layout components into their child
// entities. The spawned flag prevents re-expansion; a bad file logs and
// marks the layout expanded so it is not retried every frame.
func GridLayouts(w *world.World) {
	var pending []ecs.Entity
	filter := ecs.NewFilter1[components.GridLayout](w.ECS)
	query := filter.Query()
	for query.Next() {
		if !query.Get().Spawned {
			pending = append(pending, query.Entity())
		}
	}

	for _, e := range pending {
		if !w.ECS.Alive(e) || !w.Grids.Has(e) {
			continue
		}
		grid := w.Grids.Get(e)
		grid.Spawned = true

		gf, err := loadGridFile(grid.Path)
		if err != nil {
			w.Log.Warn("grid layout load failed", zap.String("path", grid.Path), zap.Error(err))
			continue
		}
		expandGrid(w, grid, gf)
	}
}

func expandGrid(w *world.World, grid *components.GridLayout, gf *gridFile) {
	for row, line := range gf.Rows {
		// Columns count runes; the range index is a byte offset.
		col := 0
		for _, ch := range line {
			if ch != '.' && ch != ' ' {
				if cell, ok := gf.Legend[string(ch)]; ok {
					spawnGridCell(w, grid, gf, &cell, col, row)
				}
			}
			col++
		}
	}
}

func spawnGridCell(w *world.World, grid *components.GridLayout, gf *gridFile, cell *gridCell, col, row int) {
	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{
		X: gf.OriginX + float32(col)*gf.CellWidth,
		Y: gf.OriginY + float32(row)*gf.CellHeight,
	})
	w.ZIndices.Add(e, &components.ZIndex{Value: grid.ZIndex})
	if grid.Group != "" {
		w.Groups.Add(e, &components.Group{Name: grid.Group})
	}

	width, height := cell.Width, cell.Height
	if width == 0 {
		width = gf.CellWidth
	}
	if height == 0 {
		height = gf.CellHeight
	}
	if cell.Texture != "" {
		w.Sprites.Add(e, &components.Sprite{
			Texture: keys.New(cell.Texture),
			Width:   width,
			Height:  height,
		})
	}
	if cell.Collider {
		w.Colliders.Add(e, &components.BoxCollider{Width: width, Height: height})
	}
	if len(cell.Scalars) > 0 || len(cell.Integers) > 0 || len(cell.Flags) > 0 {
		sig := components.NewSignals()
		for k, v := range cell.Scalars {
			sig.Scalars[k] = v
		}
		for k, v := range cell.Integers {
			sig.Integers[k] = v
		}
		for _, f := range cell.Flags {
			sig.Flags[f] = struct{}{}
		}
		w.EntitySignals.Add(e, &sig)
	}
}
