package game

import (
	"fmt"
	"sort"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// drawDebugOverlay renders the F3 panel: frame stats, entity census, engine
// state, and tracked group counts. It reads world state only.
func (g *Game) drawDebugOverlay() {
	const (
		panelX = 10
		panelY = 10
		panelW = 280
		rowH   = 18
	)

	stats := g.perf.Stats()
	groups := g.world.Signals.GroupCounts

	rows := []string{
		fmt.Sprintf("FPS %d  frame %s", rl.GetFPS(), stats.AvgFrame.Round(10*time.Microsecond)),
		fmt.Sprintf("state %s  scene %s", g.world.State, g.scene),
		fmt.Sprintf("entities %d  frame #%d", g.entityCount(), g.world.Time.FrameCount),
	}

	var stages []string
	for stage, pct := range stats.StagePct {
		if pct >= 0.5 {
			stages = append(stages, fmt.Sprintf("%s %.1f%%", stage, pct))
		}
	}
	sort.Strings(stages)
	rows = append(rows, stages...)

	var names []string
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, fmt.Sprintf("group %s: %d", name, groups[name]))
	}

	panelH := float32(rowH*len(rows) + 34)
	gui.Panel(rl.Rectangle{X: panelX, Y: panelY, Width: panelW, Height: panelH}, "debug")
	for i, row := range rows {
		gui.Label(rl.Rectangle{
			X:      panelX + 8,
			Y:      panelY + 28 + float32(i*rowH),
			Width:  panelW - 16,
			Height: rowH,
		}, row)
	}
}
