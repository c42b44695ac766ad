package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats is one aggregation window's worth of frame statistics plus a
// world census at window end.
type WindowStats struct {
	WindowEndFrame uint64  `csv:"window_end"`
	SimTimeSec     float64 `csv:"sim_time"`

	// Frame time distribution over the window, milliseconds
	FrameMean float64 `csv:"frame_mean_ms"`
	FrameStd  float64 `csv:"frame_std_ms"`
	FrameP10  float64 `csv:"frame_p10_ms"`
	FrameP50  float64 `csv:"frame_p50_ms"`
	FrameP90  float64 `csv:"frame_p90_ms"`

	// Census at window end
	Entities      int `csv:"entities"`
	Spawns        int `csv:"spawns"`
	Despawns      int `csv:"despawns"`
	ScriptErrors  int `csv:"script_errors"`
	DrainCommands int `csv:"drain_commands"`
}

// WindowCollector accumulates frame samples until the window elapses.
type WindowCollector struct {
	windowSec float64
	elapsed   float64
	frames    []float64

	spawns        int
	despawns      int
	scriptErrors  int
	drainCommands int
}

// NewWindowCollector creates a collector flushing every windowSec seconds.
func NewWindowCollector(windowSec float64) *WindowCollector {
	if windowSec <= 0 {
		windowSec = 5
	}
	return &WindowCollector{windowSec: windowSec}
}

// AddFrame records one frame's wall time in milliseconds.
func (c *WindowCollector) AddFrame(dtSec, frameMs float64) {
	c.elapsed += dtSec
	c.frames = append(c.frames, frameMs)
}

// CountSpawn, CountDespawn, CountScriptError, and CountDrain bump the
// window's event counters.
func (c *WindowCollector) CountSpawn(n int)   { c.spawns += n }
func (c *WindowCollector) CountDespawn(n int) { c.despawns += n }
func (c *WindowCollector) CountScriptError()  { c.scriptErrors++ }
func (c *WindowCollector) CountDrain(n int)   { c.drainCommands += n }

// Ready reports whether the window has elapsed.
func (c *WindowCollector) Ready() bool {
	return c.elapsed >= c.windowSec
}

// Flush computes the window's stats and resets the collector. entities and
// frame describe the world at flush time.
func (c *WindowCollector) Flush(frame uint64, simTime float64, entities int) WindowStats {
	ws := WindowStats{
		WindowEndFrame: frame,
		SimTimeSec:     simTime,
		Entities:       entities,
		Spawns:         c.spawns,
		Despawns:       c.despawns,
		ScriptErrors:   c.scriptErrors,
		DrainCommands:  c.drainCommands,
	}

	if len(c.frames) > 0 {
		sorted := make([]float64, len(c.frames))
		copy(sorted, c.frames)
		sort.Float64s(sorted)

		ws.FrameMean = stat.Mean(sorted, nil)
		ws.FrameStd = stat.StdDev(sorted, nil)
		ws.FrameP10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
		ws.FrameP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		ws.FrameP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	}

	c.elapsed = 0
	c.frames = c.frames[:0]
	c.spawns = 0
	c.despawns = 0
	c.scriptErrors = 0
	c.drainCommands = 0

	return ws
}
