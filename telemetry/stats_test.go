package telemetry

import (
	"math"
	"testing"
)

func TestWindowCollectorReady(t *testing.T) {
	c := NewWindowCollector(1.0)
	c.AddFrame(0.4, 16)
	if c.Ready() {
		t.Error("window should not be ready at 0.4s")
	}
	c.AddFrame(0.7, 17)
	if !c.Ready() {
		t.Error("window should be ready past 1.0s")
	}
}

func TestWindowCollectorFlush(t *testing.T) {
	c := NewWindowCollector(1.0)
	for i := 0; i < 10; i++ {
		c.AddFrame(0.1, float64(10+i))
	}
	c.CountSpawn(3)
	c.CountDespawn(1)
	c.CountScriptError()
	c.CountDrain(42)

	ws := c.Flush(600, 10.0, 25)
	if ws.WindowEndFrame != 600 || ws.Entities != 25 {
		t.Errorf("census fields wrong: %+v", ws)
	}
	if ws.Spawns != 3 || ws.Despawns != 1 || ws.ScriptErrors != 1 || ws.DrainCommands != 42 {
		t.Errorf("event counters wrong: %+v", ws)
	}
	if math.Abs(ws.FrameMean-14.5) > 1e-9 {
		t.Errorf("mean of 10..19 should be 14.5, got %f", ws.FrameMean)
	}
	if ws.FrameP10 > ws.FrameP50 || ws.FrameP50 > ws.FrameP90 {
		t.Errorf("percentiles out of order: %+v", ws)
	}

	// Flush resets the window
	if c.Ready() {
		t.Error("collector should reset after flush")
	}
	empty := c.Flush(601, 10.0, 25)
	if empty.Spawns != 0 || empty.FrameMean != 0 {
		t.Errorf("flushed collector should be empty: %+v", empty)
	}
}
