package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorWindow(t *testing.T) {
	p := NewPerfCollector(4)

	for i := 0; i < 6; i++ {
		p.StartFrame()
		p.StartStage(StagePhysics)
		time.Sleep(time.Millisecond)
		p.EndFrame()
	}

	stats := p.Stats()
	if stats.AvgFrame <= 0 {
		t.Error("average frame time should be positive")
	}
	if stats.MinFrame > stats.MaxFrame {
		t.Errorf("min %v exceeds max %v", stats.MinFrame, stats.MaxFrame)
	}
	if _, ok := stats.StageAvg[StagePhysics]; !ok {
		t.Error("physics stage missing from breakdown")
	}
	if stats.FPS <= 0 {
		t.Error("fps should be positive")
	}
}

func TestPerfCollectorStagePercentages(t *testing.T) {
	p := NewPerfCollector(2)

	p.StartFrame()
	p.StartStage(StageCollision)
	time.Sleep(2 * time.Millisecond)
	p.StartStage(StageRender)
	time.Sleep(time.Millisecond)
	p.EndFrame()

	stats := p.Stats()
	var total float64
	for _, pct := range stats.StagePct {
		total += pct
	}
	if total < 90 || total > 110 {
		t.Errorf("stage percentages should sum to roughly 100, got %.1f", total)
	}
	if stats.StagePct[StageCollision] <= stats.StagePct[StageRender] {
		t.Error("collision stage slept longer and should dominate")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	p := NewPerfCollector(8)
	stats := p.Stats()
	if stats.AvgFrame != 0 || len(stats.StageAvg) != 0 {
		t.Errorf("empty collector should return zero stats, got %+v", stats)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	p := NewPerfCollector(2)
	p.StartFrame()
	p.StartStage(StageDrain)
	p.EndFrame()

	row := p.Stats().ToCSV(120)
	if row.WindowEnd != 120 {
		t.Errorf("window end = %d", row.WindowEnd)
	}
}
