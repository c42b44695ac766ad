// Package telemetry collects per-frame timing broken down by engine stage
// and aggregates it into rolling-window statistics for logging, the debug
// overlay, and CSV export.
package telemetry

import (
	"time"

	"go.uber.org/zap"
)

// Stage names for the frame step, in execution order.
const (
	StageDrain      = "drain"
	StageCallbacks  = "callbacks"
	StageLifecycle  = "lifecycle"
	StagePhysics    = "physics"
	StageCollision  = "collision"
	StageBindings   = "bindings"
	StageAnimation  = "animation"
	StageMenus      = "menus"
	StageRender     = "render"
)

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Stages        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentStages map[string]time.Duration
	frameStart    time.Time
	stageStart    time.Time
	lastStage     string
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentStages: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentStages = make(map[string]time.Duration)
	p.lastStage = ""
}

// StartStage begins timing a stage, closing the previous one.
func (p *PerfCollector) StartStage(stage string) {
	now := time.Now()
	if p.lastStage != "" {
		p.currentStages[p.lastStage] += now.Sub(p.stageStart)
	}
	p.stageStart = now
	p.lastStage = stage
}

// EndFrame finishes the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	if p.lastStage != "" {
		p.currentStages[p.lastStage] += now.Sub(p.stageStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Stages:        p.currentStages,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// LastFrame returns the most recently recorded frame duration.
func (p *PerfCollector) LastFrame() time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	idx := (p.writeIndex - 1 + p.windowSize) % p.windowSize
	return p.samples[idx].FrameDuration
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration

	// Stage breakdown: average duration and percentage of frame time
	StageAvg map[string]time.Duration
	StagePct map[string]float64

	FPS float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			StageAvg: make(map[string]time.Duration),
			StagePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minFrame, maxFrame time.Duration
	stageSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameDuration
		if i == 0 || s.FrameDuration < minFrame {
			minFrame = s.FrameDuration
		}
		if s.FrameDuration > maxFrame {
			maxFrame = s.FrameDuration
		}
		for stage, dur := range s.Stages {
			stageSum[stage] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)
	stageAvg := make(map[string]time.Duration)
	stagePct := make(map[string]float64)
	for stage, sum := range stageSum {
		stageAvg[stage] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			stagePct[stage] = float64(stageAvg[stage]) / float64(avg) * 100
		}
	}

	var fps float64
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgFrame: avg,
		MinFrame: minFrame,
		MaxFrame: maxFrame,
		StageAvg: stageAvg,
		StagePct: stagePct,
		FPS:      fps,
	}
}

// stageOrder lists stages for stable log and CSV output.
var stageOrder = []string{
	StageDrain, StageCallbacks, StageLifecycle, StagePhysics,
	StageCollision, StageBindings, StageAnimation, StageMenus, StageRender,
}

// Log writes the stats at info level.
func (s PerfStats) Log(log *zap.Logger) {
	fields := []zap.Field{
		zap.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		zap.Int64("min_frame_us", s.MinFrame.Microseconds()),
		zap.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		zap.Int("fps", int(s.FPS)),
	}
	for _, stage := range stageOrder {
		if pct, ok := s.StagePct[stage]; ok && pct > 0.1 {
			fields = append(fields, zap.Float64(stage+"_pct", float64(int(pct*10))/10))
		}
	}
	log.Info("perf", fields...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FPS          float64 `csv:"fps"`
	DrainPct     float64 `csv:"drain_pct"`
	CallbacksPct float64 `csv:"callbacks_pct"`
	LifecyclePct float64 `csv:"lifecycle_pct"`
	PhysicsPct   float64 `csv:"physics_pct"`
	CollisionPct float64 `csv:"collision_pct"`
	BindingsPct  float64 `csv:"bindings_pct"`
	AnimationPct float64 `csv:"animation_pct"`
	MenusPct     float64 `csv:"menus_pct"`
	RenderPct    float64 `csv:"render_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct. windowEnd is the
// frame counter at export time.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrame.Microseconds(),
		MinFrameUS:   s.MinFrame.Microseconds(),
		MaxFrameUS:   s.MaxFrame.Microseconds(),
		FPS:          s.FPS,
		DrainPct:     s.StagePct[StageDrain],
		CallbacksPct: s.StagePct[StageCallbacks],
		LifecyclePct: s.StagePct[StageLifecycle],
		PhysicsPct:   s.StagePct[StagePhysics],
		CollisionPct: s.StagePct[StageCollision],
		BindingsPct:  s.StagePct[StageBindings],
		AnimationPct: s.StagePct[StageAnimation],
		MenusPct:     s.StagePct[StageMenus],
		RenderPct:    s.StagePct[StageRender],
	}
}
