// Package game owns the run loop: it wires the world, the script engine,
// the audio worker, and the raylib edge together and steps the systems in
// their fixed frame order.
package game

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/audio"
	"github.com/lumen2d/lumen/camera"
	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/config"
	"github.com/lumen2d/lumen/scripting"
	"github.com/lumen2d/lumen/systems"
	"github.com/lumen2d/lumen/telemetry"
	"github.com/lumen2d/lumen/world"
)

// Options select run-time variants of the engine.
type Options struct {
	Headless  bool
	OutputDir string // Telemetry CSV directory; "" follows the config
}

// Game is the engine instance: one world, one script VM, one audio worker,
// and the render edge. Everything but the audio worker runs on the loop
// goroutine.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	world    *world.World
	scripts  *scripting.Engine
	audio    *audio.Worker
	renderer *Renderer
	camera   *camera.Camera

	perf   *telemetry.PerfCollector
	window *telemetry.WindowCollector
	output *telemetry.OutputManager

	headless bool
	scene    string
}

// NewGame builds the engine from config. In windowed mode the raylib window
// must not be open yet; NewGame opens it. Audio or window init failure is
// fatal; script load failures are logged and skipped.
func NewGame(cfg *config.Config, log *zap.Logger, opts Options) (*Game, error) {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := world.New(log, seed)
	w.Time.TimeScale = float32(cfg.Game.TimeScale)
	w.State = world.StateSetup

	g := &Game{
		cfg:      cfg,
		log:      log,
		world:    w,
		headless: opts.Headless,
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		window:   telemetry.NewWindowCollector(cfg.Telemetry.StatsWindow),
	}

	g.camera = camera.New(cfg.Derived.VirtualW32/2, cfg.Derived.VirtualH32/2)
	g.camera.MinZoom = float32(cfg.Camera.MinZoom)
	g.camera.MaxZoom = float32(cfg.Camera.MaxZoom)

	if opts.Headless {
		w.Assets = stubAssets{log: log}
		w.Text = stubMeasurer{}
	} else {
		if cfg.Screen.Resizable {
			rl.SetConfigFlags(rl.FlagWindowResizable)
		}
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
		if !rl.IsWindowReady() {
			return nil, fmt.Errorf("opening window")
		}
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
		rl.SetExitKey(0)

		g.renderer = NewRenderer(log, cfg.Derived.VirtualW32, cfg.Derived.VirtualH32)
		w.Assets = g.renderer
		w.Text = g.renderer

		if cfg.Audio.Enabled {
			worker, err := audio.NewWorker(log, cfg.Audio.BufferMs)
			if err != nil {
				rl.CloseWindow()
				return nil, fmt.Errorf("starting audio worker: %w", err)
			}
			g.audio = worker
			w.Audio = worker
		}
	}

	if cfg.Telemetry.Enabled {
		dir := opts.OutputDir
		if dir == "" {
			dir = cfg.Telemetry.OutputDir
		}
		om, err := telemetry.NewOutputManager(dir)
		if err != nil {
			log.Warn("telemetry output disabled", zap.Error(err))
		} else {
			g.output = om
			if err := om.WriteConfig(cfg); err != nil {
				log.Warn("writing effective config failed", zap.Error(err))
			}
		}
	}

	g.scripts = scripting.NewEngine(w, log)
	if err := g.scripts.LoadDir(cfg.Scripts.Dir); err != nil {
		log.Warn("script directory load failed", zap.String("dir", cfg.Scripts.Dir), zap.Error(err))
	}

	g.setup()
	return g, nil
}

// World exposes the world for tests and embedding hosts.
func (g *Game) World() *world.World { return g.world }

// RegisterSystem stores a named system invocable from state-change hooks.
func (g *Game) RegisterSystem(name string, fn world.SystemFn) {
	g.world.Systems.Register(name, fn)
}

// setup runs the script setup hook, switches to the entry scene, and moves
// the state machine to Playing.
func (g *Game) setup() {
	w := g.world
	w.Scripts.BeginFrame()
	g.scripts.CallGlobal("setup")
	w.DrainFrame()

	if g.cfg.Scripts.EntryScene != "" {
		w.PendingScene = g.cfg.Scripts.EntryScene
		g.applyPendingScene()
	}

	w.RequestState(world.StatePlaying)
	g.applyStateChange()
}

// Run is the windowed main loop. Returns when the window closes or a quit
// is requested.
func (g *Game) Run() {
	for !rl.WindowShouldClose() && g.world.State != world.StateQuitting {
		dt := rl.GetFrameTime()
		if dt > g.cfg.Derived.MaxDT32 {
			dt = g.cfg.Derived.MaxDT32
		}

		g.perf.StartFrame()
		g.sampleInput()
		g.handleHotkeys()
		g.step(dt)

		g.perf.StartStage(telemetry.StageRender)
		g.draw()
		g.perf.EndFrame()

		g.collectTelemetry(dt)
	}
	g.shutdown()
}

// RunHeadless steps the engine with a fixed delta and no window. maxTicks
// of 0 runs until a quit is requested.
func (g *Game) RunHeadless(maxTicks uint64) {
	dt := g.cfg.Derived.FixedDT32
	for tick := uint64(0); g.world.State != world.StateQuitting; tick++ {
		if maxTicks > 0 && tick >= maxTicks {
			break
		}
		g.perf.StartFrame()
		g.step(dt)
		g.perf.EndFrame()
		g.collectTelemetry(dt)
	}
	g.shutdown()
}

// handleHotkeys processes engine-level keys that never reach the scripts.
func (g *Game) handleHotkeys() {
	if rl.IsKeyPressed(rl.KeyF3) {
		g.renderer.showDebugOverlay = !g.renderer.showDebugOverlay
	}
	if g.world.Input.Get(world.BtnPause).JustPressed {
		switch g.world.State {
		case world.StatePlaying:
			g.world.RequestState(world.StatePaused)
		case world.StatePaused:
			g.world.RequestState(world.StatePlaying)
		}
	}
}

// step advances the world one frame in the fixed system order. Paused mode
// keeps menus, state transitions, and the audio pump alive but freezes the
// simulation systems.
func (g *Game) step(dt float32) {
	w := g.world
	w.Time.Advance(dt)

	g.perf.StartStage(telemetry.StageDrain)
	w.DrainFrame()
	g.pumpAudio()
	w.Scripts.BeginFrame()

	if w.State != world.StatePaused {
		g.perf.StartStage(telemetry.StageCallbacks)
		systems.Phases(w)

		g.perf.StartStage(telemetry.StageLifecycle)
		systems.GridLayouts(w)
		systems.Tweens(w)
		systems.Timers(w)
		systems.LuaTimers(w)
		systems.Ttl(w)
		systems.Emitters(w)

		g.perf.StartStage(telemetry.StagePhysics)
		systems.Movement(w)
		systems.Mouse(w)
		systems.Sticky(w)
		systems.Transforms(w)

		g.perf.StartStage(telemetry.StageCollision)
		systems.Collisions(w)

		g.perf.StartStage(telemetry.StageBindings)
		systems.GroupCounts(w)
		systems.Bindings(w)
		systems.MeasureTexts(w)

		g.perf.StartStage(telemetry.StageAnimation)
		systems.AnimationControllers(w)
		systems.Animations(w)
	}

	g.perf.StartStage(telemetry.StageMenus)
	systems.Menus(w)

	if w.Signals.HasFlag("quit_game") {
		w.RequestState(world.StateQuitting)
	}
	g.applyStateChange()
	g.applyPendingScene()
	toCamera(g.camera, w.Camera)
}

// pumpAudio surfaces worker messages as events, once per frame.
func (g *Game) pumpAudio() {
	if g.audio == nil {
		return
	}
	for _, msg := range g.audio.Drain() {
		if msg.Kind == audio.MsgMusicLoadFailed || msg.Kind == audio.MsgFxLoadFailed {
			g.log.Warn("audio load failed", zap.String("id", msg.ID), zap.String("error", msg.Error))
		}
		g.world.Emit(world.Event{Kind: world.EvAudio, Name: msg.ID, Audio: msg})
	}
}

// applyStateChange runs a requested state transition: exit hook, state swap,
// enter hook, event, then a drain for commands the hooks enqueued.
func (g *Game) applyStateChange() {
	w := g.world
	if !w.Next.Set {
		return
	}
	from, to := w.State, w.Next.State
	w.Next = world.NextGameState{}
	if from == to {
		return
	}

	w.Systems.Invoke("exit_"+from.String(), w)
	w.State = to
	w.Systems.Invoke("enter_"+to.String(), w)
	w.Emit(world.Event{Kind: world.EvStateChanged, FromState: from, ToState: to})
	g.log.Info("state changed", zap.String("from", from.String()), zap.String("to", to.String()))
	w.DrainFrame()
}

// applyPendingScene performs a requested scene switch: despawn everything
// scene-owned and not persistent, clear tracked groups, then run the scene's
// script hook and drain what it enqueued.
func (g *Game) applyPendingScene() {
	w := g.world
	if w.PendingScene == "" {
		return
	}
	name := w.PendingScene
	w.PendingScene = ""
	prev := g.scene

	var doomed []ecs.Entity
	query := ecs.NewFilter1[components.SceneOwned](w.ECS).Query()
	for query.Next() {
		e := query.Entity()
		if !w.Persistents.Has(e) {
			doomed = append(doomed, e)
		}
	}
	for _, e := range doomed {
		w.Despawn(e)
	}
	w.Tracked.Clear()

	g.scene = name
	w.Signals.Strings["scene"] = name
	w.Emit(world.Event{Kind: world.EvSceneChanged, From: prev, To: name})
	g.log.Info("scene switched", zap.String("from", prev), zap.String("to", name),
		zap.Int("despawned", len(doomed)))

	w.Scripts.CallGlobal("scene_" + name)
	w.DrainFrame()
}

// collectTelemetry feeds the window collector and flushes it when due.
func (g *Game) collectTelemetry(dt float32) {
	if !g.cfg.Telemetry.Enabled {
		return
	}
	g.window.AddFrame(float64(dt), float64(g.perf.LastFrame())/float64(time.Millisecond))
	if !g.window.Ready() {
		return
	}
	stats := g.perf.Stats()

	ws := g.window.Flush(g.world.Time.FrameCount, float64(g.world.Time.Elapsed), g.entityCount())
	stats.Log(g.log)
	if err := g.output.WriteWindow(ws); err != nil {
		g.log.Warn("telemetry write failed", zap.Error(err))
	}
	if err := g.output.WritePerf(stats, ws.WindowEndFrame); err != nil {
		g.log.Warn("perf write failed", zap.Error(err))
	}
}

// entityCount counts live scene-owned entities.
func (g *Game) entityCount() int {
	n := 0
	query := ecs.NewFilter1[components.SceneOwned](g.world.ECS).Query()
	for query.Next() {
		n++
	}
	return n
}

// shutdown tears everything down in reverse construction order.
func (g *Game) shutdown() {
	if g.audio != nil {
		g.audio.Shutdown()
	}
	g.scripts.Close()
	if g.renderer != nil {
		g.renderer.Unload()
		rl.CloseWindow()
	}
	if err := g.output.Close(); err != nil {
		g.log.Warn("closing telemetry output", zap.Error(err))
	}
}
