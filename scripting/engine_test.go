package scripting

import (
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

func newTestEngine(t *testing.T) (*world.World, *Engine) {
	t.Helper()
	w := world.New(zap.NewNop(), 1)
	e := NewEngine(w, zap.NewNop())
	t.Cleanup(e.Close)
	return w, e
}

func doString(t *testing.T, e *Engine, chunk string) {
	t.Helper()
	require.NoError(t, e.vm.DoString(chunk))
}

func globalNumber(t *testing.T, e *Engine, name string) float64 {
	t.Helper()
	v, ok := e.vm.GetGlobal(name).(lua.LNumber)
	require.True(t, ok, "global %s is not a number", name)
	return float64(v)
}

func globalString(t *testing.T, e *Engine, name string) string {
	t.Helper()
	v, ok := e.vm.GetGlobal(name).(lua.LString)
	require.True(t, ok, "global %s is not a string", name)
	return string(v)
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestEngineTableRegistered(t *testing.T) {
	_, e := newTestEngine(t)

	doString(t, e, `
		api_type = type(engine)
		spawn_type = type(engine.spawn)
		meta_len = #engine.__meta
	`)

	assert.Equal(t, "table", globalString(t, e, "api_type"))
	assert.Equal(t, "function", globalString(t, e, "spawn_type"))
	assert.Greater(t, globalNumber(t, e, "meta_len"), 50.0, "__meta should list the full API")
}

func TestSnapshotReads(t *testing.T) {
	w, e := newTestEngine(t)
	w.Signals.Scalars["hp"] = 12.5
	w.Signals.Integers["score"] = 900
	w.Signals.Strings["scene"] = "arena"
	w.Signals.Flags["armed"] = struct{}{}
	w.Signals.GroupCounts["enemies"] = 4

	e.BeginFrame()
	doString(t, e, `
		hp = engine.get_scalar("hp")
		score = engine.get_integer("score")
		scene = engine.get_string("scene")
		armed = engine.has_flag("armed")
		enemies = engine.get_group_count("enemies")
		missing = engine.get_scalar("missing")
	`)

	assert.InDelta(t, 12.5, globalNumber(t, e, "hp"), 1e-6)
	assert.Equal(t, 900.0, globalNumber(t, e, "score"))
	assert.Equal(t, "arena", globalString(t, e, "scene"))
	assert.Equal(t, lua.LTrue, e.vm.GetGlobal("armed"))
	assert.Equal(t, 4.0, globalNumber(t, e, "enemies"))
	assert.Equal(t, 0.0, globalNumber(t, e, "missing"), "missing scalars read as 0")
}

func TestSnapshotIsFrameStable(t *testing.T) {
	w, e := newTestEngine(t)
	w.Signals.Scalars["hp"] = 1

	e.BeginFrame()
	// Writes go through the queue; the snapshot must not see them until
	// the next BeginFrame.
	doString(t, e, `
		engine.set_scalar("hp", 2)
		hp_before = engine.get_scalar("hp")
	`)
	w.DrainFrame()
	doString(t, e, `hp_stale = engine.get_scalar("hp")`)
	e.BeginFrame()
	doString(t, e, `hp_after = engine.get_scalar("hp")`)

	assert.Equal(t, 1.0, globalNumber(t, e, "hp_before"))
	assert.Equal(t, 1.0, globalNumber(t, e, "hp_stale"))
	assert.Equal(t, 2.0, globalNumber(t, e, "hp_after"))
}

func TestSignalWritesAreDeferred(t *testing.T) {
	w, e := newTestEngine(t)

	doString(t, e, `
		engine.set_scalar("power", 3)
		engine.set_flag("ready")
	`)

	assert.Empty(t, w.Signals.Scalars, "writes applied before the drain")
	w.DrainFrame()
	assert.InDelta(t, 3.0, w.Signals.Scalars["power"], 1e-6)
	assert.True(t, w.Signals.HasFlag("ready"))
}

func TestBuilderChainSpawns(t *testing.T) {
	w, e := newTestEngine(t)

	doString(t, e, `
		id = engine.spawn()
			:group("player")
			:position(10, 20)
			:velocity(1, -2)
			:max_speed(50)
			:collider(8, 8, 4, 4)
			:signal_scalar("hp", 100)
			:ttl(3)
			:build()
	`)

	id := int64(globalNumber(t, e, "id"))
	require.NotZero(t, id)

	_, ok := w.Entity(id)
	assert.False(t, ok, "handle resolved before the spawn drained")

	w.DrainFrame()
	ent, ok := w.Entity(id)
	require.True(t, ok, "reserved handle did not bind")

	assert.Equal(t, "player", w.GroupOf(ent))
	require.True(t, w.Positions.Has(ent))
	assert.InDelta(t, 10, w.Positions.Get(ent).X, 1e-4)
	require.True(t, w.Bodies.Has(ent))
	body := w.Bodies.Get(ent)
	assert.InDelta(t, -2, body.Velocity.Y, 1e-4)
	assert.InDelta(t, 50, body.MaxSpeed, 1e-4)
	require.True(t, w.Colliders.Has(ent))
	assert.InDelta(t, 4, w.Colliders.Get(ent).OriginX, 1e-4)
	require.True(t, w.EntitySignals.Has(ent))
	assert.InDelta(t, 100, w.EntitySignals.Get(ent).Scalars["hp"], 1e-4)
	require.True(t, w.Ttls.Has(ent))
	assert.InDelta(t, 3, w.Ttls.Get(ent).Remaining, 1e-4)
}

func TestBuilderPhaseSpec(t *testing.T) {
	w, e := newTestEngine(t)

	doString(t, e, `
		id = engine.spawn()
			:phase({
				initial = "idle",
				phases = {
					idle = { on_enter = "idle_enter", on_update = "idle_tick" },
					run = { on_exit = "run_exit" },
				},
			})
			:build()
	`)
	w.DrainFrame()

	ent, ok := w.Entity(int64(globalNumber(t, e, "id")))
	require.True(t, ok)
	require.True(t, w.Phases.Has(ent))

	p := w.Phases.Get(ent)
	assert.Equal(t, "idle", p.Current)
	assert.True(t, p.NeedsEnter)
	assert.Equal(t, "idle_enter", p.Hooks["idle"].OnEnter.Script)
	assert.Equal(t, "idle_tick", p.Hooks["idle"].OnUpdate.Script)
	assert.Equal(t, "run_exit", p.Hooks["run"].OnExit.Script)
}

func TestBuilderTweenOptionsMerge(t *testing.T) {
	w, e := newTestEngine(t)

	doString(t, e, `
		id = engine.spawn()
			:position(0, 0)
			:tween_position(0, 0, 10, 0, 2)
			:tween_position_easing("quad_out")
			:tween_position_loop("ping_pong")
			:build()
	`)
	w.DrainFrame()

	ent, ok := w.Entity(int64(globalNumber(t, e, "id")))
	require.True(t, ok)
	require.True(t, w.TweenPositions.Has(ent))

	tw := w.TweenPositions.Get(ent)
	assert.InDelta(t, 10, tw.To.X, 1e-4)
	assert.InDelta(t, 2, tw.Duration, 1e-4)
	assert.Equal(t, components.EaseQuadOut, tw.Easing)
	assert.Equal(t, components.LoopPingPong, tw.Loop)
	assert.True(t, tw.Playing)
}

func TestCollisionMirrorsAreScoped(t *testing.T) {
	w, e := newTestEngine(t)

	doString(t, e, `
		engine.collision_set_flag("hit")
		engine.collision_spawn():position(1, 1):build()
		engine.set_flag("frame_flag")
	`)

	assert.Len(t, w.Queues.Collision.Signals, 1)
	assert.Len(t, w.Queues.Collision.Spawns, 1)
	assert.Len(t, w.Queues.Frame.Signals, 1)

	w.DrainCollision()
	assert.True(t, w.Signals.HasFlag("hit"))
	assert.False(t, w.Signals.HasFlag("frame_flag"), "frame-scope flag applied by the collision drain")
}

func TestCallTimerPassesHandle(t *testing.T) {
	w, e := newTestEngine(t)

	ent := w.NewEntity()
	doString(t, e, `function on_beat(id) beat_id = id end`)
	e.CallTimer("on_beat", ent)

	assert.Equal(t, float64(w.Handles.Expose(ent)), globalNumber(t, e, "beat_id"))
}

func TestCallEnterPassesNilForFirstPhase(t *testing.T) {
	w, e := newTestEngine(t)

	ent := w.NewEntity()
	doString(t, e, `
		function on_enter(id, prev)
			prev_is_nil = prev == nil
		end
	`)
	e.CallEnter("on_enter", ent, "")

	assert.Equal(t, lua.LTrue, e.vm.GetGlobal("prev_is_nil"))
}

func TestCallCollisionContext(t *testing.T) {
	w, e := newTestEngine(t)

	a := w.NewEntity()
	w.Groups.Add(a, &components.Group{Name: "bullet"})
	w.Positions.Add(a, &components.MapPosition{X: 3, Y: 4})
	b := w.NewEntity()
	w.Groups.Add(b, &components.Group{Name: "ship"})

	doString(t, e, `
		function on_hit(ctx)
			hit_a = ctx.a.id
			hit_ax = ctx.a.pos.x
			hit_group_b = ctx.group_b
			b_pos_is_nil = ctx.b.pos == nil
		end
	`)
	e.CallCollision("on_hit", a, b)

	assert.Equal(t, float64(w.Handles.Expose(a)), globalNumber(t, e, "hit_a"))
	assert.InDelta(t, 3, globalNumber(t, e, "hit_ax"), 1e-4)
	assert.Equal(t, "ship", globalString(t, e, "hit_group_b"))
	assert.Equal(t, lua.LTrue, e.vm.GetGlobal("b_pos_is_nil"))
}

func TestMissingCallbackIsSkipped(t *testing.T) {
	w, e := newTestEngine(t)

	assert.NotPanics(t, func() {
		e.CallGlobal("no_such_function")
		e.CallTimer("also_missing", w.NewEntity())
	})
}

func TestRaisingCallbackIsContained(t *testing.T) {
	_, e := newTestEngine(t)

	doString(t, e, `function boom() error("kaboom") end`)
	assert.NotPanics(t, func() { e.CallGlobal("boom") })
}

func TestEntityCommandsFromScript(t *testing.T) {
	w, e := newTestEngine(t)

	ent := w.NewEntity()
	w.Positions.Add(ent, &components.MapPosition{})
	id := w.Handles.Expose(ent)

	e.vm.SetGlobal("target", lua.LNumber(id))
	doString(t, e, `
		engine.entity_set_position(target, 7, 8)
		engine.entity_set_rotation(target, 45)
	`)
	w.DrainFrame()

	assert.InDelta(t, 7, w.Positions.Get(ent).X, 1e-4)
	require.True(t, w.Rotations.Has(ent))
	assert.InDelta(t, 45, w.Rotations.Get(ent).Degrees, 1e-4)
}

func TestQuitSetsFlagAndState(t *testing.T) {
	w, e := newTestEngine(t)

	doString(t, e, `engine.quit()`)
	w.DrainFrame()

	assert.True(t, w.Signals.HasFlag("quit_game"))
	assert.True(t, w.Next.Set)
	assert.Equal(t, world.StateQuitting, w.Next.State)
}

func TestLoadDirMissingIsError(t *testing.T) {
	_, e := newTestEngine(t)
	assert.Error(t, e.LoadDir("does/not/exist"))
}

func TestLoadDirRunsScripts(t *testing.T) {
	w, e := newTestEngine(t)

	dir := t.TempDir()
	writeScript(t, dir, "10_first.lua", `engine.set_integer("order", 1)`)
	writeScript(t, dir, "20_second.lua", `engine.set_integer("order", 2)`)
	writeScript(t, dir, "ignored.txt", `not lua`)

	require.NoError(t, e.LoadDir(dir))
	w.DrainFrame()

	assert.Equal(t, int64(2), w.Signals.Integers["order"], "files must run in lexical order")
}
