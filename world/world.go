// Package world owns the entity store, its component mappers, the shared
// engine resources, and the deferred command queues every other package
// writes into. Systems and scripts never mutate entities directly during
// iteration; they enqueue commands which the drain step applies between
// systems.
package world

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/audio"
	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
)

// ScriptCaller invokes script callbacks by name. Implemented by the
// scripting engine; a nil caller disables script callbacks (native
// callbacks still run). A missing callback logs a warning and is skipped;
// a raising callback logs the error and the frame continues.
type ScriptCaller interface {
	// BeginFrame republishes the world snapshot script reads come from.
	BeginFrame()
	// CallEnter runs on_enter(entity_id, previous); previous "" passes nil.
	CallEnter(fn string, e ecs.Entity, previous string)
	// CallUpdate runs on_update(entity_id, time_in_phase).
	CallUpdate(fn string, e ecs.Entity, timeIn float32)
	// CallExit runs on_exit(entity_id, next).
	CallExit(fn string, e ecs.Entity, next string)
	// CallTimer runs callback(entity_id).
	CallTimer(fn string, e ecs.Entity)
	// CallCollision runs callback(ctx) with ctx.a and ctx.b ordered to
	// match the rule's declared groups.
	CallCollision(fn string, a, b ecs.Entity)
	// CallNamed runs callback(entity_id, arg) (menu selections).
	CallNamed(fn string, e ecs.Entity, arg string)
	// CallGlobal runs a zero-argument callback (scene hooks).
	CallGlobal(fn string)
}

// AssetLoader loads graphics-side assets. Implemented by the render edge;
// the headless build installs a stub.
type AssetLoader interface {
	LoadTexture(id keys.Key, path string) error
	LoadFont(id keys.Key, path string, size float32) error
	LoadShader(id keys.Key, vsPath, fsPath string) error
}

// TextMeasurer returns the pixel size of rendered text, used to keep the
// DynamicText measure cache current.
type TextMeasurer interface {
	Measure(font keys.Key, content string, size float32) (w, h float32)
}

// AudioSender pushes commands to the audio worker.
type AudioSender interface {
	Send(cmd audio.Command)
}

// World bundles the entity store, per-component mappers, resources, the
// event bus and the command queues. Everything runs on the game loop
// goroutine; only the audio channels cross goroutines.
type World struct {
	ECS *ecs.World
	Log *zap.Logger
	RNG *rand.Rand

	Time     WorldTime
	Signals  WorldSignals
	Tracked  TrackedGroups
	Input    InputState
	State    GameState
	Next     NextGameState
	Camera   CameraState
	Systems  SystemsStore
	Anims    AnimationStore
	Tilemaps TilemapStore
	Handles  *Handles
	Queues   Queues
	Bus      Bus

	// PendingScene is the scene switch requested this frame, applied by the
	// engine at the frame boundary. "" means none.
	PendingScene string

	Scripts ScriptCaller
	Assets  AssetLoader
	Audio   AudioSender
	Text    TextMeasurer

	Positions       *ecs.Map[components.MapPosition]
	ScreenPositions *ecs.Map[components.ScreenPosition]
	Rotations       *ecs.Map[components.Rotation]
	Scales          *ecs.Map[components.Scale]
	Transforms      *ecs.Map[components.GlobalTransform2D]
	ZIndices        *ecs.Map[components.ZIndex]
	Sprites         *ecs.Map[components.Sprite]
	Texts           *ecs.Map[components.DynamicText]
	Tints           *ecs.Map[components.Tint]
	Animations      *ecs.Map[components.Animation]
	AnimControllers *ecs.Map[components.AnimationController]
	EntitySignals   *ecs.Map[components.Signals]
	Groups          *ecs.Map[components.Group]
	Colliders       *ecs.Map[components.BoxCollider]
	Bodies          *ecs.Map[components.RigidBody]
	Emitters        *ecs.Map[components.ParticleEmitter]
	Ttls            *ecs.Map[components.Ttl]
	Timers          *ecs.Map[components.Timer]
	LuaTimers       *ecs.Map[components.LuaTimer]
	Stuck           *ecs.Map[components.StuckTo]
	Phases          *ecs.Map[components.Phase]
	Rules           *ecs.Map[components.CollisionRule]
	Bindings        *ecs.Map[components.SignalBinding]
	Grids           *ecs.Map[components.GridLayout]
	TweenPositions  *ecs.Map[components.TweenPosition]
	TweenRotations  *ecs.Map[components.TweenRotation]
	TweenScales     *ecs.Map[components.TweenScale]
	Persistents     *ecs.Map[components.Persistent]
	Owned           *ecs.Map[components.SceneOwned]
	Shaders         *ecs.Map[components.EntityShader]
	MouseFollow     *ecs.Map[components.MouseControlled]
	Menus           *ecs.Map[components.Menu]
}

// New builds a world with all mappers bound. seed fixes the RNG for
// reproducible runs; pass a time-derived seed in production.
func New(log *zap.Logger, seed int64) *World {
	w := &World{
		ECS:     ecs.NewWorld(),
		Log:     log,
		RNG:     rand.New(rand.NewSource(seed)),
		Signals: NewWorldSignals(),
		Handles: NewHandles(),
	}
	w.Time.TimeScale = 1
	w.Camera.Zoom = 1

	w.Positions = ecs.NewMap[components.MapPosition](w.ECS)
	w.ScreenPositions = ecs.NewMap[components.ScreenPosition](w.ECS)
	w.Rotations = ecs.NewMap[components.Rotation](w.ECS)
	w.Scales = ecs.NewMap[components.Scale](w.ECS)
	w.Transforms = ecs.NewMap[components.GlobalTransform2D](w.ECS)
	w.ZIndices = ecs.NewMap[components.ZIndex](w.ECS)
	w.Sprites = ecs.NewMap[components.Sprite](w.ECS)
	w.Texts = ecs.NewMap[components.DynamicText](w.ECS)
	w.Tints = ecs.NewMap[components.Tint](w.ECS)
	w.Animations = ecs.NewMap[components.Animation](w.ECS)
	w.AnimControllers = ecs.NewMap[components.AnimationController](w.ECS)
	w.EntitySignals = ecs.NewMap[components.Signals](w.ECS)
	w.Groups = ecs.NewMap[components.Group](w.ECS)
	w.Colliders = ecs.NewMap[components.BoxCollider](w.ECS)
	w.Bodies = ecs.NewMap[components.RigidBody](w.ECS)
	w.Emitters = ecs.NewMap[components.ParticleEmitter](w.ECS)
	w.Ttls = ecs.NewMap[components.Ttl](w.ECS)
	w.Timers = ecs.NewMap[components.Timer](w.ECS)
	w.LuaTimers = ecs.NewMap[components.LuaTimer](w.ECS)
	w.Stuck = ecs.NewMap[components.StuckTo](w.ECS)
	w.Phases = ecs.NewMap[components.Phase](w.ECS)
	w.Rules = ecs.NewMap[components.CollisionRule](w.ECS)
	w.Bindings = ecs.NewMap[components.SignalBinding](w.ECS)
	w.Grids = ecs.NewMap[components.GridLayout](w.ECS)
	w.TweenPositions = ecs.NewMap[components.TweenPosition](w.ECS)
	w.TweenRotations = ecs.NewMap[components.TweenRotation](w.ECS)
	w.TweenScales = ecs.NewMap[components.TweenScale](w.ECS)
	w.Persistents = ecs.NewMap[components.Persistent](w.ECS)
	w.Owned = ecs.NewMap[components.SceneOwned](w.ECS)
	w.Shaders = ecs.NewMap[components.EntityShader](w.ECS)
	w.MouseFollow = ecs.NewMap[components.MouseControlled](w.ECS)
	w.Menus = ecs.NewMap[components.Menu](w.ECS)

	return w
}

// NewEntity creates an entity carrying the scene-ownership tag. Further
// components are added through the mappers.
func (w *World) NewEntity() ecs.Entity {
	return w.Owned.NewEntity(&components.SceneOwned{})
}

// Despawn removes an entity and drops its script handle. Despawning a dead
// entity is a no-op.
func (w *World) Despawn(e ecs.Entity) {
	if !w.ECS.Alive(e) {
		return
	}
	w.Handles.Forget(e)
	w.ECS.RemoveEntity(e)
}

// Entity resolves a script handle to a live entity.
func (w *World) Entity(id int64) (ecs.Entity, bool) {
	e, ok := w.Handles.Lookup(id)
	if !ok || !w.ECS.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// Emit dispatches an event through the bus.
func (w *World) Emit(ev Event) {
	w.Bus.Emit(w, ev)
}

// SendAudio forwards a command to the audio worker if one is attached.
func (w *World) SendAudio(cmd audio.Command) {
	if w.Audio != nil {
		w.Audio.Send(cmd)
	}
}

// GroupOf returns the entity's group name, or "" if ungrouped.
func (w *World) GroupOf(e ecs.Entity) string {
	if !w.Groups.Has(e) {
		return ""
	}
	return w.Groups.Get(e).Name
}

// RequestState queues a game state transition applied at the frame boundary.
func (w *World) RequestState(s GameState) {
	w.Next = NextGameState{State: s, Set: true}
}
