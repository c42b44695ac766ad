package world

import (
	"github.com/lumen2d/lumen/audio"
	"github.com/lumen2d/lumen/components"
)

// AssetKind selects what an AssetCommand loads.
type AssetKind uint8

const (
	AssetTexture AssetKind = iota
	AssetFont
	AssetShader
	AssetTilemap
	AssetMusic
	AssetSound
)

// AssetCommand requests an asset load. Size applies to fonts, Atlas and
// Extra to tilemaps (atlas texture id, atlas path), Extra to shaders
// (fragment path, Path being the vertex path).
type AssetCommand struct {
	Kind  AssetKind
	ID    string
	Path  string
	Extra string
	Atlas string
	Size  float32
}

// SignalOp selects a world-signal mutation.
type SignalOp uint8

const (
	SigSetScalar SignalOp = iota
	SigSetInteger
	SigSetString
	SigSetFlag
	SigClearFlag
)

// SignalCommand mutates one world-scope signal.
type SignalCommand struct {
	Op      SignalOp
	Name    string
	Scalar  float32
	Integer int64
	Str     string
}

// PhaseCommand requests a phase transition on an entity. Only the last
// transition queued for an entity in a frame takes effect.
type PhaseCommand struct {
	Target int64
	Phase  string
}

// GroupOp selects a tracked-group mutation.
type GroupOp uint8

const (
	GroupTrack GroupOp = iota
	GroupUntrack
	GroupClear
)

// GroupCommand mutates the tracked group set.
type GroupCommand struct {
	Op   GroupOp
	Name string
}

// CameraCommand replaces the camera state. Unset fields keep their
// previous value when the corresponding Has flag is false.
type CameraCommand struct {
	TargetX, TargetY float32
	HasTarget        bool
	OffsetX, OffsetY float32
	HasOffset        bool
	Rotation         float32
	HasRotation      bool
	Zoom             float32
	HasZoom          bool
}

// AnimationCommand registers an animation definition under an id.
type AnimationCommand struct {
	ID           string
	Texture      string
	Px, Py       float32
	Displacement float32
	FrameCount   int
	FPS          float32
	Looped       bool
}

// TilemapCommand spawns the tile entities of a loaded tilemap.
type TilemapCommand struct {
	ID      string
	OriginX float32
	OriginY float32
}

// SceneCommand requests a scene switch at the frame boundary.
type SceneCommand struct {
	Scene string
}

// StateCommand requests a game state transition.
type StateCommand struct {
	State GameState
}

// EntityOp enumerates per-entity mutations.
type EntityOp uint8

const (
	OpSetPosition EntityOp = iota
	OpSetScreenPosition
	OpSetRotation
	OpSetScale
	OpSetZIndex
	OpSetVelocity
	OpSetSpeed
	OpSetFriction
	OpSetMaxSpeed
	OpSetForce
	OpSetForceValue
	OpRemoveForce
	OpEnableForce
	OpDisableForce
	OpFreeze
	OpUnfreeze
	OpStick
	OpRelease
	OpAddLuaTimer
	OpRemoveLuaTimer
	OpAddTween
	OpRemoveTween
	OpPlayTween
	OpPauseTween
	OpSetAnimation
	OpRestartAnimation
	OpSetScalar
	OpSetInteger
	OpSetString
	OpSetFlag
	OpClearFlag
	OpSetText
	OpSetTint
	OpSetTtl
	OpDespawn
)

// TweenChannel selects which transform channel a tween command targets.
type TweenChannel uint8

const (
	TweenPos TweenChannel = iota
	TweenRot
	TweenScl
)

// TweenSpec carries the payload of OpAddTween. Rotation tweens use the X
// coordinates of From and To.
type TweenSpec struct {
	Channel TweenChannel
	From    components.Vec2
	To      components.Vec2
	State   components.TweenState
}

// EntityCommand is one deferred mutation of a single entity. A command
// whose Target no longer resolves is dropped silently.
type EntityCommand struct {
	Op     EntityOp
	Target int64

	X, Y  float32
	Value float32
	Name  string
	Str   string

	// Integer carries OpSetInteger payloads; float32 cannot hold every
	// int64 exactly.
	Integer int64

	// Other is the carrier handle of a stick command. FollowX doubles as
	// the enabled flag of OpSetForce.
	Other   int64
	FollowX bool
	FollowY bool

	Tween TweenSpec

	Color components.Color
}

// CommandSet is one batch of deferred commands. The world carries the
// frame-scope set; the collision pipeline drains a second, pair-scoped set
// after every callback so later pairs observe earlier outcomes.
type CommandSet struct {
	Assets     []AssetCommand
	Spawns     []SpawnRecord
	Audio      []audio.Command
	Signals    []SignalCommand
	Phases     []PhaseCommand
	Entities   []EntityCommand
	Groups     []GroupCommand
	Tilemaps   []TilemapCommand
	Cameras    []CameraCommand
	Animations []AnimationCommand
	Scenes     []SceneCommand
	States     []StateCommand
}

// Empty reports whether no commands are queued.
func (s *CommandSet) Empty() bool {
	return len(s.Assets) == 0 && len(s.Spawns) == 0 && len(s.Audio) == 0 &&
		len(s.Signals) == 0 && len(s.Phases) == 0 && len(s.Entities) == 0 &&
		len(s.Groups) == 0 && len(s.Tilemaps) == 0 && len(s.Cameras) == 0 &&
		len(s.Animations) == 0 && len(s.Scenes) == 0 && len(s.States) == 0
}

// Queues is the world's deferred command state. Frame is drained between
// systems; Collision is drained per overlapping pair during the collision
// pass and routes the subset of kinds a collision callback may use.
type Queues struct {
	Frame     CommandSet
	Collision CommandSet

	// InCollision redirects script and native enqueues into the
	// pair-scoped set while a collision callback runs.
	InCollision bool
}

func (q *Queues) active() *CommandSet {
	if q.InCollision {
		return &q.Collision
	}
	return &q.Frame
}

// PushSpawn queues a spawn record.
func (q *Queues) PushSpawn(r SpawnRecord) { s := q.active(); s.Spawns = append(s.Spawns, r) }

// PushEntity queues an entity mutation.
func (q *Queues) PushEntity(c EntityCommand) { s := q.active(); s.Entities = append(s.Entities, c) }

// PushSignal queues a world-signal mutation.
func (q *Queues) PushSignal(c SignalCommand) { s := q.active(); s.Signals = append(s.Signals, c) }

// PushAudio queues an audio command.
func (q *Queues) PushAudio(c audio.Command) { s := q.active(); s.Audio = append(s.Audio, c) }

// PushPhase queues a phase transition.
func (q *Queues) PushPhase(c PhaseCommand) { s := q.active(); s.Phases = append(s.Phases, c) }

// PushCamera queues a camera update.
func (q *Queues) PushCamera(c CameraCommand) { s := q.active(); s.Cameras = append(s.Cameras, c) }

// PushAsset queues an asset load. Asset loads are frame scope even inside
// collision callbacks.
func (q *Queues) PushAsset(c AssetCommand) { q.Frame.Assets = append(q.Frame.Assets, c) }

// PushGroup queues a tracked-group mutation (frame scope).
func (q *Queues) PushGroup(c GroupCommand) { q.Frame.Groups = append(q.Frame.Groups, c) }

// PushTilemap queues a tilemap expansion (frame scope).
func (q *Queues) PushTilemap(c TilemapCommand) { q.Frame.Tilemaps = append(q.Frame.Tilemaps, c) }

// PushAnimation queues an animation registration (frame scope).
func (q *Queues) PushAnimation(c AnimationCommand) {
	q.Frame.Animations = append(q.Frame.Animations, c)
}

// PushScene queues a scene switch (frame scope).
func (q *Queues) PushScene(c SceneCommand) { q.Frame.Scenes = append(q.Frame.Scenes, c) }

// PushState queues a game state transition (frame scope).
func (q *Queues) PushState(c StateCommand) { q.Frame.States = append(q.Frame.States, c) }
