package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/keys"
)

// WorldTime is the simulation clock. Delta is already scaled by TimeScale;
// every time-driven system reads Delta.
type WorldTime struct {
	Elapsed    float32
	Delta      float32
	TimeScale  float32
	FrameCount uint64
}

// Advance steps the clock by the raw frame delta.
func (t *WorldTime) Advance(rawDelta float32) {
	t.Delta = rawDelta * t.TimeScale
	t.Elapsed += t.Delta
	t.FrameCount++
}

// WorldSignals is the world-scope signal store: scalars, integers, strings,
// flags, tracked group counts, and the named entity registry.
type WorldSignals struct {
	Scalars     map[string]float32
	Integers    map[string]int64
	Strings     map[string]string
	Flags       map[string]struct{}
	GroupCounts map[string]int
	Entities    map[string]int64 // name -> script handle
}

// NewWorldSignals returns an empty store.
func NewWorldSignals() WorldSignals {
	return WorldSignals{
		Scalars:     make(map[string]float32),
		Integers:    make(map[string]int64),
		Strings:     make(map[string]string),
		Flags:       make(map[string]struct{}),
		GroupCounts: make(map[string]int),
		Entities:    make(map[string]int64),
	}
}

// HasFlag reports whether a world flag is set.
func (s *WorldSignals) HasFlag(name string) bool {
	_, ok := s.Flags[name]
	return ok
}

// TrackedGroups is the set of group names counted each frame.
type TrackedGroups struct {
	Names map[string]struct{}
}

// Track adds a group to the tracked set.
func (t *TrackedGroups) Track(name string) {
	if t.Names == nil {
		t.Names = make(map[string]struct{})
	}
	t.Names[name] = struct{}{}
}

// Untrack removes a group from the tracked set.
func (t *TrackedGroups) Untrack(name string) {
	delete(t.Names, name)
}

// Clear empties the tracked set.
func (t *TrackedGroups) Clear() {
	t.Names = make(map[string]struct{})
}

// Has reports whether a group is tracked.
func (t *TrackedGroups) Has(name string) bool {
	_, ok := t.Names[name]
	return ok
}

// Button is a logical digital input.
type Button uint8

const (
	BtnUp Button = iota
	BtnDown
	BtnLeft
	BtnRight
	BtnAltUp
	BtnAltDown
	BtnAltLeft
	BtnAltRight
	BtnConfirm
	BtnCancel
	BtnAction
	BtnPause
	buttonCount
)

// ButtonByName maps script-facing button names to values.
var ButtonByName = map[string]Button{
	"up":        BtnUp,
	"down":      BtnDown,
	"left":      BtnLeft,
	"right":     BtnRight,
	"alt_up":    BtnAltUp,
	"alt_down":  BtnAltDown,
	"alt_left":  BtnAltLeft,
	"alt_right": BtnAltRight,
	"confirm":   BtnConfirm,
	"cancel":    BtnCancel,
	"action":    BtnAction,
	"pause":     BtnPause,
}

// ButtonState is one button's digital snapshot for the current frame.
type ButtonState struct {
	Active       bool
	JustPressed  bool
	JustReleased bool
}

// InputState is the per-frame input snapshot. Directional buttons already
// unify main and secondary bindings via logical OR; the Alt* buttons carry
// the secondary bindings alone for menu navigation.
type InputState struct {
	Buttons [buttonCount]ButtonState

	MouseX, MouseY           float32
	MouseWorldX, MouseWorldY float32
	MousePressed, MouseHeld  bool

	// Bindings maps each button to raw key codes (graphics-layer values).
	Bindings map[Button][]int32
}

// Get returns a button's state.
func (in *InputState) Get(b Button) ButtonState {
	if int(b) >= len(in.Buttons) {
		return ButtonState{}
	}
	return in.Buttons[b]
}

// GameState is the coarse engine state.
type GameState uint8

const (
	StateNone GameState = iota
	StateSetup
	StatePlaying
	StatePaused
	StateQuitting
)

// String returns the state name.
func (s GameState) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateQuitting:
		return "quitting"
	default:
		return "none"
	}
}

// NextGameState holds a requested state transition.
type NextGameState struct {
	State GameState
	Set   bool
}

// SystemFn is a named system handle stored in the SystemsStore.
type SystemFn func(w *World)

// SystemsStore maps names to system handles for indirect invocation by
// state-change hooks.
type SystemsStore struct {
	systems map[string]SystemFn
}

// Register stores a system under a name.
func (s *SystemsStore) Register(name string, fn SystemFn) {
	if s.systems == nil {
		s.systems = make(map[string]SystemFn)
	}
	s.systems[name] = fn
}

// Invoke runs a named system; unknown names are no-ops.
func (s *SystemsStore) Invoke(name string, w *World) bool {
	fn, ok := s.systems[name]
	if !ok {
		return false
	}
	fn(w)
	return true
}

// CameraState is the logical 2D camera: a world-space target, a screen
// offset, rotation in degrees, and zoom. The render edge applies it.
type CameraState struct {
	TargetX, TargetY float32
	OffsetX, OffsetY float32
	RotationDeg      float32
	Zoom             float32
}

// AnimationDef is a registered sprite animation: FrameCount frames laid out
// horizontally in the atlas starting at (Px, Py), each Displacement pixels
// apart.
type AnimationDef struct {
	Texture      keys.Key
	Px, Py       float32
	Displacement float32
	FrameCount   int
	FPS          float32
	Looped       bool
}

// AnimationStore holds registered animations.
type AnimationStore struct {
	Defs map[keys.Key]AnimationDef
}

// Register stores an animation definition.
func (s *AnimationStore) Register(k keys.Key, def AnimationDef) {
	if s.Defs == nil {
		s.Defs = make(map[keys.Key]AnimationDef)
	}
	s.Defs[k] = def
}

// Get looks up an animation definition.
func (s *AnimationStore) Get(k keys.Key) (AnimationDef, bool) {
	def, ok := s.Defs[k]
	return def, ok
}

// TilePlacement is one tile of a tilemap layer, in tile coordinates.
type TilePlacement struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	ID int `json:"id"`
}

// TilemapLayer is one z-layer of a tilemap.
type TilemapLayer struct {
	Z     int             `json:"z"`
	Tiles []TilePlacement `json:"tiles"`
}

// TilemapDef is a parsed tilemap paired with its atlas texture. Columns is
// the number of tiles per atlas row.
type TilemapDef struct {
	TileWidth  int            `json:"tile_width"`
	TileHeight int            `json:"tile_height"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Columns    int            `json:"columns"`
	Layers     []TilemapLayer `json:"layers"`

	Atlas keys.Key `json:"-"`
}

// TilemapStore holds loaded tilemaps.
type TilemapStore struct {
	Maps map[keys.Key]TilemapDef
}

// Register stores a tilemap definition.
func (s *TilemapStore) Register(k keys.Key, def TilemapDef) {
	if s.Maps == nil {
		s.Maps = make(map[keys.Key]TilemapDef)
	}
	s.Maps[k] = def
}

// Get looks up a tilemap.
func (s *TilemapStore) Get(k keys.Key) (TilemapDef, bool) {
	def, ok := s.Maps[k]
	return def, ok
}

// Handles maps stable integer handles exposed to script onto live entities.
// A handle stays valid until its entity is despawned; resolving a dead or
// unknown handle fails, which the command processors treat as a no-op.
type Handles struct {
	byID map[int64]ecs.Entity
	ids  map[ecs.Entity]int64
	next int64
}

// NewHandles returns an empty handle table.
func NewHandles() *Handles {
	return &Handles{
		byID: make(map[int64]ecs.Entity),
		ids:  make(map[ecs.Entity]int64),
		next: 1,
	}
}

// Expose returns the handle for an entity, assigning one if needed.
func (h *Handles) Expose(e ecs.Entity) int64 {
	if id, ok := h.ids[e]; ok {
		return id
	}
	id := h.next
	h.next++
	h.byID[id] = e
	h.ids[e] = id
	return id
}

// Reserve allocates a handle ahead of entity creation. Used by the entity
// builder so script sees the id of a not-yet-applied spawn.
func (h *Handles) Reserve() int64 {
	id := h.next
	h.next++
	return id
}

// Bind attaches a reserved handle to its entity.
func (h *Handles) Bind(id int64, e ecs.Entity) {
	h.byID[id] = e
	h.ids[e] = id
}

// Lookup resolves a handle without liveness checking.
func (h *Handles) Lookup(id int64) (ecs.Entity, bool) {
	e, ok := h.byID[id]
	return e, ok
}

// Forget drops an entity's handle. Called on despawn.
func (h *Handles) Forget(e ecs.Entity) {
	if id, ok := h.ids[e]; ok {
		delete(h.byID, id)
		delete(h.ids, e)
	}
}
