// Package components defines the ECS components of the engine core.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/keys"
)

// Vec2 is a 2D vector in world or screen units.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// LengthSq returns the squared length of v.
func (v Vec2) LengthSq() float32 { return v.X*v.X + v.Y*v.Y }

// MapPosition is an entity's pivot position in world coordinates.
type MapPosition struct {
	X, Y float32
}

// ScreenPosition is a position in screen pixels, used by UI entities.
type ScreenPosition struct {
	X, Y float32
}

// Rotation is an entity's rotation in degrees, clockwise.
type Rotation struct {
	Degrees float32
}

// Scale holds per-axis scale factors. Default is (1, 1).
type Scale struct {
	X, Y float32
}

// GlobalTransform2D is the computed world transform of an entity.
// Written only by the transform propagation system.
type GlobalTransform2D struct {
	X, Y     float32
	Rotation float32
	ScaleX   float32
	ScaleY   float32
}

// ZIndex controls draw order. Higher values draw on top.
type ZIndex struct {
	Value int
}

// Sprite references a region of a texture. The offset into the atlas is the
// only field mutated after spawn (by the animation system), plus the flips.
type Sprite struct {
	Texture keys.Key
	Width   float32
	Height  float32
	OffsetX float32
	OffsetY float32
	OriginX float32
	OriginY float32
	FlipX   bool
	FlipY   bool
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

// White is the neutral sprite modulation color.
var White = Color{255, 255, 255, 255}

// DynamicText renders a string with a loaded font. The measured size is
// cached and recomputed only when content, font, or size changes; the
// Measured* fields mirror the inputs the cache was computed from.
type DynamicText struct {
	Content string
	Font    keys.Key
	Size    float32
	Color   Color

	MeasuredW       float32
	MeasuredH       float32
	MeasuredContent string
	MeasuredSize    float32
	MeasuredFont    keys.Key
}

// NeedsMeasure reports whether the cached size is stale.
func (t *DynamicText) NeedsMeasure() bool {
	return t.Content != t.MeasuredContent || t.Size != t.MeasuredSize || t.Font != t.MeasuredFont
}

// Tint modulates an entity's render color. It multiplies text color and
// replaces the sprite's default white.
type Tint struct {
	Color Color
}

// Group is an immutable tag used by collision rule matching and group
// counting.
type Group struct {
	Name string
}

// BoxCollider is an axis-aligned collision box. The AABB of an entity is
// (pos - origin + offset, +size).
type BoxCollider struct {
	Width   float32
	Height  float32
	OffsetX float32
	OffsetY float32
	OriginX float32
	OriginY float32
}

// SignalBinding rewrites a DynamicText each frame from a signal value.
// The source is the world signal store unless HasSource is set.
type SignalBinding struct {
	Signal    string
	Format    string
	Source    ecs.Entity
	HasSource bool
}

// GridLayout expands a layout file into child entities on first sight.
type GridLayout struct {
	Path    string
	Group   string
	ZIndex  int
	Spawned bool
}

// Persistent marks an entity as excluded from scene cleanup.
type Persistent struct{}

// SceneOwned tags every entity spawned through the builder; scene cleanup
// despawns all SceneOwned entities that are not Persistent.
type SceneOwned struct{}

// EntityShader wraps the entity's draw call in a loaded shader with
// per-entity uniforms.
type EntityShader struct {
	Shader   keys.Key
	Uniforms map[string]float32
}

// MouseControlled overwrites the entity's position from the pointer each
// frame along the enabled axes.
type MouseControlled struct {
	FollowX bool
	FollowY bool
}
