package components

import "github.com/mlange-42/ark/ecs"

// Force is a named acceleration applied while enabled.
type Force struct {
	X, Y    float32
	Enabled bool
}

// RigidBody integrates velocity from named acceleration forces, applies
// friction, clamps speed, and moves the MapPosition each tick.
type RigidBody struct {
	Velocity Vec2
	Friction float32 // >= 0
	MaxSpeed float32 // 0 = unclamped
	Frozen   bool
	Forces   map[string]Force
}

// NewRigidBody returns a body with an empty force map.
func NewRigidBody() RigidBody {
	return RigidBody{Forces: make(map[string]Force)}
}

// SetForce inserts or overwrites a named force.
func (rb *RigidBody) SetForce(name string, f Force) {
	if rb.Forces == nil {
		rb.Forces = make(map[string]Force)
	}
	rb.Forces[name] = f
}

// Acceleration sums all enabled forces.
func (rb *RigidBody) Acceleration() Vec2 {
	var a Vec2
	for _, f := range rb.Forces {
		if f.Enabled {
			a.X += f.X
			a.Y += f.Y
		}
	}
	return a
}

// StuckTo pins the entity's MapPosition to a target entity each frame along
// the enabled axes. While stuck the entity has no RigidBody; the velocity it
// had (if any) is stored for restoration on release.
type StuckTo struct {
	Target  ecs.Entity
	OffsetX float32
	OffsetY float32
	FollowX bool
	FollowY bool

	StoredVelocity    Vec2
	HasStoredVelocity bool
}
