// Package systems holds the per-frame simulation passes. Systems take the
// world and run in the fixed order the engine loop defines. Structural
// changes (component add/remove, despawn) are collected during iteration
// and applied afterwards.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

// movingEpsilonSq is the squared speed below which an entity counts as
// standing still.
const movingEpsilonSq = 1e-6

// Movement integrates rigid bodies: force accumulation, friction, speed
// clamp, position update, and the moving/speed_sq signals.
func Movement(w *world.World) {
	dt := w.Time.Delta
	filter := ecs.NewFilter2[components.MapPosition, components.RigidBody](w.ECS)
	query := filter.Query()
	for query.Next() {
		pos, body := query.Get()
		e := query.Entity()

		if body.Frozen {
			if w.EntitySignals.Has(e) {
				sig := w.EntitySignals.Get(e)
				sig.ClearFlag("moving")
				sig.SetScalar("speed_sq", 0)
			}
			continue
		}

		accel := body.Acceleration()
		body.Velocity.X += accel.X * dt
		body.Velocity.Y += accel.Y * dt

		if body.Friction > 0 {
			damp := 1 - body.Friction*dt
			if damp < 0 {
				damp = 0
			}
			body.Velocity = body.Velocity.Scale(damp)
		}

		if body.MaxSpeed > 0 {
			sq := body.Velocity.LengthSq()
			if sq > body.MaxSpeed*body.MaxSpeed {
				body.Velocity = body.Velocity.Scale(body.MaxSpeed / float32(math.Sqrt(float64(sq))))
			}
		}

		pos.X += body.Velocity.X * dt
		pos.Y += body.Velocity.Y * dt

		if w.EntitySignals.Has(e) {
			sig := w.EntitySignals.Get(e)
			sq := body.Velocity.LengthSq()
			if sq > movingEpsilonSq {
				sig.SetFlag("moving")
			} else {
				sig.ClearFlag("moving")
			}
			sig.SetScalar("speed_sq", sq)
		}
	}
}

// Mouse overwrites positions of mouse-controlled entities from the pointer
// along the enabled axes. Screen-space entities follow the raw pointer,
// world-space ones the unprojected position.
func Mouse(w *world.World) {
	filter := ecs.NewFilter1[components.MouseControlled](w.ECS)
	query := filter.Query()
	for query.Next() {
		mc := query.Get()
		e := query.Entity()
		if w.ScreenPositions.Has(e) {
			p := w.ScreenPositions.Get(e)
			if mc.FollowX {
				p.X = w.Input.MouseX
			}
			if mc.FollowY {
				p.Y = w.Input.MouseY
			}
		}
		if w.Positions.Has(e) {
			p := w.Positions.Get(e)
			if mc.FollowX {
				p.X = w.Input.MouseWorldX
			}
			if mc.FollowY {
				p.Y = w.Input.MouseWorldY
			}
		}
	}
}

// Sticky pins followers to their targets along the enabled axes. A follower
// whose target despawned keeps its last position and loses the attachment.
func Sticky(w *world.World) {
	type orphan struct{ e ecs.Entity }
	var orphans []orphan

	filter := ecs.NewFilter2[components.MapPosition, components.StuckTo](w.ECS)
	query := filter.Query()
	for query.Next() {
		pos, stick := query.Get()
		if !w.ECS.Alive(stick.Target) || !w.Positions.Has(stick.Target) {
			orphans = append(orphans, orphan{query.Entity()})
			continue
		}
		target := w.Positions.Get(stick.Target)
		if stick.FollowX {
			pos.X = target.X + stick.OffsetX
		}
		if stick.FollowY {
			pos.Y = target.Y + stick.OffsetY
		}
	}

	for _, o := range orphans {
		if w.Stuck.Has(o.e) {
			w.Stuck.Remove(o.e)
		}
	}
}
