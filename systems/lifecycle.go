package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Tweens advances the three tween channels and writes the interpolated
// value into the target component.
func Tweens(w *world.World) {
	dt := w.Time.Delta

	posFilter := ecs.NewFilter2[components.MapPosition, components.TweenPosition](w.ECS)
	posQuery := posFilter.Query()
	for posQuery.Next() {
		pos, tw := posQuery.Get()
		t := tw.Advance(dt)
		pos.X = lerp(tw.From.X, tw.To.X, t)
		pos.Y = lerp(tw.From.Y, tw.To.Y, t)
	}

	rotFilter := ecs.NewFilter2[components.Rotation, components.TweenRotation](w.ECS)
	rotQuery := rotFilter.Query()
	for rotQuery.Next() {
		rot, tw := rotQuery.Get()
		rot.Degrees = lerp(tw.From, tw.To, tw.Advance(dt))
	}

	sclFilter := ecs.NewFilter2[components.Scale, components.TweenScale](w.ECS)
	sclQuery := sclFilter.Query()
	for sclQuery.Next() {
		scl, tw := sclQuery.Get()
		t := tw.Advance(dt)
		scl.X = lerp(tw.From.X, tw.To.X, t)
		scl.Y = lerp(tw.From.Y, tw.To.Y, t)
	}
}

// Timers advances signal timers and emits a TimerFired event per firing.
// The reset zeroes elapsed, so a timer fires at most once per frame.
func Timers(w *world.World) {
	dt := w.Time.Delta
	type firing struct {
		e      ecs.Entity
		signal string
	}
	var fired []firing

	filter := ecs.NewFilter1[components.Timer](w.ECS)
	query := filter.Query()
	for query.Next() {
		t := query.Get()
		t.Elapsed += dt
		if t.Duration > 0 && t.Elapsed >= t.Duration {
			t.Elapsed = 0
			fired = append(fired, firing{query.Entity(), t.Signal})
		}
	}

	for _, f := range fired {
		w.Emit(world.Event{Kind: world.EvTimerFired, Handle: w.Handles.Expose(f.e), Name: f.signal})
	}
}

// LuaTimers advances script timers. The reset subtracts the duration so
// firing cadence does not drift; the callback runs after iteration.
func LuaTimers(w *world.World) {
	dt := w.Time.Delta
	type firing struct {
		e  ecs.Entity
		fn string
	}
	var fired []firing

	filter := ecs.NewFilter1[components.LuaTimer](w.ECS)
	query := filter.Query()
	for query.Next() {
		t := query.Get()
		t.Elapsed += dt
		if t.Duration > 0 && t.Elapsed >= t.Duration {
			t.Elapsed -= t.Duration
			fired = append(fired, firing{query.Entity(), t.Callback})
		}
	}

	for _, f := range fired {
		if f.fn == "" || w.Scripts == nil {
			continue
		}
		w.Scripts.CallTimer(f.fn, f.e)
	}
	w.DrainFrame()
}

// Ttl counts lifetimes down in scaled time and despawns entities on the
// first frame their remaining time is spent, never before.
func Ttl(w *world.World) {
	dt := w.Time.Delta
	var dead []ecs.Entity

	filter := ecs.NewFilter1[components.Ttl](w.ECS)
	query := filter.Query()
	for query.Next() {
		t := query.Get()
		t.Remaining -= dt
		if t.Remaining <= 0 {
			dead = append(dead, query.Entity())
		}
	}

	for _, e := range dead {
		w.Despawn(e)
	}
}

// Transforms recomputes GlobalTransform2D from the local components.
// Entities that gain transform inputs get the computed component inserted
// directly; it becomes visible to rendering the same frame.
func Transforms(w *world.World) {
	type insert struct {
		e  ecs.Entity
		tf components.GlobalTransform2D
	}
	var inserts []insert

	filter := ecs.NewFilter1[components.MapPosition](w.ECS)
	query := filter.Query()
	for query.Next() {
		pos := query.Get()
		e := query.Entity()

		tf := components.GlobalTransform2D{X: pos.X, Y: pos.Y, ScaleX: 1, ScaleY: 1}
		if w.Rotations.Has(e) {
			tf.Rotation = w.Rotations.Get(e).Degrees
		}
		if w.Scales.Has(e) {
			s := w.Scales.Get(e)
			tf.ScaleX, tf.ScaleY = s.X, s.Y
		}

		if w.Transforms.Has(e) {
			*w.Transforms.Get(e) = tf
		} else {
			inserts = append(inserts, insert{e, tf})
		}
	}

	for i := range inserts {
		w.Transforms.Add(inserts[i].e, &inserts[i].tf)
	}
}
