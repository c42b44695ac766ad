package systems

import (
	"testing"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

func TestTtlDespawnsWhenSpent(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	w.Ttls.Add(e, &components.Ttl{Remaining: 1.0})

	tick(w, 0.5)
	Ttl(w)
	if !w.ECS.Alive(e) {
		t.Fatal("entity despawned with time remaining")
	}
	if got := w.Ttls.Get(e).Remaining; !approx32(got, 0.5) {
		t.Errorf("remaining = %v, want 0.5", got)
	}

	tick(w, 0.5)
	Ttl(w)
	if w.ECS.Alive(e) {
		t.Error("entity alive after its lifetime was spent")
	}
}

func TestTtlScalesWithTime(t *testing.T) {
	w := newTestWorld()
	w.Time.TimeScale = 0.5

	e := w.NewEntity()
	w.Ttls.Add(e, &components.Ttl{Remaining: 1.0})

	tick(w, 1.0)
	Ttl(w)

	// Scaled delta is 0.5, so half the lifetime remains.
	if !w.ECS.Alive(e) {
		t.Fatal("slow motion shortened the lifetime")
	}
	if got := w.Ttls.Get(e).Remaining; !approx32(got, 0.5) {
		t.Errorf("remaining = %v, want 0.5", got)
	}
}

func TestTimerFiresAndZeroes(t *testing.T) {
	w := newTestWorld()

	var fired []string
	w.Bus.Observe(world.EvTimerFired, func(w *world.World, ev world.Event) {
		fired = append(fired, ev.Name)
	})

	e := w.NewEntity()
	w.Timers.Add(e, &components.Timer{Duration: 1.0, Signal: "wave"})

	tick(w, 0.6)
	Timers(w)
	if len(fired) != 0 {
		t.Fatal("timer fired early")
	}

	tick(w, 0.6)
	Timers(w)
	if len(fired) != 1 || fired[0] != "wave" {
		t.Fatalf("fired = %v, want [wave]", fired)
	}
	// Zeroing the elapsed time means overshoot is discarded.
	if got := w.Timers.Get(e).Elapsed; got != 0 {
		t.Errorf("elapsed = %v, want 0", got)
	}
}

func TestLuaTimerKeepsCadence(t *testing.T) {
	w := newTestWorld()
	rec := &scriptRecorder{}
	w.Scripts = rec

	e := w.NewEntity()
	w.LuaTimers.Add(e, &components.LuaTimer{Duration: 0.5, Callback: "on_beat"})

	tick(w, 0.6)
	LuaTimers(w)

	if len(rec.timers) != 1 || rec.timers[0] != "on_beat" {
		t.Fatalf("timers = %v, want [on_beat]", rec.timers)
	}
	// The overshoot carries over so the cadence does not drift.
	if got := w.LuaTimers.Get(e).Elapsed; !approx32(got, 0.1) {
		t.Errorf("elapsed = %v, want 0.1", got)
	}
}

func TestTweenPositionOnceClampsAtEnd(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{})
	w.TweenPositions.Add(e, &components.TweenPosition{
		From: components.Vec2{X: 0},
		To:   components.Vec2{X: 10},
		TweenState: components.TweenState{
			Duration: 1, Loop: components.LoopOnce, Playing: true, Forward: true,
		},
	})

	tick(w, 0.7)
	Tweens(w)
	if got := w.Positions.Get(e).X; !approx32(got, 7) {
		t.Errorf("x = %v, want 7", got)
	}

	tick(w, 0.7)
	Tweens(w)
	p := w.Positions.Get(e)
	tw := w.TweenPositions.Get(e)
	if !approx32(p.X, 10) {
		t.Errorf("x = %v, want clamped 10", p.X)
	}
	if tw.Playing {
		t.Error("once tween still playing past its end")
	}
}

func TestTweenPingPongReturnsToStart(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{})
	w.TweenPositions.Add(e, &components.TweenPosition{
		From: components.Vec2{X: 0},
		To:   components.Vec2{X: 10},
		TweenState: components.TweenState{
			Duration: 1, Loop: components.LoopPingPong, Playing: true, Forward: true,
		},
	})

	for i := 0; i < 4; i++ {
		tick(w, 0.5)
		Tweens(w)
	}

	// Two full durations: out and back.
	p := w.Positions.Get(e)
	tw := w.TweenPositions.Get(e)
	if !approx32(p.X, 0) {
		t.Errorf("x = %v, want 0 after a full ping-pong cycle", p.X)
	}
	if !tw.Playing {
		t.Error("ping-pong tween stopped")
	}
	if !tw.Forward {
		t.Error("tween not heading forward again")
	}
}

func TestTweenRotationUsesScalarEndpoints(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	w.Rotations.Add(e, &components.Rotation{})
	w.TweenRotations.Add(e, &components.TweenRotation{
		From: 0, To: 180,
		TweenState: components.TweenState{
			Duration: 2, Loop: components.LoopOnce, Playing: true, Forward: true,
		},
	})

	tick(w, 1)
	Tweens(w)

	if got := w.Rotations.Get(e).Degrees; !approx32(got, 90) {
		t.Errorf("degrees = %v, want 90", got)
	}
}

func TestTransformsCompose(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{X: 3, Y: 4})
	w.Rotations.Add(e, &components.Rotation{Degrees: 30})
	w.Scales.Add(e, &components.Scale{X: 2, Y: 3})

	Transforms(w)

	if !w.Transforms.Has(e) {
		t.Fatal("global transform not inserted")
	}
	tf := w.Transforms.Get(e)
	if !approx32(tf.X, 3) || !approx32(tf.Y, 4) ||
		!approx32(tf.Rotation, 30) || !approx32(tf.ScaleX, 2) || !approx32(tf.ScaleY, 3) {
		t.Errorf("transform = %+v", tf)
	}
}

func TestTransformsDefaultScale(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{X: 1})

	Transforms(w)

	tf := w.Transforms.Get(e)
	if !approx32(tf.ScaleX, 1) || !approx32(tf.ScaleY, 1) {
		t.Errorf("scale = (%v, %v), want identity", tf.ScaleX, tf.ScaleY)
	}
}
