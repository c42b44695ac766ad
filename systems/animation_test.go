package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
	"github.com/lumen2d/lumen/world"
)

func registerAnim(w *world.World, id string, frames int, fps float32, looped bool) keys.Key {
	k := keys.New(id)
	w.Anims.Register(k, world.AnimationDef{
		Texture:      keys.New("atlas"),
		Px:           0,
		Py:           32,
		Displacement: 16,
		FrameCount:   frames,
		FPS:          fps,
		Looped:       looped,
	})
	return k
}

func addAnimated(w *world.World, key keys.Key) ecs.Entity {
	e := w.NewEntity()
	w.Sprites.Add(e, &components.Sprite{Width: 16, Height: 16})
	w.Animations.Add(e, &components.Animation{Key: key})
	return e
}

func TestAnimationAdvancesFrames(t *testing.T) {
	w := newTestWorld()
	k := registerAnim(w, "walk", 4, 10, true)
	e := addAnimated(w, k)

	tick(w, 0.25)
	Animations(w)

	anim := w.Animations.Get(e)
	if anim.Frame != 2 {
		t.Errorf("frame = %d, want 2", anim.Frame)
	}
	sprite := w.Sprites.Get(e)
	if !approx32(sprite.OffsetX, 32) || !approx32(sprite.OffsetY, 32) {
		t.Errorf("sprite offset = (%v, %v), want (32, 32)", sprite.OffsetX, sprite.OffsetY)
	}
	if sprite.Texture != keys.New("atlas") {
		t.Error("sprite texture not pointed at the animation atlas")
	}
}

func TestAnimationLoopsAround(t *testing.T) {
	w := newTestWorld()
	k := registerAnim(w, "spin", 4, 10, true)
	e := addAnimated(w, k)

	tick(w, 0.55)
	Animations(w)

	// 5.5 frames into a 4-frame loop
	if got := w.Animations.Get(e).Frame; got != 1 {
		t.Errorf("frame = %d, want 1", got)
	}
}

func TestAnimationHoldsLastFrame(t *testing.T) {
	w := newTestWorld()
	k := registerAnim(w, "explode", 4, 10, false)
	e := addAnimated(w, k)

	tick(w, 2)
	Animations(w)

	if got := w.Animations.Get(e).Frame; got != 3 {
		t.Errorf("frame = %d, want held last frame 3", got)
	}
}

func TestAnimationUnknownKeyIsInert(t *testing.T) {
	w := newTestWorld()
	e := addAnimated(w, keys.New("unregistered"))

	tick(w, 1)
	Animations(w)

	if got := w.Animations.Get(e).Frame; got != 0 {
		t.Errorf("frame = %d, want 0 for an unknown key", got)
	}
}

func TestControllerSelectsBySignal(t *testing.T) {
	w := newTestWorld()
	idle := registerAnim(w, "idle", 2, 10, true)
	walk := registerAnim(w, "walk", 4, 10, true)

	e := addAnimated(w, idle)
	w.AnimControllers.Add(e, &components.AnimationController{
		Fallback: idle,
		Rules: []components.AnimationRule{
			{Condition: components.Condition{Flag: "moving"}, Target: walk},
		},
	})
	sig := components.NewSignals()
	w.EntitySignals.Add(e, &sig)

	AnimationControllers(w)
	if got := w.Animations.Get(e).Key; got != idle {
		t.Fatalf("key = %v, want fallback idle", got)
	}

	w.EntitySignals.Get(e).SetFlag("moving")
	w.Animations.Get(e).Elapsed = 0.5
	AnimationControllers(w)

	anim := w.Animations.Get(e)
	if anim.Key != walk {
		t.Fatalf("key = %v, want walk", anim.Key)
	}
	if anim.Elapsed != 0 || anim.Frame != 0 {
		t.Error("switching animations did not restart playback")
	}
}

func TestControllerFirstMatchWins(t *testing.T) {
	w := newTestWorld()
	idle := registerAnim(w, "idle", 2, 10, true)
	run := registerAnim(w, "run", 4, 10, true)
	sprint := registerAnim(w, "sprint", 4, 12, true)

	e := addAnimated(w, idle)
	w.AnimControllers.Add(e, &components.AnimationController{
		Fallback: idle,
		Rules: []components.AnimationRule{
			{Condition: components.Condition{Scalar: "speed_sq", Op: ">", Value: 100}, Target: sprint},
			{Condition: components.Condition{Scalar: "speed_sq", Op: ">", Value: 1}, Target: run},
		},
	})
	sig := components.NewSignals()
	sig.SetScalar("speed_sq", 400)
	w.EntitySignals.Add(e, &sig)

	AnimationControllers(w)
	if got := w.Animations.Get(e).Key; got != sprint {
		t.Errorf("key = %v, want sprint", got)
	}
}

func TestControllerAbsentFlag(t *testing.T) {
	w := newTestWorld()
	idle := registerAnim(w, "idle", 2, 10, true)
	hidden := registerAnim(w, "hidden", 1, 10, true)

	e := addAnimated(w, idle)
	w.AnimControllers.Add(e, &components.AnimationController{
		Fallback: idle,
		Rules: []components.AnimationRule{
			{Condition: components.Condition{Flag: "visible", Absent: true}, Target: hidden},
		},
	})

	// No signals component at all still counts as the flag being absent.
	AnimationControllers(w)
	if got := w.Animations.Get(e).Key; got != hidden {
		t.Errorf("key = %v, want hidden", got)
	}
}
