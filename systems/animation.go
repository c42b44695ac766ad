package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

// AnimationControllers selects each entity's animation from its signal
// state. The first matching rule wins; without a match the fallback plays.
// Switching key restarts the animation from frame zero.
func AnimationControllers(w *world.World) {
	filter := ecs.NewFilter2[components.AnimationController, components.Animation](w.ECS)
	query := filter.Query()
	for query.Next() {
		ctrl, anim := query.Get()
		e := query.Entity()

		var sig *components.Signals
		if w.EntitySignals.Has(e) {
			sig = w.EntitySignals.Get(e)
		}

		target := ctrl.Fallback
		for i := range ctrl.Rules {
			if ctrl.Rules[i].Condition.Matches(sig) {
				target = ctrl.Rules[i].Target
				break
			}
		}

		if anim.Key != target {
			anim.Key = target
			anim.Frame = 0
			anim.Elapsed = 0
		}
	}
}

// Animations advances frames and writes the current frame's atlas offset
// into the sprite. Non-looped animations hold their last frame.
func Animations(w *world.World) {
	dt := w.Time.Delta
	filter := ecs.NewFilter2[components.Animation, components.Sprite](w.ECS)
	query := filter.Query()
	for query.Next() {
		anim, sprite := query.Get()
		def, ok := w.Anims.Get(anim.Key)
		if !ok || def.FrameCount <= 0 || def.FPS <= 0 {
			continue
		}

		anim.Elapsed += dt
		frame := int(anim.Elapsed * def.FPS)
		if def.Looped {
			frame %= def.FrameCount
		} else if frame >= def.FrameCount {
			frame = def.FrameCount - 1
		}
		anim.Frame = frame

		sprite.Texture = def.Texture
		sprite.OffsetX = def.Px + def.Displacement*float32(frame)
		sprite.OffsetY = def.Py
	}
}
