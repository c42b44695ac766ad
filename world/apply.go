package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/audio"
	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
)

// maxDrainPasses bounds re-draining when applied commands enqueue more.
const maxDrainPasses = 16

// DrainFrame applies and clears the frame-scope command set. Commands
// enqueued while draining are applied in follow-up passes.
func (w *World) DrainFrame() {
	for pass := 0; pass < maxDrainPasses; pass++ {
		if w.Queues.Frame.Empty() {
			return
		}
		set := w.Queues.Frame
		w.Queues.Frame = CommandSet{}
		w.applySet(&set)
	}
	if !w.Queues.Frame.Empty() {
		w.Log.Warn("command drain did not settle", zap.Int("passes", maxDrainPasses))
	}
}

// DrainCollision applies and clears the pair-scoped command set. Called
// after every collision callback so later pairs observe the outcome.
func (w *World) DrainCollision() {
	if w.Queues.Collision.Empty() {
		return
	}
	set := w.Queues.Collision
	w.Queues.Collision = CommandSet{}
	w.applySet(&set)
}

// applySet processes one command batch. Spawns run before entity commands
// so freshly reserved handles resolve within the same batch.
func (w *World) applySet(set *CommandSet) {
	for i := range set.Assets {
		w.applyAsset(&set.Assets[i])
	}
	for i := range set.Animations {
		w.applyAnimation(&set.Animations[i])
	}
	for i := range set.Groups {
		w.applyGroup(&set.Groups[i])
	}
	for i := range set.Signals {
		w.applySignal(&set.Signals[i])
	}
	for i := range set.Spawns {
		set.Spawns[i].Apply(w)
	}
	for i := range set.Tilemaps {
		w.applyTilemap(&set.Tilemaps[i])
	}
	for i := range set.Entities {
		w.applyEntity(&set.Entities[i])
	}
	for i := range set.Phases {
		w.applyPhase(&set.Phases[i])
	}
	for i := range set.Cameras {
		w.applyCamera(&set.Cameras[i])
	}
	for i := range set.Audio {
		w.SendAudio(set.Audio[i])
	}
	for i := range set.States {
		w.RequestState(set.States[i].State)
	}
	for i := range set.Scenes {
		w.PendingScene = set.Scenes[i].Scene
	}
}

func (w *World) applyAsset(c *AssetCommand) {
	switch c.Kind {
	case AssetTexture:
		if w.Assets == nil {
			return
		}
		if err := w.Assets.LoadTexture(keys.New(c.ID), c.Path); err != nil {
			w.Log.Warn("texture load failed", zap.String("id", c.ID), zap.Error(err))
		}
	case AssetFont:
		if w.Assets == nil {
			return
		}
		if err := w.Assets.LoadFont(keys.New(c.ID), c.Path, c.Size); err != nil {
			w.Log.Warn("font load failed", zap.String("id", c.ID), zap.Error(err))
		}
	case AssetShader:
		if w.Assets == nil {
			return
		}
		if err := w.Assets.LoadShader(keys.New(c.ID), c.Path, c.Extra); err != nil {
			w.Log.Warn("shader load failed", zap.String("id", c.ID), zap.Error(err))
		}
	case AssetTilemap:
		if err := w.LoadTilemap(keys.New(c.ID), c.Path, keys.New(c.Atlas)); err != nil {
			w.Log.Warn("tilemap load failed", zap.String("id", c.ID), zap.Error(err))
		}
	case AssetMusic:
		w.SendAudio(audio.Command{Kind: audio.CmdLoadMusic, ID: c.ID, Path: c.Path})
	case AssetSound:
		w.SendAudio(audio.Command{Kind: audio.CmdLoadFx, ID: c.ID, Path: c.Path})
	}
}

func (w *World) applyAnimation(c *AnimationCommand) {
	w.Anims.Register(keys.New(c.ID), AnimationDef{
		Texture:      keys.New(c.Texture),
		Px:           c.Px,
		Py:           c.Py,
		Displacement: c.Displacement,
		FrameCount:   c.FrameCount,
		FPS:          c.FPS,
		Looped:       c.Looped,
	})
}

func (w *World) applyGroup(c *GroupCommand) {
	switch c.Op {
	case GroupTrack:
		w.Tracked.Track(c.Name)
	case GroupUntrack:
		w.Tracked.Untrack(c.Name)
		delete(w.Signals.GroupCounts, c.Name)
	case GroupClear:
		w.Tracked.Clear()
		w.Signals.GroupCounts = make(map[string]int)
	}
}

func (w *World) applySignal(c *SignalCommand) {
	switch c.Op {
	case SigSetScalar:
		w.Signals.Scalars[c.Name] = c.Scalar
	case SigSetInteger:
		w.Signals.Integers[c.Name] = c.Integer
	case SigSetString:
		w.Signals.Strings[c.Name] = c.Str
	case SigSetFlag:
		w.Signals.Flags[c.Name] = struct{}{}
	case SigClearFlag:
		delete(w.Signals.Flags, c.Name)
	}
}

func (w *World) applyPhase(c *PhaseCommand) {
	e, ok := w.Entity(c.Target)
	if !ok || !w.Phases.Has(e) {
		return
	}
	w.Phases.Get(e).Next = c.Phase
}

func (w *World) applyCamera(c *CameraCommand) {
	if c.HasTarget {
		w.Camera.TargetX = c.TargetX
		w.Camera.TargetY = c.TargetY
	}
	if c.HasOffset {
		w.Camera.OffsetX = c.OffsetX
		w.Camera.OffsetY = c.OffsetY
	}
	if c.HasRotation {
		w.Camera.RotationDeg = c.Rotation
	}
	if c.HasZoom {
		w.Camera.Zoom = c.Zoom
	}
}

// applyEntity applies one deferred mutation. A stale target handle makes
// the whole command a silent no-op.
func (w *World) applyEntity(c *EntityCommand) {
	e, ok := w.Entity(c.Target)
	if !ok {
		return
	}
	switch c.Op {
	case OpSetPosition:
		if w.Positions.Has(e) {
			p := w.Positions.Get(e)
			p.X, p.Y = c.X, c.Y
		} else {
			w.Positions.Add(e, &components.MapPosition{X: c.X, Y: c.Y})
		}
	case OpSetScreenPosition:
		if w.ScreenPositions.Has(e) {
			p := w.ScreenPositions.Get(e)
			p.X, p.Y = c.X, c.Y
		} else {
			w.ScreenPositions.Add(e, &components.ScreenPosition{X: c.X, Y: c.Y})
		}
	case OpSetRotation:
		if w.Rotations.Has(e) {
			w.Rotations.Get(e).Degrees = c.Value
		} else {
			w.Rotations.Add(e, &components.Rotation{Degrees: c.Value})
		}
	case OpSetScale:
		if w.Scales.Has(e) {
			s := w.Scales.Get(e)
			s.X, s.Y = c.X, c.Y
		} else {
			w.Scales.Add(e, &components.Scale{X: c.X, Y: c.Y})
		}
	case OpSetZIndex:
		if w.ZIndices.Has(e) {
			w.ZIndices.Get(e).Value = int(c.Value)
		} else {
			w.ZIndices.Add(e, &components.ZIndex{Value: int(c.Value)})
		}

	case OpSetVelocity:
		body := w.ensureBody(e)
		body.Velocity = components.Vec2{X: c.X, Y: c.Y}
	case OpSetSpeed:
		if !w.Bodies.Has(e) {
			return
		}
		body := w.Bodies.Get(e)
		cur := body.Velocity.LengthSq()
		if cur == 0 {
			return
		}
		scale := c.Value / float32(math.Sqrt(float64(cur)))
		body.Velocity = body.Velocity.Scale(scale)
	case OpSetFriction:
		w.ensureBody(e).Friction = c.Value
	case OpSetMaxSpeed:
		w.ensureBody(e).MaxSpeed = c.Value
	case OpSetForce:
		w.ensureBody(e).SetForce(c.Name, components.Force{X: c.X, Y: c.Y, Enabled: c.FollowX})
	case OpSetForceValue:
		if !w.Bodies.Has(e) {
			return
		}
		body := w.Bodies.Get(e)
		if f, found := body.Forces[c.Name]; found {
			f.X, f.Y = c.X, c.Y
			body.Forces[c.Name] = f
		}
	case OpRemoveForce:
		if w.Bodies.Has(e) {
			delete(w.Bodies.Get(e).Forces, c.Name)
		}
	case OpEnableForce, OpDisableForce:
		if !w.Bodies.Has(e) {
			return
		}
		body := w.Bodies.Get(e)
		if f, found := body.Forces[c.Name]; found {
			f.Enabled = c.Op == OpEnableForce
			body.Forces[c.Name] = f
		}
	case OpFreeze:
		if w.Bodies.Has(e) {
			w.Bodies.Get(e).Frozen = true
		}
	case OpUnfreeze:
		if w.Bodies.Has(e) {
			w.Bodies.Get(e).Frozen = false
		}

	case OpStick:
		target, found := w.Entity(c.Other)
		if !found {
			return
		}
		stick := components.StuckTo{
			Target:  target,
			OffsetX: c.X,
			OffsetY: c.Y,
			FollowX: c.FollowX,
			FollowY: c.FollowY,
		}
		if w.Bodies.Has(e) {
			stick.StoredVelocity = w.Bodies.Get(e).Velocity
			stick.HasStoredVelocity = true
			w.Bodies.Remove(e)
		}
		if w.Stuck.Has(e) {
			prev := w.Stuck.Get(e)
			if prev.HasStoredVelocity && !stick.HasStoredVelocity {
				stick.StoredVelocity = prev.StoredVelocity
				stick.HasStoredVelocity = true
			}
			*prev = stick
		} else {
			w.Stuck.Add(e, &stick)
		}
	case OpRelease:
		if !w.Stuck.Has(e) {
			return
		}
		stick := *w.Stuck.Get(e)
		w.Stuck.Remove(e)
		if stick.HasStoredVelocity {
			body := w.ensureBody(e)
			body.Velocity = stick.StoredVelocity
		}

	case OpAddLuaTimer:
		t := components.LuaTimer{Duration: c.Value, Callback: c.Str}
		if w.LuaTimers.Has(e) {
			*w.LuaTimers.Get(e) = t
		} else {
			w.LuaTimers.Add(e, &t)
		}
	case OpRemoveLuaTimer:
		if w.LuaTimers.Has(e) {
			w.LuaTimers.Remove(e)
		}

	case OpAddTween:
		addTween(w, e, TweenRecord{
			Channel: c.Tween.Channel,
			From:    c.Tween.From,
			To:      c.Tween.To,
			State:   c.Tween.State,
		})
	case OpRemoveTween:
		switch c.Tween.Channel {
		case TweenRot:
			if w.TweenRotations.Has(e) {
				w.TweenRotations.Remove(e)
			}
		case TweenScl:
			if w.TweenScales.Has(e) {
				w.TweenScales.Remove(e)
			}
		default:
			if w.TweenPositions.Has(e) {
				w.TweenPositions.Remove(e)
			}
		}
	case OpPlayTween, OpPauseTween:
		playing := c.Op == OpPlayTween
		switch c.Tween.Channel {
		case TweenRot:
			if w.TweenRotations.Has(e) {
				w.TweenRotations.Get(e).Playing = playing
			}
		case TweenScl:
			if w.TweenScales.Has(e) {
				w.TweenScales.Get(e).Playing = playing
			}
		default:
			if w.TweenPositions.Has(e) {
				w.TweenPositions.Get(e).Playing = playing
			}
		}

	case OpSetAnimation:
		key := keys.New(c.Str)
		if w.Animations.Has(e) {
			anim := w.Animations.Get(e)
			if anim.Key != key {
				anim.Key = key
				anim.Frame = 0
				anim.Elapsed = 0
			}
		} else {
			w.Animations.Add(e, &components.Animation{Key: key})
		}
	case OpRestartAnimation:
		if w.Animations.Has(e) {
			anim := w.Animations.Get(e)
			anim.Frame = 0
			anim.Elapsed = 0
		}

	case OpSetScalar:
		w.ensureSignals(e).SetScalar(c.Name, c.Value)
	case OpSetInteger:
		w.ensureSignals(e).SetInteger(c.Name, c.Integer)
	case OpSetString:
		w.ensureSignals(e).SetString(c.Name, c.Str)
	case OpSetFlag:
		w.ensureSignals(e).SetFlag(c.Name)
	case OpClearFlag:
		w.ensureSignals(e).ClearFlag(c.Name)

	case OpSetText:
		if w.Texts.Has(e) {
			w.Texts.Get(e).Content = c.Str
		}
	case OpSetTint:
		if w.Tints.Has(e) {
			w.Tints.Get(e).Color = c.Color
		} else {
			w.Tints.Add(e, &components.Tint{Color: c.Color})
		}
	case OpSetTtl:
		t := components.Ttl{Remaining: c.Value}
		if w.Ttls.Has(e) {
			*w.Ttls.Get(e) = t
		} else {
			w.Ttls.Add(e, &t)
		}

	case OpDespawn:
		w.Despawn(e)
	}
}

func (w *World) ensureBody(e ecs.Entity) *components.RigidBody {
	if !w.Bodies.Has(e) {
		body := components.NewRigidBody()
		w.Bodies.Add(e, &body)
	}
	return w.Bodies.Get(e)
}

func (w *World) ensureSignals(e ecs.Entity) *components.Signals {
	if !w.EntitySignals.Has(e) {
		sig := components.NewSignals()
		w.EntitySignals.Add(e, &sig)
	}
	return w.EntitySignals.Get(e)
}
