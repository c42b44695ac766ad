package world

import (
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
)

// SpriteSpec is the sprite payload of a spawn record.
type SpriteSpec struct {
	Texture          string
	Width, Height    float32
	OffsetX, OffsetY float32
	OriginX, OriginY float32
	FlipX, FlipY     bool
}

// TextSpec is the dynamic text payload of a spawn record.
type TextSpec struct {
	Content string
	Font    string
	Size    float32
	Color   components.Color
}

// ForceSpec is one named force of a body payload.
type ForceSpec struct {
	Name    string
	X, Y    float32
	Enabled bool
}

// BodySpec is the rigid body payload. Nil pointer fields stay at their
// zero defaults.
type BodySpec struct {
	Velocity *components.Vec2
	Friction *float32
	MaxSpeed *float32
	Frozen   bool
	Forces   []ForceSpec
}

// ColliderSpec is the box collider payload. Origin mirrors the sprite
// origin so the box tracks the drawn image.
type ColliderSpec struct {
	Width, Height    float32
	OffsetX, OffsetY float32
	OriginX, OriginY float32
}

// SignalsSpec seeds the entity's signal store.
type SignalsSpec struct {
	Scalars  map[string]float32
	Integers map[string]int64
	Strings  map[string]string
	Flags    []string
}

// PhaseSpec is the phase machine payload.
type PhaseSpec struct {
	Initial string
	Hooks   map[string]components.PhaseHooks
}

// StickSpec pins the new entity to a carrier. StoredVelocity, if set, is
// the velocity restored when the attachment is released.
type StickSpec struct {
	Target           int64
	OffsetX, OffsetY float32
	FollowX, FollowY bool
	StoredVelocity   *components.Vec2
}

// TimerSpec is a signal timer payload.
type TimerSpec struct {
	Duration float32
	Signal   string
}

// LuaTimerSpec is a script timer payload.
type LuaTimerSpec struct {
	Duration float32
	Callback string
}

// BindingSpec is the signal binding payload.
type BindingSpec struct {
	Signal    string
	Format    string
	Source    int64
	HasSource bool
}

// TweenRecord is one tween attached at spawn. Rotation tweens use the X
// coordinates of From and To.
type TweenRecord struct {
	Channel TweenChannel
	From    components.Vec2
	To      components.Vec2
	State   components.TweenState
}

// EmitterSpec is the particle emitter payload. Templates are script
// handles resolved at apply time.
type EmitterSpec struct {
	Templates []int64

	Shape            components.EmitterShape
	RectW, RectH     float32
	OffsetX, OffsetY float32

	ParticlesPerEmission int
	EmissionsPerSecond   float32
	Emissions            int

	ArcMinDeg, ArcMaxDeg float32
	SpeedMin, SpeedMax   float32

	Ttl components.TtlSpec
}

// ShaderSpec is the per-entity shader payload.
type ShaderSpec struct {
	Shader   string
	Uniforms map[string]float32
}

// GridSpec expands a grid layout file under the new entity.
type GridSpec struct {
	Path   string
	Group  string
	ZIndex int
}

// AnimCtrlSpec is the animation controller payload.
type AnimCtrlSpec struct {
	Fallback string
	Rules    []AnimRuleSpec
}

// AnimRuleSpec is one controller rule.
type AnimRuleSpec struct {
	Condition components.Condition
	Target    string
}

// SpawnRecord is the deferred entity description built by the entity
// builder. Every non-nil field becomes a component; absent fields insert
// nothing, so a record with only a position yields an entity with only a
// position. Records are values: applying one twice yields two entities.
type SpawnRecord struct {
	Group          *string
	Position       *components.Vec2
	ScreenPosition *components.Vec2
	ZIndex         *int
	Rotation       *float32
	Scale          *components.Vec2
	Persistent     bool

	Sprite   *SpriteSpec
	Text     *TextSpec
	Tint     *components.Color
	Body     *BodySpec
	Collider *ColliderSpec
	Mouse    *components.MouseControlled
	Signals  *SignalsSpec
	Phase    *PhaseSpec
	Stick    *StickSpec
	Timer    *TimerSpec
	LuaTimer *LuaTimerSpec
	Ttl      *float32
	Binding  *BindingSpec
	Tweens   []TweenRecord
	Grid     *GridSpec
	Rule     *components.CollisionRule
	Anim     *string
	AnimCtrl *AnimCtrlSpec
	Menu     *components.Menu
	Emitter  *EmitterSpec
	Shader   *ShaderSpec

	RegisterAs string

	// Reserved is a pre-allocated handle to bind to the new entity, or 0.
	Reserved int64
}

// Apply creates the entity the record describes and returns it with its
// script handle. Unresolvable referenced handles (stick targets, emitter
// templates) are dropped with a warning.
func (r *SpawnRecord) Apply(w *World) (ecs.Entity, int64) {
	e := w.NewEntity()

	if r.Position != nil {
		w.Positions.Add(e, &components.MapPosition{X: r.Position.X, Y: r.Position.Y})
	}
	if r.ScreenPosition != nil {
		w.ScreenPositions.Add(e, &components.ScreenPosition{X: r.ScreenPosition.X, Y: r.ScreenPosition.Y})
	}
	if r.ZIndex != nil {
		w.ZIndices.Add(e, &components.ZIndex{Value: *r.ZIndex})
	}
	if r.Rotation != nil {
		w.Rotations.Add(e, &components.Rotation{Degrees: *r.Rotation})
	}
	if r.Scale != nil {
		w.Scales.Add(e, &components.Scale{X: r.Scale.X, Y: r.Scale.Y})
	}
	if r.Group != nil {
		w.Groups.Add(e, &components.Group{Name: *r.Group})
	}
	if r.Persistent {
		w.Persistents.Add(e, &components.Persistent{})
	}

	if r.Sprite != nil {
		w.Sprites.Add(e, &components.Sprite{
			Texture: keys.New(r.Sprite.Texture),
			Width:   r.Sprite.Width,
			Height:  r.Sprite.Height,
			OffsetX: r.Sprite.OffsetX,
			OffsetY: r.Sprite.OffsetY,
			OriginX: r.Sprite.OriginX,
			OriginY: r.Sprite.OriginY,
			FlipX:   r.Sprite.FlipX,
			FlipY:   r.Sprite.FlipY,
		})
	}
	if r.Text != nil {
		w.Texts.Add(e, &components.DynamicText{
			Content: r.Text.Content,
			Font:    keys.New(r.Text.Font),
			Size:    r.Text.Size,
			Color:   r.Text.Color,
		})
	}
	if r.Tint != nil {
		w.Tints.Add(e, &components.Tint{Color: *r.Tint})
	}

	var stuck *components.StuckTo
	if r.Stick != nil {
		if target, ok := w.Entity(r.Stick.Target); ok {
			stuck = &components.StuckTo{
				Target:  target,
				OffsetX: r.Stick.OffsetX,
				OffsetY: r.Stick.OffsetY,
				FollowX: r.Stick.FollowX,
				FollowY: r.Stick.FollowY,
			}
			if r.Stick.StoredVelocity != nil {
				stuck.StoredVelocity = *r.Stick.StoredVelocity
				stuck.HasStoredVelocity = true
			}
		} else {
			w.Log.Warn("spawn stick target not found", zap.Int64("handle", r.Stick.Target))
		}
	}

	if r.Body != nil {
		body := components.NewRigidBody()
		if r.Body.Velocity != nil {
			body.Velocity = *r.Body.Velocity
		}
		if r.Body.Friction != nil {
			body.Friction = *r.Body.Friction
		}
		if r.Body.MaxSpeed != nil {
			body.MaxSpeed = *r.Body.MaxSpeed
		}
		body.Frozen = r.Body.Frozen
		for _, f := range r.Body.Forces {
			body.SetForce(f.Name, components.Force{X: f.X, Y: f.Y, Enabled: f.Enabled})
		}
		if stuck != nil {
			// A stuck entity carries no body; its velocity waits in the
			// attachment until release.
			if !stuck.HasStoredVelocity {
				stuck.StoredVelocity = body.Velocity
				stuck.HasStoredVelocity = true
			}
		} else {
			w.Bodies.Add(e, &body)
		}
	}
	if r.Collider != nil {
		w.Colliders.Add(e, &components.BoxCollider{
			Width:   r.Collider.Width,
			Height:  r.Collider.Height,
			OffsetX: r.Collider.OffsetX,
			OffsetY: r.Collider.OffsetY,
			OriginX: r.Collider.OriginX,
			OriginY: r.Collider.OriginY,
		})
	}
	if r.Mouse != nil {
		m := *r.Mouse
		w.MouseFollow.Add(e, &m)
	}

	if r.Signals != nil {
		sig := components.NewSignals()
		for k, v := range r.Signals.Scalars {
			sig.Scalars[k] = v
		}
		for k, v := range r.Signals.Integers {
			sig.Integers[k] = v
		}
		for k, v := range r.Signals.Strings {
			sig.Strings[k] = v
		}
		for _, f := range r.Signals.Flags {
			sig.Flags[f] = struct{}{}
		}
		w.EntitySignals.Add(e, &sig)
	}

	if r.Phase != nil {
		p := components.NewPhase(r.Phase.Initial, r.Phase.Hooks)
		w.Phases.Add(e, &p)
	}

	if stuck != nil {
		w.Stuck.Add(e, stuck)
	}

	if r.Timer != nil {
		w.Timers.Add(e, &components.Timer{Duration: r.Timer.Duration, Signal: r.Timer.Signal})
	}
	if r.LuaTimer != nil {
		w.LuaTimers.Add(e, &components.LuaTimer{Duration: r.LuaTimer.Duration, Callback: r.LuaTimer.Callback})
	}
	if r.Ttl != nil {
		w.Ttls.Add(e, &components.Ttl{Remaining: *r.Ttl})
	}

	if r.Binding != nil {
		b := components.SignalBinding{Signal: r.Binding.Signal, Format: r.Binding.Format}
		if r.Binding.HasSource {
			if src, ok := w.Entity(r.Binding.Source); ok {
				b.Source = src
				b.HasSource = true
			} else {
				w.Log.Warn("spawn binding source not found", zap.Int64("handle", r.Binding.Source))
			}
		}
		w.Bindings.Add(e, &b)
	}

	for _, t := range r.Tweens {
		addTween(w, e, t)
	}

	if r.Grid != nil {
		w.Grids.Add(e, &components.GridLayout{Path: r.Grid.Path, Group: r.Grid.Group, ZIndex: r.Grid.ZIndex})
	}
	if r.Rule != nil {
		rule := *r.Rule
		w.Rules.Add(e, &rule)
	}

	if r.Anim != nil {
		w.Animations.Add(e, &components.Animation{Key: keys.New(*r.Anim)})
	}
	if r.AnimCtrl != nil {
		ctrl := components.AnimationController{Fallback: keys.New(r.AnimCtrl.Fallback)}
		for _, rule := range r.AnimCtrl.Rules {
			ctrl.Rules = append(ctrl.Rules, components.AnimationRule{
				Condition: rule.Condition,
				Target:    keys.New(rule.Target),
			})
		}
		w.AnimControllers.Add(e, &ctrl)
	}

	if r.Menu != nil {
		menu := *r.Menu
		menu.Items = append([]components.MenuItem(nil), r.Menu.Items...)
		menu.Actions = append([]components.MenuAction(nil), r.Menu.Actions...)
		w.Menus.Add(e, &menu)
	}

	if r.Emitter != nil {
		em := components.ParticleEmitter{
			Shape:                r.Emitter.Shape,
			RectW:                r.Emitter.RectW,
			RectH:                r.Emitter.RectH,
			OffsetX:              r.Emitter.OffsetX,
			OffsetY:              r.Emitter.OffsetY,
			ParticlesPerEmission: r.Emitter.ParticlesPerEmission,
			EmissionsPerSecond:   r.Emitter.EmissionsPerSecond,
			EmissionsRemaining:   r.Emitter.Emissions,
			ArcMinDeg:            r.Emitter.ArcMinDeg,
			ArcMaxDeg:            r.Emitter.ArcMaxDeg,
			SpeedMin:             r.Emitter.SpeedMin,
			SpeedMax:             r.Emitter.SpeedMax,
			Ttl:                  r.Emitter.Ttl,
		}
		for _, h := range r.Emitter.Templates {
			if tpl, ok := w.Entity(h); ok {
				em.Templates = append(em.Templates, tpl)
			} else {
				w.Log.Warn("spawn emitter template not found", zap.Int64("handle", h))
			}
		}
		w.Emitters.Add(e, &em)
	}

	if r.Shader != nil {
		uniforms := make(map[string]float32, len(r.Shader.Uniforms))
		for k, v := range r.Shader.Uniforms {
			uniforms[k] = v
		}
		w.Shaders.Add(e, &components.EntityShader{Shader: keys.New(r.Shader.Shader), Uniforms: uniforms})
	}

	var h int64
	if r.Reserved != 0 {
		w.Handles.Bind(r.Reserved, e)
		h = r.Reserved
	} else {
		h = w.Handles.Expose(e)
	}
	if r.RegisterAs != "" {
		w.Signals.Entities[r.RegisterAs] = h
	}
	return e, h
}

func addTween(w *World, e ecs.Entity, t TweenRecord) {
	switch t.Channel {
	case TweenRot:
		tw := components.TweenRotation{From: t.From.X, To: t.To.X, TweenState: t.State}
		if w.TweenRotations.Has(e) {
			*w.TweenRotations.Get(e) = tw
		} else {
			w.TweenRotations.Add(e, &tw)
		}
	case TweenScl:
		tw := components.TweenScale{From: t.From, To: t.To, TweenState: t.State}
		if w.TweenScales.Has(e) {
			*w.TweenScales.Get(e) = tw
		} else {
			w.TweenScales.Add(e, &tw)
		}
	default:
		tw := components.TweenPosition{From: t.From, To: t.To, TweenState: t.State}
		if w.TweenPositions.Has(e) {
			*w.TweenPositions.Get(e) = tw
		} else {
			w.TweenPositions.Add(e, &tw)
		}
	}
}
