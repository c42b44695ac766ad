package components

import "github.com/mlange-42/ark/ecs"

// Ttl despawns the entity when Remaining reaches zero. Remaining counts in
// scaled seconds, so slow motion extends the lifetime proportionally.
type Ttl struct {
	Remaining float32
}

// Timer fires a TimerFired event when Elapsed reaches Duration, then zeroes
// Elapsed.
type Timer struct {
	Duration float32
	Elapsed  float32
	Signal   string
}

// LuaTimer invokes a named script callback when Elapsed reaches Duration.
// The reset subtracts Duration instead of zeroing, preserving phase drift.
type LuaTimer struct {
	Duration float32
	Elapsed  float32
	Callback string
}

// Easing selects the interpolation curve of a tween.
type Easing uint8

const (
	EaseLinear Easing = iota
	EaseQuadIn
	EaseQuadOut
	EaseQuadInOut
	EaseCubicIn
	EaseCubicOut
	EaseCubicInOut
)

// Apply evaluates the easing at t in [0, 1].
func (e Easing) Apply(t float32) float32 {
	switch e {
	case EaseQuadIn:
		return t * t
	case EaseQuadOut:
		return t * (2 - t)
	case EaseQuadInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		u := 2*t - 2
		return 1 - u*u/2
	case EaseCubicIn:
		return t * t * t
	case EaseCubicOut:
		u := t - 1
		return u*u*u + 1
	case EaseCubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := 2*t - 2
		return u*u*u/2 + 1
	default:
		return t
	}
}

// EasingByName maps the script-facing easing names to values.
var EasingByName = map[string]Easing{
	"linear":       EaseLinear,
	"quad_in":      EaseQuadIn,
	"quad_out":     EaseQuadOut,
	"quad_in_out":  EaseQuadInOut,
	"cubic_in":     EaseCubicIn,
	"cubic_out":    EaseCubicOut,
	"cubic_in_out": EaseCubicInOut,
}

// LoopMode selects what a tween does at its boundary.
type LoopMode uint8

const (
	LoopOnce LoopMode = iota
	LoopRepeat
	LoopPingPong
)

// LoopByName maps the script-facing loop mode names to values.
var LoopByName = map[string]LoopMode{
	"once":      LoopOnce,
	"loop":      LoopRepeat,
	"ping_pong": LoopPingPong,
}

// TweenState is the shared clock of all tween kinds.
type TweenState struct {
	Duration float32
	Easing   Easing
	Loop     LoopMode
	Playing  bool
	Time     float32
	Forward  bool
}

// Advance steps the tween clock by dt and returns the eased interpolation
// factor in [0, 1].
func (s *TweenState) Advance(dt float32) float32 {
	if s.Playing {
		if s.Forward {
			s.Time += dt
		} else {
			s.Time -= dt
		}
		if s.Forward && s.Time >= s.Duration {
			switch s.Loop {
			case LoopOnce:
				s.Time = s.Duration
				s.Playing = false
			case LoopRepeat:
				s.Time -= s.Duration
			case LoopPingPong:
				s.Time = s.Duration
				s.Forward = false
			}
		} else if !s.Forward && s.Time <= 0 {
			switch s.Loop {
			case LoopOnce:
				s.Time = 0
				s.Playing = false
			case LoopRepeat:
				s.Time += s.Duration
			case LoopPingPong:
				s.Time = 0
				s.Forward = true
			}
		}
	}
	if s.Duration <= 0 {
		return 1
	}
	t := s.Time / s.Duration
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.Easing.Apply(t)
}

// TweenPosition interpolates MapPosition between From and To.
type TweenPosition struct {
	From Vec2
	To   Vec2
	TweenState
}

// TweenRotation interpolates Rotation degrees between From and To.
type TweenRotation struct {
	From float32
	To   float32
	TweenState
}

// TweenScale interpolates Scale between From and To.
type TweenScale struct {
	From Vec2
	To   Vec2
	TweenState
}

// TtlKind selects how a particle emitter assigns lifetimes.
type TtlKind uint8

const (
	TtlNone TtlKind = iota
	TtlFixed
	TtlRange
)

// TtlSpec describes the lifetime assigned to emitted particles.
type TtlSpec struct {
	Kind TtlKind
	Min  float32
	Max  float32
}

// EmitterShape selects the spawn area of an emitter.
type EmitterShape uint8

const (
	EmitPoint EmitterShape = iota
	EmitRect               // centered rect, uniform sampling
)

// ParticleEmitter clones template entities at a fixed rate with randomized
// position, direction, and speed. Angle 0 points up; positive rotates
// clockwise. An emitter with EmissionsRemaining == 0 is inert.
type ParticleEmitter struct {
	Templates []ecs.Entity

	Shape   EmitterShape
	RectW   float32
	RectH   float32
	OffsetX float32
	OffsetY float32

	ParticlesPerEmission int
	EmissionsPerSecond   float32
	EmissionsRemaining   int

	ArcMinDeg float32
	ArcMaxDeg float32
	SpeedMin  float32
	SpeedMax  float32

	Ttl TtlSpec

	SinceEmit float32
}
