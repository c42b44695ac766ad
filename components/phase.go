package components

import "github.com/mlange-42/ark/ecs"

// PhaseCallback is one hook of a phase. Exactly one variant is set: a native
// Go closure or the name of a script function. The dispatcher matches the
// variant that is present.
type PhaseCallback struct {
	Native func(e ecs.Entity, phase string)
	Script string
}

// IsZero reports whether no callback is bound.
func (c PhaseCallback) IsZero() bool {
	return c.Native == nil && c.Script == ""
}

// PhaseHooks groups the callbacks of one named phase.
type PhaseHooks struct {
	OnEnter  PhaseCallback
	OnUpdate PhaseCallback
	OnExit   PhaseCallback
}

// Phase is a per-entity state machine. Current is the active phase name;
// Next ("" = none) is a pending transition applied on the next update.
// NeedsEnter is true exactly once between creation and the first update.
type Phase struct {
	Current    string
	Previous   string
	Next       string
	TimeIn     float32
	NeedsEnter bool
	Hooks      map[string]PhaseHooks
}

// NewPhase builds a phase machine starting in the given phase.
func NewPhase(initial string, hooks map[string]PhaseHooks) Phase {
	return Phase{
		Current:    initial,
		NeedsEnter: true,
		Hooks:      hooks,
	}
}

// CollisionRule matches an unordered pair of group names and invokes its
// callback for every overlapping pair with those groups. Like PhaseCallback,
// exactly one variant is set.
type CollisionRule struct {
	GroupA string
	GroupB string
	Native func(a, b ecs.Entity)
	Script string
}

// Matches reports whether the unordered pair (ga, gb) matches the rule, and
// whether the arguments arrived swapped relative to (GroupA, GroupB).
func (r *CollisionRule) Matches(ga, gb string) (ok, swapped bool) {
	if ga == r.GroupA && gb == r.GroupB {
		return true, false
	}
	if ga == r.GroupB && gb == r.GroupA {
		return true, true
	}
	return false, false
}
