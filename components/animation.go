package components

import "github.com/lumen2d/lumen/keys"

// Animation plays a registered animation resource on the entity's sprite.
type Animation struct {
	Key     keys.Key
	Frame   int
	Elapsed float32
}

// Condition is a predicate over an entity's Signals, used by the animation
// controller. A condition tests either a flag (present or absent) or a
// scalar comparison; the flag test wins if both are set.
type Condition struct {
	Flag   string
	Absent bool

	Scalar string
	Op     string // ">", ">=", "<", "<=", "==", "!="
	Value  float32
}

// Matches evaluates the condition against the signals (nil = no signals).
func (c *Condition) Matches(sig *Signals) bool {
	if c.Flag != "" {
		has := sig != nil && sig.HasFlag(c.Flag)
		return has != c.Absent
	}
	if c.Scalar == "" {
		return false
	}
	var v float32
	if sig != nil {
		v = sig.Scalars[c.Scalar]
	}
	switch c.Op {
	case ">":
		return v > c.Value
	case ">=":
		return v >= c.Value
	case "<":
		return v < c.Value
	case "<=":
		return v <= c.Value
	case "!=":
		return v != c.Value
	default:
		return v == c.Value
	}
}

// AnimationRule maps a condition to a target animation key.
type AnimationRule struct {
	Condition Condition
	Target    keys.Key
}

// AnimationController selects the entity's animation each frame: the first
// matching rule wins, otherwise the fallback plays.
type AnimationController struct {
	Fallback keys.Key
	Rules    []AnimationRule
}
