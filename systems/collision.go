package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

type aabb struct {
	minX, minY, maxX, maxY float32
}

// overlaps uses strict inequality: edge contact is not a collision.
func (a aabb) overlaps(b aabb) bool {
	return a.minX < b.maxX && a.maxX > b.minX && a.minY < b.maxY && a.maxY > b.minY
}

// boxOf computes the entity's current AABB, normalized to min/max.
func boxOf(w *world.World, e ecs.Entity) (aabb, bool) {
	if !w.Positions.Has(e) || !w.Colliders.Has(e) {
		return aabb{}, false
	}
	pos := w.Positions.Get(e)
	box := w.Colliders.Get(e)
	x := pos.X - box.OriginX + box.OffsetX
	y := pos.Y - box.OriginY + box.OffsetY
	r := aabb{minX: x, minY: y, maxX: x + box.Width, maxY: y + box.Height}
	if r.minX > r.maxX {
		r.minX, r.maxX = r.maxX, r.minX
	}
	if r.minY > r.maxY {
		r.minY, r.maxY = r.maxY, r.minY
	}
	return r, true
}

// Collisions runs the broadphase over all collidable entities, matches
// rules by group pair, invokes callbacks, and drains the pair-scoped
// command queues after every callback so later pairs observe earlier
// outcomes. Pairs whose entity was despawned by an earlier callback are
// skipped.
func Collisions(w *world.World) {
	var entities []ecs.Entity
	filter := ecs.NewFilter2[components.MapPosition, components.BoxCollider](w.ECS)
	query := filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}

	var rules []components.CollisionRule
	ruleFilter := ecs.NewFilter1[components.CollisionRule](w.ECS)
	ruleQuery := ruleFilter.Query()
	for ruleQuery.Next() {
		rules = append(rules, *ruleQuery.Get())
	}
	if len(rules) == 0 {
		return
	}

	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			if !w.ECS.Alive(a) || !w.ECS.Alive(b) {
				continue
			}
			// boxes are recomputed per pair: earlier callbacks may have
			// moved either entity
			boxA, okA := boxOf(w, a)
			boxB, okB := boxOf(w, b)
			if !okA || !okB || !boxA.overlaps(boxB) {
				continue
			}

			groupA := w.GroupOf(a)
			groupB := w.GroupOf(b)
			for r := range rules {
				ok, swapped := rules[r].Matches(groupA, groupB)
				if !ok {
					continue
				}
				first, second := a, b
				if swapped {
					first, second = b, a
				}
				invokeRule(w, &rules[r], first, second)
				if !w.ECS.Alive(a) || !w.ECS.Alive(b) {
					break
				}
			}
		}
	}
}

// invokeRule runs one rule callback with pair-scoped command routing, then
// drains the pair-scoped queues.
func invokeRule(w *world.World, r *components.CollisionRule, a, b ecs.Entity) {
	w.Queues.InCollision = true
	switch {
	case r.Native != nil:
		r.Native(a, b)
	case r.Script != "" && w.Scripts != nil:
		w.Scripts.CallCollision(r.Script, a, b)
	default:
		w.Queues.InCollision = false
		return
	}
	w.Queues.InCollision = false
	w.DrainCollision()
}
