package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

func addCollidable(w *world.World, group string, x, y, size float32) ecs.Entity {
	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{X: x, Y: y})
	w.Colliders.Add(e, &components.BoxCollider{Width: size, Height: size})
	if group != "" {
		w.Groups.Add(e, &components.Group{Name: group})
	}
	return e
}

func addRule(w *world.World, rule components.CollisionRule) {
	e := w.NewEntity()
	w.Rules.Add(e, &rule)
}

func TestCollisionEdgeContactIsNotOverlap(t *testing.T) {
	w := newTestWorld()

	hits := 0
	addRule(w, components.CollisionRule{
		GroupA: "a", GroupB: "b",
		Native: func(_, _ ecs.Entity) { hits++ },
	})

	addCollidable(w, "a", 0, 0, 10)
	addCollidable(w, "b", 10, 0, 10)

	Collisions(w)
	if hits != 0 {
		t.Error("edge contact counted as a collision")
	}
}

func TestCollisionOverlapFiresRule(t *testing.T) {
	w := newTestWorld()

	hits := 0
	addRule(w, components.CollisionRule{
		GroupA: "a", GroupB: "b",
		Native: func(_, _ ecs.Entity) { hits++ },
	})

	addCollidable(w, "a", 0, 0, 10)
	addCollidable(w, "b", 9, 0, 10)
	addCollidable(w, "c", 9, 0, 10) // no rule for this group

	Collisions(w)
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestCollisionArgumentsMatchRuleOrder(t *testing.T) {
	w := newTestWorld()

	var firstGroup string
	addRule(w, components.CollisionRule{
		GroupA: "bullet", GroupB: "ship",
		Native: func(a, b ecs.Entity) { firstGroup = w.GroupOf(a) },
	})

	// The ship is created first, so the pair iterates (ship, bullet): the
	// dispatcher must swap the arguments back into rule order.
	addCollidable(w, "ship", 0, 0, 10)
	addCollidable(w, "bullet", 5, 5, 10)

	Collisions(w)
	if firstGroup != "bullet" {
		t.Errorf("first argument group = %q, want bullet", firstGroup)
	}
}

func TestCollisionColliderOffsetAndOrigin(t *testing.T) {
	w := newTestWorld()

	hits := 0
	addRule(w, components.CollisionRule{
		GroupA: "a", GroupB: "b",
		Native: func(_, _ ecs.Entity) { hits++ },
	})

	// Origin shifts the box so it is centered on the position.
	a := w.NewEntity()
	w.Positions.Add(a, &components.MapPosition{X: 0, Y: 0})
	w.Colliders.Add(a, &components.BoxCollider{Width: 10, Height: 10, OriginX: 5, OriginY: 5})
	w.Groups.Add(a, &components.Group{Name: "a"})

	addCollidable(w, "b", 4, 4, 10)

	Collisions(w)
	if hits != 1 {
		t.Errorf("hits = %d, want 1 with centered box", hits)
	}
}

func TestCollisionPairScopedDrain(t *testing.T) {
	w := newTestWorld()

	bullet := addCollidable(w, "bullet", 0, 0, 10)
	bulletID := w.Handles.Expose(bullet)
	addCollidable(w, "ship", 2, 2, 10)
	addCollidable(w, "ship", 4, 4, 10)

	hits := 0
	addRule(w, components.CollisionRule{
		GroupA: "bullet", GroupB: "ship",
		Native: func(a, b ecs.Entity) {
			hits++
			w.Queues.PushEntity(world.EntityCommand{Op: world.OpDespawn, Target: bulletID})
		},
	})

	Collisions(w)

	// The first pair's callback despawns the bullet; the drain after the
	// callback makes that visible, so the second pair never fires.
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if w.ECS.Alive(bullet) {
		t.Error("bullet alive after its despawn command drained")
	}
}

func TestCollisionCallbackMovesEntity(t *testing.T) {
	w := newTestWorld()

	a := addCollidable(w, "a", 0, 0, 10)
	aID := w.Handles.Expose(a)
	addCollidable(w, "b", 5, 0, 10)
	addCollidable(w, "b", 5, 1, 10)

	hits := 0
	addRule(w, components.CollisionRule{
		GroupA: "a", GroupB: "b",
		Native: func(x, y ecs.Entity) {
			hits++
			w.Queues.PushEntity(world.EntityCommand{Op: world.OpSetPosition, Target: aID, X: 1000, Y: 1000})
		},
	})

	Collisions(w)

	// Boxes are recomputed per pair, so the teleport ends the second overlap.
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestCollisionScriptRuleDispatch(t *testing.T) {
	w := newTestWorld()
	rec := &scriptRecorder{}
	w.Scripts = rec

	addRule(w, components.CollisionRule{GroupA: "a", GroupB: "b", Script: "on_hit"})
	ea := addCollidable(w, "a", 0, 0, 10)
	eb := addCollidable(w, "b", 5, 5, 10)

	Collisions(w)

	if len(rec.collisions) != 1 {
		t.Fatalf("collisions = %d, want 1", len(rec.collisions))
	}
	if rec.collisions[0] != [2]ecs.Entity{ea, eb} {
		t.Error("script callback got the pair in the wrong order")
	}
}
