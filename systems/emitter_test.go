package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

func countParticles(w *world.World, group string) int {
	n := 0
	filter := ecs.NewFilter1[components.Group](w.ECS)
	query := filter.Query()
	for query.Next() {
		if query.Get().Name == group {
			n++
		}
	}
	return n
}

func makeTemplate(w *world.World) ecs.Entity {
	tpl := w.NewEntity()
	w.Groups.Add(tpl, &components.Group{Name: "particle"})
	w.Tints.Add(tpl, &components.Tint{Color: components.White})
	return tpl
}

func makeEmitter(w *world.World, tpl ecs.Entity, em components.ParticleEmitter) ecs.Entity {
	e := w.NewEntity()
	w.Positions.Add(e, &components.MapPosition{X: 100, Y: 200})
	em.Templates = []ecs.Entity{tpl}
	w.Emitters.Add(e, &em)
	return e
}

func TestEmitterClonesTemplates(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)

	makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 3,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   2,
	})

	tick(w, 0.1)
	Emitters(w)

	if got := countParticles(w, "particle"); got != 4 { // template + 3 clones
		t.Errorf("particles = %d, want 4", got)
	}
}

func TestEmitterBudgetRunsOut(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)

	e := makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 1,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   2,
	})

	for i := 0; i < 5; i++ {
		tick(w, 0.1)
		Emitters(w)
	}

	if got := countParticles(w, "particle"); got != 3 { // template + 2
		t.Errorf("particles = %d, want 3", got)
	}
	if w.Emitters.Get(e).EmissionsRemaining != 0 {
		t.Error("emission budget not exhausted")
	}
}

func TestEmitterVelocityPointsAlongAngle(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)

	// Fixed arc: angle 0 points up, so velocity is (0, -speed).
	makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 1,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   1,
		ArcMinDeg:            0, ArcMaxDeg: 0,
		SpeedMin: 5, SpeedMax: 5,
	})

	tick(w, 0.1)
	Emitters(w)

	found := false
	filter := ecs.NewFilter2[components.RigidBody, components.Group](w.ECS)
	query := filter.Query()
	for query.Next() {
		body, _ := query.Get()
		found = true
		if !approx32(body.Velocity.X, 0) || !approx32(body.Velocity.Y, -5) {
			t.Errorf("velocity = %+v, want (0, -5)", body.Velocity)
		}
	}
	if !found {
		t.Fatal("no particle with a body emitted")
	}
}

func TestEmitterAssignsFixedTtl(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)

	makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 1,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   1,
		Ttl:                  components.TtlSpec{Kind: components.TtlFixed, Min: 2.5},
	})

	tick(w, 0.1)
	Emitters(w)

	found := false
	filter := ecs.NewFilter2[components.Ttl, components.Group](w.ECS)
	query := filter.Query()
	for query.Next() {
		ttl, _ := query.Get()
		found = true
		if !approx32(ttl.Remaining, 2.5) {
			t.Errorf("ttl = %v, want 2.5", ttl.Remaining)
		}
	}
	if !found {
		t.Fatal("no particle with a lifetime emitted")
	}
}

func TestEmitterRangeTtlWithinBounds(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)

	makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 8,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   1,
		Ttl:                  components.TtlSpec{Kind: components.TtlRange, Min: 1, Max: 2},
	})

	tick(w, 0.1)
	Emitters(w)

	filter := ecs.NewFilter1[components.Ttl](w.ECS)
	query := filter.Query()
	for query.Next() {
		remaining := query.Get().Remaining
		if remaining < 1 || remaining > 2 {
			t.Errorf("ttl = %v, want within [1, 2]", remaining)
		}
	}
}

func TestEmitterSkipsDespawnedTemplate(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)

	makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 1,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   10,
	})

	w.Despawn(tpl)
	tick(w, 0.1)
	Emitters(w)

	if got := countParticles(w, "particle"); got != 0 {
		t.Errorf("particles = %d, want 0 with a stale template", got)
	}
}

func TestEmitterParticlesDoNotAliasTemplate(t *testing.T) {
	w := newTestWorld()
	tpl := makeTemplate(w)
	body := components.NewRigidBody()
	body.SetForce("gravity", components.Force{Y: 10, Enabled: true})
	w.Bodies.Add(tpl, &body)

	makeEmitter(w, tpl, components.ParticleEmitter{
		ParticlesPerEmission: 1,
		EmissionsPerSecond:   10,
		EmissionsRemaining:   1,
	})

	tick(w, 0.1)
	Emitters(w)

	// Mutating the clone's force map must not touch the template.
	filter := ecs.NewFilter2[components.RigidBody, components.MapPosition](w.ECS)
	query := filter.Query()
	for query.Next() {
		b, _ := query.Get()
		delete(b.Forces, "gravity")
	}
	if _, ok := w.Bodies.Get(tpl).Forces["gravity"]; !ok {
		t.Error("clone shares its force map with the template")
	}
}
