package world

import (
	"testing"

	"github.com/lumen2d/lumen/components"
)

func TestSpawnRecordMinimal(t *testing.T) {
	w := newTestWorld()

	pos := components.Vec2{X: 1, Y: 2}
	r := SpawnRecord{Position: &pos}
	e, h := r.Apply(w)

	if h == 0 {
		t.Fatal("apply returned no handle")
	}
	if !w.Owned.Has(e) {
		t.Error("spawned entity missing the scene-ownership tag")
	}
	if !w.Positions.Has(e) {
		t.Fatal("position not added")
	}
	// Absent fields insert nothing.
	if w.Bodies.Has(e) || w.Sprites.Has(e) || w.EntitySignals.Has(e) {
		t.Error("record with only a position grew extra components")
	}
}

func TestSpawnRecordFullPayload(t *testing.T) {
	w := newTestWorld()

	group := "enemies"
	z := 3
	rot := float32(45)
	vel := components.Vec2{X: 2, Y: 0}
	friction := float32(0.5)
	ttl := float32(4)

	r := SpawnRecord{
		Group:    &group,
		Position: &components.Vec2{X: 5, Y: 6},
		ZIndex:   &z,
		Rotation: &rot,
		Body: &BodySpec{
			Velocity: &vel,
			Friction: &friction,
			Forces:   []ForceSpec{{Name: "wind", X: 1, Enabled: true}},
		},
		Collider: &ColliderSpec{Width: 8, Height: 8},
		Signals: &SignalsSpec{
			Scalars: map[string]float32{"hp": 10},
			Flags:   []string{"hostile"},
		},
		Ttl:        &ttl,
		RegisterAs: "boss",
	}
	e, h := r.Apply(w)

	if w.GroupOf(e) != "enemies" {
		t.Errorf("group = %q, want enemies", w.GroupOf(e))
	}
	if w.ZIndices.Get(e).Value != 3 {
		t.Error("z index not applied")
	}
	body := w.Bodies.Get(e)
	if !approx32(body.Velocity.X, 2) || !approx32(body.Friction, 0.5) {
		t.Errorf("body = %+v", body)
	}
	if f := body.Forces["wind"]; !f.Enabled || !approx32(f.X, 1) {
		t.Errorf("force wind = %+v", f)
	}
	sig := w.EntitySignals.Get(e)
	if !approx32(sig.Scalars["hp"], 10) || !sig.HasFlag("hostile") {
		t.Errorf("signals = %+v", sig)
	}
	if !approx32(w.Ttls.Get(e).Remaining, 4) {
		t.Error("ttl not applied")
	}
	if w.Signals.Entities["boss"] != h {
		t.Error("named entity registry does not hold the new handle")
	}
}

func TestSpawnRecordIsReusable(t *testing.T) {
	w := newTestWorld()

	pos := components.Vec2{X: 1, Y: 1}
	r := SpawnRecord{Position: &pos}
	_, h1 := r.Apply(w)
	_, h2 := r.Apply(w)

	if h1 == h2 {
		t.Error("applying a record twice reused the handle")
	}
}

func TestSpawnStickResolvesTarget(t *testing.T) {
	w := newTestWorld()

	carrier := w.NewEntity()
	w.Positions.Add(carrier, &components.MapPosition{X: 10, Y: 10})
	carrierID := w.Handles.Expose(carrier)

	r := SpawnRecord{
		Position: &components.Vec2{},
		Stick: &StickSpec{
			Target: carrierID, OffsetX: 2, FollowX: true,
			StoredVelocity: &components.Vec2{X: 9},
		},
	}
	e, _ := r.Apply(w)

	stick := w.Stuck.Get(e)
	if stick.Target != carrier {
		t.Error("stick target not resolved")
	}
	if !stick.HasStoredVelocity || !approx32(stick.StoredVelocity.X, 9) {
		t.Error("stored velocity not carried")
	}
}

func TestSpawnStickSuppressesBody(t *testing.T) {
	w := newTestWorld()

	carrier := w.NewEntity()
	w.Positions.Add(carrier, &components.MapPosition{X: 10, Y: 10})
	carrierID := w.Handles.Expose(carrier)

	r := SpawnRecord{
		Position: &components.Vec2{},
		Body:     &BodySpec{Velocity: &components.Vec2{X: 5}},
		Stick:    &StickSpec{Target: carrierID},
	}
	e, id := r.Apply(w)

	// A stuck entity has no RigidBody; its velocity waits in the
	// attachment.
	if w.Bodies.Has(e) {
		t.Fatal("stuck entity spawned with a body")
	}
	stick := w.Stuck.Get(e)
	if !stick.HasStoredVelocity || !approx32(stick.StoredVelocity.X, 5) {
		t.Error("body velocity not folded into the attachment")
	}

	w.Queues.PushEntity(EntityCommand{Op: OpRelease, Target: id})
	w.DrainFrame()
	if !w.Bodies.Has(e) || !approx32(w.Bodies.Get(e).Velocity.X, 5) {
		t.Error("release did not restore the spawn velocity")
	}
}

func TestSpawnStickStaleTargetDropped(t *testing.T) {
	w := newTestWorld()

	ghost := w.NewEntity()
	ghostID := w.Handles.Expose(ghost)
	w.Despawn(ghost)

	r := SpawnRecord{
		Position: &components.Vec2{},
		Stick:    &StickSpec{Target: ghostID},
	}
	e, _ := r.Apply(w)

	if w.Stuck.Has(e) {
		t.Error("attachment to a despawned target survived")
	}
}

func TestSpawnTweenChannels(t *testing.T) {
	w := newTestWorld()

	r := SpawnRecord{
		Position: &components.Vec2{},
		Tweens: []TweenRecord{
			{
				Channel: TweenPos,
				From:    components.Vec2{X: 0}, To: components.Vec2{X: 10},
				State: components.TweenState{Duration: 1, Playing: true, Forward: true},
			},
			{
				Channel: TweenRot,
				From:    components.Vec2{X: 0}, To: components.Vec2{X: 180},
				State: components.TweenState{Duration: 2, Playing: true, Forward: true},
			},
		},
	}
	e, _ := r.Apply(w)

	if !w.TweenPositions.Has(e) {
		t.Error("position tween not added")
	}
	if !w.TweenRotations.Has(e) {
		t.Fatal("rotation tween not added")
	}
	// Rotation tweens carry their endpoints in the X coordinates.
	tw := w.TweenRotations.Get(e)
	if !approx32(tw.To, 180) {
		t.Errorf("rotation tween to = %v, want 180", tw.To)
	}
}

func TestSpawnEmitterSkipsStaleTemplates(t *testing.T) {
	w := newTestWorld()

	live := w.NewEntity()
	liveID := w.Handles.Expose(live)
	dead := w.NewEntity()
	deadID := w.Handles.Expose(dead)
	w.Despawn(dead)

	r := SpawnRecord{
		Position: &components.Vec2{},
		Emitter: &EmitterSpec{
			Templates:            []int64{liveID, deadID},
			ParticlesPerEmission: 1,
			EmissionsPerSecond:   10,
			Emissions:            5,
		},
	}
	e, _ := r.Apply(w)

	em := w.Emitters.Get(e)
	if len(em.Templates) != 1 || em.Templates[0] != live {
		t.Errorf("templates = %v, want only the live entity", em.Templates)
	}
	if em.EmissionsRemaining != 5 {
		t.Error("emission budget not applied")
	}
}

func TestHandlesLifecycle(t *testing.T) {
	w := newTestWorld()

	e := w.NewEntity()
	id := w.Handles.Expose(e)
	if again := w.Handles.Expose(e); again != id {
		t.Error("expose is not stable per entity")
	}

	got, ok := w.Entity(id)
	if !ok || got != e {
		t.Fatal("lookup failed for a live handle")
	}

	w.Despawn(e)
	if _, ok := w.Entity(id); ok {
		t.Error("handle survived despawn")
	}
}
