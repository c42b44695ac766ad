package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

type particleJob struct {
	template ecs.Entity
	x, y     float32
	angle    float32
	speed    float32
	ttl      float32
	hasTtl   bool
}

// Emitters advances particle emitters and clones template entities with
// randomized position, direction, speed, and lifetime. Templates that have
// been despawned since the emitter was built are skipped.
func Emitters(w *world.World) {
	dt := w.Time.Delta
	var jobs []particleJob

	filter := ecs.NewFilter2[components.MapPosition, components.ParticleEmitter](w.ECS)
	query := filter.Query()
	for query.Next() {
		pos, em := query.Get()
		if len(em.Templates) == 0 || em.EmissionsRemaining <= 0 || em.EmissionsPerSecond <= 0 {
			continue
		}
		em.SinceEmit += dt
		period := 1 / em.EmissionsPerSecond
		for em.SinceEmit >= period && em.EmissionsRemaining > 0 {
			for i := 0; i < em.ParticlesPerEmission; i++ {
				tpl := em.Templates[w.RNG.Intn(len(em.Templates))]
				if !w.ECS.Alive(tpl) {
					continue
				}
				job := particleJob{
					template: tpl,
					x:        pos.X + em.OffsetX,
					y:        pos.Y + em.OffsetY,
					angle:    em.ArcMinDeg + w.RNG.Float32()*(em.ArcMaxDeg-em.ArcMinDeg),
					speed:    em.SpeedMin + w.RNG.Float32()*(em.SpeedMax-em.SpeedMin),
				}
				if em.Shape == components.EmitRect {
					job.x += (w.RNG.Float32() - 0.5) * em.RectW
					job.y += (w.RNG.Float32() - 0.5) * em.RectH
				}
				switch em.Ttl.Kind {
				case components.TtlFixed:
					job.ttl = em.Ttl.Min
					job.hasTtl = true
				case components.TtlRange:
					job.ttl = em.Ttl.Min + w.RNG.Float32()*(em.Ttl.Max-em.Ttl.Min)
					job.hasTtl = true
				}
				jobs = append(jobs, job)
			}
			em.EmissionsRemaining--
			em.SinceEmit -= period
		}
	}

	for i := range jobs {
		emitParticle(w, &jobs[i])
	}
}

// emitParticle clones the template and overrides position, rotation, and
// velocity. Angle 0 points up, positive rotates clockwise.
func emitParticle(w *world.World, job *particleJob) {
	if !w.ECS.Alive(job.template) {
		return
	}
	e := cloneEntity(w, job.template)

	if w.Positions.Has(e) {
		p := w.Positions.Get(e)
		p.X, p.Y = job.x, job.y
	} else {
		w.Positions.Add(e, &components.MapPosition{X: job.x, Y: job.y})
	}

	if w.Rotations.Has(e) {
		w.Rotations.Get(e).Degrees = job.angle
	} else {
		w.Rotations.Add(e, &components.Rotation{Degrees: job.angle})
	}

	rad := float64(job.angle) * math.Pi / 180
	vel := components.Vec2{
		X: float32(math.Sin(rad)) * job.speed,
		Y: float32(-math.Cos(rad)) * job.speed,
	}
	if w.Bodies.Has(e) {
		w.Bodies.Get(e).Velocity = vel
	} else {
		body := components.NewRigidBody()
		body.Velocity = vel
		w.Bodies.Add(e, &body)
	}

	if job.hasTtl {
		t := components.Ttl{Remaining: job.ttl}
		if w.Ttls.Has(e) {
			*w.Ttls.Get(e) = t
		} else {
			w.Ttls.Add(e, &t)
		}
	}
}

// cloneEntity copies the template's renderable and simulation components
// onto a fresh entity. Maps are deep-copied so particles never alias their
// template.
func cloneEntity(w *world.World, tpl ecs.Entity) ecs.Entity {
	e := w.NewEntity()

	if w.Positions.Has(tpl) {
		c := *w.Positions.Get(tpl)
		w.Positions.Add(e, &c)
	}
	if w.Rotations.Has(tpl) {
		c := *w.Rotations.Get(tpl)
		w.Rotations.Add(e, &c)
	}
	if w.Scales.Has(tpl) {
		c := *w.Scales.Get(tpl)
		w.Scales.Add(e, &c)
	}
	if w.ZIndices.Has(tpl) {
		c := *w.ZIndices.Get(tpl)
		w.ZIndices.Add(e, &c)
	}
	if w.Sprites.Has(tpl) {
		c := *w.Sprites.Get(tpl)
		w.Sprites.Add(e, &c)
	}
	if w.Tints.Has(tpl) {
		c := *w.Tints.Get(tpl)
		w.Tints.Add(e, &c)
	}
	if w.Animations.Has(tpl) {
		c := *w.Animations.Get(tpl)
		w.Animations.Add(e, &c)
	}
	if w.Groups.Has(tpl) {
		c := *w.Groups.Get(tpl)
		w.Groups.Add(e, &c)
	}
	if w.Colliders.Has(tpl) {
		c := *w.Colliders.Get(tpl)
		w.Colliders.Add(e, &c)
	}
	if w.Ttls.Has(tpl) {
		c := *w.Ttls.Get(tpl)
		w.Ttls.Add(e, &c)
	}
	if w.Shaders.Has(tpl) {
		src := w.Shaders.Get(tpl)
		c := components.EntityShader{Shader: src.Shader, Uniforms: make(map[string]float32, len(src.Uniforms))}
		for k, v := range src.Uniforms {
			c.Uniforms[k] = v
		}
		w.Shaders.Add(e, &c)
	}
	if w.Bodies.Has(tpl) {
		src := w.Bodies.Get(tpl)
		body := components.RigidBody{
			Velocity: src.Velocity,
			Friction: src.Friction,
			MaxSpeed: src.MaxSpeed,
			Frozen:   src.Frozen,
			Forces:   make(map[string]components.Force, len(src.Forces)),
		}
		for k, v := range src.Forces {
			body.Forces[k] = v
		}
		w.Bodies.Add(e, &body)
	}
	if w.EntitySignals.Has(tpl) {
		src := w.EntitySignals.Get(tpl)
		sig := components.NewSignals()
		for k, v := range src.Scalars {
			sig.Scalars[k] = v
		}
		for k, v := range src.Integers {
			sig.Integers[k] = v
		}
		for k, v := range src.Strings {
			sig.Strings[k] = v
		}
		for k := range src.Flags {
			sig.Flags[k] = struct{}{}
		}
		w.EntitySignals.Add(e, &sig)
	}

	return e
}
