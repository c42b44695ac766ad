package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/keys"
	"github.com/lumen2d/lumen/world"
)

func newTestWorld() *world.World {
	return world.New(zap.NewNop(), 1)
}

func tick(w *world.World, dt float32) {
	w.Time.Advance(dt)
}

func approx32(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

// scriptRecorder captures script callback invocations for assertions.
type scriptRecorder struct {
	timers     []string
	enters     []string
	exits      []string
	updates    []string
	named      []string
	collisions [][2]ecs.Entity
}

func (r *scriptRecorder) BeginFrame() {}

func (r *scriptRecorder) CallEnter(fn string, e ecs.Entity, previous string) {
	r.enters = append(r.enters, fn)
}

func (r *scriptRecorder) CallUpdate(fn string, e ecs.Entity, timeIn float32) {
	r.updates = append(r.updates, fn)
}

func (r *scriptRecorder) CallExit(fn string, e ecs.Entity, next string) {
	r.exits = append(r.exits, fn)
}

func (r *scriptRecorder) CallTimer(fn string, e ecs.Entity) {
	r.timers = append(r.timers, fn)
}

func (r *scriptRecorder) CallCollision(fn string, a, b ecs.Entity) {
	r.collisions = append(r.collisions, [2]ecs.Entity{a, b})
}

func (r *scriptRecorder) CallNamed(fn string, e ecs.Entity, arg string) {
	r.named = append(r.named, fn+":"+arg)
}

func (r *scriptRecorder) CallGlobal(fn string) {}

// fixedMeasurer returns deterministic text metrics.
type fixedMeasurer struct{}

func (fixedMeasurer) Measure(font keys.Key, content string, size float32) (float32, float32) {
	return float32(len(content)) * size, size
}
