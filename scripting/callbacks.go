package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/mlange-42/ark/ecs"
)

// BeginFrame rebuilds the snapshot tables the read API serves from. Called
// once per frame before any script callback runs.
func (e *Engine) BeginFrame() {
	vm := e.vm

	e.snapScalars = vm.NewTable()
	for k, v := range e.w.Signals.Scalars {
		e.snapScalars.RawSetString(k, lua.LNumber(v))
	}
	e.snapIntegers = vm.NewTable()
	for k, v := range e.w.Signals.Integers {
		e.snapIntegers.RawSetString(k, lua.LNumber(v))
	}
	e.snapStrings = vm.NewTable()
	for k, v := range e.w.Signals.Strings {
		e.snapStrings.RawSetString(k, lua.LString(v))
	}
	e.snapFlags = vm.NewTable()
	for k := range e.w.Signals.Flags {
		e.snapFlags.RawSetString(k, lua.LTrue)
	}
	e.snapGroups = vm.NewTable()
	for k, v := range e.w.Signals.GroupCounts {
		e.snapGroups.RawSetString(k, lua.LNumber(v))
	}
	e.snapEntities = vm.NewTable()
	for k, v := range e.w.Signals.Entities {
		e.snapEntities.RawSetString(k, lua.LNumber(v))
	}
}

// CallEnter runs on_enter(entity_id, previous). previous "" passes nil.
func (e *Engine) CallEnter(fn string, ent ecs.Entity, previous string) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	prev := lua.LValue(lua.LNil)
	if previous != "" {
		prev = lua.LString(previous)
	}
	e.call(fn, f, lua.LNumber(e.w.Handles.Expose(ent)), prev)
}

// CallUpdate runs on_update(entity_id, time_in_phase).
func (e *Engine) CallUpdate(fn string, ent ecs.Entity, timeIn float32) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	e.call(fn, f, lua.LNumber(e.w.Handles.Expose(ent)), lua.LNumber(timeIn))
}

// CallExit runs on_exit(entity_id, next).
func (e *Engine) CallExit(fn string, ent ecs.Entity, next string) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	e.call(fn, f, lua.LNumber(e.w.Handles.Expose(ent)), lua.LString(next))
}

// CallTimer runs callback(entity_id).
func (e *Engine) CallTimer(fn string, ent ecs.Entity) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	e.call(fn, f, lua.LNumber(e.w.Handles.Expose(ent)))
}

// CallCollision runs callback(ctx). The pooled pair context is only valid
// for the duration of the call.
func (e *Engine) CallCollision(fn string, a, b ecs.Entity) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	ctx := e.pool.fillPair(e.vm, e.w, a, b)
	e.call(fn, f, ctx)
}

// CallNamed runs callback(entity_id, arg).
func (e *Engine) CallNamed(fn string, ent ecs.Entity, arg string) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	e.call(fn, f, lua.LNumber(e.w.Handles.Expose(ent)), lua.LString(arg))
}

// CallGlobal runs a zero-argument callback (setup and scene hooks).
func (e *Engine) CallGlobal(fn string) {
	f := e.fn(fn)
	if f == nil {
		return
	}
	e.call(fn, f)
}
