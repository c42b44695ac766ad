package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/world"
)

// entityCtx is one pooled entity context. The fixed-schema sub-tables are
// reused across callbacks; scripts must not retain references past the
// callback return. The signals sub-table has variable keys and is built
// fresh on every fill.
type entityCtx struct {
	root      *lua.LTable
	pos       *lua.LTable
	vel       *lua.LTable
	scale     *lua.LTable
	rect      *lua.LTable
	sprite    *lua.LTable
	animation *lua.LTable
	timer     *lua.LTable
}

// ctxPool holds the pooled context tables: two entity contexts for
// collision pairs (the first doubles as the single-entity context) and the
// pair root.
type ctxPool struct {
	a, b *entityCtx
	pair *lua.LTable
}

func newEntityCtx(vm *lua.LState) *entityCtx {
	return &entityCtx{
		root:      vm.NewTable(),
		pos:       vm.NewTable(),
		vel:       vm.NewTable(),
		scale:     vm.NewTable(),
		rect:      vm.NewTable(),
		sprite:    vm.NewTable(),
		animation: vm.NewTable(),
		timer:     vm.NewTable(),
	}
}

func newCtxPool(vm *lua.LState) *ctxPool {
	return &ctxPool{
		a:    newEntityCtx(vm),
		b:    newEntityCtx(vm),
		pair: vm.NewTable(),
	}
}

// fill rewrites the context from the entity's current components. Absent
// components leave nil fields.
func (c *entityCtx) fill(vm *lua.LState, w *world.World, e ecs.Entity) {
	c.root.RawSetString("id", lua.LNumber(w.Handles.Expose(e)))

	if w.Groups.Has(e) {
		c.root.RawSetString("group", lua.LString(w.Groups.Get(e).Name))
	} else {
		c.root.RawSetString("group", lua.LNil)
	}

	var px, py float32
	if w.Positions.Has(e) {
		p := w.Positions.Get(e)
		px, py = p.X, p.Y
		c.pos.RawSetString("x", lua.LNumber(p.X))
		c.pos.RawSetString("y", lua.LNumber(p.Y))
		c.root.RawSetString("pos", c.pos)
	} else {
		c.root.RawSetString("pos", lua.LNil)
	}

	if w.Bodies.Has(e) {
		b := w.Bodies.Get(e)
		c.vel.RawSetString("x", lua.LNumber(b.Velocity.X))
		c.vel.RawSetString("y", lua.LNumber(b.Velocity.Y))
		c.root.RawSetString("vel", c.vel)
	} else {
		c.root.RawSetString("vel", lua.LNil)
	}

	if w.Scales.Has(e) {
		s := w.Scales.Get(e)
		c.scale.RawSetString("x", lua.LNumber(s.X))
		c.scale.RawSetString("y", lua.LNumber(s.Y))
		c.root.RawSetString("scale", c.scale)
	} else {
		c.root.RawSetString("scale", lua.LNil)
	}

	if w.Colliders.Has(e) && w.Positions.Has(e) {
		box := w.Colliders.Get(e)
		c.rect.RawSetString("x", lua.LNumber(px-box.OriginX+box.OffsetX))
		c.rect.RawSetString("y", lua.LNumber(py-box.OriginY+box.OffsetY))
		c.rect.RawSetString("w", lua.LNumber(box.Width))
		c.rect.RawSetString("h", lua.LNumber(box.Height))
		c.root.RawSetString("rect", c.rect)
	} else {
		c.root.RawSetString("rect", lua.LNil)
	}

	if w.Sprites.Has(e) {
		sp := w.Sprites.Get(e)
		c.sprite.RawSetString("texture", lua.LString(sp.Texture.String()))
		c.sprite.RawSetString("w", lua.LNumber(sp.Width))
		c.sprite.RawSetString("h", lua.LNumber(sp.Height))
		c.sprite.RawSetString("ox", lua.LNumber(sp.OffsetX))
		c.sprite.RawSetString("oy", lua.LNumber(sp.OffsetY))
		c.sprite.RawSetString("flip_x", lua.LBool(sp.FlipX))
		c.sprite.RawSetString("flip_y", lua.LBool(sp.FlipY))
		c.root.RawSetString("sprite", c.sprite)
	} else {
		c.root.RawSetString("sprite", lua.LNil)
	}

	if w.Animations.Has(e) {
		an := w.Animations.Get(e)
		c.animation.RawSetString("key", lua.LString(an.Key.String()))
		c.animation.RawSetString("frame", lua.LNumber(an.Frame))
		c.animation.RawSetString("elapsed", lua.LNumber(an.Elapsed))
		c.root.RawSetString("animation", c.animation)
	} else {
		c.root.RawSetString("animation", lua.LNil)
	}

	if w.LuaTimers.Has(e) {
		t := w.LuaTimers.Get(e)
		c.timer.RawSetString("duration", lua.LNumber(t.Duration))
		c.timer.RawSetString("elapsed", lua.LNumber(t.Elapsed))
		c.timer.RawSetString("callback", lua.LString(t.Callback))
		c.root.RawSetString("timer", c.timer)
	} else {
		c.root.RawSetString("timer", lua.LNil)
	}

	// signals are variable-length, always fresh
	if w.EntitySignals.Has(e) {
		sig := w.EntitySignals.Get(e)
		tbl := vm.NewTable()
		scalars := vm.NewTable()
		for k, v := range sig.Scalars {
			scalars.RawSetString(k, lua.LNumber(v))
		}
		integers := vm.NewTable()
		for k, v := range sig.Integers {
			integers.RawSetString(k, lua.LNumber(v))
		}
		strs := vm.NewTable()
		for k, v := range sig.Strings {
			strs.RawSetString(k, lua.LString(v))
		}
		flags := vm.NewTable()
		for k := range sig.Flags {
			flags.RawSetString(k, lua.LTrue)
		}
		tbl.RawSetString("scalars", scalars)
		tbl.RawSetString("integers", integers)
		tbl.RawSetString("strings", strs)
		tbl.RawSetString("flags", flags)
		c.root.RawSetString("signals", tbl)
	} else {
		c.root.RawSetString("signals", lua.LNil)
	}
}

// fillPair rewrites the collision pair context. a and b arrive ordered to
// match the rule's declared groups.
func (p *ctxPool) fillPair(vm *lua.LState, w *world.World, a, b ecs.Entity) *lua.LTable {
	p.a.fill(vm, w, a)
	p.b.fill(vm, w, b)
	p.pair.RawSetString("a", p.a.root)
	p.pair.RawSetString("b", p.b.root)
	p.pair.RawSetString("group_a", p.a.root.RawGetString("group"))
	p.pair.RawSetString("group_b", p.b.root.RawGetString("group"))
	return p.pair
}
