package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
	"github.com/lumen2d/lumen/world"
)

const builderTypeName = "entity_builder"

// builder accumulates a spawn record through chained method calls. build()
// enqueues the record and returns the reserved entity handle; a scoped
// builder pushes into the collision spawn queue instead.
type builder struct {
	eng    *Engine
	rec    world.SpawnRecord
	scoped bool

	// tween index per channel, -1 = none yet
	tweenIdx [3]int
}

func (e *Engine) newBuilder(L *lua.LState, scoped bool) *lua.LUserData {
	b := &builder{eng: e, scoped: scoped, tweenIdx: [3]int{-1, -1, -1}}
	ud := L.NewUserData()
	ud.Value = b
	L.SetMetatable(ud, L.GetTypeMetatable(builderTypeName))
	return ud
}

func (e *Engine) registerBuilderType() {
	mt := e.vm.NewTypeMetatable(builderTypeName)
	e.vm.SetField(mt, "__index", e.vm.SetFuncs(e.vm.NewTable(), builderMethods))
}

func checkBuilder(L *lua.LState) *builder {
	ud := L.CheckUserData(1)
	if b, ok := ud.Value.(*builder); ok {
		return b
	}
	L.ArgError(1, "entity_builder expected")
	return nil
}

// chain wraps a mutator into a Lua method that returns the builder for
// chaining.
func chain(fn func(b *builder, L *lua.LState)) lua.LGFunction {
	return func(L *lua.LState) int {
		fn(checkBuilder(L), L)
		L.Push(L.CheckUserData(1))
		return 1
	}
}

func (b *builder) tween(channel world.TweenChannel) *world.TweenRecord {
	if b.tweenIdx[channel] < 0 {
		b.rec.Tweens = append(b.rec.Tweens, world.TweenRecord{
			Channel: channel,
			State:   components.TweenState{Playing: true, Forward: true},
		})
		b.tweenIdx[channel] = len(b.rec.Tweens) - 1
	}
	return &b.rec.Tweens[b.tweenIdx[channel]]
}

func (b *builder) needMenu(L *lua.LState) *components.Menu {
	if b.rec.Menu == nil {
		L.RaiseError("menu option requires a prior menu(...) call")
	}
	return b.rec.Menu
}

func (b *builder) needController(L *lua.LState) *world.AnimCtrlSpec {
	if b.rec.AnimCtrl == nil {
		L.RaiseError("animation_rule requires a prior animation_controller(...) call")
	}
	return b.rec.AnimCtrl
}

func readCondition(t *lua.LTable) components.Condition {
	return components.Condition{
		Flag:   lStr(t, "flag", ""),
		Absent: lBool(t, "absent", false),
		Scalar: lStr(t, "scalar", ""),
		Op:     lStr(t, "op", "=="),
		Value:  lFloat(t, "value", 0),
	}
}

var builderMethods = map[string]lua.LGFunction{
	// identity / placement
	"group": chain(func(b *builder, L *lua.LState) {
		g := L.CheckString(2)
		b.rec.Group = &g
	}),
	"position": chain(func(b *builder, L *lua.LState) {
		b.rec.Position = &components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
	}),
	"screen_position": chain(func(b *builder, L *lua.LState) {
		b.rec.ScreenPosition = &components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
	}),
	"zindex": chain(func(b *builder, L *lua.LState) {
		z := int(L.CheckNumber(2))
		b.rec.ZIndex = &z
	}),
	"rotation": chain(func(b *builder, L *lua.LState) {
		r := float32(L.CheckNumber(2))
		b.rec.Rotation = &r
	}),
	"scale": chain(func(b *builder, L *lua.LState) {
		b.rec.Scale = &components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
	}),
	"persistent": chain(func(b *builder, L *lua.LState) {
		b.rec.Persistent = true
	}),

	// rendering
	"sprite": chain(func(b *builder, L *lua.LState) {
		b.rec.Sprite = &world.SpriteSpec{
			Texture: L.CheckString(2),
			Width:   float32(L.CheckNumber(3)),
			Height:  float32(L.CheckNumber(4)),
			OriginX: float32(L.OptNumber(5, 0)),
			OriginY: float32(L.OptNumber(6, 0)),
		}
	}),
	"sprite_offset": chain(func(b *builder, L *lua.LState) {
		if b.rec.Sprite == nil {
			L.RaiseError("sprite_offset requires a prior sprite(...) call")
		}
		b.rec.Sprite.OffsetX = float32(L.CheckNumber(2))
		b.rec.Sprite.OffsetY = float32(L.CheckNumber(3))
	}),
	"sprite_flip": chain(func(b *builder, L *lua.LState) {
		if b.rec.Sprite == nil {
			L.RaiseError("sprite_flip requires a prior sprite(...) call")
		}
		b.rec.Sprite.FlipX = L.CheckBool(2)
		b.rec.Sprite.FlipY = L.CheckBool(3)
	}),
	"text": chain(func(b *builder, L *lua.LState) {
		b.rec.Text = &world.TextSpec{
			Content: L.CheckString(2),
			Font:    L.CheckString(3),
			Size:    float32(L.CheckNumber(4)),
			Color: components.Color{
				R: uint8(L.OptNumber(5, 255)), G: uint8(L.OptNumber(6, 255)),
				B: uint8(L.OptNumber(7, 255)), A: uint8(L.OptNumber(8, 255)),
			},
		}
	}),
	"tint": chain(func(b *builder, L *lua.LState) {
		b.rec.Tint = &components.Color{
			R: uint8(L.CheckNumber(2)), G: uint8(L.CheckNumber(3)),
			B: uint8(L.CheckNumber(4)), A: uint8(L.OptNumber(5, 255)),
		}
	}),

	// physics
	"velocity": chain(func(b *builder, L *lua.LState) {
		b.body().Velocity = &components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
	}),
	"friction": chain(func(b *builder, L *lua.LState) {
		f := float32(L.CheckNumber(2))
		b.body().Friction = &f
	}),
	"max_speed": chain(func(b *builder, L *lua.LState) {
		s := float32(L.CheckNumber(2))
		b.body().MaxSpeed = &s
	}),
	"accel": chain(func(b *builder, L *lua.LState) {
		body := b.body()
		body.Forces = append(body.Forces, world.ForceSpec{
			Name:    L.CheckString(2),
			X:       float32(L.CheckNumber(3)),
			Y:       float32(L.CheckNumber(4)),
			Enabled: L.OptBool(5, true),
		})
	}),
	"frozen": chain(func(b *builder, L *lua.LState) {
		b.body().Frozen = true
	}),

	// collider
	"collider": chain(func(b *builder, L *lua.LState) {
		b.rec.Collider = &world.ColliderSpec{
			Width:   float32(L.CheckNumber(2)),
			Height:  float32(L.CheckNumber(3)),
			OriginX: float32(L.OptNumber(4, 0)),
			OriginY: float32(L.OptNumber(5, 0)),
		}
	}),
	"collider_offset": chain(func(b *builder, L *lua.LState) {
		if b.rec.Collider == nil {
			L.RaiseError("collider_offset requires a prior collider(...) call")
		}
		b.rec.Collider.OffsetX = float32(L.CheckNumber(2))
		b.rec.Collider.OffsetY = float32(L.CheckNumber(3))
	}),

	// input
	"mouse_controlled": chain(func(b *builder, L *lua.LState) {
		b.rec.Mouse = &components.MouseControlled{FollowX: L.CheckBool(2), FollowY: L.CheckBool(3)}
	}),

	// signals
	"signals": chain(func(b *builder, L *lua.LState) {
		b.signals()
	}),
	"signal_scalar": chain(func(b *builder, L *lua.LState) {
		b.signals().Scalars[L.CheckString(2)] = float32(L.CheckNumber(3))
	}),
	"signal_integer": chain(func(b *builder, L *lua.LState) {
		b.signals().Integers[L.CheckString(2)] = int64(L.CheckNumber(3))
	}),
	"signal_string": chain(func(b *builder, L *lua.LState) {
		b.signals().Strings[L.CheckString(2)] = L.CheckString(3)
	}),
	"signal_flag": chain(func(b *builder, L *lua.LState) {
		s := b.signals()
		s.Flags = append(s.Flags, L.CheckString(2))
	}),

	// phase machine
	"phase": chain(func(b *builder, L *lua.LState) {
		t := L.CheckTable(2)
		spec := &world.PhaseSpec{
			Initial: lStr(t, "initial", ""),
			Hooks:   make(map[string]components.PhaseHooks),
		}
		if phases, ok := t.RawGetString("phases").(*lua.LTable); ok {
			phases.ForEach(func(k, v lua.LValue) {
				name, nameOK := k.(lua.LString)
				hooks, hooksOK := v.(*lua.LTable)
				if !nameOK || !hooksOK {
					return
				}
				spec.Hooks[string(name)] = components.PhaseHooks{
					OnEnter:  components.PhaseCallback{Script: lStr(hooks, "on_enter", "")},
					OnUpdate: components.PhaseCallback{Script: lStr(hooks, "on_update", "")},
					OnExit:   components.PhaseCallback{Script: lStr(hooks, "on_exit", "")},
				}
			})
		}
		b.rec.Phase = spec
	}),

	// attachment
	"stuckto": chain(func(b *builder, L *lua.LState) {
		b.rec.Stick = &world.StickSpec{
			Target:  int64(L.CheckNumber(2)),
			FollowX: L.OptBool(3, true),
			FollowY: L.OptBool(4, true),
		}
	}),
	"stuckto_offset": chain(func(b *builder, L *lua.LState) {
		if b.rec.Stick == nil {
			L.RaiseError("stuckto_offset requires a prior stuckto(...) call")
		}
		b.rec.Stick.OffsetX = float32(L.CheckNumber(2))
		b.rec.Stick.OffsetY = float32(L.CheckNumber(3))
	}),
	"stuckto_stored_velocity": chain(func(b *builder, L *lua.LState) {
		if b.rec.Stick == nil {
			L.RaiseError("stuckto_stored_velocity requires a prior stuckto(...) call")
		}
		b.rec.Stick.StoredVelocity = &components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
	}),

	// timing
	"lua_timer": chain(func(b *builder, L *lua.LState) {
		b.rec.LuaTimer = &world.LuaTimerSpec{Duration: float32(L.CheckNumber(2)), Callback: L.CheckString(3)}
	}),
	"timer": chain(func(b *builder, L *lua.LState) {
		b.rec.Timer = &world.TimerSpec{Duration: float32(L.CheckNumber(2)), Signal: L.CheckString(3)}
	}),
	"ttl": chain(func(b *builder, L *lua.LState) {
		t := float32(L.CheckNumber(2))
		b.rec.Ttl = &t
	}),

	// binding
	"signal_binding": chain(func(b *builder, L *lua.LState) {
		b.rec.Binding = &world.BindingSpec{Signal: L.CheckString(2)}
	}),
	"signal_binding_format": chain(func(b *builder, L *lua.LState) {
		if b.rec.Binding == nil {
			L.RaiseError("signal_binding_format requires a prior signal_binding(...) call")
		}
		b.rec.Binding.Format = L.CheckString(2)
	}),
	"signal_binding_source": chain(func(b *builder, L *lua.LState) {
		if b.rec.Binding == nil {
			L.RaiseError("signal_binding_source requires a prior signal_binding(...) call")
		}
		b.rec.Binding.Source = int64(L.CheckNumber(2))
		b.rec.Binding.HasSource = true
	}),

	// tweens
	"tween_position": chain(func(b *builder, L *lua.LState) {
		tw := b.tween(world.TweenPos)
		tw.From = components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
		tw.To = components.Vec2{X: float32(L.CheckNumber(4)), Y: float32(L.CheckNumber(5))}
		tw.State.Duration = float32(L.CheckNumber(6))
	}),
	"tween_position_easing":    chain(tweenEasing(world.TweenPos)),
	"tween_position_loop":      chain(tweenLoop(world.TweenPos)),
	"tween_position_backwards": chain(tweenBackwards(world.TweenPos)),
	"tween_rotation": chain(func(b *builder, L *lua.LState) {
		tw := b.tween(world.TweenRot)
		tw.From = components.Vec2{X: float32(L.CheckNumber(2))}
		tw.To = components.Vec2{X: float32(L.CheckNumber(3))}
		tw.State.Duration = float32(L.CheckNumber(4))
	}),
	"tween_rotation_easing":    chain(tweenEasing(world.TweenRot)),
	"tween_rotation_loop":      chain(tweenLoop(world.TweenRot)),
	"tween_rotation_backwards": chain(tweenBackwards(world.TweenRot)),
	"tween_scale": chain(func(b *builder, L *lua.LState) {
		tw := b.tween(world.TweenScl)
		tw.From = components.Vec2{X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3))}
		tw.To = components.Vec2{X: float32(L.CheckNumber(4)), Y: float32(L.CheckNumber(5))}
		tw.State.Duration = float32(L.CheckNumber(6))
	}),
	"tween_scale_easing":    chain(tweenEasing(world.TweenScl)),
	"tween_scale_loop":      chain(tweenLoop(world.TweenScl)),
	"tween_scale_backwards": chain(tweenBackwards(world.TweenScl)),

	// grid layout
	"grid_layout": chain(func(b *builder, L *lua.LState) {
		b.rec.Grid = &world.GridSpec{
			Path:   L.CheckString(2),
			Group:  L.OptString(3, ""),
			ZIndex: int(L.OptNumber(4, 0)),
		}
	}),

	// collision rule
	"lua_collision_rule": chain(func(b *builder, L *lua.LState) {
		b.rec.Rule = &components.CollisionRule{
			GroupA: L.CheckString(2),
			GroupB: L.CheckString(3),
			Script: L.CheckString(4),
		}
	}),

	// animation
	"animation": chain(func(b *builder, L *lua.LState) {
		a := L.CheckString(2)
		b.rec.Anim = &a
	}),
	"animation_controller": chain(func(b *builder, L *lua.LState) {
		b.rec.AnimCtrl = &world.AnimCtrlSpec{Fallback: L.CheckString(2)}
	}),
	"animation_rule": chain(func(b *builder, L *lua.LState) {
		ctrl := b.needController(L)
		ctrl.Rules = append(ctrl.Rules, world.AnimRuleSpec{
			Condition: readCondition(L.CheckTable(2)),
			Target:    L.CheckString(3),
		})
	}),

	// menu
	"menu": chain(func(b *builder, L *lua.LState) {
		items := L.CheckTable(2)
		menu := &components.Menu{
			OffsetX:       float32(L.CheckNumber(3)),
			OffsetY:       float32(L.CheckNumber(4)),
			Font:          keys.New(L.CheckString(5)),
			Size:          float32(L.CheckNumber(6)),
			Spacing:       float32(L.CheckNumber(7)),
			ScreenSpace:   L.OptBool(8, true),
			NormalColor:   components.White,
			SelectedColor: components.White,
		}
		items.ForEach(func(_, v lua.LValue) {
			item, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			menu.Items = append(menu.Items, components.MenuItem{
				ID:      lStr(item, "id", ""),
				Label:   lStr(item, "label", ""),
				Enabled: lBool(item, "enabled", true),
			})
		})
		b.rec.Menu = menu
	}),
	"menu_colors": chain(func(b *builder, L *lua.LState) {
		menu := b.needMenu(L)
		menu.NormalColor = components.Color{
			R: uint8(L.CheckNumber(2)), G: uint8(L.CheckNumber(3)),
			B: uint8(L.CheckNumber(4)), A: uint8(L.CheckNumber(5)),
		}
		menu.SelectedColor = components.Color{
			R: uint8(L.CheckNumber(6)), G: uint8(L.CheckNumber(7)),
			B: uint8(L.CheckNumber(8)), A: uint8(L.CheckNumber(9)),
		}
	}),
	"menu_dynamic_text": chain(func(b *builder, L *lua.LState) {
		b.needMenu(L).UseDynamicText = true
	}),
	"menu_cursor": chain(func(b *builder, L *lua.LState) {
		b.needMenu(L).CursorSignal = L.CheckString(2)
	}),
	"menu_selection_sound": chain(func(b *builder, L *lua.LState) {
		b.needMenu(L).SelectionSound = keys.New(L.CheckString(2))
	}),
	"menu_action_set_scene": chain(func(b *builder, L *lua.LState) {
		menu := b.needMenu(L)
		menu.Actions = append(menu.Actions, components.MenuAction{
			ItemID: L.CheckString(2), Kind: components.MenuActionSetScene, Scene: L.CheckString(3),
		})
	}),
	"menu_action_show_submenu": chain(func(b *builder, L *lua.LState) {
		menu := b.needMenu(L)
		menu.Actions = append(menu.Actions, components.MenuAction{
			ItemID: L.CheckString(2), Kind: components.MenuActionShowSubmenu, Submenu: L.CheckString(3),
		})
	}),
	"menu_action_quit": chain(func(b *builder, L *lua.LState) {
		menu := b.needMenu(L)
		menu.Actions = append(menu.Actions, components.MenuAction{
			ItemID: L.CheckString(2), Kind: components.MenuActionQuit,
		})
	}),
	"menu_action_script": chain(func(b *builder, L *lua.LState) {
		menu := b.needMenu(L)
		menu.Actions = append(menu.Actions, components.MenuAction{
			ItemID: L.CheckString(2), Kind: components.MenuActionScript, Callback: L.CheckString(3),
		})
	}),

	// particle emitter
	"particle_emitter": chain(func(b *builder, L *lua.LState) {
		t := L.CheckTable(2)
		spec := &world.EmitterSpec{
			RectW:                lFloat(t, "rect_w", 0),
			RectH:                lFloat(t, "rect_h", 0),
			OffsetX:              lFloat(t, "offset_x", 0),
			OffsetY:              lFloat(t, "offset_y", 0),
			ParticlesPerEmission: lInt(t, "particles_per_emission", 1),
			EmissionsPerSecond:   lFloat(t, "emissions_per_second", 0),
			Emissions:            lInt(t, "emissions", 0),
			ArcMinDeg:            lFloat(t, "arc_min", 0),
			ArcMaxDeg:            lFloat(t, "arc_max", 360),
			SpeedMin:             lFloat(t, "speed_min", 0),
			SpeedMax:             lFloat(t, "speed_max", 0),
		}
		if lStr(t, "shape", "point") == "rect" {
			spec.Shape = components.EmitRect
		}
		if templates, ok := t.RawGetString("templates").(*lua.LTable); ok {
			templates.ForEach(func(_, v lua.LValue) {
				if n, numOK := v.(lua.LNumber); numOK {
					spec.Templates = append(spec.Templates, int64(n))
				}
			})
		}
		if ttl, ok := t.RawGetString("ttl").(*lua.LTable); ok {
			switch lStr(ttl, "kind", "") {
			case "fixed":
				spec.Ttl = components.TtlSpec{Kind: components.TtlFixed, Min: lFloat(ttl, "min", 0)}
			case "range":
				spec.Ttl = components.TtlSpec{
					Kind: components.TtlRange,
					Min:  lFloat(ttl, "min", 0),
					Max:  lFloat(ttl, "max", 0),
				}
			}
		}
		b.rec.Emitter = spec
	}),

	// shader
	"shader": chain(func(b *builder, L *lua.LState) {
		spec := &world.ShaderSpec{Shader: L.CheckString(2), Uniforms: make(map[string]float32)}
		if t, ok := L.Get(3).(*lua.LTable); ok {
			t.ForEach(func(k, v lua.LValue) {
				name, nameOK := k.(lua.LString)
				num, numOK := v.(lua.LNumber)
				if nameOK && numOK {
					spec.Uniforms[string(name)] = float32(num)
				}
			})
		}
		b.rec.Shader = spec
	}),

	"register_as": chain(func(b *builder, L *lua.LState) {
		b.rec.RegisterAs = L.CheckString(2)
	}),

	// build enqueues the record and returns the reserved handle.
	"build": func(L *lua.LState) int {
		b := checkBuilder(L)
		b.rec.Reserved = b.eng.w.Handles.Reserve()
		if b.scoped {
			c := &b.eng.w.Queues.Collision
			c.Spawns = append(c.Spawns, b.rec)
		} else {
			b.eng.w.Queues.PushSpawn(b.rec)
		}
		L.Push(lua.LNumber(b.rec.Reserved))
		return 1
	},
}

func (b *builder) body() *world.BodySpec {
	if b.rec.Body == nil {
		b.rec.Body = &world.BodySpec{}
	}
	return b.rec.Body
}

func (b *builder) signals() *world.SignalsSpec {
	if b.rec.Signals == nil {
		b.rec.Signals = &world.SignalsSpec{
			Scalars:  make(map[string]float32),
			Integers: make(map[string]int64),
			Strings:  make(map[string]string),
		}
	}
	return b.rec.Signals
}

func tweenEasing(channel world.TweenChannel) func(b *builder, L *lua.LState) {
	return func(b *builder, L *lua.LState) {
		b.tween(channel).State.Easing = components.EasingByName[L.CheckString(2)]
	}
}

func tweenLoop(channel world.TweenChannel) func(b *builder, L *lua.LState) {
	return func(b *builder, L *lua.LState) {
		b.tween(channel).State.Loop = components.LoopByName[L.CheckString(2)]
	}
}

func tweenBackwards(channel world.TweenChannel) func(b *builder, L *lua.LState) {
	return func(b *builder, L *lua.LState) {
		tw := b.tween(channel)
		tw.State.Forward = false
		tw.State.Time = tw.State.Duration
	}
}
