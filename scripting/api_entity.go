package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

// registerEntityAPI adds the entity_* functions. Each takes the target
// handle as its first argument; stale handles make the command a silent
// no-op at drain time. The collision_ mirrors cover the subset usable
// inside collision callbacks with pair-scoped draining.
func (e *Engine) registerEntityAPI(reg func(string, lua.LGFunction)) {
	both := func(name string, make func(L *lua.LState) world.EntityCommand) {
		reg(name, func(L *lua.LState) int {
			e.w.Queues.PushEntity(make(L))
			return 0
		})
		reg("collision_"+name, func(L *lua.LState) int {
			c := &e.w.Queues.Collision
			c.Entities = append(c.Entities, make(L))
			return 0
		})
	}
	plain := func(name string, make func(L *lua.LState) world.EntityCommand) {
		reg(name, func(L *lua.LState) int {
			e.w.Queues.PushEntity(make(L))
			return 0
		})
	}

	both("entity_set_position", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetPosition, Target: int64(L.CheckNumber(1)),
			X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3)),
		}
	})
	both("entity_set_velocity", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetVelocity, Target: int64(L.CheckNumber(1)),
			X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3)),
		}
	})
	plain("entity_set_screen_position", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetScreenPosition, Target: int64(L.CheckNumber(1)),
			X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3)),
		}
	})
	plain("entity_set_rotation", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetRotation, Target: int64(L.CheckNumber(1)), Value: float32(L.CheckNumber(2)),
		}
	})
	plain("entity_set_scale", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetScale, Target: int64(L.CheckNumber(1)),
			X: float32(L.CheckNumber(2)), Y: float32(L.CheckNumber(3)),
		}
	})
	both("entity_set_speed", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetSpeed, Target: int64(L.CheckNumber(1)), Value: float32(L.CheckNumber(2)),
		}
	})
	plain("entity_set_friction", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetFriction, Target: int64(L.CheckNumber(1)), Value: float32(L.CheckNumber(2)),
		}
	})
	plain("entity_set_max_speed", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetMaxSpeed, Target: int64(L.CheckNumber(1)), Value: float32(L.CheckNumber(2)),
		}
	})

	both("entity_add_force", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetForce, Target: int64(L.CheckNumber(1)), Name: L.CheckString(2),
			X: float32(L.CheckNumber(3)), Y: float32(L.CheckNumber(4)),
			FollowX: L.OptBool(5, true),
		}
	})
	plain("entity_remove_force", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpRemoveForce, Target: int64(L.CheckNumber(1)), Name: L.CheckString(2)}
	})
	both("entity_set_force_enabled", func(L *lua.LState) world.EntityCommand {
		op := world.OpDisableForce
		if L.CheckBool(3) {
			op = world.OpEnableForce
		}
		return world.EntityCommand{Op: op, Target: int64(L.CheckNumber(1)), Name: L.CheckString(2)}
	})
	plain("entity_set_force_value", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetForceValue, Target: int64(L.CheckNumber(1)), Name: L.CheckString(2),
			X: float32(L.CheckNumber(3)), Y: float32(L.CheckNumber(4)),
		}
	})
	both("entity_freeze", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpFreeze, Target: int64(L.CheckNumber(1))}
	})
	both("entity_unfreeze", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpUnfreeze, Target: int64(L.CheckNumber(1))}
	})

	both("entity_insert_stuckto", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpStick, Target: int64(L.CheckNumber(1)), Other: int64(L.CheckNumber(2)),
			FollowX: L.OptBool(3, true), FollowY: L.OptBool(4, true),
			X: float32(L.OptNumber(5, 0)), Y: float32(L.OptNumber(6, 0)),
		}
	})
	plain("release_stuckto", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpRelease, Target: int64(L.CheckNumber(1))}
	})

	both("entity_insert_lua_timer", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpAddLuaTimer, Target: int64(L.CheckNumber(1)),
			Value: float32(L.CheckNumber(2)), Str: L.CheckString(3),
		}
	})
	plain("entity_remove_lua_timer", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpRemoveLuaTimer, Target: int64(L.CheckNumber(1))}
	})

	tweenAdd := func(channel world.TweenChannel) func(L *lua.LState) world.EntityCommand {
		return func(L *lua.LState) world.EntityCommand {
			var spec world.TweenSpec
			spec.Channel = channel
			next := 2
			if channel == world.TweenRot {
				spec.From.X = float32(L.CheckNumber(2))
				spec.To.X = float32(L.CheckNumber(3))
				next = 4
			} else {
				spec.From.X = float32(L.CheckNumber(2))
				spec.From.Y = float32(L.CheckNumber(3))
				spec.To.X = float32(L.CheckNumber(4))
				spec.To.Y = float32(L.CheckNumber(5))
				next = 6
			}
			spec.State.Duration = float32(L.CheckNumber(next))
			spec.State.Easing = components.EasingByName[L.OptString(next+1, "linear")]
			spec.State.Loop = components.LoopByName[L.OptString(next+2, "once")]
			backwards := L.OptBool(next+3, false)
			spec.State.Playing = true
			spec.State.Forward = !backwards
			if backwards {
				spec.State.Time = spec.State.Duration
			}
			return world.EntityCommand{Op: world.OpAddTween, Target: int64(L.CheckNumber(1)), Tween: spec}
		}
	}
	plain("entity_insert_tween_position", tweenAdd(world.TweenPos))
	plain("entity_insert_tween_rotation", tweenAdd(world.TweenRot))
	plain("entity_insert_tween_scale", tweenAdd(world.TweenScl))

	tweenDel := func(channel world.TweenChannel) func(L *lua.LState) world.EntityCommand {
		return func(L *lua.LState) world.EntityCommand {
			return world.EntityCommand{
				Op: world.OpRemoveTween, Target: int64(L.CheckNumber(1)),
				Tween: world.TweenSpec{Channel: channel},
			}
		}
	}
	plain("entity_remove_tween_position", tweenDel(world.TweenPos))
	plain("entity_remove_tween_rotation", tweenDel(world.TweenRot))
	plain("entity_remove_tween_scale", tweenDel(world.TweenScl))

	plain("entity_set_animation", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpSetAnimation, Target: int64(L.CheckNumber(1)), Str: L.CheckString(2)}
	})
	plain("entity_restart_animation", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpRestartAnimation, Target: int64(L.CheckNumber(1))}
	})

	plain("entity_signal_set_scalar", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetScalar, Target: int64(L.CheckNumber(1)),
			Name: L.CheckString(2), Value: float32(L.CheckNumber(3)),
		}
	})
	both("entity_signal_set_integer", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetInteger, Target: int64(L.CheckNumber(1)),
			Name: L.CheckString(2), Integer: int64(L.CheckNumber(3)),
		}
	})
	plain("entity_signal_set_string", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetString, Target: int64(L.CheckNumber(1)),
			Name: L.CheckString(2), Str: L.CheckString(3),
		}
	})
	both("entity_signal_set_flag", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpSetFlag, Target: int64(L.CheckNumber(1)), Name: L.CheckString(2)}
	})
	plain("entity_signal_clear_flag", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpClearFlag, Target: int64(L.CheckNumber(1)), Name: L.CheckString(2)}
	})

	plain("entity_set_text", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpSetText, Target: int64(L.CheckNumber(1)), Str: L.CheckString(2)}
	})
	plain("entity_set_tint", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{
			Op: world.OpSetTint, Target: int64(L.CheckNumber(1)),
			Color: components.Color{
				R: uint8(L.CheckNumber(2)), G: uint8(L.CheckNumber(3)),
				B: uint8(L.CheckNumber(4)), A: uint8(L.OptNumber(5, 255)),
			},
		}
	})

	both("entity_insert_ttl", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpSetTtl, Target: int64(L.CheckNumber(1)), Value: float32(L.CheckNumber(2))}
	})
	both("entity_despawn", func(L *lua.LState) world.EntityCommand {
		return world.EntityCommand{Op: world.OpDespawn, Target: int64(L.CheckNumber(1))}
	})
}
