package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/audio"
	"github.com/lumen2d/lumen/world"
)

// registerAPI publishes the global engine table. Every mutating function
// appends a typed command; nothing touches the world directly. The
// collision_* mirrors push into the pair-scoped queues drained after each
// collision callback.
func (e *Engine) registerAPI() {
	vm := e.vm
	t := vm.NewTable()
	meta := vm.NewTable()

	reg := func(name string, fn lua.LGFunction) {
		t.RawSetString(name, vm.NewFunction(fn))
		meta.Append(lua.LString(name))
	}

	// logging
	reg("log", e.apiLogInfo)
	reg("log_info", e.apiLogInfo)
	reg("log_warn", func(L *lua.LState) int {
		e.log.Warn(L.CheckString(1), zap.String("source", "script"))
		return 0
	})
	reg("log_error", func(L *lua.LState) int {
		e.log.Error(L.CheckString(1), zap.String("source", "script"))
		return 0
	})

	// assets
	reg("load_texture", func(L *lua.LState) int {
		e.w.Queues.PushAsset(world.AssetCommand{Kind: world.AssetTexture, ID: L.CheckString(1), Path: L.CheckString(2)})
		return 0
	})
	reg("load_font", func(L *lua.LState) int {
		e.w.Queues.PushAsset(world.AssetCommand{
			Kind: world.AssetFont, ID: L.CheckString(1), Path: L.CheckString(2), Size: float32(L.CheckNumber(3)),
		})
		return 0
	})
	reg("load_shader", func(L *lua.LState) int {
		e.w.Queues.PushAsset(world.AssetCommand{
			Kind: world.AssetShader, ID: L.CheckString(1), Path: L.OptString(2, ""), Extra: L.CheckString(3),
		})
		return 0
	})
	reg("load_music", func(L *lua.LState) int {
		e.w.Queues.PushAsset(world.AssetCommand{Kind: world.AssetMusic, ID: L.CheckString(1), Path: L.CheckString(2)})
		return 0
	})
	reg("load_sound", func(L *lua.LState) int {
		e.w.Queues.PushAsset(world.AssetCommand{Kind: world.AssetSound, ID: L.CheckString(1), Path: L.CheckString(2)})
		return 0
	})
	reg("load_tilemap", func(L *lua.LState) int {
		e.w.Queues.PushAsset(world.AssetCommand{
			Kind: world.AssetTilemap, ID: L.CheckString(1), Path: L.CheckString(2), Atlas: L.CheckString(3),
		})
		return 0
	})

	// spawning
	reg("spawn", func(L *lua.LState) int {
		L.Push(e.newBuilder(L, false))
		return 1
	})
	reg("collision_spawn", func(L *lua.LState) int {
		L.Push(e.newBuilder(L, true))
		return 1
	})

	// audio
	reg("play_music", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdPlayMusic, ID: L.CheckString(1), Looped: L.OptBool(2, false)})
		return 0
	})
	reg("stop_music", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdStopMusic, ID: L.CheckString(1)})
		return 0
	})
	reg("stop_all_music", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdStopAllMusic})
		return 0
	})
	reg("pause_music", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdPauseMusic, ID: L.CheckString(1)})
		return 0
	})
	reg("resume_music", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdResumeMusic, ID: L.CheckString(1)})
		return 0
	})
	reg("set_music_volume", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdVolumeMusic, ID: L.CheckString(1), Volume: float64(L.CheckNumber(2))})
		return 0
	})
	reg("play_sound", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdPlayFx, ID: L.CheckString(1)})
		return 0
	})
	reg("stop_all_sounds", func(L *lua.LState) int {
		e.w.Queues.PushAudio(audio.Command{Kind: audio.CmdUnloadAllFx})
		return 0
	})
	reg("collision_play_sound", func(L *lua.LState) int {
		c := &e.w.Queues.Collision
		c.Audio = append(c.Audio, audio.Command{Kind: audio.CmdPlayFx, ID: L.CheckString(1)})
		return 0
	})

	// snapshot reads
	reg("get_scalar", func(L *lua.LState) int {
		L.Push(e.snapGet(e.snapScalars, L.CheckString(1), lua.LNumber(0)))
		return 1
	})
	reg("get_integer", func(L *lua.LState) int {
		L.Push(e.snapGet(e.snapIntegers, L.CheckString(1), lua.LNumber(0)))
		return 1
	})
	reg("get_string", func(L *lua.LState) int {
		L.Push(e.snapGet(e.snapStrings, L.CheckString(1), lua.LString("")))
		return 1
	})
	reg("has_flag", func(L *lua.LState) int {
		L.Push(lua.LBool(e.snapGet(e.snapFlags, L.CheckString(1), lua.LNil) != lua.LNil))
		return 1
	})
	reg("get_group_count", func(L *lua.LState) int {
		L.Push(e.snapGet(e.snapGroups, L.CheckString(1), lua.LNumber(0)))
		return 1
	})
	reg("get_entity", func(L *lua.LState) int {
		L.Push(e.snapGet(e.snapEntities, L.CheckString(1), lua.LNil))
		return 1
	})

	// world signal writes
	reg("set_scalar", e.signalWriter(world.SigSetScalar, false))
	reg("set_integer", e.signalWriter(world.SigSetInteger, false))
	reg("set_string", e.signalWriter(world.SigSetString, false))
	reg("set_flag", e.signalWriter(world.SigSetFlag, false))
	reg("clear_flag", e.signalWriter(world.SigClearFlag, false))
	reg("collision_set_scalar", e.signalWriter(world.SigSetScalar, true))
	reg("collision_set_integer", e.signalWriter(world.SigSetInteger, true))
	reg("collision_set_string", e.signalWriter(world.SigSetString, true))
	reg("collision_set_flag", e.signalWriter(world.SigSetFlag, true))
	reg("collision_clear_flag", e.signalWriter(world.SigClearFlag, true))

	// phase transitions
	reg("phase_transition", func(L *lua.LState) int {
		e.w.Queues.PushPhase(world.PhaseCommand{Target: int64(L.CheckNumber(1)), Phase: L.CheckString(2)})
		return 0
	})
	reg("collision_phase_transition", func(L *lua.LState) int {
		c := &e.w.Queues.Collision
		c.Phases = append(c.Phases, world.PhaseCommand{Target: int64(L.CheckNumber(1)), Phase: L.CheckString(2)})
		return 0
	})

	// groups
	reg("track_group", func(L *lua.LState) int {
		e.w.Queues.PushGroup(world.GroupCommand{Op: world.GroupTrack, Name: L.CheckString(1)})
		return 0
	})
	reg("untrack_group", func(L *lua.LState) int {
		e.w.Queues.PushGroup(world.GroupCommand{Op: world.GroupUntrack, Name: L.CheckString(1)})
		return 0
	})
	reg("clear_tracked_groups", func(L *lua.LState) int {
		e.w.Queues.PushGroup(world.GroupCommand{Op: world.GroupClear})
		return 0
	})
	reg("has_tracked_group", func(L *lua.LState) int {
		L.Push(lua.LBool(e.w.Tracked.Has(L.CheckString(1))))
		return 1
	})

	// tilemap
	reg("spawn_tiles", func(L *lua.LState) int {
		e.w.Queues.PushTilemap(world.TilemapCommand{
			ID:      L.CheckString(1),
			OriginX: float32(L.OptNumber(2, 0)),
			OriginY: float32(L.OptNumber(3, 0)),
		})
		return 0
	})

	// camera
	reg("set_camera", e.cameraWriter(false))
	reg("collision_set_camera", e.cameraWriter(true))

	// animation registry
	reg("register_animation", func(L *lua.LState) int {
		e.w.Queues.PushAnimation(world.AnimationCommand{
			ID:           L.CheckString(1),
			Texture:      L.CheckString(2),
			Px:           float32(L.CheckNumber(3)),
			Py:           float32(L.CheckNumber(4)),
			Displacement: float32(L.CheckNumber(5)),
			FrameCount:   int(L.CheckNumber(6)),
			FPS:          float32(L.CheckNumber(7)),
			Looped:       L.OptBool(8, false),
		})
		return 0
	})

	// input snapshot reads
	reg("input_pressed", e.inputReader(func(s world.ButtonState) bool { return s.Active }))
	reg("input_just_pressed", e.inputReader(func(s world.ButtonState) bool { return s.JustPressed }))
	reg("input_just_released", e.inputReader(func(s world.ButtonState) bool { return s.JustReleased }))
	reg("get_mouse", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.w.Input.MouseWorldX))
		L.Push(lua.LNumber(e.w.Input.MouseWorldY))
		return 2
	})

	// time
	reg("get_time", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.w.Time.Elapsed))
		return 1
	})
	reg("get_delta", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.w.Time.Delta))
		return 1
	})

	// scene and state
	reg("set_scene", func(L *lua.LState) int {
		e.w.Queues.PushScene(world.SceneCommand{Scene: L.CheckString(1)})
		return 0
	})
	reg("quit", func(L *lua.LState) int {
		e.w.Queues.PushSignal(world.SignalCommand{Op: world.SigSetFlag, Name: "quit_game"})
		e.w.Queues.PushState(world.StateCommand{State: world.StateQuitting})
		return 0
	})

	e.registerEntityAPI(reg)

	t.RawSetString("__meta", meta)
	vm.SetGlobal("engine", t)
}

func (e *Engine) apiLogInfo(L *lua.LState) int {
	e.log.Info(L.CheckString(1), zap.String("source", "script"))
	return 0
}

func (e *Engine) snapGet(t *lua.LTable, key string, def lua.LValue) lua.LValue {
	if t == nil {
		return def
	}
	if v := t.RawGetString(key); v != lua.LNil {
		return v
	}
	return def
}

func (e *Engine) signalWriter(op world.SignalOp, scoped bool) lua.LGFunction {
	return func(L *lua.LState) int {
		cmd := world.SignalCommand{Op: op, Name: L.CheckString(1)}
		switch op {
		case world.SigSetScalar:
			cmd.Scalar = float32(L.CheckNumber(2))
		case world.SigSetInteger:
			cmd.Integer = int64(L.CheckNumber(2))
		case world.SigSetString:
			cmd.Str = L.CheckString(2)
		}
		if scoped {
			c := &e.w.Queues.Collision
			c.Signals = append(c.Signals, cmd)
		} else {
			e.w.Queues.PushSignal(cmd)
		}
		return 0
	}
}

func (e *Engine) cameraWriter(scoped bool) lua.LGFunction {
	return func(L *lua.LState) int {
		cmd := world.CameraCommand{
			TargetX: float32(L.CheckNumber(1)), TargetY: float32(L.CheckNumber(2)), HasTarget: true,
			OffsetX: float32(L.CheckNumber(3)), OffsetY: float32(L.CheckNumber(4)), HasOffset: true,
			Rotation: float32(L.CheckNumber(5)), HasRotation: true,
			Zoom: float32(L.CheckNumber(6)), HasZoom: true,
		}
		if scoped {
			c := &e.w.Queues.Collision
			c.Cameras = append(c.Cameras, cmd)
		} else {
			e.w.Queues.PushCamera(cmd)
		}
		return 0
	}
}

func (e *Engine) inputReader(pick func(world.ButtonState) bool) lua.LGFunction {
	return func(L *lua.LState) int {
		b, ok := world.ButtonByName[L.CheckString(1)]
		if !ok {
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LBool(pick(e.w.Input.Get(b))))
		return 1
	}
}
