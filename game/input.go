package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/lumen2d/lumen/world"
)

// DefaultBindings maps logical buttons onto raylib key codes. The main
// directional buttons unify WASD and arrows; the Alt* buttons carry the
// arrows alone so menus can navigate while a player moves on WASD.
func DefaultBindings() map[world.Button][]int32 {
	return map[world.Button][]int32{
		world.BtnUp:       {int32(rl.KeyW), int32(rl.KeyUp)},
		world.BtnDown:     {int32(rl.KeyS), int32(rl.KeyDown)},
		world.BtnLeft:     {int32(rl.KeyA), int32(rl.KeyLeft)},
		world.BtnRight:    {int32(rl.KeyD), int32(rl.KeyRight)},
		world.BtnAltUp:    {int32(rl.KeyUp)},
		world.BtnAltDown:  {int32(rl.KeyDown)},
		world.BtnAltLeft:  {int32(rl.KeyLeft)},
		world.BtnAltRight: {int32(rl.KeyRight)},
		world.BtnConfirm:  {int32(rl.KeyEnter), int32(rl.KeySpace)},
		world.BtnCancel:   {int32(rl.KeyEscape)},
		world.BtnAction:   {int32(rl.KeyE)},
		world.BtnPause:    {int32(rl.KeyP)},
	}
}

// sampleInput snapshots the keyboard and mouse into the world's input state.
// JustPressed/JustReleased derive from the previous frame's Active flags, so
// the snapshot must be taken exactly once per frame.
func (g *Game) sampleInput() {
	in := &g.world.Input
	if in.Bindings == nil {
		in.Bindings = DefaultBindings()
	}

	for btn, keycodes := range in.Bindings {
		active := false
		for _, kc := range keycodes {
			if rl.IsKeyDown(kc) {
				active = true
				break
			}
		}
		prev := in.Buttons[btn].Active
		in.Buttons[btn] = world.ButtonState{
			Active:       active,
			JustPressed:  active && !prev,
			JustReleased: !active && prev,
		}
	}

	mouse := rl.GetMousePosition()
	vx, vy := g.renderer.WindowToVirtual(mouse.X, mouse.Y)
	in.MouseX, in.MouseY = vx, vy
	in.MouseWorldX, in.MouseWorldY = g.camera.ScreenToWorld(vx, vy)
	in.MousePressed = rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	in.MouseHeld = rl.IsMouseButtonDown(rl.MouseButtonLeft)
}
