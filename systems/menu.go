package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/audio"
	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/keys"
	"github.com/lumen2d/lumen/world"
)

// Menus spawns menu item labels on first sight, handles navigation on the
// secondary directional buttons, moves the cursor, and dispatches the
// selection actions on confirm.
func Menus(w *world.World) {
	var entities []ecs.Entity
	filter := ecs.NewFilter1[components.Menu](w.ECS)
	query := filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}

	for _, e := range entities {
		if !w.ECS.Alive(e) || !w.Menus.Has(e) {
			continue
		}
		menu := w.Menus.Get(e)
		if !menu.Spawned {
			spawnMenuLabels(w, menu)
			menu.Spawned = true
		}
		if len(menu.Items) == 0 {
			continue
		}

		prev := menu.Selected
		if w.Input.Get(world.BtnAltUp).JustPressed {
			menu.Selected = (menu.Selected - 1 + len(menu.Items)) % len(menu.Items)
		}
		if w.Input.Get(world.BtnAltDown).JustPressed {
			menu.Selected = (menu.Selected + 1) % len(menu.Items)
		}
		if menu.Selected != prev {
			if !menu.SelectionSound.IsZero() {
				w.SendAudio(audio.Command{Kind: audio.CmdPlayFx, ID: menu.SelectionSound.String()})
			}
		}

		retintMenuLabels(w, menu)
		positionCursor(w, menu)

		if w.Input.Get(world.BtnConfirm).JustPressed {
			item := menu.Items[menu.Selected]
			if item.Enabled {
				w.Emit(world.Event{Kind: world.EvMenuSelected, Handle: w.Handles.Expose(e), Name: item.ID})
				dispatchMenuActions(w, e, menu, item.ID)
			}
		}
	}

	w.DrainFrame()
}

// spawnMenuLabels creates one label entity per item: dynamic text when
// requested, otherwise a prerendered sprite keyed by the item label.
func spawnMenuLabels(w *world.World, menu *components.Menu) {
	for i := range menu.Items {
		item := &menu.Items[i]
		label := w.NewEntity()
		x := menu.OffsetX
		y := menu.OffsetY + float32(i)*menu.Spacing
		if menu.ScreenSpace {
			w.ScreenPositions.Add(label, &components.ScreenPosition{X: x, Y: y})
		} else {
			w.Positions.Add(label, &components.MapPosition{X: x, Y: y})
		}
		if menu.UseDynamicText {
			w.Texts.Add(label, &components.DynamicText{
				Content: item.Label,
				Font:    menu.Font,
				Size:    menu.Size,
				Color:   menu.NormalColor,
			})
		} else {
			w.Sprites.Add(label, &components.Sprite{Texture: keys.New(item.Label)})
			w.Tints.Add(label, &components.Tint{Color: menu.NormalColor})
		}
		item.Text = label
		item.HasText = true
	}
}

func retintMenuLabels(w *world.World, menu *components.Menu) {
	for i := range menu.Items {
		item := &menu.Items[i]
		if !item.HasText || !w.ECS.Alive(item.Text) {
			continue
		}
		color := menu.NormalColor
		if i == menu.Selected {
			color = menu.SelectedColor
		}
		if w.Texts.Has(item.Text) {
			w.Texts.Get(item.Text).Color = color
		}
		if w.Tints.Has(item.Text) {
			w.Tints.Get(item.Text).Color = color
		}
	}
}

// positionCursor moves the registered cursor entity next to the selected
// item. The cursor is looked up by its world-signal entity key.
func positionCursor(w *world.World, menu *components.Menu) {
	if menu.CursorSignal == "" {
		return
	}
	handle, ok := w.Signals.Entities[menu.CursorSignal]
	if !ok {
		return
	}
	cursor, ok := w.Entity(handle)
	if !ok {
		return
	}
	x := menu.OffsetX - menu.Size
	y := menu.OffsetY + float32(menu.Selected)*menu.Spacing
	if menu.ScreenSpace && w.ScreenPositions.Has(cursor) {
		p := w.ScreenPositions.Get(cursor)
		p.X, p.Y = x, y
	} else if w.Positions.Has(cursor) {
		p := w.Positions.Get(cursor)
		p.X, p.Y = x, y
	}
}

// dispatchMenuActions runs every action bound to the confirmed item id.
func dispatchMenuActions(w *world.World, e ecs.Entity, menu *components.Menu, itemID string) {
	for _, action := range menu.Actions {
		if action.ItemID != itemID {
			continue
		}
		switch action.Kind {
		case components.MenuActionSetScene:
			w.Signals.Strings["scene"] = action.Scene
			w.Queues.PushScene(world.SceneCommand{Scene: action.Scene})
		case components.MenuActionShowSubmenu:
			w.Signals.Strings["submenu"] = action.Submenu
		case components.MenuActionQuit:
			w.Signals.Flags["quit_game"] = struct{}{}
			w.RequestState(world.StateQuitting)
		case components.MenuActionScript:
			if w.Scripts != nil {
				w.Scripts.CallNamed(action.Callback, e, itemID)
			}
		}
	}
}
