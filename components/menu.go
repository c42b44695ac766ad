package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/keys"
)

// MenuItem is one selectable row of a menu. Text is the spawned label
// entity, filled in by the menu system on first sight.
type MenuItem struct {
	ID      string
	Label   string
	Enabled bool
	Text    ecs.Entity
	HasText bool
}

// MenuActionKind selects what a confirmed menu item does.
type MenuActionKind uint8

const (
	MenuActionSetScene MenuActionKind = iota
	MenuActionShowSubmenu
	MenuActionQuit
	MenuActionScript
)

// MenuAction binds an item id to an effect.
type MenuAction struct {
	ItemID   string
	Kind     MenuActionKind
	Scene    string
	Submenu  string
	Callback string
}

// Menu is a vertical list of selectable items. The menu system spawns label
// entities (DynamicText or prerendered sprites) plus an optional cursor on
// first sight, guarded by Spawned.
type Menu struct {
	Items    []MenuItem
	Selected int

	OffsetX     float32
	OffsetY     float32
	Font        keys.Key
	Size        float32
	Spacing     float32
	ScreenSpace bool

	UseDynamicText bool
	NormalColor    Color
	SelectedColor  Color

	CursorSignal   string // WorldSignals entity key of the cursor entity
	SelectionSound keys.Key

	Actions []MenuAction
	Spawned bool
}
