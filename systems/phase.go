package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

// Phases runs the per-entity phase machines. At most one transition is
// applied per entity per frame; a transition requested during on_enter
// takes effect next frame. Commands produced by the callbacks are drained
// once after all machines ran.
func Phases(w *world.World) {
	var entities []ecs.Entity
	filter := ecs.NewFilter1[components.Phase](w.ECS)
	query := filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}

	for _, e := range entities {
		if !w.ECS.Alive(e) || !w.Phases.Has(e) {
			continue
		}
		stepPhase(w, e)
	}

	w.DrainFrame()
}

func stepPhase(w *world.World, e ecs.Entity) {
	p := w.Phases.Get(e)

	if p.NeedsEnter {
		p.NeedsEnter = false
		callHook(w, e, p.Hooks[p.Current].OnEnter, "")
	} else if p.Next != "" {
		prev := p.Current
		p.Current = p.Next
		p.Next = ""
		p.Previous = prev
		p.TimeIn = 0
		callExitHook(w, e, w.Phases.Get(e).Hooks[prev].OnExit, p.Current)
		w.Emit(world.Event{
			Kind:   world.EvPhaseChanged,
			Handle: w.Handles.Expose(e),
			From:   prev,
			To:     p.Current,
		})
		if w.ECS.Alive(e) && w.Phases.Has(e) {
			p = w.Phases.Get(e)
			callHook(w, e, p.Hooks[p.Current].OnEnter, prev)
		}
	} else {
		callUpdateHook(w, e, p.Hooks[p.Current].OnUpdate, p.TimeIn)
	}

	if w.ECS.Alive(e) && w.Phases.Has(e) {
		w.Phases.Get(e).TimeIn += w.Time.Delta
	}
}

// callHook dispatches an enter hook: native closure or named script
// function, whichever variant is set.
func callHook(w *world.World, e ecs.Entity, cb components.PhaseCallback, previous string) {
	switch {
	case cb.Native != nil:
		cb.Native(e, previous)
	case cb.Script != "" && w.Scripts != nil:
		w.Scripts.CallEnter(cb.Script, e, previous)
	}
}

func callExitHook(w *world.World, e ecs.Entity, cb components.PhaseCallback, next string) {
	switch {
	case cb.Native != nil:
		cb.Native(e, next)
	case cb.Script != "" && w.Scripts != nil:
		w.Scripts.CallExit(cb.Script, e, next)
	}
}

func callUpdateHook(w *world.World, e ecs.Entity, cb components.PhaseCallback, timeIn float32) {
	switch {
	case cb.Native != nil:
		cb.Native(e, "")
	case cb.Script != "" && w.Scripts != nil:
		w.Scripts.CallUpdate(cb.Script, e, timeIn)
	}
}
